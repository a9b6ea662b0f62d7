package coordinator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/exascience/pardist"
	"github.com/exascience/pardist/aggregate"
	"github.com/exascience/pardist/comm"
	"github.com/exascience/pardist/partition"
)

// A RangeResult is the final result of a range run.
type RangeResult struct {
	X, Y  int
	Total int

	// Procs is the number of participants, including the coordinator.
	Procs int

	// Elapsed covers local computation and aggregation.
	Elapsed time.Duration
}

// A RangeCoordinator is the coordinator role of a range run.
type RangeCoordinator struct {
	machine
	comm *comm.Comm
	x, y int
	opts Options
}

// NewRangeCoordinator returns the coordinator of a run over the inclusive
// range [x, y]. The communicator must have rank Root.
func NewRangeCoordinator(c *comm.Comm, x, y int, opts Options) *RangeCoordinator {
	if c.Rank() != Root {
		panic(fmt.Sprintf("coordinator at rank %v", c.Rank()))
	}
	return &RangeCoordinator{
		machine: newMachine(opts.logger(), "coordinator", c.Rank()),
		comm:    c,
		x:       x,
		y:       y,
		opts:    opts,
	}
}

func (rc *RangeCoordinator) validate() (size int, err error) {
	if size, err = partition.RangeSize(rc.x, rc.y); err != nil {
		return
	}
	if workers := rc.opts.Mode.Workers(rc.comm.Size()); workers < 1 {
		err = fmt.Errorf("%w: %v mode with %v participants leaves no worker",
			pardist.ErrInvalidDomain, rc.opts.Mode, rc.comm.Size())
	}
	return
}

// Run executes the protocol and returns the final result.
//
// If the input is invalid, Run broadcasts a rejection, and fails with
// pardist.ErrInvalidDomain without producing a result.
func (rc *RangeCoordinator) Run(ctx context.Context) (result RangeResult, err error) {
	c := rc.comm
	size, err := rc.validate()
	if err != nil {
		rc.logger.Error("rejecting input", zap.Int("x", rc.x), zap.Int("y", rc.y), zap.Error(err))
		if _, berr := comm.Bcast(ctx, c, Root, ParamsMessage{Status: Reject}); berr != nil {
			return result, berr
		}
		rc.enter(Done)
		return result, err
	}
	rc.enter(InputAcquired)

	params := ParamsMessage{
		Status:   Proceed,
		X:        rc.x,
		Y:        rc.y,
		Mode:     rc.opts.Mode,
		Strategy: rc.opts.Strategy,
	}
	if _, err = comm.Bcast(ctx, c, Root, params); err != nil {
		return
	}
	if rc.opts.Mode == partition.WorkersOnly {
		plan, err := partition.Plan(size, c.Size()-1)
		if err != nil {
			return result, err
		}
		for i, s := range plan {
			first, last := s.Bounds(rc.x)
			if err = c.Send(ctx, i+1, SliceAssignment{Start: first, End: last}); err != nil {
				return result, err
			}
		}
	}
	rc.enter(ParamsBroadcast)

	start := time.Now()
	rc.enter(LocalCompute)
	var partial int
	s, ok, err := partition.Assign(size, c.Size(), c.Rank(), rc.opts.Mode)
	if err != nil {
		return
	}
	if ok {
		first, last := s.Bounds(rc.x)
		partial = rc.opts.evaluator()(first, last)
	}
	agg := aggregate.Aggregator{Strategy: rc.opts.Strategy, Root: Root}
	total, err := agg.Sum(ctx, c, partial)
	if err != nil {
		return
	}
	result = RangeResult{X: rc.x, Y: rc.y, Total: total, Procs: c.Size(), Elapsed: time.Since(start)}
	rc.enter(ResultsAggregated)

	rc.logger.Info("range result",
		zap.Int("x", result.X),
		zap.Int("y", result.Y),
		zap.Int("total", result.Total),
		zap.Duration("elapsed", result.Elapsed))
	rc.enter(Reported)
	rc.enter(Done)
	return
}

// A RangeWorker is the worker role of a range run.
type RangeWorker struct {
	machine
	comm *comm.Comm
	opts Options
}

// NewRangeWorker returns a worker of a range run. The communicator must not
// have rank Root.
func NewRangeWorker(c *comm.Comm, opts Options) *RangeWorker {
	if c.Rank() == Root {
		panic("worker at the coordinator rank")
	}
	return &RangeWorker{
		machine: newMachine(opts.logger(), "worker", c.Rank()),
		comm:    c,
		opts:    opts,
	}
}

// slice returns the inclusive bounds of the worker's slice, either computed
// locally or received from the coordinator.
func (rw *RangeWorker) slice(ctx context.Context, params ParamsMessage) (first, last int, err error) {
	c := rw.comm
	if params.Mode == partition.WorkersOnly {
		a, err := comm.RecvAs[SliceAssignment](ctx, c, Root)
		return a.Start, a.End, err
	}
	size, err := partition.RangeSize(params.X, params.Y)
	if err != nil {
		return
	}
	s, _, err := partition.Assign(size, c.Size(), c.Rank(), params.Mode)
	if err != nil {
		return
	}
	first, last = s.Bounds(params.X)
	return
}

// Run executes the protocol. A worker terminates without error when the
// coordinator rejects its input.
func (rw *RangeWorker) Run(ctx context.Context) error {
	c := rw.comm
	params, err := comm.Bcast(ctx, c, Root, ParamsMessage{})
	if err != nil {
		return err
	}
	if params.Status == Reject {
		rw.enter(Done)
		return nil
	}
	rw.enter(ParamsBroadcast)

	first, last, err := rw.slice(ctx, params)
	if err != nil {
		return err
	}
	rw.enter(LocalCompute)
	partial := rw.opts.evaluator()(first, last)
	rw.logger.Debug("partial result", zap.Int("start", first), zap.Int("end", last), zap.Int("partial", partial))

	agg := aggregate.Aggregator{Strategy: params.Strategy, Root: Root}
	if _, err = agg.Sum(ctx, c, partial); err != nil {
		return err
	}
	rw.enter(ResultsAggregated)
	rw.enter(Done)
	return nil
}

// CountRange divides the inclusive range [x, y] across opts.Procs
// participants, evaluates every slice with opts.Evaluate, and returns the
// sum of all partial results.
func CountRange(ctx context.Context, x, y int, opts Options) (result RangeResult, err error) {
	procs, err := opts.procs()
	if err != nil {
		return
	}
	err = comm.Run(ctx, procs, func(ctx context.Context, c *comm.Comm) error {
		if c.Rank() == Root {
			r, err := NewRangeCoordinator(c, x, y, opts).Run(ctx)
			result = r
			return err
		}
		return NewRangeWorker(c, opts).Run(ctx)
	})
	return
}
