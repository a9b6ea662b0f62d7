package coordinator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/exascience/pardist"
	"github.com/exascience/pardist/aggregate"
	"github.com/exascience/pardist/comm"
	"github.com/exascience/pardist/evaluate"
	"github.com/exascience/pardist/grid"
)

// A GridInput describes the two matrices of a grid run.
type GridInput struct {
	Rows, Cols int
	Source     Source

	// A and B hold Rows*Cols values each in row-major order, if Source is
	// Supplied.
	A, B []int

	// Rand generates the values of A and B if Source is Generated. If nil, a
	// generator seeded with the current time is used.
	Rand *rand.Rand
}

func (in GridInput) matrices() (a, b *grid.Matrix, err error) {
	if err = grid.Validate(in.Rows, in.Cols); err != nil {
		return
	}
	switch in.Source {
	case Supplied:
		if a, err = grid.FromSlice(in.Rows, in.Cols, in.A); err != nil {
			return
		}
		b, err = grid.FromSlice(in.Rows, in.Cols, in.B)
	case Generated:
		rng := in.Rand
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		a = grid.Random(in.Rows, in.Cols, rng)
		b = grid.Random(in.Rows, in.Cols, rng)
	default:
		err = fmt.Errorf("%w: unknown matrix source %v", pardist.ErrInvalidDomain, in.Source)
	}
	return
}

// A GridResult is the final result of a grid run.
type GridResult struct {
	// A and B are the input matrices, and C = A + B.
	A, B, C *grid.Matrix

	// Procs is the number of participants, including the coordinator.
	Procs int

	// Elapsed covers scattering, local computation, and aggregation.
	Elapsed time.Duration
}

// A GridCoordinator is the coordinator role of a grid run.
type GridCoordinator struct {
	machine
	comm  *comm.Comm
	input GridInput
	opts  Options
}

// NewGridCoordinator returns the coordinator of a grid run. The communicator
// must have rank Root.
func NewGridCoordinator(c *comm.Comm, input GridInput, opts Options) *GridCoordinator {
	if c.Rank() != Root {
		panic(fmt.Sprintf("coordinator at rank %v", c.Rank()))
	}
	return &GridCoordinator{
		machine: newMachine(opts.logger(), "coordinator", c.Rank()),
		comm:    c,
		input:   input,
		opts:    opts,
	}
}

// Run executes the protocol and returns the final result.
//
// If the input is invalid, Run broadcasts a rejection, and fails with
// pardist.ErrInvalidDomain or pardist.ErrLengthMismatch without producing a
// result.
func (gc *GridCoordinator) Run(ctx context.Context) (result GridResult, err error) {
	c, in := gc.comm, gc.input
	a, b, err := in.matrices()
	if err != nil {
		gc.logger.Error("rejecting input", zap.Int("rows", in.Rows), zap.Int("cols", in.Cols), zap.Error(err))
		if _, berr := comm.Bcast(ctx, c, Root, ParamsMessage{Status: Reject}); berr != nil {
			return result, berr
		}
		gc.enter(Done)
		return result, err
	}
	paddedA, paddedB := grid.Pad(a, c.Size()), grid.Pad(b, c.Size())
	gc.enter(InputAcquired)

	params := ParamsMessage{
		Status:   Proceed,
		Rows:     in.Rows,
		Cols:     in.Cols,
		Source:   in.Source,
		Strategy: gc.opts.Strategy,
	}
	if _, err = comm.Bcast(ctx, c, Root, params); err != nil {
		return
	}
	gc.enter(ParamsBroadcast)

	start := time.Now()
	gc.enter(LocalCompute)
	blocks := addBlocks{
		a: grid.Split(paddedA, c.Size()),
		b: grid.Split(paddedB, c.Size()),
	}
	data, err := blocks.run(ctx, c, params)
	if err != nil {
		return
	}
	sum, err := grid.Unpad(data, in.Rows, in.Cols)
	if err != nil {
		return
	}
	result = GridResult{A: a, B: b, C: sum, Procs: c.Size(), Elapsed: time.Since(start)}
	gc.enter(ResultsAggregated)

	gc.logger.Info("grid result",
		zap.Int("rows", in.Rows),
		zap.Int("cols", in.Cols),
		zap.Int("paddedRows", paddedA.Rows),
		zap.Duration("elapsed", result.Elapsed))
	gc.enter(Reported)
	gc.enter(Done)
	return
}

// addBlocks holds the row blocks to scatter. Only the coordinator has them.
type addBlocks struct {
	a, b [][]int
}

// run scatters the row blocks, adds the local blocks, and concatenates the
// sums at the coordinator. It returns the padded row-major result at the
// coordinator, and nil elsewhere.
func (blocks addBlocks) run(ctx context.Context, c *comm.Comm, params ParamsMessage) ([]int, error) {
	a, err := comm.Scatter(ctx, c, Root, blocks.a)
	if err != nil {
		return nil, err
	}
	b, err := comm.Scatter(ctx, c, Root, blocks.b)
	if err != nil {
		return nil, err
	}
	padded := grid.PaddedRows(params.Rows, c.Size())
	if want := grid.RowSlice(padded, c.Size(), c.Rank()).Len * params.Cols; len(a) != want {
		return nil, fmt.Errorf("%w: rank %v received %v elements, want %v",
			pardist.ErrLengthMismatch, c.Rank(), len(a), want)
	}
	sum, err := evaluate.Add(a, b)
	if err != nil {
		return nil, err
	}
	agg := aggregate.Aggregator{Strategy: params.Strategy, Root: Root}
	return agg.Concat(ctx, c, sum)
}

// A GridWorker is the worker role of a grid run.
type GridWorker struct {
	machine
	comm *comm.Comm
}

// NewGridWorker returns a worker of a grid run. The communicator must not
// have rank Root.
func NewGridWorker(c *comm.Comm, opts Options) *GridWorker {
	if c.Rank() == Root {
		panic("worker at the coordinator rank")
	}
	return &GridWorker{
		machine: newMachine(opts.logger(), "worker", c.Rank()),
		comm:    c,
	}
}

// Run executes the protocol. A worker terminates without error when the
// coordinator rejects its input.
func (gw *GridWorker) Run(ctx context.Context) error {
	params, err := comm.Bcast(ctx, gw.comm, Root, ParamsMessage{})
	if err != nil {
		return err
	}
	if params.Status == Reject {
		gw.enter(Done)
		return nil
	}
	gw.enter(ParamsBroadcast)
	gw.enter(LocalCompute)
	if _, err = (addBlocks{}).run(ctx, gw.comm, params); err != nil {
		return err
	}
	gw.enter(ResultsAggregated)
	gw.enter(Done)
	return nil
}

// AddMatrices computes the element-wise sum of two matrices by scattering
// equal row blocks across opts.Procs participants. The rows are padded with
// zeros to a multiple of the participant count first, and the padding is
// removed from the result.
func AddMatrices(ctx context.Context, input GridInput, opts Options) (result GridResult, err error) {
	procs, err := opts.procs()
	if err != nil {
		return
	}
	err = comm.Run(ctx, procs, func(ctx context.Context, c *comm.Comm) error {
		if c.Rank() == Root {
			r, err := NewGridCoordinator(c, input, opts).Run(ctx)
			result = r
			return err
		}
		return NewGridWorker(c, opts).Run(ctx)
	})
	return
}
