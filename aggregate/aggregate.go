/*
Package aggregate combines the partial results of all participants into a
final result at the root participant.

Two interchangeable strategies are provided. Collective combines all partial
results in one synchronized operation, a reduction for scalars and a gather
for row blocks. PointToPoint has every non-root participant send its partial
result to the root, which receives them one by one in ascending rank order,
regardless of the order in which the participants finish. Both strategies
yield identical results for identical partial results.

A participant that owns no slice contributes the neutral element: 0 for Sum,
and an empty block for Concat.
*/
package aggregate

import (
	"context"
	"fmt"

	"github.com/exascience/pardist/comm"
)

// A Strategy selects how partial results travel to the root.
type Strategy int

const (
	// Collective uses one collective operation.
	Collective Strategy = iota

	// PointToPoint uses one point-to-point message per non-root participant.
	PointToPoint
)

func (s Strategy) String() string {
	switch s {
	case Collective:
		return "collective"
	case PointToPoint:
		return "point-to-point"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses the names returned by Strategy.String.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "collective":
		return Collective, nil
	case "point-to-point", "p2p":
		return PointToPoint, nil
	default:
		return 0, fmt.Errorf("unknown aggregation strategy %q", s)
	}
}

// A PartialResultMessage carries the partial result of one participant to
// the root under the PointToPoint strategy.
type PartialResultMessage[T any] struct {
	Rank  int
	Value T
}

// An Aggregator combines partial results at Root using Strategy.
type Aggregator struct {
	Strategy Strategy
	Root     int
}

// Sum returns the sum of the partial counts of all participants at the
// root. Non-root participants receive 0.
func (a Aggregator) Sum(ctx context.Context, c *comm.Comm, partial int) (int, error) {
	if a.Strategy == Collective {
		return comm.Reduce(ctx, c, a.Root, partial, func(x, y int) int { return x + y })
	}
	partials, err := collect(ctx, c, a.Root, partial)
	if err != nil || partials == nil {
		return 0, err
	}
	var total int
	for _, p := range partials {
		total += p
	}
	return total, nil
}

// Concat returns the row-major concatenation of the blocks of all
// participants at the root, in ascending rank order. Non-root participants
// receive nil.
func (a Aggregator) Concat(ctx context.Context, c *comm.Comm, block []int) ([]int, error) {
	var blocks [][]int
	var err error
	if a.Strategy == Collective {
		blocks, err = comm.Gather(ctx, c, a.Root, block)
	} else {
		blocks, err = collect(ctx, c, a.Root, block)
	}
	if err != nil || blocks == nil {
		return nil, err
	}
	var n int
	for _, b := range blocks {
		n += len(b)
	}
	result := make([]int, 0, n)
	for _, b := range blocks {
		result = append(result, b...)
	}
	return result, nil
}

// collect sends partial to the root. At the root, it receives the partial
// results of all other participants in rank order, and returns them together
// with its own partial result at its own position.
func collect[T any](ctx context.Context, c *comm.Comm, root int, partial T) ([]T, error) {
	if c.Rank() != root {
		return nil, c.Send(ctx, root, PartialResultMessage[T]{Rank: c.Rank(), Value: partial})
	}
	partials := make([]T, c.Size())
	for rank := range partials {
		if rank == root {
			partials[rank] = partial
			continue
		}
		msg, err := comm.RecvAs[PartialResultMessage[T]](ctx, c, rank)
		if err != nil {
			return nil, err
		}
		if msg.Rank != rank {
			return nil, fmt.Errorf("partial result from rank %v claims rank %v", rank, msg.Rank)
		}
		partials[rank] = msg.Value
	}
	return partials, nil
}
