/*
Package comm provides message passing between the participants of one run.

A World connects a fixed number of participants, identified by their rank
0 <= rank < size. Each participant uses its own Comm to send and receive
point-to-point messages, and to take part in collective operations.

Point-to-point messages between a given sender and receiver are delivered in
the order in which they were sent. A receive names its sender explicitly and
blocks until that sender has sent.

Every collective operation (Barrier, Bcast, Reduce, Gather, Scatter) is a
synchronization point: it returns only after all participants have entered
it. All participants must therefore call the same collective operations in
the same order, with the same root.

There are no timeouts. A participant that waits for a message or collective
that never arrives blocks until its context is canceled, in which case the
operation fails with pardist.ErrCommunicationStall. A participant that
stalled in a collective operation cannot take part in further collective
operations of the same World; they fail with pardist.ErrCommunicationStall
as well.
*/
package comm

import (
	"context"
	"fmt"
	"sync"

	"github.com/exascience/pardist"
)

// linkCapacity is the number of messages a sender can send to one receiver
// before it blocks.
const linkCapacity = 16

type round struct {
	slots   []interface{}
	present []bool
	arrived int
	done    chan struct{}
}

/*
A World is the communication substrate of one run.

The zero World is not valid.
*/
type World struct {
	size  int
	links [][]chan interface{} // links[source][destination]
	mutex sync.Mutex
	round *round
}

// NewWorld returns a world of size participants.
//
// NewWorld panics if size < 1.
func NewWorld(size int) *World {
	if size < 1 {
		panic(fmt.Sprintf("invalid world size: %v", size))
	}
	links := make([][]chan interface{}, size)
	for src := range links {
		links[src] = make([]chan interface{}, size)
		for dst := range links[src] {
			links[src][dst] = make(chan interface{}, linkCapacity)
		}
	}
	return &World{size: size, links: links}
}

// Size returns the number of participants.
func (w *World) Size() int {
	return w.size
}

// Comm returns the communicator of the participant with the given rank.
func (w *World) Comm(rank int) *Comm {
	w.checkRank(rank)
	return &Comm{world: w, rank: rank}
}

func (w *World) checkRank(rank int) {
	if rank < 0 || rank >= w.size {
		panic(fmt.Sprintf("invalid rank: %v", rank))
	}
}

// A Comm is the view of one participant onto its World.
type Comm struct {
	world *World
	rank  int
}

// Rank returns the rank of the participant.
func (c *Comm) Rank() int {
	return c.rank
}

// Size returns the number of participants.
func (c *Comm) Size() int {
	return c.world.size
}

func (c *Comm) stall(ctx context.Context, op string) error {
	return fmt.Errorf("%w: rank %v in %s: %v", pardist.ErrCommunicationStall, c.rank, op, ctx.Err())
}

// Send sends msg to the participant with rank dest. The receiver owns msg
// afterwards, and the sender must not modify it anymore.
func (c *Comm) Send(ctx context.Context, dest int, msg interface{}) error {
	c.world.checkRank(dest)
	select {
	case c.world.links[c.rank][dest] <- msg:
		return nil
	case <-ctx.Done():
		return c.stall(ctx, fmt.Sprintf("send to %v", dest))
	}
}

// Recv receives the next message that the participant with rank source sent
// to this participant.
func (c *Comm) Recv(ctx context.Context, source int) (interface{}, error) {
	c.world.checkRank(source)
	select {
	case msg := <-c.world.links[source][c.rank]:
		return msg, nil
	case <-ctx.Done():
		return nil, c.stall(ctx, fmt.Sprintf("receive from %v", source))
	}
}

// RecvAs receives the next message from source, and fails if it is not of
// type T.
func RecvAs[T any](ctx context.Context, c *Comm, source int) (result T, err error) {
	msg, err := c.Recv(ctx, source)
	if err != nil {
		return
	}
	result, ok := msg.(T)
	if !ok {
		err = fmt.Errorf("rank %v: unexpected message %T from rank %v, want %T", c.rank, msg, source, result)
	}
	return
}

// exchange deposits v on behalf of this participant and blocks until all
// participants have deposited a value, returning all values in rank order.
func (c *Comm) exchange(ctx context.Context, op string, v interface{}) ([]interface{}, error) {
	w := c.world
	w.mutex.Lock()
	r := w.round
	if r == nil {
		r = &round{
			slots:   make([]interface{}, w.size),
			present: make([]bool, w.size),
			done:    make(chan struct{}),
		}
		w.round = r
	}
	if r.present[c.rank] {
		w.mutex.Unlock()
		return nil, fmt.Errorf("%w: rank %v in %s: previous collective operation unfinished",
			pardist.ErrCommunicationStall, c.rank, op)
	}
	r.present[c.rank] = true
	r.slots[c.rank] = v
	r.arrived++
	if r.arrived == w.size {
		w.round = nil
		close(r.done)
	}
	w.mutex.Unlock()
	select {
	case <-r.done:
		return r.slots, nil
	case <-ctx.Done():
		return nil, c.stall(ctx, op)
	}
}

// Barrier blocks until all participants have called Barrier.
func (c *Comm) Barrier(ctx context.Context) error {
	_, err := c.exchange(ctx, "barrier", nil)
	return err
}

// Bcast returns the value v of the root participant to every participant.
// The values that non-root participants pass are ignored.
func Bcast[T any](ctx context.Context, c *Comm, root int, v T) (result T, err error) {
	c.world.checkRank(root)
	var deposit interface{}
	if c.rank == root {
		deposit = v
	}
	slots, err := c.exchange(ctx, "broadcast", deposit)
	if err != nil {
		return
	}
	return slots[root].(T), nil
}

// Reduce combines the values of all participants with op, in rank order, and
// returns the result at the root. Non-root participants receive the zero
// value. The op function must be associative.
func Reduce[T any](ctx context.Context, c *Comm, root int, v T, op func(x, y T) T) (result T, err error) {
	c.world.checkRank(root)
	slots, err := c.exchange(ctx, "reduce", v)
	if err != nil || c.rank != root {
		return
	}
	result = slots[0].(T)
	for _, slot := range slots[1:] {
		result = op(result, slot.(T))
	}
	return
}

// Gather returns the values of all participants at the root, in rank order.
// Non-root participants receive nil.
func Gather[T any](ctx context.Context, c *Comm, root int, v T) ([]T, error) {
	c.world.checkRank(root)
	slots, err := c.exchange(ctx, "gather", v)
	if err != nil || c.rank != root {
		return nil, err
	}
	result := make([]T, len(slots))
	for i, slot := range slots {
		result[i] = slot.(T)
	}
	return result, nil
}

// Scatter distributes chunks from the root, so that the participant with
// rank i receives chunks[i]. The chunks that non-root participants pass are
// ignored.
//
// Scatter panics at the root if len(chunks) differs from the world size.
func Scatter[T any](ctx context.Context, c *Comm, root int, chunks []T) (result T, err error) {
	c.world.checkRank(root)
	var deposit interface{}
	if c.rank == root {
		if len(chunks) != c.world.size {
			panic(fmt.Sprintf("scatter of %v chunks across %v participants", len(chunks), c.world.size))
		}
		deposit = chunks
	}
	slots, err := c.exchange(ctx, "scatter", deposit)
	if err != nil {
		return
	}
	return slots[root].([]T)[c.rank], nil
}
