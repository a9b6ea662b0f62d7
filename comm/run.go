package comm

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/exascience/pardist/internal"
)

var errPanicked = errors.New("participant panicked")

// Run creates a World of size participants and invokes f for each of them in
// its own goroutine. Run returns only when all participants have returned,
// returning the first error value that is different from nil. The context
// passed to f is canceled as soon as one participant fails, so that
// participants blocked on that participant stop waiting.
//
// If one or more participants panic, the corresponding goroutines recover
// the panics, and Run eventually panics with the first recovered panic
// value.
func Run(ctx context.Context, size int, f func(ctx context.Context, c *Comm) error) error {
	world := NewWorld(size)
	g, gctx := errgroup.WithContext(ctx)
	var once sync.Once
	var p interface{}
	for rank := 0; rank < size; rank++ {
		c := world.Comm(rank)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					once.Do(func() { p = internal.WrapPanic(r) })
					err = errPanicked
				}
			}()
			return f(gctx, c)
		})
	}
	err := g.Wait()
	if p != nil {
		panic(p)
	}
	return err
}
