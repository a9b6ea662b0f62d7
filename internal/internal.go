package internal

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
)

// ComputeNofWorkers returns n if it is positive. If n is 0, a default is used
// that takes runtime.GOMAXPROCS(0) into account.
func ComputeNofWorkers(n int) int {
	switch {
	case n > 0:
		return n
	case n == 0:
		return runtime.GOMAXPROCS(0)
	default:
		panic(fmt.Sprintf("invalid number of workers: %v", n))
	}
}

type runtimeError struct{ error }

func (runtimeError) RuntimeError() {}

// WrapPanic adds stack trace information to a recovered panic.
func WrapPanic(p interface{}) interface{} {
	if p != nil {
		s := fmt.Sprintf("%v\n%s\nrethrown at", p, debug.Stack())
		if _, isError := p.(error); isError {
			r := errors.New(s)
			if _, isRuntimeError := p.(runtime.Error); isRuntimeError {
				return runtimeError{r}
			}
			return r
		}
		return s
	}
	return nil
}
