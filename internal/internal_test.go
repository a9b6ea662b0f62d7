package internal

import (
	"errors"
	"runtime"
	"strings"
	"testing"
)

func TestComputeNofWorkers(t *testing.T) {
	if n := ComputeNofWorkers(3); n != 3 {
		t.Errorf("ComputeNofWorkers(3) = %v", n)
	}
	if n := ComputeNofWorkers(0); n != runtime.GOMAXPROCS(0) {
		t.Errorf("ComputeNofWorkers(0) = %v, want %v", n, runtime.GOMAXPROCS(0))
	}
	defer func() {
		if recover() == nil {
			t.Error("ComputeNofWorkers(-1) did not panic")
		}
	}()
	ComputeNofWorkers(-1)
}

func TestWrapPanic(t *testing.T) {
	if WrapPanic(nil) != nil {
		t.Error("WrapPanic(nil) is not nil")
	}
	if s, ok := WrapPanic("boom").(string); !ok || !strings.HasPrefix(s, "boom\n") {
		t.Errorf("WrapPanic(string) = %v", s)
	}
	if _, ok := WrapPanic(errors.New("boom")).(error); !ok {
		t.Error("WrapPanic(error) is not an error")
	}
}
