// Package partition divides a domain of a given size into balanced
// contiguous slices, one per worker.
//
// Let chunk = size / workers and rem = size % workers. Workers with an index
// below rem receive chunk + 1 units, the others receive chunk units, and
// worker i starts at i*chunk + min(i, rem). The same formula is used whether
// a worker computes its own slice, or whether the coordinator computes all
// slices and transmits them.
package partition

import (
	"fmt"
	"math"

	"github.com/exascience/pardist"
)

// A Mode determines which participants of a run receive a slice.
type Mode int

const (
	// InclusiveAll assigns a slice to every participant, including the
	// coordinator at rank 0. Worker index and rank coincide.
	InclusiveAll Mode = iota

	// WorkersOnly reserves rank 0 as a pure coordinator that assigns, but
	// never computes. Participant rank r is worker r-1, and there are
	// size-1 workers.
	WorkersOnly
)

func (m Mode) String() string {
	switch m {
	case InclusiveAll:
		return "inclusive"
	case WorkersOnly:
		return "workers-only"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses the names returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "inclusive", "inclusive-all":
		return InclusiveAll, nil
	case "workers-only", "master-worker":
		return WorkersOnly, nil
	default:
		return 0, fmt.Errorf("unknown partition mode %q", s)
	}
}

// Workers returns the number of workers that receive a slice when size
// participants take part in a run.
func (m Mode) Workers(size int) int {
	if m == WorkersOnly {
		return size - 1
	}
	return size
}

// A Slice is a contiguous part of a domain, covering the half-open interval
// from Start to Start+Len, in domain offsets relative to the first element.
// For grids, Start and Len count rows.
type Slice struct {
	Start, Len int
}

// End returns the exclusive end offset of s.
func (s Slice) End() int {
	return s.Start + s.Len
}

// Empty reports whether s contains no elements.
func (s Slice) Empty() bool {
	return s.Len == 0
}

// Bounds translates s into an inclusive range of domain values, for a
// domain that starts at x. For an empty slice, last = first - 1.
func (s Slice) Bounds(x int) (first, last int) {
	first = x + s.Start
	return first, first + s.Len - 1
}

func validate(domainSize, workers int) error {
	if domainSize < 0 {
		return fmt.Errorf("%w: negative domain size %v", pardist.ErrInvalidDomain, domainSize)
	}
	if workers < 1 {
		return fmt.Errorf("%w: worker count %v", pardist.ErrInvalidDomain, workers)
	}
	return nil
}

// Partition returns the slice of the worker with index workerIndex, when a
// domain of domainSize elements is divided across workers workers.
//
// Partition fails with pardist.ErrInvalidDomain if domainSize < 0, if
// workers < 1, or if workerIndex is not in [0, workers).
func Partition(domainSize, workers, workerIndex int) (Slice, error) {
	if err := validate(domainSize, workers); err != nil {
		return Slice{}, err
	}
	if workerIndex < 0 || workerIndex >= workers {
		return Slice{}, fmt.Errorf("%w: worker index %v out of [0, %v)", pardist.ErrInvalidDomain, workerIndex, workers)
	}
	return slice(domainSize, workers, workerIndex), nil
}

func slice(domainSize, workers, i int) Slice {
	chunk := domainSize / workers
	rem := domainSize % workers
	s := Slice{Start: i*chunk + min(i, rem), Len: chunk}
	if i < rem {
		s.Len++
	}
	return s
}

// Plan returns the slices of all workers, ordered by worker index.
func Plan(domainSize, workers int) ([]Slice, error) {
	if err := validate(domainSize, workers); err != nil {
		return nil, err
	}
	plan := make([]Slice, workers)
	for i := range plan {
		plan[i] = slice(domainSize, workers, i)
	}
	return plan, nil
}

// Assign returns the slice of the participant with the given rank among size
// participants. The ok result is false for the coordinator in WorkersOnly
// mode, which never receives a slice.
//
// Assign fails with pardist.ErrInvalidDomain if the mode leaves no worker.
func Assign(domainSize, size, rank int, mode Mode) (s Slice, ok bool, err error) {
	if rank < 0 || rank >= size {
		return Slice{}, false, fmt.Errorf("%w: rank %v out of [0, %v)", pardist.ErrInvalidDomain, rank, size)
	}
	workers := mode.Workers(size)
	index := rank
	if mode == WorkersOnly {
		if rank == 0 {
			return Slice{}, false, validate(domainSize, workers)
		}
		index = rank - 1
	}
	s, err = Partition(domainSize, workers, index)
	return s, err == nil, err
}

// RangeSize returns the number of integers in the inclusive range [x, y].
//
// RangeSize fails with pardist.ErrInvalidDomain if y < x, or if a bound does
// not fit in 32 bits.
func RangeSize(x, y int) (int, error) {
	if x < math.MinInt32 || y > math.MaxInt32 {
		return 0, fmt.Errorf("%w: range [%v, %v] exceeds 32-bit integers", pardist.ErrInvalidDomain, x, y)
	}
	if y < x {
		return 0, fmt.Errorf("%w: range [%v, %v] has y < x", pardist.ErrInvalidDomain, x, y)
	}
	return y - x + 1, nil
}
