package pardist

import "errors"

var (
	// ErrInvalidDomain is returned when a domain has a negative size, when a
	// range has y < x, when a grid has fewer than one row or column, or when
	// the worker count is not positive.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrLengthMismatch is returned when two sequences that must have the
	// same length do not.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrCommunicationStall is returned when a participant stops waiting for
	// a send, a receive, or a collective operation because its context was
	// canceled. Without a cancelable context, such a participant blocks
	// indefinitely instead.
	ErrCommunicationStall = errors.New("communication stall")
)

// A RangeFunc receives an inclusive integer range from start to end and
// returns a partial result for it. If start > end, the range is empty.
type RangeFunc func(start, end int) int
