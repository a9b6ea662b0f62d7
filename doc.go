// Package pardist provides functions and data structures for distributing a
// bounded index domain across a fixed set of cooperating workers, and for
// combining their partial results into a single answer.
//
// The domain is either an inclusive integer range or a row-major grid. Workers
// are goroutines that share no memory and coordinate exclusively by message
// passing, in the style of MPI programs.
//
// Pardist provides the following subpackages:
//
// pardist/partition divides a domain into balanced contiguous slices, either
// across all participants or across all participants except the coordinator.
//
// pardist/evaluate provides the local evaluators that run on one slice: prime
// counting over a range, and element-wise addition of two row blocks.
//
// pardist/grid pads a grid so that its rows divide evenly across workers, and
// strips the padding again after aggregation.
//
// pardist/comm provides point-to-point and collective communication between
// the participants of one run.
//
// pardist/aggregate combines partial results, either by a collective
// operation or by point-to-point messages gathered in worker order.
//
// pardist/coordinator implements the coordinator and worker roles and the
// protocol that connects them.
//
// pardist/sequential provides sequential implementations of the coordinator
// entry points, for testing and debugging purposes.
package pardist
