/*
Package coordinator implements the protocol that connects the coordinator of
a run with its workers.

Every run executes the same state machine in every participant:

	Init -> InputAcquired -> ParamsBroadcast -> LocalCompute ->
	ResultsAggregated -> Reported -> Done

Only the coordinator acquires input and reports; workers skip those states.
The coordinator always has rank Root. It validates its input before anything
else happens, and broadcasts either the parameters of the run, or a
rejection that makes every participant stop without computing.

The participants are constructed with explicit roles: a coordinator object
for rank Root, and a worker object for all other ranks. CountRange and
AddMatrices construct both and run them on a fresh comm.World.
*/
package coordinator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/exascience/pardist"
	"github.com/exascience/pardist/aggregate"
	"github.com/exascience/pardist/evaluate"
	"github.com/exascience/pardist/internal"
	"github.com/exascience/pardist/partition"
)

// Root is the rank of the coordinator.
const Root = 0

// A State is a step of the protocol.
type State int

const (
	// Init is the state of a participant before it has started.
	Init State = iota
	// InputAcquired means the coordinator has read and validated its input.
	InputAcquired
	// ParamsBroadcast means the parameters of the run have been broadcast.
	ParamsBroadcast
	// LocalCompute means the participant is evaluating its own slice.
	LocalCompute
	// ResultsAggregated means the partial results have been combined.
	ResultsAggregated
	// Reported means the coordinator has reported the final result.
	Reported
	// Done is the final state of every participant.
	Done
)

var stateNames = [...]string{
	Init:              "INIT",
	InputAcquired:     "INPUT_ACQUIRED",
	ParamsBroadcast:   "PARAMS_BROADCAST",
	LocalCompute:      "LOCAL_COMPUTE",
	ResultsAggregated: "RESULTS_AGGREGATED",
	Reported:          "REPORTED",
	Done:              "DONE",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// A Status tells workers whether the coordinator accepted its input.
type Status int

const (
	// Proceed starts the computation.
	Proceed Status = iota
	// Reject makes every participant stop without computing.
	Reject
)

// A Source selects where the values of the input matrices come from.
type Source int

const (
	// Supplied matrices are provided by the caller.
	Supplied Source = 1
	// Generated matrices are filled with random values in [0, grid.MaxRandom).
	Generated Source = 2
)

// A ParamsMessage is broadcast by the coordinator to all participants before
// any local computation starts. If Status is Reject, no other field is set.
type ParamsMessage struct {
	Status Status

	// range runs
	X, Y int
	Mode partition.Mode

	// grid runs
	Rows, Cols int
	Source     Source

	Strategy aggregate.Strategy
}

// A SliceAssignment is sent from the coordinator to one worker in
// partition.WorkersOnly mode. Start and End are inclusive; End < Start
// denotes an empty slice.
type SliceAssignment struct {
	Start, End int
}

// Options configure a run. The zero Options are valid.
type Options struct {
	// Procs is the number of participants, including the coordinator. If
	// Procs is 0, runtime.GOMAXPROCS(0) is used.
	Procs int

	// Mode determines whether the coordinator computes a slice of a range
	// itself. Grid runs always use partition.InclusiveAll.
	Mode partition.Mode

	Strategy aggregate.Strategy

	// Evaluate computes the partial result of one slice of a range. If nil,
	// evaluate.CountPrimes is used.
	Evaluate pardist.RangeFunc

	// Logger receives state transitions at debug level and reports at info
	// level. If nil, nothing is logged.
	Logger *zap.Logger
}

func (opts Options) procs() (int, error) {
	if opts.Procs < 0 {
		return 0, fmt.Errorf("%w: %v participants", pardist.ErrInvalidDomain, opts.Procs)
	}
	return internal.ComputeNofWorkers(opts.Procs), nil
}

func (opts Options) evaluator() pardist.RangeFunc {
	if opts.Evaluate == nil {
		return evaluate.CountPrimes
	}
	return opts.Evaluate
}

func (opts Options) logger() *zap.Logger {
	if opts.Logger == nil {
		return zap.NewNop()
	}
	return opts.Logger
}

// A machine tracks the protocol state of one participant.
type machine struct {
	state  State
	logger *zap.Logger
}

func newMachine(logger *zap.Logger, role string, rank int) machine {
	return machine{logger: logger.With(zap.String("role", role), zap.Int("rank", rank))}
}

// State returns the current protocol state.
func (m *machine) State() State {
	return m.state
}

func (m *machine) enter(s State) {
	if s <= m.state {
		panic(fmt.Sprintf("invalid protocol transition: %v -> %v", m.state, s))
	}
	m.logger.Debug("transition", zap.Stringer("from", m.state), zap.Stringer("to", s))
	m.state = s
}
