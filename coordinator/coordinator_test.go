package coordinator

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/exascience/pardist"
	"github.com/exascience/pardist/aggregate"
	"github.com/exascience/pardist/comm"
	"github.com/exascience/pardist/evaluate"
	"github.com/exascience/pardist/partition"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type setup struct {
	mode     partition.Mode
	strategy aggregate.Strategy
}

var setups = []setup{
	{partition.InclusiveAll, aggregate.Collective},
	{partition.InclusiveAll, aggregate.PointToPoint},
	{partition.WorkersOnly, aggregate.Collective},
	{partition.WorkersOnly, aggregate.PointToPoint},
}

func (s setup) String() string {
	return fmt.Sprintf("%v/%v", s.mode, s.strategy)
}

func TestCountRangeScenario(t *testing.T) {
	for _, s := range setups {
		for procs := 2; procs <= 6; procs++ {
			t.Run(fmt.Sprintf("%v/%v", s, procs), func(t *testing.T) {
				result, err := CountRange(context.Background(), 1, 20, Options{
					Procs:    procs,
					Mode:     s.mode,
					Strategy: s.strategy,
				})
				require.NoError(t, err)
				assert.Equal(t, 8, result.Total)
				assert.Equal(t, 1, result.X)
				assert.Equal(t, 20, result.Y)
				assert.GreaterOrEqual(t, result.Elapsed, time.Duration(0))
			})
		}
	}
}

func TestCountRangeMatchesSingleWorker(t *testing.T) {
	want := evaluate.CountPrimes(-50, 5000)
	for _, s := range setups {
		result, err := CountRange(context.Background(), -50, 5000, Options{Procs: 7, Mode: s.mode, Strategy: s.strategy})
		require.NoError(t, err, s.String())
		assert.Equal(t, want, result.Total, s.String())
	}
}

func TestCountRangeMoreWorkersThanNumbers(t *testing.T) {
	result, err := CountRange(context.Background(), 2, 3, Options{Procs: 8})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)

	result, err = CountRange(context.Background(), 5, 5, Options{Procs: 4, Mode: partition.WorkersOnly})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
}

func TestCountRangeCustomEvaluator(t *testing.T) {
	odd := evaluate.CountIf(func(i int) bool { return i%2 != 0 })
	result, err := CountRange(context.Background(), 0, 99, Options{Procs: 3, Evaluate: odd})
	require.NoError(t, err)
	assert.Equal(t, 50, result.Total)
}

func TestCountRangeRejectsInvalidDomain(t *testing.T) {
	_, err := CountRange(context.Background(), 10, 1, Options{Procs: 4})
	assert.ErrorIs(t, err, pardist.ErrInvalidDomain)

	_, err = CountRange(context.Background(), 1, 10, Options{Procs: 1, Mode: partition.WorkersOnly})
	assert.ErrorIs(t, err, pardist.ErrInvalidDomain)

	_, err = CountRange(context.Background(), 1, 10, Options{Procs: -1})
	assert.ErrorIs(t, err, pardist.ErrInvalidDomain)
}

func TestAddMatricesScenario(t *testing.T) {
	for _, strategy := range []aggregate.Strategy{aggregate.Collective, aggregate.PointToPoint} {
		for procs := 1; procs <= 5; procs++ {
			t.Run(fmt.Sprintf("%v/%v", strategy, procs), func(t *testing.T) {
				result, err := AddMatrices(context.Background(), GridInput{
					Rows:   2,
					Cols:   2,
					Source: Supplied,
					A:      []int{1, 2, 3, 4},
					B:      []int{5, 6, 7, 8},
				}, Options{Procs: procs, Strategy: strategy})
				require.NoError(t, err)
				assert.Equal(t, 2, result.C.Rows)
				assert.Equal(t, 2, result.C.Cols)
				assert.Equal(t, []int{6, 8, 10, 12}, result.C.Data)
			})
		}
	}
}

func TestAddMatricesGenerated(t *testing.T) {
	result, err := AddMatrices(context.Background(), GridInput{
		Rows:   5,
		Cols:   3,
		Source: Generated,
		Rand:   rand.New(rand.NewSource(42)),
	}, Options{Procs: 4})
	require.NoError(t, err)
	require.Len(t, result.C.Data, 15)
	for i := range result.C.Data {
		assert.Equal(t, result.A.Data[i]+result.B.Data[i], result.C.Data[i])
	}
}

func TestAddMatricesRejectsInput(t *testing.T) {
	_, err := AddMatrices(context.Background(), GridInput{Rows: 0, Cols: 2, Source: Generated}, Options{Procs: 3})
	assert.ErrorIs(t, err, pardist.ErrInvalidDomain)

	_, err = AddMatrices(context.Background(), GridInput{Rows: 2, Cols: 2, Source: 3}, Options{Procs: 3})
	assert.ErrorIs(t, err, pardist.ErrInvalidDomain)

	_, err = AddMatrices(context.Background(), GridInput{
		Rows:   2,
		Cols:   2,
		Source: Supplied,
		A:      []int{1, 2, 3, 4},
		B:      []int{1, 2, 3},
	}, Options{Procs: 3})
	assert.ErrorIs(t, err, pardist.ErrLengthMismatch)
}

func transitions(logs *observer.ObservedLogs, role string, rank int) []string {
	var states []string
	for _, entry := range logs.FilterMessage("transition").All() {
		fields := entry.ContextMap()
		if fields["role"] == role && fields["rank"] == int64(rank) {
			states = append(states, fields["to"].(string))
		}
	}
	return states
}

func TestProtocolTransitions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := CountRange(context.Background(), 1, 100, Options{
		Procs:  3,
		Mode:   partition.WorkersOnly,
		Logger: zap.New(core),
	})
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"INPUT_ACQUIRED", "PARAMS_BROADCAST", "LOCAL_COMPUTE", "RESULTS_AGGREGATED", "REPORTED", "DONE"},
		transitions(logs, "coordinator", 0))
	for rank := 1; rank < 3; rank++ {
		assert.Equal(t,
			[]string{"PARAMS_BROADCAST", "LOCAL_COMPUTE", "RESULTS_AGGREGATED", "DONE"},
			transitions(logs, "worker", rank))
	}
	assert.Equal(t, 1, logs.FilterMessage("range result").Len())
}

func TestRejectionStopsWorkers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := AddMatrices(context.Background(), GridInput{Rows: 3, Cols: -1, Source: Generated}, Options{
		Procs:  3,
		Logger: zap.New(core),
	})
	assert.ErrorIs(t, err, pardist.ErrInvalidDomain)
	assert.Equal(t, []string{"DONE"}, transitions(logs, "coordinator", 0))
	for rank := 1; rank < 3; rank++ {
		assert.Equal(t, []string{"DONE"}, transitions(logs, "worker", rank))
	}
	assert.Zero(t, logs.FilterMessage("grid result").Len())
}

func TestRangeRejectionStopsWorkers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := CountRange(context.Background(), 10, 1, Options{
		Procs:  4,
		Mode:   partition.WorkersOnly,
		Logger: zap.New(core),
	})
	assert.ErrorIs(t, err, pardist.ErrInvalidDomain)
	assert.Equal(t, []string{"DONE"}, transitions(logs, "coordinator", 0))
	for rank := 1; rank < 4; rank++ {
		assert.Equal(t, []string{"DONE"}, transitions(logs, "worker", rank))
	}
	assert.Zero(t, logs.FilterMessage("partial result").Len())
	assert.Zero(t, logs.FilterMessage("range result").Len())
}

func TestRolesEndInDone(t *testing.T) {
	const procs = 3
	workers := make([]*RangeWorker, procs)
	var rc *RangeCoordinator
	var result RangeResult
	err := comm.Run(context.Background(), procs, func(ctx context.Context, c *comm.Comm) (err error) {
		if c.Rank() == Root {
			rc = NewRangeCoordinator(c, 1, 20, Options{})
			assert.Equal(t, Init, rc.State())
			result, err = rc.Run(ctx)
			return
		}
		workers[c.Rank()] = NewRangeWorker(c, Options{})
		return workers[c.Rank()].Run(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, 8, result.Total)
	assert.Equal(t, Done, rc.State())
	for _, w := range workers[1:] {
		assert.Equal(t, Done, w.State())
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "RESULTS_AGGREGATED", ResultsAggregated.String())
	assert.Equal(t, "State(9)", State(9).String())
}

func TestSummarize(t *testing.T) {
	mean, std := Summarize(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)

	mean, std = Summarize([]time.Duration{2 * time.Second})
	assert.Equal(t, 2.0, mean)
	assert.Zero(t, std)

	mean, std = Summarize([]time.Duration{time.Second, 3 * time.Second})
	assert.InDelta(t, 2.0, mean, 1e-9)
	assert.InDelta(t, 1.4142135623730951, std, 1e-9)
}

func ExampleCountRange() {
	result, err := CountRange(context.Background(), 1, 20, Options{Procs: 4})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Total primes between %d and %d = %d\n", result.X, result.Y, result.Total)

	// Output:
	// Total primes between 1 and 20 = 8
}

func ExampleAddMatrices() {
	result, err := AddMatrices(context.Background(), GridInput{
		Rows:   3,
		Cols:   2,
		Source: Supplied,
		A:      []int{1, 2, 3, 4, 5, 6},
		B:      []int{10, 20, 30, 40, 50, 60},
	}, Options{Procs: 2, Strategy: aggregate.PointToPoint})
	if err != nil {
		fmt.Println(err)
		return
	}
	for i := 0; i < result.C.Rows; i++ {
		fmt.Println(result.C.Row(i))
	}

	// Output:
	// [11 22]
	// [33 44]
	// [55 66]
}
