package partition

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/pardist"
)

func TestPlanCoversDomain(t *testing.T) {
	for size := 0; size <= 40; size++ {
		for workers := 1; workers <= 12; workers++ {
			plan, err := Plan(size, workers)
			require.NoError(t, err)
			require.Len(t, plan, workers)

			next, total := 0, 0
			minLen, maxLen := plan[0].Len, plan[0].Len
			for i, s := range plan {
				if s.Start != next {
					t.Fatalf("size %v, workers %v: slice %v starts at %v, want %v", size, workers, i, s.Start, next)
				}
				next = s.End()
				total += s.Len
				minLen = min(minLen, s.Len)
				maxLen = max(maxLen, s.Len)
			}
			assert.Equal(t, size, total)
			assert.LessOrEqual(t, maxLen-minLen, 1, "size %v, workers %v", size, workers)
		}
	}
}

func TestPartitionMatchesPlan(t *testing.T) {
	plan, err := Plan(23, 5)
	require.NoError(t, err)
	for i := range plan {
		s, err := Partition(23, 5, i)
		require.NoError(t, err)
		assert.Equal(t, plan[i], s)

		again, err := Partition(23, 5, i)
		require.NoError(t, err)
		assert.Equal(t, s, again)
	}
}

func TestPartitionRemainderGoesToLowestIndices(t *testing.T) {
	plan, err := Plan(10, 4)
	require.NoError(t, err)
	want := []Slice{{0, 3}, {3, 3}, {6, 2}, {8, 2}}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("Plan(10, 4) mismatch (-want +got):\n%s", diff)
	}
}

func TestPartitionEdgeCases(t *testing.T) {
	plan, err := Plan(0, 3)
	require.NoError(t, err)
	for _, s := range plan {
		assert.True(t, s.Empty())
	}

	s, err := Partition(17, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, Slice{0, 17}, s)

	plan, err = Plan(3, 5)
	require.NoError(t, err)
	want := []Slice{{0, 1}, {1, 1}, {2, 1}, {3, 0}, {3, 0}}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("Plan(3, 5) mismatch (-want +got):\n%s", diff)
	}
}

func TestPartitionInvalidDomain(t *testing.T) {
	for _, tc := range []struct{ size, workers, index int }{
		{-1, 2, 0},
		{5, 0, 0},
		{5, -3, 0},
		{5, 2, 2},
		{5, 2, -1},
	} {
		t.Run(fmt.Sprintf("%v/%v/%v", tc.size, tc.workers, tc.index), func(t *testing.T) {
			_, err := Partition(tc.size, tc.workers, tc.index)
			assert.True(t, errors.Is(err, pardist.ErrInvalidDomain), "got %v", err)
		})
	}
	_, err := Plan(4, 0)
	assert.ErrorIs(t, err, pardist.ErrInvalidDomain)
}

func TestAssignModes(t *testing.T) {
	const size = 4
	for rank := 0; rank < size; rank++ {
		s, ok, err := Assign(19, size, rank, InclusiveAll)
		require.NoError(t, err)
		assert.True(t, ok)
		want, _ := Partition(19, size, rank)
		assert.Equal(t, want, s)
	}

	_, ok, err := Assign(19, size, 0, WorkersOnly)
	require.NoError(t, err)
	assert.False(t, ok, "coordinator must not receive a slice")

	plan, err := Plan(19, size-1)
	require.NoError(t, err)
	for rank := 1; rank < size; rank++ {
		s, ok, err := Assign(19, size, rank, WorkersOnly)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, plan[rank-1], s)
	}

	_, _, err = Assign(19, 1, 0, WorkersOnly)
	assert.ErrorIs(t, err, pardist.ErrInvalidDomain)
}

func TestBoundsAndRangeSize(t *testing.T) {
	n, err := RangeSize(1, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = RangeSize(-5, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = RangeSize(3, 2)
	assert.ErrorIs(t, err, pardist.ErrInvalidDomain)

	first, last := Slice{Start: 5, Len: 5}.Bounds(1)
	assert.Equal(t, 6, first)
	assert.Equal(t, 10, last)

	first, last = Slice{Start: 3}.Bounds(10)
	assert.Equal(t, 13, first)
	assert.Equal(t, 12, last)
}

func TestRangeSize32BitLimits(t *testing.T) {
	n, err := RangeSize(math.MinInt32, math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, 1<<32, n)

	for _, r := range [][2]int{
		{math.MinInt, math.MaxInt},
		{0, math.MaxInt32 + 1},
		{math.MinInt32 - 1, 0},
	} {
		_, err := RangeSize(r[0], r[1])
		assert.ErrorIs(t, err, pardist.ErrInvalidDomain, "range %v", r)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{InclusiveAll, WorkersOnly} {
		parsed, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	_, err := ParseMode("round-robin")
	assert.Error(t, err)
}
