package evaluate

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/pardist"
)

func TestCountPrimes(t *testing.T) {
	for _, tc := range []struct{ start, end, want int }{
		{2, 2, 1},
		{1, 1, 0},
		{0, 10, 4},
		{-5, 1, 0},
		{17, 17, 1},
		{1, 20, 8},
		{1, 100, 25},
		{10, 3, 0},
		{-2147483648, -2147483600, 0},
	} {
		t.Run(fmt.Sprintf("%v..%v", tc.start, tc.end), func(t *testing.T) {
			assert.Equal(t, tc.want, CountPrimes(tc.start, tc.end))
		})
	}
}

func TestIsPrimeAgainstSieve(t *testing.T) {
	const n = 10000
	composite := make([]bool, n+1)
	for i := 2; i*i <= n; i++ {
		if !composite[i] {
			for j := i * i; j <= n; j += i {
				composite[j] = true
			}
		}
	}
	for i := -10; i <= n; i++ {
		want := i >= 2 && !composite[i]
		if got := IsPrime(i); got != want {
			t.Fatalf("IsPrime(%v) = %v, want %v", i, got, want)
		}
	}
}

func TestIsPrimeLarge(t *testing.T) {
	assert.True(t, IsPrime(2147483647))
	assert.False(t, IsPrime(2147483647-2))
	assert.True(t, IsPrime(65521))
	assert.False(t, IsPrime(65521*65521))
}

func TestCountIf(t *testing.T) {
	even := CountIf(func(i int) bool { return i%2 == 0 })
	assert.Equal(t, 6, even(0, 10))
	assert.Equal(t, 0, even(5, 4))
}

func TestCountIfEndsAtMaxInt(t *testing.T) {
	all := CountIf(func(int) bool { return true })
	assert.Equal(t, 2, all(math.MaxInt-1, math.MaxInt))
	assert.Equal(t, 1, all(math.MaxInt, math.MaxInt))
	assert.Equal(t, 3, all(math.MinInt, math.MinInt+2))
}

func TestAdd(t *testing.T) {
	c, err := Add([]int{1, 2, 3}, []int{10, 20, 30})
	require.NoError(t, err)
	assert.Equal(t, []int{11, 22, 33}, c)

	c, err = Add(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, c)

	_, err = Add([]int{1, 2}, []int{1})
	assert.ErrorIs(t, err, pardist.ErrLengthMismatch)
}
