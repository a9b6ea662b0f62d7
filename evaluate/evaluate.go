// Package evaluate provides local evaluators, which compute the partial
// result of one worker from its slice. Evaluators are pure and share no state.
package evaluate

import (
	"fmt"
	"math"

	"github.com/exascience/pardist"
)

// IsPrime reports whether n is prime, by trial division with odd divisors up
// to floor(sqrt(n)). Numbers <= 1 are not prime.
func IsPrime(n int) bool {
	if n <= 1 {
		return false
	}
	if n == 2 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	root := int(math.Sqrt(float64(n)))
	for i := 3; i <= root; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// CountIf returns a range function that counts the integers in an inclusive
// range that satisfy the predicate. The range may end at math.MaxInt.
func CountIf(predicate func(int) bool) pardist.RangeFunc {
	return func(start, end int) (count int) {
		if start > end {
			return
		}
		for i := start; ; i++ {
			if predicate(i) {
				count++
			}
			if i == end {
				break
			}
		}
		return
	}
}

// CountPrimes returns the number of primes in the inclusive range
// [start, end], or 0 if start > end.
func CountPrimes(start, end int) int {
	return countPrimes(start, end)
}

var countPrimes = CountIf(IsPrime)

// Add returns the element-wise sum of a and b.
//
// Add fails with pardist.ErrLengthMismatch if a and b differ in length.
func Add(a, b []int) ([]int, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %v and %v elements", pardist.ErrLengthMismatch, len(a), len(b))
	}
	c := make([]int, len(a))
	for i := range c {
		c[i] = a[i] + b[i]
	}
	return c, nil
}
