// Package sequential provides sequential implementations of the functions
// provided by the coordinator package. This is useful for testing and
// debugging.
//
// The implementations follow the same partition plan as their distributed
// counterparts, but evaluate and combine all slices one after the other in
// the calling goroutine.
package sequential

import (
	"github.com/exascience/pardist"
	"github.com/exascience/pardist/evaluate"
	"github.com/exascience/pardist/grid"
	"github.com/exascience/pardist/partition"
)

// CountRange divides the inclusive range [x, y] across workers slices,
// evaluates them one by one with f, and returns the sum of the partial
// results. If f is nil, evaluate.CountPrimes is used.
func CountRange(x, y, workers int, f pardist.RangeFunc) (int, error) {
	if f == nil {
		f = evaluate.CountPrimes
	}
	size, err := partition.RangeSize(x, y)
	if err != nil {
		return 0, err
	}
	plan, err := partition.Plan(size, workers)
	if err != nil {
		return 0, err
	}
	var total int
	for _, s := range plan {
		total += f(s.Bounds(x))
	}
	return total, nil
}

// AddMatrices pads a and b for workers row blocks, adds the blocks one by
// one, and returns the sum without the padding rows.
func AddMatrices(a, b *grid.Matrix, workers int) (*grid.Matrix, error) {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		return nil, pardist.ErrLengthMismatch
	}
	if _, err := partition.Plan(a.Rows, workers); err != nil {
		return nil, err
	}
	blocksA := grid.Split(grid.Pad(a, workers), workers)
	blocksB := grid.Split(grid.Pad(b, workers), workers)
	var data []int
	for i := range blocksA {
		sum, err := evaluate.Add(blocksA[i], blocksB[i])
		if err != nil {
			return nil, err
		}
		data = append(data, sum...)
	}
	return grid.Unpad(data, a.Rows, a.Cols)
}
