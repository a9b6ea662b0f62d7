// Package grid provides an owned row-major matrix buffer, and the padding
// logic that lets a grid be scattered across workers in equal row blocks.
//
// A grid of N rows is padded to N' rows, the smallest multiple of the worker
// count that is >= N, by appending rows of zeros. Zero is the neutral element
// of addition, so padding rows do not perturb results, and they are stripped
// from the aggregated result before it is handed to the caller.
package grid

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/exascience/pardist"
	"github.com/exascience/pardist/partition"
)

// MaxRandom is the exclusive upper bound of the values generated by Random.
const MaxRandom = 100

// A Matrix is a grid of Rows rows and Cols columns, stored in row-major
// order in Data.
type Matrix struct {
	Rows, Cols int
	Data       []int
}

// New returns a zero matrix with the given dimensions.
func New(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]int, rows*cols)}
}

// FromSlice returns a matrix that takes ownership of data.
//
// FromSlice fails with pardist.ErrInvalidDomain if rows or cols are < 1, and
// with pardist.ErrLengthMismatch if len(data) != rows*cols.
func FromSlice(rows, cols int, data []int) (*Matrix, error) {
	if err := Validate(rows, cols); err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %vx%v matrix needs %v elements, got %v",
			pardist.ErrLengthMismatch, rows, cols, rows*cols, len(data))
	}
	return &Matrix{Rows: rows, Cols: cols, Data: data}, nil
}

// Random returns a matrix with values drawn uniformly from [0, MaxRandom).
func Random(rows, cols int, rng *rand.Rand) *Matrix {
	m := New(rows, cols)
	for i := range m.Data {
		m.Data[i] = rng.Intn(MaxRandom)
	}
	return m
}

// Validate fails with pardist.ErrInvalidDomain unless rows and cols are both
// at least 1.
func Validate(rows, cols int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("%w: grid %vx%v", pardist.ErrInvalidDomain, rows, cols)
	}
	return nil
}

// At returns the element at row i and column j.
func (m *Matrix) At(i, j int) int {
	return m.Data[i*m.Cols+j]
}

// Row returns row i as a subslice of m.Data.
func (m *Matrix) Row(i int) []int {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// Dense returns a gonum copy of m.
func (m *Matrix) Dense() *mat.Dense {
	data := make([]float64, len(m.Data))
	for i, v := range m.Data {
		data[i] = float64(v)
	}
	return mat.NewDense(m.Rows, m.Cols, data)
}

func (m *Matrix) String() string {
	return fmt.Sprintf("%v", mat.Formatted(m.Dense(), mat.Squeeze()))
}

// PaddedRows returns the smallest multiple of workers that is >= rows.
func PaddedRows(rows, workers int) int {
	if rem := rows % workers; rem != 0 {
		return rows + workers - rem
	}
	return rows
}

// Pad returns a copy of m extended with zero rows to PaddedRows(m.Rows,
// workers) rows. The copy never shares storage with m.
func Pad(m *Matrix, workers int) *Matrix {
	padded := New(PaddedRows(m.Rows, workers), m.Cols)
	copy(padded.Data, m.Data)
	return padded
}

// Unpad returns the first rows rows of a row-major result with cols columns,
// discarding any padding rows that follow them.
//
// Unpad fails with pardist.ErrLengthMismatch if data has fewer than rows*cols
// elements, or if its length is not a multiple of cols.
func Unpad(data []int, rows, cols int) (*Matrix, error) {
	if err := Validate(rows, cols); err != nil {
		return nil, err
	}
	if len(data) < rows*cols || len(data)%cols != 0 {
		return nil, fmt.Errorf("%w: cannot unpad %v elements to %vx%v",
			pardist.ErrLengthMismatch, len(data), rows, cols)
	}
	trimmed := make([]int, rows*cols)
	copy(trimmed, data)
	return &Matrix{Rows: rows, Cols: cols, Data: trimmed}, nil
}

// RowSlice returns the row block of worker index in a padded grid of
// paddedRows rows. All blocks have the same number of rows.
//
// RowSlice panics if paddedRows is not a multiple of workers.
func RowSlice(paddedRows, workers, index int) partition.Slice {
	if paddedRows%workers != 0 {
		panic(fmt.Sprintf("grid rows %v are not padded to a multiple of %v", paddedRows, workers))
	}
	n := paddedRows / workers
	return partition.Slice{Start: index * n, Len: n}
}

// Split divides a padded matrix into workers equal row blocks, in worker
// order. Every block is a copy, so that its receiver owns it.
//
// Split panics if m.Rows is not a multiple of workers.
func Split(m *Matrix, workers int) [][]int {
	blocks := make([][]int, workers)
	for i := range blocks {
		s := RowSlice(m.Rows, workers, i)
		blocks[i] = append([]int(nil), m.Data[s.Start*m.Cols:s.End()*m.Cols]...)
	}
	return blocks
}
