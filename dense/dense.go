// Package dense holds the row-major containers the I/O layer hands to the
// solver.
package dense

import "github.com/tgolubev/cgio/errors"

// Vector is a dense vector of float64.
type Vector []float64

// NewVector returns a zeroed vector of length n.
func NewVector(n int) Vector {
	if n < 0 {
		n = 0
	}
	return make(Vector, n)
}

// Matrix is a dense row-major matrix. Rows of a matrix built by NewMatrix
// or FromRowMajor share one backing array.
type Matrix [][]float64

// NewMatrix returns a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) (Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, errors.Newf(errors.ErrInvalidArgument, "matrix dimensions must not be negative, got %dx%d", rows, cols)
	}
	return rowsOf(make([]float64, rows*cols), rows, cols), nil
}

// FromRowMajor wraps data, which must hold exactly rows*cols values, as a
// matrix. data is not copied.
func FromRowMajor(data []float64, rows, cols int) (Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, errors.Newf(errors.ErrInvalidArgument, "matrix dimensions must not be negative, got %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, errors.Newf(errors.ErrInvalidArgument, "%d values for a %dx%d matrix", len(data), rows, cols)
	}
	return rowsOf(data, rows, cols), nil
}

func rowsOf(data []float64, rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = data[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m
}

// Rows returns the number of rows.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the length of the first row, or 0 for an empty matrix.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// RowMajor returns the elements in row-major order. The result is a new
// slice.
func (m Matrix) RowMajor() []float64 {
	out := make([]float64, 0, m.Rows()*m.Cols())
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

// IsRectangular reports whether every row has the same length.
func (m Matrix) IsRectangular() bool {
	for _, row := range m {
		if len(row) != m.Cols() {
			return false
		}
	}
	return true
}
