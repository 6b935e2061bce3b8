// SPDX-License-Identifier: MIT

// Package matrix: Dense is a concrete, row-major implementation of the
// Matrix interface, storing elements in a flat slice for performance and
// cache friendliness. Constructors cover the zero matrix, copying ingestion
// from a 2-D source, an explicit no-copy adoption of a caller slice, and
// the identity matrix.
package matrix

import (
	"fmt"
	"math"
	"strings"
)

// denseErrorf wraps an underlying error with Dense method context.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a row-major matrix of float64 values.
// r is rows, c is columns, and data holds r*c elements in row-major order.
type Dense struct {
	r, c int       // number of rows and columns
	data []float64 // flat backing storage, length == r*c
}

// NewDense creates an r×c Dense matrix initialized to zeros.
// Stage 1 (Validate): ensure rows and cols > 0.
// Stage 2 (Prepare): allocate flat backing slice.
// Stage 3 (Finalize): return new Dense or ErrInvalidDimensions.
// Complexity: O(r*c) time and memory.
func NewDense(rows, cols int) (*Dense, error) {
	// Validate dimensions
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	// Allocate flat slice
	data := make([]float64, rows*cols)

	// Return initialized Dense
	return &Dense{r: rows, c: cols, data: data}, nil
}

// NewDenseFromRows builds a Dense matrix by copying a 2-D source array.
// Every row must carry exactly len(rows[0]) entries (non-ragged) and the
// source must be non-empty. The source is defensively copied: later caller
// mutation of `rows` never leaks into the returned matrix. Under the default
// numeric policy non-finite entries are rejected (WithNoValidateNaNInf to
// relax).
//
// Errors:
//   - ErrInvalidDimensions — empty source or empty first row.
//   - ErrRagged            — any row length differs from the first.
//   - ErrNaNInf            — NaN/±Inf entry under the strict policy.
//
// Complexity: O(r*c) time and memory.
func NewDenseFromRows(rows [][]float64, opts ...Option) (*Dense, error) {
	// Validate outer dimension
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	r, c := len(rows), len(rows[0])

	// Validate the source is rectangular before any allocation
	for i := 1; i < r; i++ {
		if len(rows[i]) != c {
			return nil, ErrRagged
		}
	}

	// Copy row by row into flat storage
	data := make([]float64, r*c)
	for i := 0; i < r; i++ {
		copy(data[i*c:(i+1)*c], rows[i])
	}
	m := &Dense{r: r, c: c, data: data}

	// Enforce the numeric ingestion policy after the single-pass copy.
	if gatherOptions(opts...).validateNaNInf && !m.IsFinite() {
		return nil, ErrNaNInf
	}

	return m, nil
}

// NewDenseNoCopy adopts a caller-supplied flat row-major slice WITHOUT
// copying it. This is an explicit aliasing contract for performance callers:
// the caller promises not to mutate `data` for the lifetime of the matrix.
// Prefer NewDenseFromRows unless the extra copy is a measured bottleneck.
//
// Errors:
//   - ErrInvalidDimensions — rows or cols non-positive.
//   - ErrDimensionMismatch — len(data) != rows*cols.
//
// Complexity: O(1) time, no allocation.
func NewDenseNoCopy(rows, cols int, data []float64) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(data) != rows*cols {
		return nil, ErrDimensionMismatch
	}

	return &Dense{r: rows, c: cols, data: data}, nil
}

// Identity returns the n×n identity matrix.
// Complexity: O(n²) time and memory.
func Identity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1.0
	}

	return m, nil
}

// CloneDense copies any Matrix into a freshly allocated Dense. Decomposition
// constructors use it to obtain the private working copy they own during
// factorization, so the caller-supplied matrix is never mutated.
// Stage 1 (Validate): m non-nil.
// Stage 2 (Execute): single flat copy for *Dense; At loop otherwise.
// Errors: ErrNilMatrix.
// Complexity: O(r*c) time and memory.
func CloneDense(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, err
	}

	// Fast path: one copy of the backing slice.
	if d, ok := m.(*Dense); ok {
		data := make([]float64, len(d.data))
		copy(data, d.data)

		return &Dense{r: d.r, c: d.c, data: data}, nil
	}

	// Fallback: interface reads in fixed i→j order.
	rows, cols := m.Rows(), m.Cols()
	out, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	var v float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, err
			}
			out.data[i*cols+j] = v
		}
	}

	return out, nil
}

// Rows returns the number of rows in the matrix.
// Complexity: O(1).
func (m *Dense) Rows() int {
	return m.r // return stored row count
}

// Cols returns the number of columns in the matrix.
// Complexity: O(1).
func (m *Dense) Cols() int {
	return m.c // return stored column count
}

// indexOf computes the flat index for (row, col) or returns ErrIndexOutOfBounds.
// Stage 1 (Validate): check 0 ≤ row < r and 0 ≤ col < c.
// Stage 2 (Execute): compute and return linear index.
// Complexity: O(1).
func (m *Dense) indexOf(row, col int) (int, error) {
	// Validate row index
	if row < 0 || row >= m.r {
		return 0, denseErrorf("At", row, col, ErrIndexOutOfBounds)
	}
	// Validate column index
	if col < 0 || col >= m.c {
		return 0, denseErrorf("At", row, col, ErrIndexOutOfBounds)
	}

	// Compute flat offset
	return row*m.c + col, nil
}

// At retrieves the element at (row, col).
// Stage 1 (Validate): bounds check via indexOf.
// Stage 2 (Execute): read from data slice.
// Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	// Compute flat index or error
	idx, err := m.indexOf(row, col)
	if err != nil {
		return 0, err
	}

	// Return stored value
	return m.data[idx], nil
}

// Set assigns value v at (row, col).
// Stage 1 (Validate): bounds check via indexOf.
// Stage 2 (Execute): write into data slice.
// Complexity: O(1).
func (m *Dense) Set(row, col int, v float64) error {
	// Compute flat index or error
	idx, err := m.indexOf(row, col)
	if err != nil {
		return err
	}
	// Assign value
	m.data[idx] = v

	return nil
}

// Clone returns a deep copy of the Dense matrix.
// Complexity: O(r*c) time and memory for copy.
func (m *Dense) Clone() Matrix {
	// Allocate new slice for data copy
	copyData := make([]float64, len(m.data))
	// Copy all elements into new slice
	copy(copyData, m.data)

	return &Dense{r: m.r, c: m.c, data: copyData}
}

// Raw exposes the flat row-major backing slice WITHOUT copying.
// Element (i,j) lives at Raw()[i*Cols()+j]. Mutating the returned slice
// mutates the matrix; treat it as read-only unless you own the matrix
// exclusively. Decomposition fast paths use Raw to copy working arrays in a
// single pass instead of r*c interface calls.
// Complexity: O(1).
func (m *Dense) Raw() []float64 {
	return m.data
}

// IsFinite reports whether every entry is finite (no NaN, no ±Inf).
// Complexity: O(r*c).
func (m *Dense) IsFinite() bool {
	for _, v := range m.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// String implements fmt.Stringer for easy debugging.
// Complexity: O(r*c) for string construction.
func (m *Dense) String() string {
	var sb strings.Builder
	var i, j int
	for i = 0; i < m.r; i++ { // iterate over rows
		sb.WriteString("[")        // open row
		for j = 0; j < m.c; j++ {  // iterate over columns
			// compute flat index directly for performance
			fmt.Fprintf(&sb, "%g", m.data[i*m.c+j])
			if j < m.c-1 {
				sb.WriteString(", ") // separate values with comma
			}
		}
		sb.WriteString("]\n") // close row
	}

	return sb.String()
}
