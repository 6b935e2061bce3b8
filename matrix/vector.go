// SPDX-License-Identifier: MIT

// Package matrix: Vector is the one-dimensional counterpart of Dense, with
// the same indexing and copy discipline. Row and Col extract dense copies of
// a matrix row or column; solvers consume and produce *Vector alongside the
// raw-slice and full-matrix right-hand-side forms.
package matrix

import (
	"fmt"
	"strings"
)

// vectorErrorf wraps an underlying error with Vector method context.
func vectorErrorf(method string, i int, err error) error {
	return fmt.Errorf("Vector.%s(%d): %w", method, i, err)
}

// Vector is a dense column vector of float64 values.
type Vector struct {
	data []float64 // flat backing storage, length == Dim()
}

// NewVector creates a zero vector of dimension n.
// Errors: ErrInvalidDimensions when n <= 0.
// Complexity: O(n).
func NewVector(n int) (*Vector, error) {
	if n <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Vector{data: make([]float64, n)}, nil
}

// NewVectorFromSlice builds a Vector by copying xs.
// Later caller mutation of xs never leaks into the returned vector. Under
// the default numeric policy non-finite entries are rejected.
// Errors: ErrInvalidDimensions when xs is empty; ErrNaNInf under the strict policy.
// Complexity: O(n).
func NewVectorFromSlice(xs []float64, opts ...Option) (*Vector, error) {
	if len(xs) == 0 {
		return nil, ErrInvalidDimensions
	}
	validate := gatherOptions(opts...).validateNaNInf
	data := make([]float64, len(xs))
	for i, x := range xs {
		if validate && isNonFinite(x) {
			return nil, ErrNaNInf
		}
		data[i] = x
	}

	return &Vector{data: data}, nil
}

// NewVectorNoCopy adopts xs WITHOUT copying — the explicit aliasing contract
// mirroring NewDenseNoCopy. The caller promises not to mutate xs afterwards.
// Errors: ErrInvalidDimensions when xs is empty.
// Complexity: O(1).
func NewVectorNoCopy(xs []float64) (*Vector, error) {
	if len(xs) == 0 {
		return nil, ErrInvalidDimensions
	}

	return &Vector{data: xs}, nil
}

// Dim returns the number of entries.
// Complexity: O(1).
func (v *Vector) Dim() int {
	return len(v.data)
}

// At retrieves entry i.
// Errors: ErrIndexOutOfBounds when i is outside [0, Dim).
// Complexity: O(1).
func (v *Vector) At(i int) (float64, error) {
	if i < 0 || i >= len(v.data) {
		return 0, vectorErrorf("At", i, ErrIndexOutOfBounds)
	}

	return v.data[i], nil
}

// Set assigns value x at entry i.
// Errors: ErrIndexOutOfBounds when i is outside [0, Dim).
// Complexity: O(1).
func (v *Vector) Set(i int, x float64) error {
	if i < 0 || i >= len(v.data) {
		return vectorErrorf("Set", i, ErrIndexOutOfBounds)
	}
	v.data[i] = x

	return nil
}

// Clone returns an independent deep copy of the vector.
// Complexity: O(n).
func (v *Vector) Clone() *Vector {
	data := make([]float64, len(v.data))
	copy(data, v.data)

	return &Vector{data: data}
}

// Raw exposes the backing slice WITHOUT copying; treat it as read-only
// unless you own the vector exclusively.
// Complexity: O(1).
func (v *Vector) Raw() []float64 {
	return v.data
}

// Data returns a defensive copy of the coordinates. Prefer it over Raw when
// the vector outlives the caller's use of the slice.
// Complexity: O(n).
func (v *Vector) Data() []float64 {
	data := make([]float64, len(v.data))
	copy(data, v.data)

	return data
}

// String implements fmt.Stringer for easy debugging.
// Complexity: O(n).
func (v *Vector) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, x := range v.data {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%g", x)
	}
	sb.WriteString("]")

	return sb.String()
}

// Row extracts a copy of row i of m as a Vector.
// Stage 1 (Validate): m non-nil, 0 ≤ i < Rows.
// Stage 2 (Execute): fast path copies the Dense row slice; fallback uses At.
// Errors: ErrNilMatrix, ErrIndexOutOfBounds.
// Complexity: O(c).
func Row(m Matrix, i int) (*Vector, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, err
	}
	if i < 0 || i >= m.Rows() {
		return nil, vectorErrorf("Row", i, ErrIndexOutOfBounds)
	}

	cols := m.Cols()
	data := make([]float64, cols)
	// Fast path: contiguous Dense row
	if d, ok := m.(*Dense); ok {
		copy(data, d.data[i*d.c:(i+1)*d.c])

		return &Vector{data: data}, nil
	}
	// Fallback: interface reads (bounds already validated)
	var err error
	for j := 0; j < cols; j++ {
		if data[j], err = m.At(i, j); err != nil {
			return nil, vectorErrorf("Row", i, err)
		}
	}

	return &Vector{data: data}, nil
}

// Col extracts a copy of column j of m as a Vector.
// Stage 1 (Validate): m non-nil, 0 ≤ j < Cols.
// Stage 2 (Execute): fast path strides the Dense backing slice; fallback At.
// Errors: ErrNilMatrix, ErrIndexOutOfBounds.
// Complexity: O(r).
func Col(m Matrix, j int) (*Vector, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, err
	}
	if j < 0 || j >= m.Cols() {
		return nil, vectorErrorf("Col", j, ErrIndexOutOfBounds)
	}

	rows := m.Rows()
	data := make([]float64, rows)
	// Fast path: stride walk over Dense storage
	if d, ok := m.(*Dense); ok {
		for i := 0; i < rows; i++ {
			data[i] = d.data[i*d.c+j]
		}

		return &Vector{data: data}, nil
	}
	// Fallback: interface reads
	var err error
	for i := 0; i < rows; i++ {
		if data[i], err = m.At(i, j); err != nil {
			return nil, vectorErrorf("Col", j, err)
		}
	}

	return &Vector{data: data}, nil
}
