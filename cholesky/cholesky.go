// SPDX-License-Identifier: MIT

package cholesky

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/katalvlaran/linalg/matrix"
)

// Sentinel errors returned by New.
var (
	// ErrNotSymmetric signals a mirrored pair of entries differing by more
	// than the relative symmetry threshold.
	ErrNotSymmetric = errors.New("cholesky: matrix is not symmetric")
	// ErrNotPositiveDefinite signals a recurrence pivot at or below the
	// absolute positivity threshold.
	ErrNotPositiveDefinite = errors.New("cholesky: matrix is not positive definite")
)

// Operation tags for unified error wrapping.
const (
	opNew   = "cholesky.New"
	opSolve = "cholesky.Solve"
)

// Decomposition is the cached Cholesky factorization A = L·Lᵗ of a
// symmetric positive definite matrix. Immutable after construction;
// accessors are safe for concurrent readers.
type Decomposition struct {
	n  int
	lt []float64 // Lᵗ packed row-major, strictly upper entries plus diagonal

	onceL    sync.Once
	cachedL  matrix.Matrix
	onceLT   sync.Once
	cachedLT matrix.Matrix
}

// New computes the Cholesky decomposition of a.
//
// Implementation:
//   - Stage 1: validate non-nil and square; copy the upper triangle into a
//     private buffer while comparing every mirrored pair — the symmetry
//     check fires before any arithmetic touches the data.
//   - Stage 2: in-place recurrence over the upper triangle, each step
//     taking the square root of the current pivot and eliminating it from
//     the trailing block.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrNonSquare
//   - ErrNotSymmetric — |a[i][j] − a[j][i]| exceeds the relative threshold
//     scaled by max(|a[i][j]|, |a[j][i]|).
//   - ErrNotPositiveDefinite — a pivot ≤ the absolute positivity threshold.
//
// Complexity:
//   - Time O(n³) (about half the flops of LU), Space O(n²).
func New(a matrix.Matrix, opts ...Option) (*Decomposition, error) {
	if err := matrix.ValidateSquareNonNil(a); err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}
	o := gatherOptions(opts...)

	work, err := matrix.CloneDense(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}
	n := a.Rows()
	lt := work.Raw()

	// Symmetry pass: compare mirrored pairs, then zero the lower triangle
	// so the recurrence only ever reads what it wrote.
	var i, j int
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			upper, lower := lt[i*n+j], lt[j*n+i]
			maxDelta := o.relativeSymmetryThreshold * math.Max(math.Abs(upper), math.Abs(lower))
			if math.Abs(upper-lower) > maxDelta {
				return nil, fmt.Errorf("%s: a[%d][%d]=%g vs a[%d][%d]=%g: %w",
					opNew, i, j, upper, j, i, lower, ErrNotSymmetric)
			}
			lt[j*n+i] = 0.0
		}
	}

	// In-place recurrence building Lᵗ in the upper triangle.
	var p, q int
	for i = 0; i < n; i++ {
		base := i * n
		if lt[base+i] <= o.absolutePositivityThreshold {
			return nil, fmt.Errorf("%s: pivot %g at row %d: %w",
				opNew, lt[base+i], i, ErrNotPositiveDefinite)
		}
		lt[base+i] = math.Sqrt(lt[base+i])
		inverse := 1.0 / lt[base+i]

		for q = n - 1; q > i; q-- {
			lt[base+q] *= inverse
			qBase := q * n
			for p = q; p < n; p++ {
				lt[qBase+p] -= lt[base+q] * lt[base+p]
			}
		}
	}

	return &Decomposition{n: n, lt: lt}, nil
}

// LT returns the upper triangular factor Lᵗ. Cached and reference-stable.
// Treat as read-only.
func (d *Decomposition) LT() matrix.Matrix {
	d.onceLT.Do(func() {
		n := d.n
		out, _ := matrix.NewDense(n, n)
		raw := out.Raw()
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				raw[i*n+j] = d.lt[i*n+j]
			}
		}
		d.cachedLT = out
	})

	return d.cachedLT
}

// L returns the lower triangular factor with positive diagonal. Cached and
// reference-stable. Treat as read-only.
func (d *Decomposition) L() matrix.Matrix {
	d.onceL.Do(func() {
		n := d.n
		out, _ := matrix.NewDense(n, n)
		raw := out.Raw()
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				raw[j*n+i] = d.lt[i*n+j]
			}
		}
		d.cachedL = out
	})

	return d.cachedL
}

// Determinant returns det(A) = ∏ L[i][i]², strictly positive for any
// successfully decomposed matrix.
// Complexity: O(n).
func (d *Decomposition) Determinant() float64 {
	det := 1.0
	for i := 0; i < d.n; i++ {
		diag := d.lt[i*d.n+i]
		det *= diag * diag
	}

	return det
}

// solveInPlace runs both triangular substitutions on a single column x.
func (d *Decomposition) solveInPlace(x []float64) {
	n, lt := d.n, d.lt
	var i, j int

	// Solve L·Y = b (column-oriented forward pass over rows of Lᵗ).
	for j = 0; j < n; j++ {
		base := j * n
		x[j] /= lt[base+j]
		xJ := x[j]
		for i = j + 1; i < n; i++ {
			x[i] -= xJ * lt[base+i]
		}
	}

	// Solve Lᵗ·X = Y (backward pass).
	for j = n - 1; j >= 0; j-- {
		x[j] /= lt[j*n+j]
		xJ := x[j]
		for i = 0; i < j; i++ {
			x[i] -= xJ * lt[i*n+j]
		}
	}
}

// SolveSlice solves A·x = b for a single right-hand side given as a raw
// slice and returns a fresh slice.
// Errors: matrix.ErrNilVector, matrix.ErrDimensionMismatch.
// Complexity: O(n²).
func (d *Decomposition) SolveSlice(b []float64) ([]float64, error) {
	if err := matrix.ValidateVecLen(b, d.n); err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}
	x := make([]float64, d.n)
	copy(x, b)
	d.solveInPlace(x)

	return x, nil
}

// SolveVec solves A·x = b for a *matrix.Vector right-hand side.
// Errors: matrix.ErrNilVector, matrix.ErrDimensionMismatch.
func (d *Decomposition) SolveVec(b *matrix.Vector) (*matrix.Vector, error) {
	if b == nil {
		return nil, fmt.Errorf("%s: %w", opSolve, matrix.ErrNilVector)
	}
	xs, err := d.SolveSlice(b.Raw())
	if err != nil {
		return nil, err
	}
	x, _ := matrix.NewVectorNoCopy(xs)

	return x, nil
}

// Solve solves A·X = B for a full matrix of right-hand sides.
// Errors: matrix.ErrNilMatrix, matrix.ErrDimensionMismatch (B.Rows != n).
// Complexity: O(n²·k) for k right-hand-side columns.
func (d *Decomposition) Solve(b matrix.Matrix) (matrix.Matrix, error) {
	if err := matrix.ValidateNotNil(b); err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}
	if b.Rows() != d.n {
		return nil, fmt.Errorf("%s: %w", opSolve, matrix.ErrDimensionMismatch)
	}

	k := b.Cols()
	out, _ := matrix.NewDense(d.n, k)
	raw := out.Raw()
	x := make([]float64, d.n)
	var v float64
	var err error
	for col := 0; col < k; col++ {
		for row := 0; row < d.n; row++ {
			if v, err = b.At(row, col); err != nil {
				return nil, fmt.Errorf("%s: %w", opSolve, err)
			}
			x[row] = v
		}
		d.solveInPlace(x)
		for row := 0; row < d.n; row++ {
			raw[row*k+col] = x[row]
		}
	}

	return out, nil
}

// Inverse returns A⁻¹ by solving against the identity.
// Complexity: O(n³).
func (d *Decomposition) Inverse() (matrix.Matrix, error) {
	eye, err := matrix.Identity(d.n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}

	return d.Solve(eye)
}
