// SPDX-License-Identifier: MIT

package lu

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/katalvlaran/linalg/matrix"
)

// ErrSingular is returned by the Solve family (and Inverse) when the
// decomposed matrix is singular under the configured threshold. Note the
// asymmetric contract: factor accessors do NOT error on singular input —
// they return nil — while every solve path fails with this sentinel.
var ErrSingular = errors.New("lu: singular matrix")

// Operation tags for unified error wrapping.
const (
	opNew   = "lu.New"
	opSolve = "lu.Solve"
)

// Decomposition is the cached LUP factorization of a square matrix.
// It is immutable after construction: factor accessors are safe for
// concurrent readers (each cache is populated at most once, then frozen).
type Decomposition struct {
	n        int       // order of the decomposed matrix
	lu       []float64 // packed factors: strict lower = multipliers of L, upper incl. diagonal = U
	pivot    []int     // row permutation: position i holds the original index of the row now at i
	even     bool      // permutation parity (+1 determinant sign when true)
	singular bool      // terminal singular state

	onceL   sync.Once
	cachedL matrix.Matrix
	onceU   sync.Once
	cachedU matrix.Matrix
	onceP   sync.Once
	cachedP matrix.Matrix
}

// New computes the partial-pivoted LU decomposition of a square matrix.
//
// Implementation:
//   - Stage 1: validate non-nil and square; clone into a private packed copy.
//   - Stage 2: column-oriented elimination — per column apply accumulated
//     transforms, pick the row maximizing |value| among remaining rows, swap
//     (tracking parity), divide the subcolumn by the winning pivot.
//
// Behavior highlights:
//   - A pivot with |pivot| < threshold·scale(A) stops elimination and marks
//     the decomposition singular; construction still succeeds (a queryable
//     state, not an error) and IsNonSingular()/Determinant()/Solve reflect it.
//   - The caller's matrix is never mutated.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrNonSquare.
//
// Complexity:
//   - Time O(n³), Space O(n²).
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
	d := &Decomposition{
		n:     n,
		lu:    work.Raw(),
		pivot: make([]int, n),
		even:  true,
	}
	for i := 0; i < n; i++ {
		d.pivot[i] = i
	}

	// Relative threshold: pivots are judged against the overall matrix scale.
	scale, _ := matrix.MaxAbs(work) // work is non-nil by construction
	threshold := o.singularityThreshold * scale
	if scale == 0 {
		// A zero matrix is singular for every n > 0; no elimination needed.
		d.singular = true

		return d, nil
	}

	lu := d.lu
	luCol := make([]float64, n) // localized copy of the current column

	var row, col, k, p int
	var sum float64
	for col = 0; col < n; col++ {
		// Localize column col.
		for row = 0; row < n; row++ {
			luCol[row] = lu[row*n+col]
		}

		// Apply previous transformations (dot product against computed rows).
		for row = 0; row < n; row++ {
			base := row * n
			kmax := row
			if col < kmax {
				kmax = col
			}
			sum = 0.0
			for k = 0; k < kmax; k++ {
				sum += lu[base+k] * luCol[k]
			}
			luCol[row] -= sum
			lu[base+col] = luCol[row]
		}

		// Partial pivoting: largest |value| among remaining rows wins.
		p = col
		for row = col + 1; row < n; row++ {
			if math.Abs(luCol[row]) > math.Abs(luCol[p]) {
				p = row
			}
		}

		// Singularity check against the relative threshold.
		if math.Abs(lu[p*n+col]) < threshold {
			d.singular = true

			return d, nil
		}

		// Exchange rows if necessary, tracking permutation parity.
		if p != col {
			for k = 0; k < n; k++ {
				lu[p*n+k], lu[col*n+k] = lu[col*n+k], lu[p*n+k]
			}
			d.pivot[p], d.pivot[col] = d.pivot[col], d.pivot[p]
			d.even = !d.even
		}

		// Divide the subcolumn by the winning diagonal element.
		luDiag := lu[col*n+col]
		for row = col + 1; row < n; row++ {
			lu[row*n+col] /= luDiag
		}
	}

	return d, nil
}

// IsNonSingular reports whether the decomposed matrix admits a unique
// solution for every right-hand side.
func (d *Decomposition) IsNonSingular() bool {
	return !d.singular
}

// L returns the unit lower triangular factor, or nil when the matrix is
// singular (contract preserved from the reference behavior — callers check
// IsNonSingular first). Cached: repeated calls return the identical
// instance. Treat as read-only.
func (d *Decomposition) L() matrix.Matrix {
	d.onceL.Do(func() {
		if d.singular {
			return
		}
		n := d.n
		m, _ := matrix.NewDense(n, n)
		raw := m.Raw()
		for i := 0; i < n; i++ {
			for j := 0; j < i; j++ {
				raw[i*n+j] = d.lu[i*n+j]
			}
			raw[i*n+i] = 1.0
		}
		d.cachedL = m
	})

	return d.cachedL
}

// U returns the upper triangular factor, or nil when singular. Cached and
// reference-stable. Treat as read-only.
func (d *Decomposition) U() matrix.Matrix {
	d.onceU.Do(func() {
		if d.singular {
			return
		}
		n := d.n
		m, _ := matrix.NewDense(n, n)
		raw := m.Raw()
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				raw[i*n+j] = d.lu[i*n+j]
			}
		}
		d.cachedU = m
	})

	return d.cachedU
}

// P returns the permutation matrix (one 1.0 per row at column pivot[i]),
// or nil when singular. Cached and reference-stable. Treat as read-only.
func (d *Decomposition) P() matrix.Matrix {
	d.onceP.Do(func() {
		if d.singular {
			return
		}
		n := d.n
		m, _ := matrix.NewDense(n, n)
		raw := m.Raw()
		for i := 0; i < n; i++ {
			raw[i*n+d.pivot[i]] = 1.0
		}
		d.cachedP = m
	})

	return d.cachedP
}

// Pivot returns a copy of the pivot permutation vector: entry i holds the
// index of the original row that occupies position i after pivoting. The
// vector is a bijection on {0,…,n-1}.
func (d *Decomposition) Pivot() []int {
	out := make([]int, len(d.pivot))
	copy(out, d.pivot)

	return out
}

// Determinant returns det(A): exactly 0 for a singular matrix, otherwise
// the parity-signed product of the diagonal of U.
// Complexity: O(n).
func (d *Decomposition) Determinant() float64 {
	if d.singular {
		return 0.0
	}
	det := 1.0
	if !d.even {
		det = -1.0
	}
	for i := 0; i < d.n; i++ {
		det *= d.lu[i*d.n+i]
	}

	return det
}

// solveInPlace back/forward-substitutes nb columns stored row-major in bp
// (already permuted). bp has d.n rows and nb columns.
func (d *Decomposition) solveInPlace(bp []float64, nb int) {
	n, lu := d.n, d.lu
	var col, i, j int

	// Solve L·Y = Pb (forward, unit diagonal).
	for col = 0; col < n; col++ {
		for i = col + 1; i < n; i++ {
			luICol := lu[i*n+col]
			if luICol == 0 {
				continue
			}
			for j = 0; j < nb; j++ {
				bp[i*nb+j] -= bp[col*nb+j] * luICol
			}
		}
	}

	// Solve U·X = Y (backward).
	for col = n - 1; col >= 0; col-- {
		luDiag := lu[col*n+col]
		for j = 0; j < nb; j++ {
			bp[col*nb+j] /= luDiag
		}
		for i = 0; i < col; i++ {
			luICol := lu[i*n+col]
			if luICol == 0 {
				continue
			}
			for j = 0; j < nb; j++ {
				bp[i*nb+j] -= bp[col*nb+j] * luICol
			}
		}
	}
}

// SolveSlice solves A·x = b for a single right-hand side given as a raw
// slice and returns a fresh slice.
//
// Errors:
//   - matrix.ErrNilVector, matrix.ErrDimensionMismatch — b missing or
//     len(b) != n (shape failures are distinct from singularity).
//   - ErrSingular — the decomposed matrix is singular.
//
// Complexity: O(n²).
func (d *Decomposition) SolveSlice(b []float64) ([]float64, error) {
	if err := matrix.ValidateVecLen(b, d.n); err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}
	if d.singular {
		return nil, fmt.Errorf("%s: %w", opSolve, ErrSingular)
	}

	// Apply the permutation while copying.
	bp := make([]float64, d.n)
	for row := 0; row < d.n; row++ {
		bp[row] = b[d.pivot[row]]
	}
	d.solveInPlace(bp, 1)

	return bp, nil
}

// SolveVec solves A·x = b for a *matrix.Vector right-hand side.
// Errors: matrix.ErrNilVector, matrix.ErrDimensionMismatch, ErrSingular.
// Complexity: O(n²).
func (d *Decomposition) SolveVec(b *matrix.Vector) (*matrix.Vector, error) {
	if b == nil {
		return nil, fmt.Errorf("%s: %w", opSolve, matrix.ErrNilVector)
	}
	xs, err := d.SolveSlice(b.Raw())
	if err != nil {
		return nil, err
	}
	x, _ := matrix.NewVectorNoCopy(xs) // xs is fresh and non-empty

	return x, nil
}

// Solve solves A·X = B for a full matrix of right-hand sides, column by
// column in one pass.
// Errors: matrix.ErrNilMatrix, matrix.ErrDimensionMismatch (B.Rows != n),
// ErrSingular.
// Complexity: O(n²·k) for k right-hand-side columns.
func (d *Decomposition) Solve(b matrix.Matrix) (matrix.Matrix, error) {
	if err := matrix.ValidateNotNil(b); err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}
	if b.Rows() != d.n {
		return nil, fmt.Errorf("%s: %w", opSolve, matrix.ErrDimensionMismatch)
	}
	if d.singular {
		return nil, fmt.Errorf("%s: %w", opSolve, ErrSingular)
	}

	// Permute the rows of B while copying into a flat working buffer.
	nb := b.Cols()
	bp := make([]float64, d.n*nb)
	if db, ok := b.(*matrix.Dense); ok {
		raw := db.Raw()
		for row := 0; row < d.n; row++ {
			copy(bp[row*nb:(row+1)*nb], raw[d.pivot[row]*nb:(d.pivot[row]+1)*nb])
		}
	} else {
		var v float64
		var err error
		for row := 0; row < d.n; row++ {
			for col := 0; col < nb; col++ {
				if v, err = b.At(d.pivot[row], col); err != nil {
					return nil, fmt.Errorf("%s: %w", opSolve, err)
				}
				bp[row*nb+col] = v
			}
		}
	}

	d.solveInPlace(bp, nb)
	x, _ := matrix.NewDenseNoCopy(d.n, nb, bp) // bp is fresh, shape matches

	return x, nil
}

// Inverse returns A⁻¹ by solving against the identity. Prefer the Solve
// family when only A⁻¹·b is needed — it is cheaper and better conditioned.
// Errors: ErrSingular.
// Complexity: O(n³).
func (d *Decomposition) Inverse() (matrix.Matrix, error) {
	eye, err := matrix.Identity(d.n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}

	return d.Solve(eye)
}
