// SPDX-License-Identifier: MIT

package qr

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/katalvlaran/linalg/matrix"
)

// ErrRankDeficient is returned by the Solve family when at least one
// diagonal entry of R is negligible under the configured rank threshold.
var ErrRankDeficient = errors.New("qr: rank-deficient matrix")

// Operation tags for unified error wrapping.
const (
	opNew   = "qr.New"
	opSolve = "qr.Solve"
)

// Decomposition is the cached Householder QR factorization of an m×n
// matrix with m ≥ n. Immutable after construction; accessors are safe for
// concurrent readers.
type Decomposition struct {
	m, n int
	// qrt stores Aᵗ after the Householder sweep: row k holds column k of A,
	// with the reflector vector of step k packed in entries k..m-1.
	qrt   []float64
	rDiag []float64 // diagonal of R (the reflected leading entries)

	rankThreshold float64

	onceQT   sync.Once
	cachedQT matrix.Matrix
	onceQ    sync.Once
	cachedQ  matrix.Matrix
	onceR    sync.Once
	cachedR  matrix.Matrix
	onceH    sync.Once
	cachedH  matrix.Matrix
}

// New computes the QR decomposition of a.
//
// Implementation:
//   - Stage 1: validate non-nil and m ≥ n; copy A transposed into qrt so
//     each elimination step walks one contiguous row.
//   - Stage 2: per column minor k, build the Householder reflector
//     annihilating entries below the diagonal (the reflected norm takes the
//     sign opposite the leading entry for stability), store it in place,
//     and apply it to the remaining minors.
//
// Behavior highlights:
//   - A zero subcolumn yields rDiag[k] == 0 and the step is skipped; the
//     decomposition still succeeds and rank checks account for it.
//   - The caller's matrix is never mutated.
//
// Errors:
//   - matrix.ErrNilMatrix
//   - matrix.ErrDimensionMismatch — m < n (wide systems are not supported).
//
// Complexity:
//   - Time O(m·n²), Space O(m·n).
func New(a matrix.Matrix, opts ...Option) (*Decomposition, error) {
	if err := matrix.ValidateNotNil(a); err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}
	m, n := a.Rows(), a.Cols()
	if m < n {
		return nil, fmt.Errorf("%s: %d×%d has more columns than rows: %w", opNew, m, n, matrix.ErrDimensionMismatch)
	}
	o := gatherOptions(opts...)

	d := &Decomposition{
		m:             m,
		n:             n,
		qrt:           make([]float64, n*m),
		rDiag:         make([]float64, n),
		rankThreshold: o.rankThreshold,
	}

	// Transposed copy: qrt row k = column k of A.
	if da, ok := a.(*matrix.Dense); ok {
		raw := da.Raw()
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				d.qrt[j*m+i] = raw[i*n+j]
			}
		}
	} else {
		var v float64
		var err error
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				if v, err = a.At(i, j); err != nil {
					return nil, fmt.Errorf("%s: %w", opNew, err)
				}
				d.qrt[j*m+i] = v
			}
		}
	}

	qrt := d.qrt
	var minor, row, col int
	var xNormSqr, alpha, dot float64
	for minor = 0; minor < n; minor++ {
		base := minor * m

		// Reflected norm of the active subcolumn, sign opposite the leading
		// entry so the subtraction below never cancels.
		xNormSqr = 0.0
		for row = minor; row < m; row++ {
			xNormSqr += qrt[base+row] * qrt[base+row]
		}
		alpha = math.Sqrt(xNormSqr)
		if qrt[base+minor] > 0 {
			alpha = -alpha
		}
		d.rDiag[minor] = alpha

		if alpha == 0 {
			continue // already annihilated, nothing to reflect
		}

		// v = x - alpha·e1, stored in place of the subcolumn.
		qrt[base+minor] -= alpha

		// Apply H = I - 2·v·vᵗ/‖v‖² to every remaining minor. With this v,
		// ‖v‖² = -2·alpha·v[minor], so the scale folds into one division.
		for col = minor + 1; col < n; col++ {
			cBase := col * m
			dot = 0.0
			for row = minor; row < m; row++ {
				dot += qrt[cBase+row] * qrt[base+row]
			}
			dot /= alpha * qrt[base+minor]
			for row = minor; row < m; row++ {
				qrt[cBase+row] += dot * qrt[base+row]
			}
		}
	}

	return d, nil
}

// rankTolerance is the absolute cutoff for R diagonal entries: the relative
// threshold scaled by the largest diagonal magnitude.
func (d *Decomposition) rankTolerance() float64 {
	maxDiag := 0.0
	for _, v := range d.rDiag {
		if a := math.Abs(v); a > maxDiag {
			maxDiag = a
		}
	}

	return d.rankThreshold * maxDiag
}

// IsFullRank reports whether every diagonal entry of R is non-negligible
// under the configured relative threshold.
func (d *Decomposition) IsFullRank() bool {
	tol := d.rankTolerance()
	for _, v := range d.rDiag {
		if math.Abs(v) <= tol {
			return false
		}
	}

	return true
}

// R returns the m×n upper trapezoidal factor. Cached and reference-stable.
// Treat as read-only.
func (d *Decomposition) R() matrix.Matrix {
	d.onceR.Do(func() {
		m, n := d.m, d.n
		out, _ := matrix.NewDense(m, n)
		raw := out.Raw()
		for row := 0; row < n; row++ {
			raw[row*n+row] = d.rDiag[row]
			for col := row + 1; col < n; col++ {
				raw[row*n+col] = d.qrt[col*m+row]
			}
		}
		d.cachedR = out
	})

	return d.cachedR
}

// QT returns the m×m transpose of Q, built by replaying the stored
// reflectors from the last minor back to the first onto the identity.
// Cached and reference-stable. Treat as read-only.
func (d *Decomposition) QT() matrix.Matrix {
	d.onceQT.Do(func() {
		m, n := d.m, d.n
		out, _ := matrix.NewDense(m, m)
		qta := out.Raw()

		// Trailing identity block untouched by any reflector.
		for minor := m - 1; minor >= n; minor-- {
			qta[minor*m+minor] = 1.0
		}

		for minor := n - 1; minor >= 0; minor-- {
			base := minor * m
			qta[minor*m+minor] = 1.0
			if d.qrt[base+minor] == 0 {
				continue
			}
			for col := minor; col < m; col++ {
				alpha := 0.0
				for row := minor; row < m; row++ {
					alpha -= qta[col*m+row] * d.qrt[base+row]
				}
				alpha /= d.rDiag[minor] * d.qrt[base+minor]
				for row := minor; row < m; row++ {
					qta[col*m+row] -= alpha * d.qrt[base+row]
				}
			}
		}
		d.cachedQT = out
	})

	return d.cachedQT
}

// Q returns the m×m orthogonal factor (the transpose of QT). Cached and
// reference-stable. Treat as read-only.
func (d *Decomposition) Q() matrix.Matrix {
	d.onceQ.Do(func() {
		q, err := matrix.Transpose(d.QT())
		if err != nil {
			return // unreachable: QT is always a valid square matrix
		}
		d.cachedQ = q
	})

	return d.cachedQ
}

// H returns the m×n lower trapezoidal matrix of Householder reflector
// vectors, normalized so that H·v recreates each elementary reflection.
// Cached and reference-stable. Treat as read-only.
func (d *Decomposition) H() matrix.Matrix {
	d.onceH.Do(func() {
		m, n := d.m, d.n
		out, _ := matrix.NewDense(m, n)
		raw := out.Raw()
		for i := 0; i < m; i++ {
			jMax := i + 1
			if jMax > n {
				jMax = n
			}
			for j := 0; j < jMax; j++ {
				if d.rDiag[j] == 0 {
					continue // skipped minor, reflector is empty
				}
				raw[i*n+j] = d.qrt[j*m+i] / -d.rDiag[j]
			}
		}
		d.cachedH = out
	})

	return d.cachedH
}

// SolveSlice solves the least-squares system min ‖A·x − b‖₂ for a single
// right-hand side of length m, returning the unique length-n solution.
//
// Implementation: apply the stored reflectors to b (computing Qᵗ·b without
// materializing Q), then back-substitute against R.
//
// Errors:
//   - matrix.ErrNilVector, matrix.ErrDimensionMismatch — b missing or
//     len(b) != m.
//   - ErrRankDeficient — some R diagonal entry is negligible.
//
// Complexity: O(m·n).
func (d *Decomposition) SolveSlice(b []float64) ([]float64, error) {
	if err := matrix.ValidateVecLen(b, d.m); err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}
	if !d.IsFullRank() {
		return nil, fmt.Errorf("%s: %w", opSolve, ErrRankDeficient)
	}

	y := make([]float64, d.m)
	copy(y, b)
	d.applyQT(y)

	x := make([]float64, d.n)
	d.backSubstitute(y, x)

	return x, nil
}

// SolveVec solves min ‖A·x − b‖₂ for a *matrix.Vector right-hand side.
// Errors: matrix.ErrNilVector, matrix.ErrDimensionMismatch, ErrRankDeficient.
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

// Solve solves min ‖A·X − B‖ column by column for an m×k matrix of
// right-hand sides, returning the n×k solution matrix.
// Errors: matrix.ErrNilMatrix, matrix.ErrDimensionMismatch (B.Rows != m),
// ErrRankDeficient.
func (d *Decomposition) Solve(b matrix.Matrix) (matrix.Matrix, error) {
	if err := matrix.ValidateNotNil(b); err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}
	if b.Rows() != d.m {
		return nil, fmt.Errorf("%s: %w", opSolve, matrix.ErrDimensionMismatch)
	}
	if !d.IsFullRank() {
		return nil, fmt.Errorf("%s: %w", opSolve, ErrRankDeficient)
	}

	k := b.Cols()
	out, _ := matrix.NewDense(d.n, k)
	raw := out.Raw()
	y := make([]float64, d.m)
	x := make([]float64, d.n)
	var v float64
	var err error
	for col := 0; col < k; col++ {
		for row := 0; row < d.m; row++ {
			if v, err = b.At(row, col); err != nil {
				return nil, fmt.Errorf("%s: %w", opSolve, err)
			}
			y[row] = v
		}
		d.applyQT(y)
		d.backSubstitute(y, x)
		for row := 0; row < d.n; row++ {
			raw[row*k+col] = x[row]
		}
	}

	return out, nil
}

// applyQT overwrites y (length m) with Qᵗ·y by replaying the reflectors.
func (d *Decomposition) applyQT(y []float64) {
	m, n := d.m, d.n
	for minor := 0; minor < n; minor++ {
		base := minor * m
		if d.qrt[base+minor] == 0 {
			continue
		}
		dot := 0.0
		for row := minor; row < m; row++ {
			dot += y[row] * d.qrt[base+row]
		}
		dot /= d.rDiag[minor] * d.qrt[base+minor]
		for row := minor; row < m; row++ {
			y[row] += dot * d.qrt[base+row]
		}
	}
}

// backSubstitute solves R·x = y[:n] for the triangular leading block.
// Callers guarantee every rDiag entry is non-negligible.
func (d *Decomposition) backSubstitute(y, x []float64) {
	m := d.m
	for row := d.n - 1; row >= 0; row-- {
		v := y[row] / d.rDiag[row]
		x[row] = v
		for i := 0; i < row; i++ {
			y[i] -= v * d.qrt[row*m+i]
		}
	}
}
