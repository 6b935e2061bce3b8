// SPDX-License-Identifier: MIT

package householder

import (
	"fmt"
	"math"
	"sync"

	"github.com/katalvlaran/linalg/matrix"
)

// opBidiagonalize tags errors surfaced by the bidiagonal constructor.
const opBidiagonalize = "Bidiagonalize"

// BiDiagonal holds the Householder reduction of a general m×n matrix to
// bidiagonal form: A = U·B·Vᵗ with U (m×m) and V (n×n) orthogonal and B
// carrying nonzero entries only on the main diagonal and the diagonal
// immediately above (m ≥ n) or below (m < n). The reduction runs once, at
// construction; factors are materialized lazily and cached write-once.
type BiDiagonal struct {
	m, n int       // shape of the decomposed matrix
	hv   []float64 // m×n working copy; reflector vectors live in-place

	main      []float64 // B main diagonal, length p = min(m,n)
	secondary []float64 // B super/subdiagonal, length p-1

	onceU   sync.Once
	cachedU matrix.Matrix
	onceB   sync.Once
	cachedB matrix.Matrix
	onceV   sync.Once
	cachedV matrix.Matrix
}

// Bidiagonalize reduces any m×n matrix to bidiagonal form using alternating
// Householder reflections: one per column zeroing entries below the
// diagonal, one per row zeroing entries right of the superdiagonal (roles
// swap for m < n). An already bidiagonal matrix passes through unchanged —
// every reflection degenerates to the identity, and a zero subvector norm
// never divides by zero.
//
// Errors:
//   - matrix.ErrNilMatrix.
//
// Complexity:
//   - Time O(m·n·min(m,n)), Space O(m·n).
func Bidiagonalize(a matrix.Matrix) (*BiDiagonal, error) {
	// Private working copy; the caller's matrix is never touched again.
	work, err := matrix.CloneDense(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opBidiagonalize, err)
	}

	m, n := a.Rows(), a.Cols()
	p := m
	if n < p {
		p = n
	}
	b := &BiDiagonal{
		m:         m,
		n:         n,
		hv:        work.Raw(),
		main:      make([]float64, p),
		secondary: make([]float64, max(p-1, 0)),
	}
	if m >= n {
		b.transformToUpper()
	} else {
		b.transformToLower()
	}

	return b, nil
}

// IsUpperBiDiagonal reports whether B carries its off diagonal above the
// main diagonal (true iff the decomposed matrix had m ≥ n).
func (b *BiDiagonal) IsUpperBiDiagonal() bool {
	return b.m >= b.n
}

// Main returns the main diagonal of B. Shared, not copied: svd's fast path
// iterates it in place. Treat as read-only.
func (b *BiDiagonal) Main() []float64 {
	return b.main
}

// Secondary returns the off diagonal of B (length min(m,n)-1). Shared,
// read-only.
func (b *BiDiagonal) Secondary() []float64 {
	return b.secondary
}

// transformToUpper drives the working copy to upper bidiagonal form (m ≥ n):
// at step k a column reflection kills entries below the diagonal, then a row
// reflection kills entries right of the superdiagonal.
func (b *BiDiagonal) transformToUpper() {
	m, n, hv := b.m, b.n, b.hv

	var i, j, k int
	var xNormSqr, a, tau, sum float64
	for k = 0; k < n; k++ {
		// --- zero-out column k below the diagonal ---
		xNormSqr = 0
		for i = k; i < m; i++ {
			c := hv[i*n+k]
			xNormSqr += c * c
		}
		if hv[k*n+k] > 0 {
			a = -math.Sqrt(xNormSqr)
		} else {
			a = math.Sqrt(xNormSqr)
		}
		b.main[k] = a
		if a != 0.0 {
			hv[k*n+k] -= a
			tau = -1 / (a * hv[k*n+k]) // τ = 2/‖v‖² with v in column k, rows k..m-1
			for j = k + 1; j < n; j++ {
				sum = 0
				for i = k; i < m; i++ {
					sum += hv[i*n+j] * hv[i*n+k]
				}
				sum *= tau
				for i = k; i < m; i++ {
					hv[i*n+j] -= sum * hv[i*n+k]
				}
			}
		}

		if k >= n-1 {
			continue
		}

		// --- zero-out row k right of the superdiagonal ---
		rowK := k * n
		xNormSqr = 0
		for j = k + 1; j < n; j++ {
			c := hv[rowK+j]
			xNormSqr += c * c
		}
		if hv[rowK+k+1] > 0 {
			a = -math.Sqrt(xNormSqr)
		} else {
			a = math.Sqrt(xNormSqr)
		}
		b.secondary[k] = a
		if a != 0.0 {
			hv[rowK+k+1] -= a
			tau = -1 / (a * hv[rowK+k+1]) // v in row k, columns k+1..n-1
			for i = k + 1; i < m; i++ {
				rowI := i * n
				sum = 0
				for j = k + 1; j < n; j++ {
					sum += hv[rowI+j] * hv[rowK+j]
				}
				sum *= tau
				for j = k + 1; j < n; j++ {
					hv[rowI+j] -= sum * hv[rowK+j]
				}
			}
		}
	}
}

// transformToLower drives the working copy to lower bidiagonal form (m < n):
// the row/column reflection roles of the upper case swap.
func (b *BiDiagonal) transformToLower() {
	m, n, hv := b.m, b.n, b.hv

	var i, j, k int
	var xNormSqr, a, tau, sum float64
	for k = 0; k < m; k++ {
		// --- zero-out row k right of the diagonal ---
		rowK := k * n
		xNormSqr = 0
		for j = k; j < n; j++ {
			c := hv[rowK+j]
			xNormSqr += c * c
		}
		if hv[rowK+k] > 0 {
			a = -math.Sqrt(xNormSqr)
		} else {
			a = math.Sqrt(xNormSqr)
		}
		b.main[k] = a
		if a != 0.0 {
			hv[rowK+k] -= a
			tau = -1 / (a * hv[rowK+k]) // v in row k, columns k..n-1
			for i = k + 1; i < m; i++ {
				rowI := i * n
				sum = 0
				for j = k; j < n; j++ {
					sum += hv[rowI+j] * hv[rowK+j]
				}
				sum *= tau
				for j = k; j < n; j++ {
					hv[rowI+j] -= sum * hv[rowK+j]
				}
			}
		}

		if k >= m-1 {
			continue
		}

		// --- zero-out column k below the subdiagonal ---
		xNormSqr = 0
		for i = k + 1; i < m; i++ {
			c := hv[i*n+k]
			xNormSqr += c * c
		}
		if hv[(k+1)*n+k] > 0 {
			a = -math.Sqrt(xNormSqr)
		} else {
			a = math.Sqrt(xNormSqr)
		}
		b.secondary[k] = a
		if a != 0.0 {
			hv[(k+1)*n+k] -= a
			tau = -1 / (a * hv[(k+1)*n+k]) // v in column k, rows k+1..m-1
			for j = k + 1; j < n; j++ {
				sum = 0
				for i = k + 1; i < m; i++ {
					sum += hv[i*n+j] * hv[i*n+k]
				}
				sum *= tau
				for i = k + 1; i < m; i++ {
					hv[i*n+j] -= sum * hv[i*n+k]
				}
			}
		}
	}
}

// B materializes the bidiagonal factor. Cached and reference-stable.
// Complexity: O(m·n) on first call, O(1) after.
func (b *BiDiagonal) B() matrix.Matrix {
	b.onceB.Do(func() {
		d, _ := matrix.NewDense(b.m, b.n)
		raw := d.Raw()
		for i := 0; i < len(b.main); i++ {
			raw[i*b.n+i] = b.main[i]
			if i < len(b.main)-1 {
				if b.m < b.n {
					raw[(i+1)*b.n+i] = b.secondary[i]
				} else {
					raw[i*b.n+i+1] = b.secondary[i]
				}
			}
		}
		b.cachedB = d
	})

	return b.cachedB
}

// U materializes the left orthogonal factor (m×m), the accumulated product
// of the column reflections. Cached and reference-stable.
// Complexity: O(m³) on first call, O(1) after.
func (b *BiDiagonal) U() matrix.Matrix {
	b.onceU.Do(func() {
		m, n, p := b.m, b.n, len(b.main)
		// Column reflectors start at row offset 0 (upper) or 1 (lower): the
		// lower form's column family is the secondary one.
		diagOffset := 0
		diagonal := b.main
		if m < n {
			diagOffset = 1
			diagonal = b.secondary
		}

		d, _ := matrix.NewDense(m, m)
		u := d.Raw()

		// Identity on the block untouched by any column reflector.
		for k := m - 1; k >= p; k-- {
			u[k*m+k] = 1
		}

		// Accumulate reflectors last-to-first (U = P₀·P₁·…).
		var i, j, k int
		var alpha float64
		for k = p - 1; k >= diagOffset; k-- {
			col := k - diagOffset // reflector stored in column col, rows k..m-1
			u[k*m+k] = 1
			if b.hv[k*n+col] != 0.0 {
				for j = k; j < m; j++ {
					alpha = 0
					for i = k; i < m; i++ {
						alpha -= u[i*m+j] * b.hv[i*n+col]
					}
					alpha /= diagonal[col] * b.hv[k*n+col]
					for i = k; i < m; i++ {
						u[i*m+j] -= alpha * b.hv[i*n+col]
					}
				}
			}
		}
		if diagOffset > 0 {
			u[0] = 1 // row 0 is untouched in the lower form
		}
		b.cachedU = d
	})

	return b.cachedU
}

// V materializes the right orthogonal factor (n×n), the accumulated product
// of the row reflections. Cached and reference-stable.
// Complexity: O(n³) on first call, O(1) after.
func (b *BiDiagonal) V() matrix.Matrix {
	b.onceV.Do(func() {
		m, n, p := b.m, b.n, len(b.main)
		// Row reflectors start at column offset 1 (upper) or 0 (lower): the
		// upper form's row family is the secondary one.
		diagOffset := 1
		diagonal := b.secondary
		if m < n {
			diagOffset = 0
			diagonal = b.main
		}

		d, _ := matrix.NewDense(n, n)
		v := d.Raw()

		// Identity on the block untouched by any row reflector.
		for k := n - 1; k >= p; k-- {
			v[k*n+k] = 1
		}

		// Accumulate reflectors last-to-first (V = G₀·G₁·…).
		var i, j, k int
		var beta float64
		for k = p - 1; k >= diagOffset; k-- {
			row := k - diagOffset // reflector stored in row `row`, columns k..n-1
			v[k*n+k] = 1
			if b.hv[row*n+k] != 0.0 {
				for j = k; j < n; j++ {
					beta = 0
					for i = k; i < n; i++ {
						beta -= v[i*n+j] * b.hv[row*n+i]
					}
					beta /= diagonal[row] * b.hv[row*n+k]
					for i = k; i < n; i++ {
						v[i*n+j] -= beta * b.hv[row*n+i]
					}
				}
			}
		}
		if diagOffset > 0 {
			v[0] = 1 // row 0 is untouched in the upper form
		}
		b.cachedV = d
	})

	return b.cachedV
}
