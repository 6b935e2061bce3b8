// SPDX-License-Identifier: MIT

package householder

import (
	"fmt"
	"math"
	"sync"

	"github.com/katalvlaran/linalg/matrix"
)

// opTridiagonalize tags errors surfaced by the tridiagonal constructor.
const opTridiagonalize = "Tridiagonalize"

// TriDiagonal holds the Householder reduction of a symmetric matrix to
// tridiagonal form: A = Q·T·Qᵗ with Q orthogonal and T symmetric
// tridiagonal. The reduction runs once, at construction; factor matrices are
// materialized lazily, cached write-once, and shared by reference across
// accessor calls.
type TriDiagonal struct {
	n  int       // order of the decomposed matrix
	hv []float64 // n×n working copy; row k stores the step-k reflector in entries k+1..n-1

	main      []float64 // main diagonal of T, length n
	secondary []float64 // off diagonal of T, length n-1

	onceQ   sync.Once
	cachedQ matrix.Matrix
	onceT   sync.Once
	cachedT matrix.Matrix
}

// Tridiagonalize reduces a square symmetric matrix to tridiagonal form via
// n-2 Householder reflections, each zeroing one column below the subdiagonal
// (and, by symmetry, the mirrored row). A matrix that is already tridiagonal
// passes through unchanged: every reflection degenerates to the identity.
//
// Implementation:
//   - Stage 1: validate non-nil and square; clone into a private flat copy.
//   - Stage 2: for k = 0..n-3, build the reflector from row k entries
//     k+1..n-1, then apply P·A·P touching only the upper triangle
//     (z-vector technique, cache-friendly for row-major storage).
//
// Behavior highlights:
//   - Symmetry of the input is assumed, not enforced here: only the upper
//     triangle is read (callers such as eigen validate symmetry first).
//   - Zero subvector norm ⇒ identity reflection, no division by zero.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrNonSquare.
//
// Complexity:
//   - Time O(n³), Space O(n²).
func Tridiagonalize(a matrix.Matrix) (*TriDiagonal, error) {
	// Validate shape before any allocation.
	if err := matrix.ValidateSquareNonNil(a); err != nil {
		return nil, fmt.Errorf("%s: %w", opTridiagonalize, err)
	}

	// Private working copy; the caller's matrix is never touched again.
	work, err := matrix.CloneDense(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opTridiagonalize, err)
	}

	n := a.Rows()
	t := &TriDiagonal{
		n:         n,
		hv:        work.Raw(),
		main:      make([]float64, n),
		secondary: make([]float64, max(n-1, 0)),
	}
	t.transform()

	return t, nil
}

// transform runs the Householder sweep over the private working copy.
// After it returns, hv row k holds the step-k reflector, main/secondary hold
// the tridiagonal of T.
func (t *TriDiagonal) transform() {
	n := t.n
	hv := t.hv
	z := make([]float64, n) // scratch for z = τ·A·v − γ·v

	var i, j, k int
	var xNormSqr, alpha, tau, zI, gamma, hKI float64
	for k = 0; k < n-1; k++ {
		rowK := k * n
		t.main[k] = hv[rowK+k]

		// Norm of the subcolumn to annihilate (read from row k by symmetry).
		xNormSqr = 0
		for j = k + 1; j < n; j++ {
			c := hv[rowK+j]
			xNormSqr += c * c
		}

		// Reflection scalar: sign chosen opposite the leading entry to avoid
		// cancellation when forming v = x − α·e₁.
		if hv[rowK+k+1] > 0 {
			alpha = -math.Sqrt(xNormSqr)
		} else {
			alpha = math.Sqrt(xNormSqr)
		}
		t.secondary[k] = alpha

		if alpha == 0.0 {
			// Degenerate step: subvector already zero, reflection is identity.
			continue
		}

		// v is stored in place: hv[k][k+1..n-1], with the head shifted by α.
		hv[rowK+k+1] -= alpha
		tau = -1 / (alpha * hv[rowK+k+1]) // τ = 2/‖v‖² given ‖v‖² = −2·α·v₁

		// z = τ·A·v, reading only the upper triangle of the trailing block.
		for i = k + 1; i < n; i++ {
			z[i] = 0
		}
		for i = k + 1; i < n; i++ {
			rowI := i * n
			hKI = hv[rowK+i]
			zI = hv[rowI+i] * hKI
			for j = i + 1; j < n; j++ {
				hIJ := hv[rowI+j]
				zI += hIJ * hv[rowK+j]
				z[j] += hIJ * hKI
			}
			z[i] = tau * (z[i] + zI)
		}

		// γ = τ·vᵗz/2, then z ← z − γ·v so that A − v·zᵗ − z·vᵗ = P·A·P.
		gamma = 0
		for i = k + 1; i < n; i++ {
			gamma += z[i] * hv[rowK+i]
		}
		gamma *= tau / 2
		for i = k + 1; i < n; i++ {
			z[i] -= gamma * hv[rowK+i]
		}

		// Rank-two update of the trailing upper triangle.
		for i = k + 1; i < n; i++ {
			rowI := i * n
			for j = i; j < n; j++ {
				hv[rowI+j] -= hv[rowK+i]*z[j] + z[i]*hv[rowK+j]
			}
		}
	}
	t.main[n-1] = hv[(n-1)*n+(n-1)]
}

// Main returns the main diagonal of T. The slice is shared, not copied:
// eigen's fast path iterates it in place. Treat as read-only.
func (t *TriDiagonal) Main() []float64 {
	return t.main
}

// Secondary returns the off diagonal of T (length n-1). Shared, read-only.
func (t *TriDiagonal) Secondary() []float64 {
	return t.secondary
}

// T materializes the symmetric tridiagonal factor. Cached: repeated calls
// return the identical instance. Treat as read-only.
// Complexity: O(n²) on first call, O(1) after.
func (t *TriDiagonal) T() matrix.Matrix {
	t.onceT.Do(func() {
		n := t.n
		d, _ := matrix.NewDense(n, n) // n ≥ 1 by construction
		raw := d.Raw()
		for i := 0; i < n; i++ {
			raw[i*n+i] = t.main[i]
			if i < n-1 {
				raw[i*n+i+1] = t.secondary[i]
				raw[(i+1)*n+i] = t.secondary[i]
			}
		}
		t.cachedT = d
	})

	return t.cachedT
}

// Q materializes the orthogonal factor, the accumulated product of the
// Householder reflections (Q = P₀·P₁·…). Cached and reference-stable.
// Complexity: O(n³) on first call, O(1) after.
func (t *TriDiagonal) Q() matrix.Matrix {
	t.onceQ.Do(func() {
		n := t.n
		d, _ := matrix.Identity(n)
		q := d.Raw()

		// Apply reflections last-to-first so the result is P₀·P₁·…·I.
		var i, j, k int
		var tau, sum float64
		for k = n - 2; k >= 0; k-- {
			rowK := k * n
			vHead := t.hv[rowK+k+1]
			if t.secondary[k] == 0.0 || vHead == 0.0 {
				continue // identity step
			}
			tau = -1 / (t.secondary[k] * vHead)
			for j = 0; j < n; j++ {
				sum = 0
				for i = k + 1; i < n; i++ {
					sum += t.hv[rowK+i] * q[i*n+j]
				}
				sum *= tau
				for i = k + 1; i < n; i++ {
					q[i*n+j] -= sum * t.hv[rowK+i]
				}
			}
		}
		t.cachedQ = d
	})

	return t.cachedQ
}
