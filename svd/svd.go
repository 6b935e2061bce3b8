// SPDX-License-Identifier: MIT

package svd

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/katalvlaran/linalg/householder"
	"github.com/katalvlaran/linalg/matrix"
)

// Sentinel errors of the package.
var (
	// ErrNoConvergence signals that the Golub–Kahan iteration exhausted its
	// sweep budget between two deflations.
	ErrNoConvergence = errors.New("svd: Golub-Kahan iteration failed to converge")
	// ErrSingular is returned by the Solve family when the effective rank
	// is below min(m, n).
	ErrSingular = errors.New("svd: singular matrix")
)

// Operation tags for unified error wrapping.
const (
	opNew   = "svd.New"
	opSolve = "svd.Solve"
)

// Negligibility floor and relative spacing used by the band scans.
var (
	machEps = math.Nextafter(1, 2) - 1
	tiny    = math.Pow(2, -966)
)

// Decomposition is the cached compact SVD A = U·S·Vᵗ. Singular values are
// non-negative and descending. Immutable after construction; accessors are
// safe for concurrent readers.
type Decomposition struct {
	m, n int // original shape
	p    int // min(m, n)

	s []float64 // singular values, descending
	u []float64 // row-major m×m left accumulation (columns beyond p unused by accessors)
	v []float64 // row-major n×n right accumulation

	tol float64 // absolute rank cutoff, fixed at construction

	onceU    sync.Once
	cachedU  matrix.Matrix
	onceUT   sync.Once
	cachedUT matrix.Matrix
	onceS    sync.Once
	cachedS  matrix.Matrix
	onceV    sync.Once
	cachedV  matrix.Matrix
	onceVT   sync.Once
	cachedVT matrix.Matrix
}

// New computes the singular value decomposition of a.
//
// Implementation:
//   - Stage 1: validate non-nil; transpose when m < n so the band work
//     always runs on a tall matrix (accessors swap U and V back).
//   - Stage 2: Householder bidiagonalization, cloning the accumulated
//     orthogonal factors into private buffers.
//   - Stage 3: Golub–Kahan loop — per pass either deflate a negligible
//     trailing value (rotations into V), split at a negligible diagonal
//     (rotations into U), run one shifted QR step (rotations into both),
//     or accept a converged value, fix its sign, and bubble it into
//     descending position.
//
// Errors:
//   - matrix.ErrNilMatrix
//   - ErrNoConvergence — sweep budget exhausted between deflations.
//
// Complexity:
//   - Time O(m·n·min(m,n)), Space O(m² + n²).
func New(a matrix.Matrix, opts ...Option) (*Decomposition, error) {
	if err := matrix.ValidateNotNil(a); err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}
	o := gatherOptions(opts...)

	m, n := a.Rows(), a.Cols()
	transposed := m < n
	work := a
	if transposed {
		t, err := matrix.Transpose(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opNew, err)
		}
		work = t
	}

	bd, err := householder.Bidiagonalize(work)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}

	// Private mutable copies: the band factors are cached inside bd and
	// must not be rotated in place.
	uDense, err := matrix.CloneDense(bd.U())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}
	vDense, err := matrix.CloneDense(bd.V())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}

	mm, nn := work.Rows(), work.Cols() // mm ≥ nn by construction
	p := nn
	s := make([]float64, p)
	e := make([]float64, p)
	copy(s, bd.Main())
	copy(e, bd.Secondary()) // e[p-1] stays 0 as the scan terminator

	u, v := uDense.Raw(), vDense.Raw()
	if err = golubKahan(s, e, u, v, mm, nn, o.maxIterations); err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}

	d := &Decomposition{m: m, n: n, p: p, s: s}
	if transposed {
		// A = (U_B·S·V_Bᵗ)ᵗ, so the band's right factor is A's left one.
		d.u, d.v = v, u
	} else {
		d.u, d.v = u, v
	}

	if o.rankTolerance == AutoRankTolerance {
		maxDim := m
		if n > maxDim {
			maxDim = n
		}
		d.tol = machEps * float64(maxDim) * s[0]
	} else {
		d.tol = o.rankTolerance * s[0]
	}

	return d, nil
}

// golubKahan drives the superdiagonal e of the bidiagonal band (s, e) to
// zero, folding every Givens rotation into the columns of u (mm×mm) or
// v (nn×nn). On return s holds the singular values, non-negative and
// descending.
func golubKahan(s, e, u, v []float64, mm, nn, maxIterations int) error {
	p := len(s)
	pp := p - 1
	iter := 0

	var i, j, k, kase int
	var t, f, g, cs, sn float64
	for p > 0 {
		// Locate the rightmost negligible superdiagonal entry.
		for k = p - 2; k >= 0; k-- {
			if math.Abs(e[k]) <= tiny+machEps*(math.Abs(s[k])+math.Abs(s[k+1])) {
				e[k] = 0
				break
			}
		}

		if k == p-2 {
			kase = 4 // s[p-1] has converged
		} else {
			// Look for a negligible diagonal entry inside the active block.
			var ks int
			for ks = p - 1; ks > k; ks-- {
				t = math.Abs(e[ks])
				if ks != k+1 {
					t += math.Abs(e[ks-1])
				}
				if math.Abs(s[ks]) <= tiny+machEps*t {
					s[ks] = 0
					break
				}
			}
			switch {
			case ks == k:
				kase = 3 // whole block is live: one QR step
			case ks == p-1:
				kase = 1 // trailing s is zero: deflate through V
			default:
				kase = 2 // interior s is zero: split through U
				k = ks
			}
		}
		k++

		switch kase {
		case 1:
			// Annihilate e[p-2] by rotating against the zeroed s[p-1].
			f = e[p-2]
			e[p-2] = 0
			for j = p - 2; j >= k; j-- {
				t = math.Hypot(s[j], f)
				cs = s[j] / t
				sn = f / t
				s[j] = t
				if j != k {
					f = -sn * e[j-1]
					e[j-1] = cs * e[j-1]
				}
				for i = 0; i < nn; i++ {
					t = cs*v[i*nn+j] + sn*v[i*nn+p-1]
					v[i*nn+p-1] = -sn*v[i*nn+j] + cs*v[i*nn+p-1]
					v[i*nn+j] = t
				}
			}

		case 2:
			// Flush e[k-1] rightwards past the zeroed s[k-1].
			f = e[k-1]
			e[k-1] = 0
			for j = k; j < p; j++ {
				t = math.Hypot(s[j], f)
				cs = s[j] / t
				sn = f / t
				s[j] = t
				f = -sn * e[j]
				e[j] = cs * e[j]
				for i = 0; i < mm; i++ {
					t = cs*u[i*mm+j] + sn*u[i*mm+k-1]
					u[i*mm+k-1] = -sn*u[i*mm+j] + cs*u[i*mm+k-1]
					u[i*mm+j] = t
				}
			}

		case 3:
			if iter == maxIterations {
				return ErrNoConvergence
			}
			iter++

			// Shift from the trailing 2×2 block, scaled to dodge overflow.
			scale := math.Max(math.Max(math.Max(math.Max(
				math.Abs(s[p-1]), math.Abs(s[p-2])), math.Abs(e[p-2])),
				math.Abs(s[k])), math.Abs(e[k]))
			sp := s[p-1] / scale
			spm1 := s[p-2] / scale
			epm1 := e[p-2] / scale
			sk := s[k] / scale
			ek := e[k] / scale
			b := ((spm1+sp)*(spm1-sp) + epm1*epm1) / 2
			c := (sp * epm1) * (sp * epm1)
			shift := 0.0
			if b != 0 || c != 0 {
				shift = math.Sqrt(b*b + c)
				if b < 0 {
					shift = -shift
				}
				shift = c / (b + shift)
			}
			f = (sk+sp)*(sk-sp) + shift
			g = sk * ek

			// Chase the bulge down the band.
			for j = k; j < p-1; j++ {
				t = math.Hypot(f, g)
				cs = f / t
				sn = g / t
				if j != k {
					e[j-1] = t
				}
				f = cs*s[j] + sn*e[j]
				e[j] = cs*e[j] - sn*s[j]
				g = sn * s[j+1]
				s[j+1] = cs * s[j+1]
				for i = 0; i < nn; i++ {
					t = cs*v[i*nn+j] + sn*v[i*nn+j+1]
					v[i*nn+j+1] = -sn*v[i*nn+j] + cs*v[i*nn+j+1]
					v[i*nn+j] = t
				}

				t = math.Hypot(f, g)
				cs = f / t
				sn = g / t
				s[j] = t
				f = cs*e[j] + sn*s[j+1]
				s[j+1] = -sn*e[j] + cs*s[j+1]
				g = sn * e[j+1]
				e[j+1] = cs * e[j+1]
				for i = 0; i < mm; i++ {
					t = cs*u[i*mm+j] + sn*u[i*mm+j+1]
					u[i*mm+j+1] = -sn*u[i*mm+j] + cs*u[i*mm+j+1]
					u[i*mm+j] = t
				}
			}
			e[p-2] = f

		case 4:
			// Converged: force the value non-negative, flipping the sign
			// into the paired V column.
			if s[k] <= 0 {
				if s[k] < 0 {
					s[k] = -s[k]
				} else {
					s[k] = 0
				}
				for i = 0; i < nn; i++ {
					v[i*nn+k] = -v[i*nn+k]
				}
			}

			// Bubble into descending position, carrying both columns.
			for k < pp && s[k] < s[k+1] {
				s[k], s[k+1] = s[k+1], s[k]
				if k < nn-1 {
					for i = 0; i < nn; i++ {
						v[i*nn+k], v[i*nn+k+1] = v[i*nn+k+1], v[i*nn+k]
					}
				}
				if k < mm-1 {
					for i = 0; i < mm; i++ {
						u[i*mm+k], u[i*mm+k+1] = u[i*mm+k+1], u[i*mm+k]
					}
				}
				k++
			}
			iter = 0
			p--
		}
	}

	return nil
}

// Values returns a copy of the singular values in descending order.
func (d *Decomposition) Values() []float64 {
	out := make([]float64, d.p)
	copy(out, d.s)

	return out
}

// Norm2 returns the spectral norm σ_max.
func (d *Decomposition) Norm2() float64 {
	return d.s[0]
}

// ConditionNumber returns σ_max/σ_min; +Inf for a rank-deficient matrix.
func (d *Decomposition) ConditionNumber() float64 {
	return d.s[0] / d.s[d.p-1]
}

// Rank returns the number of singular values above the rank tolerance.
func (d *Decomposition) Rank() int {
	rank := 0
	for _, v := range d.s {
		if v > d.tol {
			rank++
		}
	}

	return rank
}

// column-slice helper: first p columns of a square k×k accumulation.
func (d *Decomposition) compact(raw []float64, k int) matrix.Matrix {
	out, _ := matrix.NewDense(k, d.p)
	dst := out.Raw()
	for i := 0; i < k; i++ {
		copy(dst[i*d.p:(i+1)*d.p], raw[i*k:i*k+d.p])
	}

	return out
}

// U returns the m×p matrix of left singular vectors. Cached and
// reference-stable. Treat as read-only.
func (d *Decomposition) U() matrix.Matrix {
	d.onceU.Do(func() { d.cachedU = d.compact(d.u, d.m) })

	return d.cachedU
}

// UT returns the transpose of U. Cached and reference-stable. Treat as
// read-only.
func (d *Decomposition) UT() matrix.Matrix {
	d.onceUT.Do(func() {
		ut, err := matrix.Transpose(d.U())
		if err != nil {
			return // unreachable: U is always a valid matrix
		}
		d.cachedUT = ut
	})

	return d.cachedUT
}

// S returns the p×p diagonal matrix of singular values. Cached and
// reference-stable. Treat as read-only.
func (d *Decomposition) S() matrix.Matrix {
	d.onceS.Do(func() {
		out, _ := matrix.NewDense(d.p, d.p)
		raw := out.Raw()
		for i := 0; i < d.p; i++ {
			raw[i*d.p+i] = d.s[i]
		}
		d.cachedS = out
	})

	return d.cachedS
}

// V returns the n×p matrix of right singular vectors. Cached and
// reference-stable. Treat as read-only.
func (d *Decomposition) V() matrix.Matrix {
	d.onceV.Do(func() { d.cachedV = d.compact(d.v, d.n) })

	return d.cachedV
}

// VT returns the transpose of V. Cached and reference-stable. Treat as
// read-only.
func (d *Decomposition) VT() matrix.Matrix {
	d.onceVT.Do(func() {
		vt, err := matrix.Transpose(d.V())
		if err != nil {
			return // unreachable: V is always a valid matrix
		}
		d.cachedVT = vt
	})

	return d.cachedVT
}

// SolveSlice solves the least-squares system min ‖A·x − b‖₂ through the
// pseudo-inverse x = V·S⁻¹·Uᵗ·b, for a right-hand side of length m.
//
// Errors:
//   - matrix.ErrNilVector, matrix.ErrDimensionMismatch
//   - ErrSingular — effective rank is below min(m, n), so some retained
//     1/σ would amplify noise instead of solving.
//
// Complexity: O((m+n)·p).
func (d *Decomposition) SolveSlice(b []float64) ([]float64, error) {
	if err := matrix.ValidateVecLen(b, d.m); err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}
	if d.Rank() < d.p {
		return nil, fmt.Errorf("%s: %w", opSolve, ErrSingular)
	}

	m, n, p := d.m, d.n, d.p
	x := make([]float64, n)
	for j := 0; j < p; j++ {
		// Project b onto left vector j, scale by 1/σⱼ, add the component.
		dot := 0.0
		for i := 0; i < m; i++ {
			dot += d.u[i*m+j] * b[i]
		}
		dot /= d.s[j]
		for i := 0; i < n; i++ {
			x[i] += dot * d.v[i*n+j]
		}
	}

	return x, nil
}

// SolveVec solves min ‖A·x − b‖₂ for a *matrix.Vector right-hand side.
// Errors: matrix.ErrNilVector, matrix.ErrDimensionMismatch, ErrSingular.
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
// ErrSingular.
func (d *Decomposition) Solve(b matrix.Matrix) (matrix.Matrix, error) {
	if err := matrix.ValidateNotNil(b); err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}
	if b.Rows() != d.m {
		return nil, fmt.Errorf("%s: %w", opSolve, matrix.ErrDimensionMismatch)
	}
	if d.Rank() < d.p {
		return nil, fmt.Errorf("%s: %w", opSolve, ErrSingular)
	}

	k := b.Cols()
	out, _ := matrix.NewDense(d.n, k)
	raw := out.Raw()
	col := make([]float64, d.m)
	var v float64
	var err error
	for c := 0; c < k; c++ {
		for row := 0; row < d.m; row++ {
			if v, err = b.At(row, c); err != nil {
				return nil, fmt.Errorf("%s: %w", opSolve, err)
			}
			col[row] = v
		}
		xs, solveErr := d.SolveSlice(col)
		if solveErr != nil {
			return nil, solveErr
		}
		for row := 0; row < d.n; row++ {
			raw[row*k+c] = xs[row]
		}
	}

	return out, nil
}
