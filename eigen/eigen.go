// SPDX-License-Identifier: MIT

package eigen

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
	// ErrNoConvergence signals that an eigenvalue failed to settle within
	// the configured sweep budget.
	ErrNoConvergence = errors.New("eigen: QL iteration failed to converge")
	// ErrSingular is returned by the Solve family when some eigenvalue is
	// exactly zero after clamping.
	ErrSingular = errors.New("eigen: singular matrix")
)

// Operation tags for unified error wrapping.
const (
	opNew    = "eigen.New"
	opNewTri = "eigen.NewFromTriDiagonal"
	opSolve  = "eigen.Solve"
	opAccess = "eigen.Vector"
)

// machEps is the relative spacing of float64 (2⁻⁵²), used to clamp
// negligible diagonal entries and eigenvalues to exactly zero.
var machEps = math.Nextafter(1, 2) - 1

// Decomposition is the cached spectral factorization A = V·D·Vᵗ of a real
// symmetric matrix. Eigenvalues are held in descending order, each paired
// with the matching column of V. Immutable after construction; accessors
// are safe for concurrent readers.
type Decomposition struct {
	n      int
	values []float64 // eigenvalues, descending
	z      []float64 // row-major n×n, column j = unit eigenvector of values[j]

	onceV    sync.Once
	cachedV  matrix.Matrix
	onceD    sync.Once
	cachedD  matrix.Matrix
	onceVT   sync.Once
	cachedVT matrix.Matrix
}

// New computes the eigendecomposition of a real symmetric matrix.
//
// Implementation:
//   - Stage 1: validate non-nil, square, and symmetric (relative threshold
//     matrix.DefaultEpsilon).
//   - Stage 2: Householder reduction to tridiagonal form, accumulating the
//     orthogonal similarity into the eigenvector seed.
//   - Stage 3: implicit-shift QL with deflation on the band, rotations
//     folded into the seed; sort descending.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrNonSquare, matrix.ErrAsymmetry
//   - ErrNoConvergence — sweep budget exhausted on some eigenvalue.
//
// Complexity:
//   - Time O(n³), Space O(n²).
func New(a matrix.Matrix, opts ...Option) (*Decomposition, error) {
	if err := matrix.ValidateSquareNonNil(a); err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}
	if err := matrix.ValidateSymmetric(a, matrix.DefaultEpsilon); err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}

	tri, err := householder.Tridiagonalize(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}

	// Seed the eigenvector accumulation with the similarity transform Q.
	q, err := matrix.CloneDense(tri.Q())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}

	d, err := diagonalize(tri.Main(), tri.Secondary(), q.Raw(), gatherOptions(opts...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}

	return d, nil
}

// NewFromTriDiagonal computes the eigendecomposition of the symmetric
// tridiagonal matrix whose main diagonal is main (length n) and whose
// sub/super diagonal is secondary (length n−1). The eigenvector basis is
// expressed in the band's own coordinates (the accumulation seed is the
// identity).
//
// Errors:
//   - matrix.ErrNilVector — main is empty.
//   - matrix.ErrDimensionMismatch — len(secondary) != len(main)−1.
//   - ErrNoConvergence.
func NewFromTriDiagonal(main, secondary []float64, opts ...Option) (*Decomposition, error) {
	if len(main) == 0 {
		return nil, fmt.Errorf("%s: %w", opNewTri, matrix.ErrNilVector)
	}
	if len(secondary) != len(main)-1 {
		return nil, fmt.Errorf("%s: %w", opNewTri, matrix.ErrDimensionMismatch)
	}

	n := len(main)
	eye, err := matrix.Identity(n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opNewTri, err)
	}

	d, err := diagonalize(main, secondary, eye.Raw(), gatherOptions(opts...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opNewTri, err)
	}

	return d, nil
}

// diagonalize runs the implicit-shift QL iteration on the band (main,
// secondary), accumulating every rotation into z (row-major n×n, consumed).
// On return the eigenpairs are sorted descending and negligible values are
// clamped to zero.
func diagonalize(main, secondary []float64, z []float64, o Options) (*Decomposition, error) {
	n := len(main)
	values := make([]float64, n)
	e := make([]float64, n)
	copy(values, main)
	copy(e, secondary) // e[n-1] stays 0 as the scan terminator

	// Clamp band entries that are negligible against the band's own scale;
	// they would otherwise stall deflation without carrying information.
	maxAbs := 0.0
	for i := 0; i < n; i++ {
		if v := math.Abs(values[i]); v > maxAbs {
			maxAbs = v
		}
		if v := math.Abs(e[i]); v > maxAbs {
			maxAbs = v
		}
	}
	if maxAbs != 0 {
		for i := 0; i < n; i++ {
			if math.Abs(values[i]) <= machEps*maxAbs {
				values[i] = 0
			}
			if math.Abs(e[i]) <= machEps*maxAbs {
				e[i] = 0
			}
		}
	}

	for j := 0; j < n; j++ {
		its := 0
		var m int
		for {
			// Deflation scan: first off-diagonal entry negligible against
			// its diagonal neighbours splits the band.
			for m = j; m < n-1; m++ {
				delta := math.Abs(values[m]) + math.Abs(values[m+1])
				if math.Abs(e[m])+delta == delta {
					break
				}
			}
			if m == j {
				break // values[j] has converged
			}
			if its == o.maxIterations {
				return nil, ErrNoConvergence
			}
			its++

			// Wilkinson-style shift from the leading 2×2 block.
			q := (values[j+1] - values[j]) / (2 * e[j])
			t := math.Sqrt(1 + q*q)
			if q < 0 {
				q = values[m] - values[j] + e[j]/(q-t)
			} else {
				q = values[m] - values[j] + e[j]/(q+t)
			}

			// Bulge chase: Givens rotations from the deflation point back
			// to j, folded into the eigenvector columns as they go.
			u := 0.0
			s := 1.0
			c := 1.0
			var i int
			for i = m - 1; i >= j; i-- {
				p := s * e[i]
				h := c * e[i]
				if math.Abs(p) >= math.Abs(q) {
					c = q / p
					t = math.Sqrt(c*c + 1)
					e[i+1] = p * t
					s = 1 / t
					c *= s
				} else {
					s = p / q
					t = math.Sqrt(s*s + 1)
					e[i+1] = q * t
					c = 1 / t
					s *= c
				}
				if e[i+1] == 0 {
					values[i+1] -= u
					e[m] = 0
					break
				}
				q = values[i+1] - u
				t = (values[i]-q)*s + 2*c*h
				u = s * t
				values[i+1] = q + u
				q = c*t - h

				for ia := 0; ia < n; ia++ {
					p = z[ia*n+i+1]
					z[ia*n+i+1] = s*z[ia*n+i] + c*p
					z[ia*n+i] = c*z[ia*n+i] - s*p
				}
			}
			if t == 0 && i >= j {
				continue
			}
			values[j] -= u
			e[j] = q
			e[m] = 0
		}
	}

	// Selection sort into descending order, swapping vector columns along.
	for i := 0; i < n; i++ {
		k := i
		p := values[i]
		for j := i + 1; j < n; j++ {
			if values[j] > p {
				k = j
				p = values[j]
			}
		}
		if k != i {
			values[k] = values[i]
			values[i] = p
			for j := 0; j < n; j++ {
				z[j*n+i], z[j*n+k] = z[j*n+k], z[j*n+i]
			}
		}
	}

	// Clamp eigenvalues negligible against the spectral radius.
	maxAbs = 0.0
	for i := 0; i < n; i++ {
		if v := math.Abs(values[i]); v > maxAbs {
			maxAbs = v
		}
	}
	if maxAbs != 0 {
		for i := 0; i < n; i++ {
			if math.Abs(values[i]) < machEps*maxAbs {
				values[i] = 0
			}
		}
	}

	return &Decomposition{n: n, values: values, z: z}, nil
}

// Values returns a copy of the eigenvalues in descending order.
func (d *Decomposition) Values() []float64 {
	out := make([]float64, d.n)
	copy(out, d.values)

	return out
}

// Value returns the i-th eigenvalue (descending order).
// Errors: matrix.ErrIndexOutOfBounds.
func (d *Decomposition) Value(i int) (float64, error) {
	if i < 0 || i >= d.n {
		return 0, fmt.Errorf("%s(%d): %w", opAccess, i, matrix.ErrIndexOutOfBounds)
	}

	return d.values[i], nil
}

// Vector returns a copy of the unit eigenvector paired with Value(i).
// Errors: matrix.ErrIndexOutOfBounds.
func (d *Decomposition) Vector(i int) (*matrix.Vector, error) {
	if i < 0 || i >= d.n {
		return nil, fmt.Errorf("%s(%d): %w", opAccess, i, matrix.ErrIndexOutOfBounds)
	}
	xs := make([]float64, d.n)
	for row := 0; row < d.n; row++ {
		xs[row] = d.z[row*d.n+i]
	}
	v, _ := matrix.NewVectorNoCopy(xs)

	return v, nil
}

// V returns the orthogonal eigenvector matrix (column j pairs with the
// j-th eigenvalue). Cached and reference-stable. Treat as read-only.
func (d *Decomposition) V() matrix.Matrix {
	d.onceV.Do(func() {
		out, _ := matrix.NewDense(d.n, d.n)
		copy(out.Raw(), d.z)
		d.cachedV = out
	})

	return d.cachedV
}

// D returns the diagonal eigenvalue matrix, descending along the diagonal.
// Cached and reference-stable. Treat as read-only.
func (d *Decomposition) D() matrix.Matrix {
	d.onceD.Do(func() {
		out, _ := matrix.NewDense(d.n, d.n)
		raw := out.Raw()
		for i := 0; i < d.n; i++ {
			raw[i*d.n+i] = d.values[i]
		}
		d.cachedD = out
	})

	return d.cachedD
}

// VT returns the transpose of V. Cached and reference-stable. Treat as
// read-only.
func (d *Decomposition) VT() matrix.Matrix {
	d.onceVT.Do(func() {
		vt, err := matrix.Transpose(d.V())
		if err != nil {
			return // unreachable: V is always a valid square matrix
		}
		d.cachedVT = vt
	})

	return d.cachedVT
}

// IsNonSingular reports whether every eigenvalue is non-zero (after the
// relative clamping performed at construction).
func (d *Decomposition) IsNonSingular() bool {
	for _, v := range d.values {
		if v == 0 {
			return false
		}
	}

	return true
}

// Determinant returns det(A) as the product of the eigenvalues.
// Complexity: O(n).
func (d *Decomposition) Determinant() float64 {
	det := 1.0
	for _, v := range d.values {
		det *= v
	}

	return det
}

// SolveSlice solves A·x = b through the spectrum: x = V·D⁻¹·Vᵗ·b.
//
// Errors:
//   - matrix.ErrNilVector, matrix.ErrDimensionMismatch
//   - ErrSingular — some eigenvalue is zero.
//
// Complexity: O(n²).
func (d *Decomposition) SolveSlice(b []float64) ([]float64, error) {
	if err := matrix.ValidateVecLen(b, d.n); err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}
	if !d.IsNonSingular() {
		return nil, fmt.Errorf("%s: %w", opSolve, ErrSingular)
	}

	n, z := d.n, d.z
	x := make([]float64, n)
	for j := 0; j < n; j++ {
		// Project b onto eigenvector j, scale by 1/λⱼ, add the component.
		dot := 0.0
		for i := 0; i < n; i++ {
			dot += z[i*n+j] * b[i]
		}
		dot /= d.values[j]
		for i := 0; i < n; i++ {
			x[i] += dot * z[i*n+j]
		}
	}

	return x, nil
}

// SolveVec solves A·x = b for a *matrix.Vector right-hand side.
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

// Solve solves A·X = B for a full matrix of right-hand sides.
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
	if !d.IsNonSingular() {
		return nil, fmt.Errorf("%s: %w", opSolve, ErrSingular)
	}

	k := b.Cols()
	out, _ := matrix.NewDense(d.n, k)
	raw := out.Raw()
	col := make([]float64, d.n)
	var v float64
	var err error
	for c := 0; c < k; c++ {
		for row := 0; row < d.n; row++ {
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

// Inverse returns A⁻¹ = V·D⁻¹·Vᵗ by solving against the identity.
// Errors: ErrSingular.
// Complexity: O(n³).
func (d *Decomposition) Inverse() (matrix.Matrix, error) {
	eye, err := matrix.Identity(d.n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}

	return d.Solve(eye)
}
