// SPDX-License-Identifier: MIT

package eigen_test

import (
	"math"
	"sort"
	"testing"

	"github.com/katalvlaran/linalg/eigen"
	"github.com/katalvlaran/linalg/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustDense builds a Dense from rows or fails the test.
func mustDense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err, "test fixture must construct")

	return m
}

// residual returns ‖a − b‖₁ for two same-shaped matrices.
func residual(t *testing.T, a, b matrix.Matrix) float64 {
	t.Helper()
	diff, err := matrix.Sub(a, b)
	require.NoError(t, err)
	n, err := matrix.Norm1(diff)
	require.NoError(t, err)

	return n
}

// knownSpectrum builds A = V·D·Vᵗ for the scaled 4×4 Hadamard basis and
// D = diag(5, 2, -2, -3), so the exact spectrum is known up to rounding.
func knownSpectrum(t *testing.T) *matrix.Dense {
	t.Helper()
	v := mustDense(t, [][]float64{
		{0.5, 0.5, 0.5, 0.5},
		{0.5, 0.5, -0.5, -0.5},
		{0.5, -0.5, 0.5, -0.5},
		{0.5, -0.5, -0.5, 0.5},
	})
	d := mustDense(t, [][]float64{
		{5, 0, 0, 0},
		{0, 2, 0, 0},
		{0, 0, -2, 0},
		{0, 0, 0, -3},
	})
	vt, err := matrix.Transpose(v)
	require.NoError(t, err)
	vd, err := matrix.Mul(v, d)
	require.NoError(t, err)
	a, err := matrix.Mul(vd, vt)
	require.NoError(t, err)

	ad, err := matrix.CloneDense(a)
	require.NoError(t, err)

	return ad
}

// TestEigen_KnownSpectrum recovers the constructed spectrum [5,2,-2,-3]
// in descending order within 2e-15 relative accuracy.
func TestEigen_KnownSpectrum(t *testing.T) {
	a := knownSpectrum(t)

	d, err := eigen.New(a)
	require.NoError(t, err)

	want := []float64{5, 2, -2, -3}
	got := d.Values()
	require.Len(t, got, 4)
	for i, w := range want {
		assert.InDelta(t, w, got[i], 2e-15*5, "eigenvalue %d in descending order", i)
	}
	assert.True(t, sort.IsSorted(sort.Reverse(sort.Float64Slice(got))), "values must descend")
}

// TestEigen_PairResiduals verifies A·vᵢ = λᵢ·vᵢ for every reported pair.
func TestEigen_PairResiduals(t *testing.T) {
	a := mustDense(t, [][]float64{
		{4, 1, -2, 2},
		{1, 2, 0, 1},
		{-2, 0, 3, -2},
		{2, 1, -2, -1},
	})

	d, err := eigen.New(a)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		lambda, errV := d.Value(i)
		require.NoError(t, errV)
		vec, errVec := d.Vector(i)
		require.NoError(t, errVec)

		av, errMV := matrix.MatVec(a, vec.Raw())
		require.NoError(t, errMV)
		for j, entry := range vec.Raw() {
			assert.InDelta(t, lambda*entry, av[j], 1e-12, "pair %d residual row %d", i, j)
		}

		// Eigenvectors must be unit length.
		norm := 0.0
		for _, x := range vec.Raw() {
			norm += x * x
		}
		assert.InDelta(t, 1.0, norm, 1e-12, "vector %d must be unit length", i)
	}
}

// TestEigen_Reconstruction verifies the full identity V·D·Vᵗ = A.
func TestEigen_Reconstruction(t *testing.T) {
	a := mustDense(t, [][]float64{
		{6, 2, 1},
		{2, 3, 1},
		{1, 1, 1},
	})

	d, err := eigen.New(a)
	require.NoError(t, err)

	vd, err := matrix.Mul(d.V(), d.D())
	require.NoError(t, err)
	rec, err := matrix.Mul(vd, d.VT())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, residual(t, rec, a), 1e-12, "V·D·Vᵗ must reproduce A")
}

// TestEigen_FromTriDiagonal diagonalizes a band given directly: a diagonal
// matrix with zero secondary entries must hand back its own diagonal, and
// the block-diagonal split must be handled by deflation.
func TestEigen_FromTriDiagonal(t *testing.T) {
	d, err := eigen.NewFromTriDiagonal([]float64{1, 3, 2}, []float64{0, 0})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 2, 1}, d.Values(), 1e-14, "diagonal input, sorted descending")

	// Two decoupled 2×2 blocks [[1,1],[1,1]] and [[2,1],[1,2]]:
	// spectra {2,0} and {3,1}.
	d, err = eigen.NewFromTriDiagonal([]float64{1, 1, 2, 2}, []float64{1, 0, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 2, 1, 0}, d.Values(), 1e-13, "merged spectra of both blocks")
}

// TestEigen_TriDiagonalShapeErrors covers the band-length guards.
func TestEigen_TriDiagonalShapeErrors(t *testing.T) {
	_, err := eigen.NewFromTriDiagonal(nil, nil)
	assert.ErrorIs(t, err, matrix.ErrNilVector, "empty main diagonal")

	_, err = eigen.NewFromTriDiagonal([]float64{1, 2}, []float64{1, 2})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch, "secondary must be one shorter")
}

// TestEigen_DeterminantAndSingularity checks the spectral determinant and
// zero-eigenvalue detection on a rank-deficient matrix.
func TestEigen_DeterminantAndSingularity(t *testing.T) {
	// Rank-1 symmetric matrix: spectrum {2, 0}.
	a := mustDense(t, [][]float64{{1, 1}, {1, 1}})

	d, err := eigen.New(a)
	require.NoError(t, err)
	assert.False(t, d.IsNonSingular(), "zero eigenvalue present")
	assert.Equal(t, 0.0, d.Determinant(), "determinant through the spectrum")

	_, err = d.SolveSlice([]float64{1, 2})
	assert.ErrorIs(t, err, eigen.ErrSingular, "solve must refuse")

	b := knownSpectrum(t)
	db, err := eigen.New(b)
	require.NoError(t, err)
	assert.True(t, db.IsNonSingular())
	assert.InDelta(t, 5.0*2*(-2)*(-3), db.Determinant(), 1e-11, "product of eigenvalues")
}

// TestEigen_Solve verifies the spectral solver against substitution.
func TestEigen_Solve(t *testing.T) {
	a := knownSpectrum(t)
	b := []float64{1, 0, -1, 2}

	d, err := eigen.New(a)
	require.NoError(t, err)

	x, err := d.SolveSlice(b)
	require.NoError(t, err)
	ax, err := matrix.MatVec(a, x)
	require.NoError(t, err)
	for i := range b {
		assert.InDelta(t, b[i], ax[i], 1e-12, "A·x component %d", i)
	}

	bv, err := matrix.NewVectorFromSlice(b)
	require.NoError(t, err)
	xv, err := d.SolveVec(bv)
	require.NoError(t, err)
	assert.InDeltaSlice(t, x, xv.Raw(), 1e-15, "vector form agrees")

	inv, err := d.Inverse()
	require.NoError(t, err)
	prod, err := matrix.Mul(a, inv)
	require.NoError(t, err)
	eye, err := matrix.Identity(4)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, residual(t, prod, eye), 1e-12, "A·A⁻¹ must be the identity")
}

// TestEigen_InputGuards covers construction errors.
func TestEigen_InputGuards(t *testing.T) {
	_, err := eigen.New(nil)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix, "nil input")

	rect := mustDense(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	_, err = eigen.New(rect)
	assert.ErrorIs(t, err, matrix.ErrNonSquare, "rectangular input")

	asym := mustDense(t, [][]float64{{1, 2}, {3, 1}})
	_, err = eigen.New(asym)
	assert.ErrorIs(t, err, matrix.ErrAsymmetry, "asymmetric input")
}

// TestEigen_AccessGuards covers the indexed accessors.
func TestEigen_AccessGuards(t *testing.T) {
	d, err := eigen.New(mustDense(t, [][]float64{{2, 1}, {1, 2}}))
	require.NoError(t, err)

	_, err = d.Value(2)
	assert.ErrorIs(t, err, matrix.ErrIndexOutOfBounds, "value index overflow")
	_, err = d.Vector(-1)
	assert.ErrorIs(t, err, matrix.ErrIndexOutOfBounds, "negative vector index")
}

// TestEigen_Caching verifies the reference-identity contract.
func TestEigen_Caching(t *testing.T) {
	d, err := eigen.New(mustDense(t, [][]float64{{2, 1}, {1, 2}}))
	require.NoError(t, err)

	assert.Same(t, d.V(), d.V(), "V must be reference-stable")
	assert.Same(t, d.D(), d.D(), "D must be reference-stable")
	assert.Same(t, d.VT(), d.VT(), "VT must be reference-stable")
}

// TestEigen_IterationOption verifies the sweep-budget guard.
func TestEigen_IterationOption(t *testing.T) {
	assert.Panics(t, func() { eigen.WithMaxIterations(0) }, "non-positive budget must panic")

	// A generous budget must not change the result.
	d, err := eigen.New(mustDense(t, [][]float64{{2, 1}, {1, 2}}), eigen.WithMaxIterations(100))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 1}, d.Values(), 1e-14, "2×2 spectrum")
}

// TestEigen_NoConvergence exhausts the sweep budget: a single sweep per
// eigenvalue cannot settle a generic coupled 4×4 spectrum.
func TestEigen_NoConvergence(t *testing.T) {
	a := mustDense(t, [][]float64{
		{4, 1, -2, 2},
		{1, 2, 0, 1},
		{-2, 0, 3, -2},
		{2, 1, -2, -1},
	})

	d, err := eigen.New(a, eigen.WithMaxIterations(1))
	require.Error(t, err, "one sweep must be too few for this spectrum")
	assert.ErrorIs(t, err, eigen.ErrNoConvergence, "exhausted budget must carry the convergence kind")
	assert.Nil(t, d, "no decomposition on failure")
}

// TestEigen_ValuesCopy verifies Values hands out a defensive copy.
func TestEigen_ValuesCopy(t *testing.T) {
	d, err := eigen.New(mustDense(t, [][]float64{{2, 1}, {1, 2}}))
	require.NoError(t, err)

	vs := d.Values()
	vs[0] = math.Inf(1)
	assert.InDelta(t, 3.0, d.Values()[0], 1e-14, "internal state must be untouched")
}
