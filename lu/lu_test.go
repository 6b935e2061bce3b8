// SPDX-License-Identifier: MIT

package lu_test

import (
	"testing"

	"github.com/katalvlaran/linalg/lu"
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

// TestLU_PivotedFactors reproduces the reference pivoted factorization of
// [[2,3,3],[0,5,7],[6,9,8]]: U = [[6,9,8],[0,5,7],[0,0,1/3]], pivot [2,1,0],
// determinant -10.
func TestLU_PivotedFactors(t *testing.T) {
	a := mustDense(t, [][]float64{{2, 3, 3}, {0, 5, 7}, {6, 9, 8}})

	d, err := lu.New(a)
	require.NoError(t, err)
	require.True(t, d.IsNonSingular(), "matrix is regular")

	assert.Equal(t, []int{2, 1, 0}, d.Pivot(), "pivot permutation")
	assert.InDelta(t, -10.0, d.Determinant(), 1e-12, "determinant")

	u, ok := d.U().(*matrix.Dense)
	require.True(t, ok)
	expectedU := []float64{6, 9, 8, 0, 5, 7, 0, 0, 1.0 / 3.0}
	for i, want := range expectedU {
		assert.InDelta(t, want, u.Raw()[i], 1e-14, "U entry %d", i)
	}

	// L must be unit lower triangular.
	l := d.L()
	for i := 0; i < 3; i++ {
		v, errAt := l.At(i, i)
		require.NoError(t, errAt)
		assert.Equal(t, 1.0, v, "unit diagonal of L")
		for j := i + 1; j < 3; j++ {
			v, errAt = l.At(i, j)
			require.NoError(t, errAt)
			assert.Equal(t, 0.0, v, "upper part of L is zero")
		}
	}
}

// TestLU_Reconstruction verifies the defining identity P·A = L·U.
func TestLU_Reconstruction(t *testing.T) {
	a := mustDense(t, [][]float64{
		{1, 2, 3},
		{2, 5, 3},
		{1, 0, 8},
	})

	d, err := lu.New(a)
	require.NoError(t, err)
	require.True(t, d.IsNonSingular())

	pa, err := matrix.Mul(d.P(), a)
	require.NoError(t, err)
	luProd, err := matrix.Mul(d.L(), d.U())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, residual(t, luProd, pa), 1e-13, "L·U must equal P·A")
}

// TestLU_SingularState reproduces the singular contract on [[2,3],[2,3]]:
// the state flag flips, all factor accessors return nil, the determinant is
// exactly zero, and every solve fails with ErrSingular.
func TestLU_SingularState(t *testing.T) {
	a := mustDense(t, [][]float64{{2, 3}, {2, 3}})

	d, err := lu.New(a)
	require.NoError(t, err, "singularity is a state, not a construction error")

	assert.False(t, d.IsNonSingular(), "duplicate rows are singular")
	assert.Nil(t, d.L(), "L is nil when singular")
	assert.Nil(t, d.U(), "U is nil when singular")
	assert.Nil(t, d.P(), "P is nil when singular")
	assert.Equal(t, 0.0, d.Determinant(), "determinant is exactly zero")

	_, err = d.SolveSlice([]float64{1, 2})
	assert.ErrorIs(t, err, lu.ErrSingular, "SolveSlice must refuse")
	_, err = d.Inverse()
	assert.ErrorIs(t, err, lu.ErrSingular, "Inverse must refuse")
}

// TestLU_ZeroMatrix checks the degenerate all-zero input.
func TestLU_ZeroMatrix(t *testing.T) {
	a, err := matrix.NewDense(3, 3)
	require.NoError(t, err)

	d, err := lu.New(a)
	require.NoError(t, err)
	assert.False(t, d.IsNonSingular(), "zero matrix is singular")
	assert.Equal(t, 0.0, d.Determinant())
}

// TestLU_Solve verifies all three right-hand-side forms against A·x = b.
func TestLU_Solve(t *testing.T) {
	a := mustDense(t, [][]float64{{2, 3, 3}, {0, 5, 7}, {6, 9, 8}})
	b := []float64{1, 2, 3}

	d, err := lu.New(a)
	require.NoError(t, err)

	// Raw slice form: verify by substituting back.
	x, err := d.SolveSlice(b)
	require.NoError(t, err)
	ax, err := matrix.MatVec(a, x)
	require.NoError(t, err)
	for i := range b {
		assert.InDelta(t, b[i], ax[i], 1e-12, "A·x component %d", i)
	}

	// Vector form must agree with the slice form.
	bv, err := matrix.NewVectorFromSlice(b)
	require.NoError(t, err)
	xv, err := d.SolveVec(bv)
	require.NoError(t, err)
	assert.InDeltaSlice(t, x, xv.Raw(), 1e-15, "vector and slice forms agree")

	// Matrix form with two stacked right-hand sides.
	bm := mustDense(t, [][]float64{{1, 1}, {2, 0}, {3, 1}})
	xm, err := d.Solve(bm)
	require.NoError(t, err)
	axm, err := matrix.Mul(a, xm)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, residual(t, axm, bm), 1e-12, "A·X must equal B")
}

// TestLU_Inverse verifies A·A⁻¹ = I.
func TestLU_Inverse(t *testing.T) {
	a := mustDense(t, [][]float64{{4, 7}, {2, 6}})

	d, err := lu.New(a)
	require.NoError(t, err)

	inv, err := d.Inverse()
	require.NoError(t, err)
	prod, err := matrix.Mul(a, inv)
	require.NoError(t, err)
	eye, err := matrix.Identity(2)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, residual(t, prod, eye), 1e-13, "A·A⁻¹ must be the identity")
}

// TestLU_SolveShapeErrors distinguishes shape failures from singularity.
func TestLU_SolveShapeErrors(t *testing.T) {
	a := mustDense(t, [][]float64{{4, 7}, {2, 6}})

	d, err := lu.New(a)
	require.NoError(t, err)

	_, err = d.SolveSlice([]float64{1, 2, 3})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch, "wrong length is a shape error")
	_, err = d.SolveSlice(nil)
	assert.ErrorIs(t, err, matrix.ErrNilVector, "nil slice")
	_, err = d.SolveVec(nil)
	assert.ErrorIs(t, err, matrix.ErrNilVector, "nil vector")
	_, err = d.Solve(nil)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix, "nil matrix")
	_, err = d.Solve(mustDense(t, [][]float64{{1, 2}}))
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch, "row mismatch")
}

// TestLU_ConstructionErrors covers the input guards.
func TestLU_ConstructionErrors(t *testing.T) {
	_, err := lu.New(nil)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix, "nil input")

	rect := mustDense(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	_, err = lu.New(rect)
	assert.ErrorIs(t, err, matrix.ErrNonSquare, "rectangular input")
}

// TestLU_Caching verifies the reference-identity contract of the factor
// accessors.
func TestLU_Caching(t *testing.T) {
	a := mustDense(t, [][]float64{{4, 7}, {2, 6}})

	d, err := lu.New(a)
	require.NoError(t, err)

	assert.Same(t, d.L(), d.L(), "L must be reference-stable")
	assert.Same(t, d.U(), d.U(), "U must be reference-stable")
	assert.Same(t, d.P(), d.P(), "P must be reference-stable")
}

// TestLU_ThresholdOption verifies a large relative threshold declares a
// well-conditioned matrix singular, and that invalid thresholds panic.
func TestLU_ThresholdOption(t *testing.T) {
	a := mustDense(t, [][]float64{{1, 0}, {0, 1e-6}})

	d, err := lu.New(a, lu.WithSingularityThreshold(1e-3))
	require.NoError(t, err)
	assert.False(t, d.IsNonSingular(), "1e-6 pivot is below 1e-3 relative threshold")

	d, err = lu.New(a)
	require.NoError(t, err)
	assert.True(t, d.IsNonSingular(), "default threshold keeps the matrix regular")

	assert.Panics(t, func() { lu.WithSingularityThreshold(-1) }, "negative threshold must panic")
}
