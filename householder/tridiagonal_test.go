// SPDX-License-Identifier: MIT

package householder_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/linalg/householder"
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

// assertOrthogonal checks QᵗQ ≈ I within tol.
func assertOrthogonal(t *testing.T, q matrix.Matrix, tol float64) {
	t.Helper()
	qt, err := matrix.Transpose(q)
	require.NoError(t, err)
	prod, err := matrix.Mul(qt, q)
	require.NoError(t, err)
	eye, err := matrix.Identity(q.Cols())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, residual(t, prod, eye), tol, "columns must be orthonormal")
}

// TestTridiagonalize_Reconstruction verifies the similarity identity
// Q·T·Qᵗ = A on a dense symmetric matrix.
func TestTridiagonalize_Reconstruction(t *testing.T) {
	a := mustDense(t, [][]float64{
		{4, 1, -2, 2},
		{1, 2, 0, 1},
		{-2, 0, 3, -2},
		{2, 1, -2, -1},
	})

	tr, err := householder.Tridiagonalize(a)
	require.NoError(t, err)

	q := tr.Q()
	assertOrthogonal(t, q, 1e-13)

	qt, err := matrix.Transpose(q)
	require.NoError(t, err)
	qt1, err := matrix.Mul(q, tr.T())
	require.NoError(t, err)
	rec, err := matrix.Mul(qt1, qt)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, residual(t, rec, a), 1e-12, "Q·T·Qᵗ must reproduce A")
}

// TestTridiagonalize_BandShape verifies that T carries no entries outside
// the three central diagonals.
func TestTridiagonalize_BandShape(t *testing.T) {
	a := mustDense(t, [][]float64{
		{1, 3, 4},
		{3, 2, 2},
		{4, 2, 0},
	})

	tr, err := householder.Tridiagonalize(a)
	require.NoError(t, err)

	tm := tr.T()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v, errAt := tm.At(i, j)
			require.NoError(t, errAt)
			if i-j > 1 || j-i > 1 {
				assert.Equal(t, 0.0, v, "entry (%d,%d) outside the band", i, j)
			}
		}
	}
	assert.Len(t, tr.Main(), 3, "main diagonal length")
	assert.Len(t, tr.Secondary(), 2, "secondary diagonal length")
}

// TestTridiagonalize_AlreadyBanded checks that a tridiagonal input keeps
// its main diagonal and the magnitudes of its off-diagonal band (reflector
// sign conventions may flip individual entries).
func TestTridiagonalize_AlreadyBanded(t *testing.T) {
	a := mustDense(t, [][]float64{
		{1, 2, 0},
		{2, 5, 3},
		{0, 3, 9},
	})

	tr, err := householder.Tridiagonalize(a)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{1, 5, 9}, tr.Main(), 1e-15, "main diagonal preserved")
	sec := tr.Secondary()
	require.Len(t, sec, 2)
	assert.InDelta(t, 2.0, math.Abs(sec[0]), 1e-15, "band magnitude preserved")
	assert.InDelta(t, 3.0, math.Abs(sec[1]), 1e-15, "band magnitude preserved")
}

// TestTridiagonalize_Caching verifies the reference-identity contract of
// the lazy accessors.
func TestTridiagonalize_Caching(t *testing.T) {
	a := mustDense(t, [][]float64{{2, 1}, {1, 2}})

	tr, err := householder.Tridiagonalize(a)
	require.NoError(t, err)

	assert.Same(t, tr.Q(), tr.Q(), "Q must be reference-stable")
	assert.Same(t, tr.T(), tr.T(), "T must be reference-stable")
}

// TestTridiagonalize_Errors covers the input guards.
func TestTridiagonalize_Errors(t *testing.T) {
	_, err := householder.Tridiagonalize(nil)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix, "nil input")

	rect := mustDense(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	_, err = householder.Tridiagonalize(rect)
	assert.ErrorIs(t, err, matrix.ErrNonSquare, "rectangular input")
}
