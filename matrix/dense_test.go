// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/linalg/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewDense_Zeros verifies that NewDense allocates an all-zero matrix of
// the requested shape and rejects non-positive dimensions.
func TestNewDense_Zeros(t *testing.T) {
	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err, "positive dims must construct")
	assert.Equal(t, 2, m.Rows(), "row count")
	assert.Equal(t, 3, m.Cols(), "column count")

	v, err := m.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v, "fresh matrix is zero-initialized")

	_, err = matrix.NewDense(0, 3)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions, "zero rows must error")
	_, err = matrix.NewDense(3, -1)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions, "negative cols must error")
}

// TestNewDenseFromRows_CopiesSource verifies the defensive-copy contract:
// mutating the source after construction never leaks into the matrix.
func TestNewDenseFromRows_CopiesSource(t *testing.T) {
	src := [][]float64{{1, 2}, {3, 4}}
	m, err := matrix.NewDenseFromRows(src)
	require.NoError(t, err)

	src[0][0] = 99 // mutate the source after ingestion

	v, err := m.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v, "matrix must hold the pre-mutation value")
}

// TestNewDenseFromRows_Ragged ensures a ragged source is rejected before
// any allocation-visible effect.
func TestNewDenseFromRows_Ragged(t *testing.T) {
	_, err := matrix.NewDenseFromRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, matrix.ErrRagged, "ragged rows must error")

	_, err = matrix.NewDenseFromRows([][]float64{})
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions, "empty source must error")
}

// TestNewDenseFromRows_NaNPolicy checks that the strict numeric policy
// rejects NaN by default and that WithNoValidateNaNInf relaxes it.
func TestNewDenseFromRows_NaNPolicy(t *testing.T) {
	bad := [][]float64{{1, math.NaN()}, {3, 4}}

	_, err := matrix.NewDenseFromRows(bad)
	assert.ErrorIs(t, err, matrix.ErrNaNInf, "NaN must be rejected by default")

	m, err := matrix.NewDenseFromRows(bad, matrix.WithNoValidateNaNInf())
	require.NoError(t, err, "relaxed policy must accept NaN")
	assert.False(t, m.IsFinite(), "IsFinite reports the NaN entry")
}

// TestDense_AtSetBounds verifies bounds checking on both accessors.
func TestDense_AtSetBounds(t *testing.T) {
	m, err := matrix.NewDense(2, 2)
	require.NoError(t, err)

	_, err = m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrIndexOutOfBounds, "row overflow on At")
	_, err = m.At(0, -1)
	assert.ErrorIs(t, err, matrix.ErrIndexOutOfBounds, "negative column on At")
	err = m.Set(-1, 0, 1)
	assert.ErrorIs(t, err, matrix.ErrIndexOutOfBounds, "negative row on Set")

	require.NoError(t, m.Set(1, 1, 7))
	v, err := m.At(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v, "round-trip through Set/At")
}

// TestDense_CloneIndependence verifies Clone yields a deep copy.
func TestDense_CloneIndependence(t *testing.T) {
	m, err := matrix.NewDenseFromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	c := m.Clone()
	require.NoError(t, m.Set(0, 0, 100))

	v, err := c.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v, "clone must be unaffected by source mutation")
}

// TestIdentity verifies the identity constructor.
func TestIdentity(t *testing.T) {
	eye, err := matrix.Identity(3)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v, errAt := eye.At(i, j)
			require.NoError(t, errAt)
			if i == j {
				assert.Equal(t, 1.0, v, "diagonal entry")
			} else {
				assert.Equal(t, 0.0, v, "off-diagonal entry")
			}
		}
	}
}

// TestCloneDense_FromInterface verifies the generic fallback path copies an
// arbitrary Matrix implementation correctly.
func TestCloneDense_FromInterface(t *testing.T) {
	m, err := matrix.NewDenseFromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	c, err := matrix.CloneDense(m)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, c.Raw(), "flat row-major copy")

	_, err = matrix.CloneDense(nil)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix, "nil input must error")
}

// TestNewDenseNoCopy_Aliases verifies the explicit aliasing contract.
func TestNewDenseNoCopy_Aliases(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	m, err := matrix.NewDenseNoCopy(2, 2, data)
	require.NoError(t, err)

	data[0] = 42 // caller mutation is visible by contract
	v, err := m.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v, "no-copy constructor aliases the slice")

	_, err = matrix.NewDenseNoCopy(2, 2, []float64{1})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch, "length mismatch must error")
}
