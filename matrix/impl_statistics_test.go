// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/katalvlaran/graco/matrix"
	"github.com/stretchr/testify/require"
)

// TestNormalizeRowsL1 checks unit mass rows and the degenerate-row rule.
func TestNormalizeRowsL1(t *testing.T) {
	X, err := matrix.NewDenseFrom([][]float64{{1, 3}, {0, 0}, {2, 2}})
	require.NoError(t, err)

	Y, norms, err := matrix.NormalizeRowsL1(X)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 0, 4}, norms)

	want, _ := matrix.NewDenseFrom([][]float64{{0.25, 0.75}, {0, 0}, {0.5, 0.5}})
	ok, err := matrix.AllClose(Y, want, 0, 1e-15)
	require.NoError(t, err)
	require.True(t, ok)

	// Input untouched.
	v, _ := X.At(0, 0)
	require.Equal(t, 1.0, v)

	_, _, err = matrix.NormalizeRowsL1(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// TestColumnVariances verifies the ddof=1 estimator and the row-count guard.
func TestColumnVariances(t *testing.T) {
	X, err := matrix.NewDenseFrom([][]float64{{1, 2}, {2, 2}, {3, 2}, {4, 2}})
	require.NoError(t, err)

	vars, err := matrix.ColumnVariances(X)
	require.NoError(t, err)
	require.InDelta(t, 5.0/3.0, vars[0], 1e-12)
	require.Equal(t, 0.0, vars[1])

	means, err := matrix.ColumnMeans(X)
	require.NoError(t, err)
	require.Equal(t, []float64{2.5, 2}, means)

	one, _ := matrix.NewDenseFrom([][]float64{{1, 2}})
	_, err = matrix.ColumnVariances(one)
	require.ErrorIs(t, err, matrix.ErrBadShape)
}

// TestCovariance checks a rank-one 3×2 sample.
func TestCovariance(t *testing.T) {
	X, err := matrix.NewDenseFrom([][]float64{{1, 2}, {2, 4}, {3, 6}})
	require.NoError(t, err)

	cov, means, err := matrix.Covariance(X)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 4}, means)

	want, _ := matrix.NewDenseFrom([][]float64{{1, 2}, {2, 4}})
	ok, err := matrix.AllClose(cov, want, 0, 1e-12)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, matrix.ValidateSymmetric(cov, 0))
}
