// SPDX-License-Identifier: MIT
// Package matrix_test contains unit tests for the matrix validators.
package matrix_test

import (
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/graco/matrix"
	"github.com/stretchr/testify/require"
)

// TestValidateSameShape covers nil inputs, matching and mismatched dimensions.
func TestValidateSameShape(t *testing.T) {
	t.Parallel()

	zeros := func(r, c int) matrix.Matrix {
		m, err := matrix.NewDense(r, c)
		require.NoError(t, err)
		return m
	}

	tests := []struct {
		name    string
		a, b    matrix.Matrix
		wantErr error
	}{
		{"both nil", nil, nil, matrix.ErrNilMatrix},
		{"first nil", nil, zeros(2, 2), matrix.ErrNilMatrix},
		{"second nil", zeros(2, 2), nil, matrix.ErrNilMatrix},
		{"equal 2x3", zeros(2, 3), zeros(2, 3), nil},
		{"row mismatch", zeros(2, 3), zeros(3, 3), matrix.ErrDimensionMismatch},
		{"col mismatch", zeros(2, 3), zeros(2, 4), matrix.ErrDimensionMismatch},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := matrix.ValidateBinarySameShape(tc.a, tc.b)
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.Truef(t, errors.Is(err, tc.wantErr),
					"expected errors.Is(%v, %v)", err, tc.wantErr)
			}
		})
	}
}

// TestValidateSymmetric covers tolerance, NaN mirroring and shape errors.
func TestValidateSymmetric(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name    string
		rows    [][]float64
		tol     float64
		wantErr error
	}{
		{"symmetric", [][]float64{{0, 1}, {1, 0}}, 0, nil},
		{"within tol", [][]float64{{0, 1}, {1 + 1e-12, 0}}, 1e-9, nil},
		{"asymmetric", [][]float64{{0, 1}, {2, 0}}, 1e-9, matrix.ErrAsymmetry},
		{"nan mirrored", [][]float64{{0, nan}, {nan, 0}}, 0, nil},
		{"nan one side", [][]float64{{0, nan}, {1, 0}}, 0, matrix.ErrAsymmetry},
		{"not square", [][]float64{{0, 1, 2}, {1, 0, 2}}, 0, matrix.ErrDimensionMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := matrix.NewDenseFrom(tc.rows, matrix.WithNoValidateNaNInf())
			require.NoError(t, err)
			err = matrix.ValidateSymmetric(m, tc.tol)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	require.ErrorIs(t, matrix.ValidateSymmetric(nil, 0), matrix.ErrNilMatrix)
}

// TestValidateZeroDiagonal checks tolerance and NaN handling on the diagonal.
func TestValidateZeroDiagonal(t *testing.T) {
	ok, err := matrix.NewDenseFrom([][]float64{{1e-12, 3}, {3, 0}})
	require.NoError(t, err)
	require.NoError(t, matrix.ValidateZeroDiagonal(ok, 1e-9))

	bad, err := matrix.NewDenseFrom([][]float64{{0, 3}, {3, 0.5}})
	require.NoError(t, err)
	require.ErrorIs(t, matrix.ValidateZeroDiagonal(bad, 1e-9), matrix.ErrNonZeroDiagonal)

	nanDiag, err := matrix.NewDenseFrom([][]float64{{math.NaN()}}, matrix.WithNoValidateNaNInf())
	require.NoError(t, err)
	require.ErrorIs(t, matrix.ValidateZeroDiagonal(nanDiag, 1), matrix.ErrNonZeroDiagonal)
}

// TestValidateFinite rejects NaN and ±Inf entries.
func TestValidateFinite(t *testing.T) {
	m, err := matrix.NewDenseFrom([][]float64{{1, math.Inf(1)}}, matrix.WithNoValidateNaNInf())
	require.NoError(t, err)
	require.ErrorIs(t, matrix.ValidateFinite(m), matrix.ErrNaNInf)
}
