// SPDX-License-Identifier: MIT
package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/graco/matrix"
	"github.com/stretchr/testify/require"
)

// TestAllCloseNaN verifies that NaN matches only NaN at the same position.
func TestAllCloseNaN(t *testing.T) {
	nan := math.NaN()
	a, _ := matrix.NewDenseFrom([][]float64{{1, nan}}, matrix.WithNoValidateNaNInf())
	b, _ := matrix.NewDenseFrom([][]float64{{1 + 1e-10, nan}}, matrix.WithNoValidateNaNInf())
	c, _ := matrix.NewDenseFrom([][]float64{{1, 0}}, matrix.WithNoValidateNaNInf())

	ok, err := matrix.AllClose(a, b, 1e-8, 0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = matrix.AllClose(a, c, 1e-8, 1)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = matrix.AllClose(a, c, nan, 0)
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

// TestScatterAddDivideOrNaN runs the block-accumulation kernels end to end:
// two blocks over a 3-row matrix, row 2 absent from the first block.
func TestScatterAddDivideOrNaN(t *testing.T) {
	sum, err := matrix.NewZerosNaNOK(3, 3)
	require.NoError(t, err)
	div, err := matrix.NewZerosNaNOK(3, 3)
	require.NoError(t, err)

	blockA := mustDense(t, [][]float64{{0, 2}, {2, 0}})
	onesA := mustDense(t, [][]float64{{1, 1}, {1, 1}})
	require.NoError(t, matrix.ScatterAdd(sum, []int{0, 1}, blockA))
	require.NoError(t, matrix.ScatterAdd(div, []int{0, 1}, onesA))

	blockB := mustDense(t, [][]float64{{0, 4}, {4, 0}})
	onesB := mustDense(t, [][]float64{{1, 1}, {1, 1}})
	require.NoError(t, matrix.ScatterAdd(sum, []int{1, 0}, blockB))
	require.NoError(t, matrix.ScatterAdd(div, []int{1, 0}, onesB))

	out, err := matrix.DivideOrNaN(sum, div)
	require.NoError(t, err)

	v01, _ := out.At(0, 1)
	require.Equal(t, 3.0, v01)
	v22, _ := out.At(2, 2)
	require.True(t, math.IsNaN(v22))
	v02, _ := out.At(0, 2)
	require.True(t, math.IsNaN(v02))

	err = matrix.ScatterAdd(sum, []int{0, 5}, blockA)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	err = matrix.ScatterAdd(sum, []int{0}, blockA)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}
