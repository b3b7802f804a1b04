// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Provide the statistical transforms the metrics depend on:
//       NormalizeRowsL1(X) -> (Y, norms)   // L1 row normalization (degenerate rows unchanged)
//       ColumnMeans(X)     -> means
//       ColumnVariances(X) -> variances    // sample variance, ddof=1
//       Covariance(X)      -> (Cov, means) // sample covariance of columns, ddof=1
//   - Column statistics are computed by gonum/stat so they agree bit-for-bit with the
//     estimator used everywhere else in the module.
//
// Determinism & Performance:
//   - Fixed i→j traversal for all explicit loops.
//   - Dense fast-paths avoid At/Set and operate on row-major flat buffers.

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Operation name constants for unified error wrapping.
const (
	opNormalizeRowsL1 = "NormalizeRowsL1"
	opColumnMeans     = "ColumnMeans"
	opColumnVariances = "ColumnVariances"
	opCovariance      = "Covariance"
)

// NormalizeRowsL1 divides every row by its L1 norm Σ|x|.
//
// Behavior highlights:
//   - Rows whose norm is 0 are copied unchanged (norm reported as 0).
//   - The output keeps the numeric policy of a *Dense input.
//
// Returns:
//   - Matrix: normalized copy.
//   - []float64: per-row L1 norms (len = r).
//
// Errors:
//   - ErrNilMatrix; wrapped At errors from the fallback path.
//
// Complexity: Time O(r*c), Space O(r*c).
func NormalizeRowsL1(X Matrix) (Matrix, []float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL1, err)
	}
	d, err := asDense(X)
	if err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL1, err)
	}

	r, c := d.r, d.c
	norms := make([]float64, r)
	var i, j, base int
	for i = 0; i < r; i++ {
		base = i * c
		for j = 0; j < c; j++ {
			norms[i] += math.Abs(d.data[base+j])
		}
	}

	scale := make([]float64, r)
	for i = 0; i < r; i++ {
		if norms[i] == 0 {
			scale[i] = 1 // degenerate row stays as is
			continue
		}
		scale[i] = 1 / norms[i]
	}

	Y, err := ewScaleRows(d, scale)
	if err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL1, err)
	}

	return Y, norms, nil
}

// ColumnMeans returns the arithmetic mean of every column.
// Errors: ErrNilMatrix; ErrBadShape for a matrix without rows.
// Complexity: O(r*c).
func ColumnMeans(X Matrix) ([]float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(opColumnMeans, err)
	}
	if X.Rows() == 0 {
		return nil, matrixErrorf(opColumnMeans, ErrBadShape)
	}
	cols, err := columns(X)
	if err != nil {
		return nil, matrixErrorf(opColumnMeans, err)
	}
	means := make([]float64, len(cols))
	for j, col := range cols {
		means[j] = stat.Mean(col, nil)
	}

	return means, nil
}

// ColumnVariances returns the sample variance (ddof=1) of every column.
//
// Errors:
//   - ErrNilMatrix.
//   - ErrBadShape when X has fewer than 2 rows (the estimator is undefined).
//
// Complexity: O(r*c).
func ColumnVariances(X Matrix) ([]float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(opColumnVariances, err)
	}
	if X.Rows() < 2 {
		return nil, matrixErrorf(opColumnVariances, fmt.Errorf("need at least 2 rows, got %d: %w", X.Rows(), ErrBadShape))
	}
	cols, err := columns(X)
	if err != nil {
		return nil, matrixErrorf(opColumnVariances, err)
	}
	vars := make([]float64, len(cols))
	for j, col := range cols {
		vars[j] = stat.Variance(col, nil) // unbiased, divides by n-1
	}

	return vars, nil
}

// Covariance returns the c×c sample covariance of the columns of X (ddof=1) and the
// column means.
//
// Errors:
//   - ErrNilMatrix; ErrBadShape when X has fewer than 2 rows.
//
// Complexity: O(r*c²).
func Covariance(X Matrix) (Matrix, []float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	r, c := X.Rows(), X.Cols()
	if r < 2 {
		return nil, nil, matrixErrorf(opCovariance, fmt.Errorf("need at least 2 rows, got %d: %w", r, ErrBadShape))
	}
	cols, err := columns(X)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}

	means := make([]float64, c)
	for j, col := range cols {
		means[j] = stat.Mean(col, nil)
	}

	cov, _ := NewDense(c, c) // c > 0 for any non-nil Matrix with rows
	var a, b int
	var v float64
	for a = 0; a < c; a++ {
		for b = a; b < c; b++ {
			v = stat.Covariance(cols[a], cols[b], nil)
			cov.data[a*c+b] = v
			cov.data[b*c+a] = v
		}
	}

	return cov, means, nil
}

// columns materialises the columns of X as separate slices (gonum/stat works per slice).
func columns(X Matrix) ([][]float64, error) {
	r, c := X.Rows(), X.Cols()
	cols := make([][]float64, c)
	for j := range cols {
		cols[j] = make([]float64, r)
	}
	if d, ok := X.(*Dense); ok {
		for i := 0; i < r; i++ {
			base := i * c
			for j := 0; j < c; j++ {
				cols[j][i] = d.data[base+j]
			}
		}

		return cols, nil
	}

	var v float64
	var err error
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v, err = X.At(i, j); err != nil {
				return nil, err
			}
			cols[j][i] = v
		}
	}

	return cols, nil
}

// asDense returns X itself when it is a *Dense, otherwise a Dense copy.
func asDense(X Matrix) (*Dense, error) {
	if d, ok := X.(*Dense); ok {
		return d, nil
	}
	out, err := newDenseZeroOK(X.Rows(), X.Cols(), false)
	if err != nil {
		return nil, err
	}
	var v float64
	for i := 0; i < out.r; i++ {
		for j := 0; j < out.c; j++ {
			if v, err = X.At(i, j); err != nil {
				return nil, err
			}
			out.data[i*out.c+j] = v
		}
	}

	return out, nil
}
