// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Element-wise and scatter kernels shared by statistics and block aggregation.
//   - ewScaleRows stays private; AllClose, ScatterAdd and DivideOrNaN are the public
//     surface used by the distance engine.
//
// Determinism & Performance:
//   - Fixed loop orders (i→j or flat 0..n-1) over the row-major buffer.
//   - No hidden allocations beyond the output Dense.

package matrix

import (
	"fmt"
	"math"
)

const (
	opAllClose    = "AllClose"
	opScatterAdd  = "ScatterAdd"
	opDivideOrNaN = "DivideOrNaN"
	opScaleRows   = "scaleRows"
)

// ewScaleRows computes out[i,j] = X[i,j] * scale[i].
// Time: O(r*c). Space: O(r*c).
func ewScaleRows(X *Dense, scale []float64) (*Dense, error) {
	if X == nil {
		return nil, matrixErrorf(opScaleRows, ErrNilMatrix)
	}
	if len(scale) != X.r {
		return nil, matrixErrorf(opScaleRows, ErrDimensionMismatch)
	}
	out, err := newDenseZeroOK(X.r, X.c, X.validateNaNInf)
	if err != nil {
		return nil, matrixErrorf(opScaleRows, err)
	}
	var i, j, base int
	for i = 0; i < X.r; i++ {
		base = i * X.c
		for j = 0; j < X.c; j++ {
			out.data[base+j] = X.data[base+j] * scale[i]
		}
	}

	return out, nil
}

// AllClose reports whether |a-b| ≤ atol + rtol*|b| holds element-wise.
//
// Policy:
//   - a and b must be non-nil and have identical shapes.
//   - NaN matches NaN at the same position; NaN against a number is a mismatch.
//   - ±Inf matches only the same infinity.
//   - Negative tolerances are normalized to their absolute value.
//
// Errors: ErrNaNInf for a non-finite tolerance, ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(r*c), early exit on the first violation.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf(opAllClose, ErrNaNInf)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	if err := ValidateBinarySameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}

	var av, bv float64
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			av, _ = a.At(i, j)
			bv, _ = b.At(i, j)
			if !closeEnough(av, bv, rtol, atol) {
				return false, nil
			}
		}
	}

	return true, nil
}

// closeEnough is the scalar AllClose predicate.
func closeEnough(a, b, rtol, atol float64) bool {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	if aNaN || bNaN {
		return aNaN && bNaN
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}

	return math.Abs(a-b) <= atol+rtol*math.Abs(b)
}

// ScatterAdd accumulates src into dst at the index pairs given by idx:
// dst[idx[a], idx[b]] += src[a, b] for every a, b.
//
// Inputs:
//   - dst: n×n accumulator (any policy; NaN in src propagates).
//   - idx: len(idx) == src.Rows() == src.Cols(); every entry in [0, n).
//
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrOutOfRange.
// Complexity: O(k²) with k = len(idx).
func ScatterAdd(dst *Dense, idx []int, src *Dense) error {
	if dst == nil || src == nil {
		return matrixErrorf(opScatterAdd, ErrNilMatrix)
	}
	k := len(idx)
	if src.r != k || src.c != k || dst.r != dst.c {
		return matrixErrorf(opScatterAdd, ErrDimensionMismatch)
	}
	for _, p := range idx {
		if p < 0 || p >= dst.r {
			return matrixErrorf(opScatterAdd, fmt.Errorf("index %d: %w", p, ErrOutOfRange))
		}
	}

	n := dst.c
	var a, b int
	for a = 0; a < k; a++ {
		row := idx[a] * n
		for b = 0; b < k; b++ {
			dst.data[row+idx[b]] += src.data[a*k+b]
		}
	}

	return nil
}

// DivideOrNaN returns num/den element-wise, with NaN wherever den == 0.
// The result never validates NaN/Inf, since NaN is a legitimate value here.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(r*c).
func DivideOrNaN(num, den *Dense) (*Dense, error) {
	if num == nil || den == nil {
		return nil, matrixErrorf(opDivideOrNaN, ErrNilMatrix)
	}
	if num.r != den.r || num.c != den.c {
		return nil, matrixErrorf(opDivideOrNaN, ErrDimensionMismatch)
	}
	out, err := newDenseZeroOK(num.r, num.c, false)
	if err != nil {
		return nil, matrixErrorf(opDivideOrNaN, err)
	}
	for k := range num.data {
		if den.data[k] == 0 {
			out.data[k] = math.NaN()
			continue
		}
		out.data[k] = num.data[k] / den.data[k]
	}

	return out, nil
}
