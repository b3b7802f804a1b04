// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Scale (normalised distance matrices) and Inverse (mahalanobis VI).
//   - Dense fast-path over the flat row-major buffer; generic At/Set fallback otherwise.
//   - Inverse delegates factorisation to gonum/mat (LU); a singular input is ErrSingular.

package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Operation tags for unified error wrapping.
const (
	opScale   = "Scale"
	opInverse = "Inverse"
)

// matrixErrorf wraps err with an operation tag: "<tag>: <err>".
// Callers must gate with err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Scale returns alpha*m as a fresh Dense.
// Complexity: O(r*c).
func Scale(m Matrix, alpha float64) (Matrix, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	out := m.Clone()
	if d, ok := out.(*Dense); ok {
		for k := range d.data {
			d.data[k] *= alpha
		}

		return d, nil
	}

	var v float64
	var err error
	for i := 0; i < out.Rows(); i++ {
		for j := 0; j < out.Cols(); j++ {
			if v, err = out.At(i, j); err != nil {
				return nil, matrixErrorf(opScale, err)
			}
			if err = out.Set(i, j, v*alpha); err != nil {
				return nil, matrixErrorf(opScale, err)
			}
		}
	}

	return out, nil
}

// Inverse returns m⁻¹ for a square, well-conditioned m.
//
// Implementation:
//   - Stage 1: ValidateSquareNonNil, copy into a gonum mat.Dense.
//   - Stage 2: mat.Dense.Inverse (LU). Both an exactly singular input and a
//     condition-number warning (mat.Condition) are reported as ErrSingular.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrSingular.
//
// Complexity: O(n³).
func Inverse(m Matrix) (Matrix, error) {
	if err := ValidateSquareNonNil(m); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	src, err := toGonum(m)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	var inv mat.Dense
	if err = inv.Inverse(src); err != nil {
		return nil, matrixErrorf(opInverse, fmt.Errorf("%v: %w", err, ErrSingular))
	}

	return fromGonum(&inv), nil
}

// toGonum copies m into a gonum mat.Dense (row-major, same layout).
func toGonum(m Matrix) (*mat.Dense, error) {
	r, c := m.Rows(), m.Cols()
	if d, ok := m.(*Dense); ok {
		buf := make([]float64, len(d.data))
		copy(buf, d.data)

		return mat.NewDense(r, c, buf), nil
	}

	buf := make([]float64, r*c)
	var v float64
	var err error
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, err
			}
			buf[i*c+j] = v
		}
	}

	return mat.NewDense(r, c, buf), nil
}

// fromGonum copies a gonum matrix into a fresh Dense with the default policy.
func fromGonum(g mat.Matrix) *Dense {
	r, c := g.Dims()
	out := &Dense{r: r, c: c, data: make([]float64, r*c), validateNaNInf: DefaultValidateNaNInf}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.data[i*c+j] = g.At(i, j)
		}
	}

	return out
}
