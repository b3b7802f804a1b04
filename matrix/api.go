// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Thin convenience constructors and a [][]float64 conversion.

package matrix

// NewZeros allocates an r×c zero matrix with the default numeric policy.
func NewZeros(rows, cols int) (*Dense, error) { return NewDense(rows, cols) }

// NewZerosNaNOK allocates an r×c zero matrix that accepts NaN and ±Inf.
// Used for distance matrices and accumulators.
func NewZerosNaNOK(rows, cols int) (*Dense, error) {
	return NewDenseWith(rows, cols, WithNoValidateNaNInf())
}

// Rows2D copies m into a fresh [][]float64 (row-major).
func Rows2D(m *Dense) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, m.r)
	for i := range out {
		out[i] = make([]float64, m.c)
		copy(out[i], m.rowView(i))
	}

	return out
}
