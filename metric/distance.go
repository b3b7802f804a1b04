// SPDX-License-Identifier: MIT

package metric

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graco/matrix"
)

const (
	opDistance = "Distance"
	opMatrix   = "Matrix"
)

// Distance evaluates m on one pair of vectors.
//
// Implementation:
//   - Stage 1: validate lengths (equal, non-zero).
//   - Stage 2: mass-normalize u and v for hellinger and js_divergence.
//   - Stage 3: resolve parameters; seuclidean and mahalanobis derive V / VI from
//     the two vectors when no option supplies them.
//   - Stage 4: run the kernel.
//
// Errors:
//   - ErrEmptyVector, ErrLengthMismatch, ErrZeroMass, ErrBadVariance, ErrSingular,
//     ErrUnknownMetric.
//
// Complexity: O(n) for most metrics, O(n²) for mahalanobis (O(n³) when VI is derived).
func Distance(u, v []float64, m Metric, opts ...Option) (float64, error) {
	if len(u) == 0 || len(v) == 0 {
		return 0, metricErrorf(opDistance, ErrEmptyVector)
	}
	if len(u) != len(v) {
		return 0, metricErrorf(opDistance, fmt.Errorf("%d vs %d: %w", len(u), len(v), ErrLengthMismatch))
	}
	k, err := kernelFor(m)
	if err != nil {
		return 0, metricErrorf(opDistance, err)
	}

	if needsDistribution(m) {
		if u, err = toDistribution(u); err != nil {
			return 0, metricErrorf(opDistance, fmt.Errorf("u: %w", err))
		}
		if v, err = toDistribution(v); err != nil {
			return 0, metricErrorf(opDistance, fmt.Errorf("v: %w", err))
		}
	}

	pair, err := matrix.NewDenseFrom([][]float64{u, v}, matrix.WithNoValidateNaNInf())
	if err != nil {
		return 0, metricErrorf(opDistance, err)
	}
	p, err := resolveParams(m, pair, Resolve(opts...))
	if err != nil {
		return 0, metricErrorf(opDistance, err)
	}

	d, err := k(u, v, p)
	if err != nil {
		return 0, metricErrorf(opDistance, err)
	}

	return d, nil
}

// DistanceByName parses name and calls Distance.
func DistanceByName(u, v []float64, name string, opts ...Option) (float64, error) {
	m, err := Parse(name)
	if err != nil {
		return 0, metricErrorf(opDistance, err)
	}

	return Distance(u, v, m, opts...)
}

// Matrix evaluates m on all pairs of rows of M and returns the n×n distance
// matrix: symmetric, zero diagonal, NaN permitted (e.g. cosine of a zero row).
//
// Implementation:
//   - Stage 1: mass-normalize rows for hellinger and js_divergence.
//   - Stage 2: resolve parameters once; seuclidean and mahalanobis derive V / VI
//     from all rows of M when no option supplies them.
//   - Stage 3: upper triangle i<j through the pairwise kernel, mirrored.
//
// Errors: as Distance, plus matrix.ErrNilMatrix.
// Complexity: O(n²·c) (+O(c³) for a derived VI).
func Matrix(M *matrix.Dense, m Metric, opts ...Option) (*matrix.Dense, error) {
	if M == nil {
		return nil, metricErrorf(opMatrix, matrix.ErrNilMatrix)
	}
	k, err := kernelFor(m)
	if err != nil {
		return nil, metricErrorf(opMatrix, err)
	}

	n := M.Rows()
	rows := matrix.Rows2D(M)
	if needsDistribution(m) {
		for i := range rows {
			if rows[i], err = toDistribution(rows[i]); err != nil {
				return nil, metricErrorf(opMatrix, fmt.Errorf("row %d: %w", i, err))
			}
		}
	}

	D, err := matrix.NewZerosNaNOK(n, n)
	if err != nil {
		return nil, metricErrorf(opMatrix, err)
	}
	if n < 2 {
		return D, nil
	}

	p, err := resolveParams(m, M, Resolve(opts...))
	if err != nil {
		return nil, metricErrorf(opMatrix, err)
	}

	var d float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if d, err = k(rows[i], rows[j], p); err != nil {
				return nil, metricErrorf(opMatrix, fmt.Errorf("pair (%d,%d): %w", i, j, err))
			}
			_ = D.Set(i, j, d) // in range, NaN permitted
			_ = D.Set(j, i, d)
		}
	}

	return D, nil
}

// MatrixByName parses name and calls Matrix.
func MatrixByName(M *matrix.Dense, name string, opts ...Option) (*matrix.Dense, error) {
	m, err := Parse(name)
	if err != nil {
		return nil, metricErrorf(opMatrix, err)
	}

	return Matrix(M, m, opts...)
}

// resolveParams fills params for the metrics that need them. rows is the sample
// used to derive V / VI when opts leave them unset.
func resolveParams(m Metric, rows *matrix.Dense, o Options) (*params, error) {
	p := &params{weights: o.weights}
	if m.Kind != KindStandard {
		return p, nil
	}

	switch m.Standard {
	case SEuclidean:
		if o.variances != nil {
			p.variances = o.variances
			break
		}
		vars, err := matrix.ColumnVariances(rows)
		if err != nil {
			return nil, err
		}
		p.variances = vars
	case Mahalanobis:
		vi := o.invCov
		if vi == nil {
			cov, _, err := matrix.Covariance(rows)
			if err != nil {
				return nil, err
			}
			inv, err := matrix.Inverse(cov)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", err, ErrSingular)
			}
			vi = inv.(*matrix.Dense)
		}
		r, c := vi.Shape()
		flat := make([]float64, 0, r*c)
		for _, row := range matrix.Rows2D(vi) {
			flat = append(flat, row...)
		}
		p.invCov = mat.NewDense(r, c, flat)
	}

	return p, nil
}
