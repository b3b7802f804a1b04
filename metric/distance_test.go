// SPDX-License-Identifier: MIT
package metric_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/graco/matrix"
	"github.com/katalvlaran/graco/metric"
)

// allNames is every fixed name plus a spread of normalized Lp parameters.
var allNames = append(metric.Names(),
	"normalized1_l1", "normalized1_l2", "normalized1_l5", "normalized1_linf",
	"normalized2_l1", "normalized2_l2", "normalized2_l3", "normalized2_linf",
)

// randomMatrix returns an r×c matrix with entries in (0, 10]; positive so every
// metric (including the mass-normalized ones) is defined.
func randomMatrix(t *testing.T, rng *rand.Rand, r, c int) *matrix.Dense {
	t.Helper()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = make([]float64, c)
		for j := range rows[i] {
			rows[i][j] = 10 * (1 - rng.Float64())
		}
	}
	m, err := matrix.NewDenseFrom(rows)
	require.NoError(t, err)
	return m
}

// optsFor fixes the data-dependent parameters from M so that the pairwise and
// batch forms see the same V / VI.
func optsFor(t *testing.T, M *matrix.Dense, name string) []metric.Option {
	t.Helper()
	switch name {
	case "seuclidean":
		vars, err := matrix.ColumnVariances(M)
		require.NoError(t, err)
		return []metric.Option{metric.WithVariances(vars)}
	case "mahalanobis":
		cov, _, err := matrix.Covariance(M)
		require.NoError(t, err)
		inv, err := matrix.Inverse(cov)
		require.NoError(t, err)
		return []metric.Option{metric.WithInverseCovariance(inv.(*matrix.Dense))}
	}
	return nil
}

// TestKnownValues pins the extremal pair [1,0] / [0,1] and a few hand-computed values.
func TestKnownValues(t *testing.T) {
	e1, e2 := []float64{1, 0}, []float64{0, 1}
	tests := []struct {
		name string
		u, v []float64
		want float64
	}{
		{"euclidean", e1, e2, math.Sqrt2},
		{"sqeuclidean", e1, e2, 2},
		{"cityblock", e1, e2, 2},
		{"chebyshev", e1, e2, 1},
		{"cosine", e1, e2, 1},
		{"correlation", e1, e2, 2},
		{"braycurtis", e1, e2, 1},
		{"canberra", []float64{1, 0, 0}, []float64{0, 0.5, 0.5}, 3},
		{"hellinger", e1, e2, 1},
		{"hellinger", []float64{2, 2}, []float64{1, 1}, 0},
		{"js_divergence", e1, e2, 1},
		{"js_divergence", []float64{1, 3}, []float64{1, 3}, 0},
		{"normalized1_l2", e1, e2, math.Sqrt2},
		{"normalized1_linf", []float64{1, 3}, []float64{3, 3}, 0.5},
		{"normalized2_l3", e1, e2, math.Cbrt(2)},
		{"normalized2_linf", []float64{1, 3}, []float64{4, 3}, 3},
		{"gdv_similarity", []float64{0}, []float64{1}, math.Ln2 / math.Log(3)},
		{"gdv_similarity", []float64{5, 0, 7}, []float64{5, 0, 7}, 0},
		{"seuclidean", []float64{1, 2, 3}, []float64{1, 4, 0}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := metric.DistanceByName(tc.u, tc.v, tc.name)
			require.NoError(t, err)
			require.InDelta(t, tc.want, got, 1e-12)
		})
	}
}

// TestDistanceErrors covers the input error taxonomy.
func TestDistanceErrors(t *testing.T) {
	_, err := metric.DistanceByName([]float64{1}, []float64{1, 2}, "euclidean")
	require.ErrorIs(t, err, metric.ErrLengthMismatch)

	_, err = metric.DistanceByName(nil, nil, "euclidean")
	require.ErrorIs(t, err, metric.ErrEmptyVector)

	_, err = metric.DistanceByName([]float64{1}, []float64{1}, "nope")
	require.ErrorIs(t, err, metric.ErrUnknownMetric)

	_, err = metric.DistanceByName([]float64{0, 0}, []float64{1, 1}, "hellinger")
	require.ErrorIs(t, err, metric.ErrZeroMass)

	// Two samples never determine a full-rank covariance.
	_, err = metric.DistanceByName([]float64{1, 2}, []float64{0, 0}, "mahalanobis")
	require.ErrorIs(t, err, metric.ErrSingular)

	_, err = metric.DistanceByName([]float64{1, 2}, []float64{0, 2}, "seuclidean",
		metric.WithVariances([]float64{0, 1}))
	require.ErrorIs(t, err, metric.ErrBadVariance)

	_, err = metric.DistanceByName([]float64{1, 2}, []float64{0, 2}, "seuclidean",
		metric.WithVariances([]float64{1}))
	require.ErrorIs(t, err, metric.ErrLengthMismatch)
}

// TestPairwiseMatrixEquivalence checks Matrix(M)[i,j] == Distance(M[i], M[j])
// for every metric, plus symmetry and the zero diagonal.
func TestPairwiseMatrixEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	M := randomMatrix(t, rng, 12, 4)
	rows := matrix.Rows2D(M)

	for _, name := range allNames {
		t.Run(name, func(t *testing.T) {
			m := metric.MustParse(name)
			opts := optsFor(t, M, name)

			D, err := metric.Matrix(M, m, opts...)
			require.NoError(t, err)
			require.NoError(t, matrix.ValidateSymmetric(D, 0))
			require.NoError(t, matrix.ValidateZeroDiagonal(D, 0))

			for i := range rows {
				for j := range rows {
					if i == j {
						continue
					}
					want, err := metric.Distance(rows[i], rows[j], m, opts...)
					require.NoError(t, err)
					got, _ := D.At(i, j)
					require.InDelta(t, want, got, 1e-9, "(%d,%d)", i, j)
				}
			}
		})
	}
}

// TestMatrixDerivesParameters checks that Matrix without options uses the
// statistics of all its rows.
func TestMatrixDerivesParameters(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	M := randomMatrix(t, rng, 10, 3)

	for _, name := range []string{"seuclidean", "mahalanobis"} {
		derived, err := metric.MatrixByName(M, name)
		require.NoError(t, err)
		fixed, err := metric.MatrixByName(M, name, optsFor(t, M, name)...)
		require.NoError(t, err)
		ok, err := matrix.AllClose(derived, fixed, 0, 1e-12)
		require.NoError(t, err)
		require.True(t, ok, name)
	}

	// A single row has no pairs and needs no statistics.
	one := randomMatrix(t, rng, 1, 3)
	D, err := metric.MatrixByName(one, "seuclidean")
	require.NoError(t, err)
	require.Equal(t, 1, D.Rows())
}

// TestGDVScenario runs the 15-orbit pair through both forms.
func TestGDVScenario(t *testing.T) {
	u := []float64{2, 1, 0, 1, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0}
	v := []float64{3, 0, 2, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0}

	d, err := metric.DistanceByName(u, v, "gdv_similarity")
	require.NoError(t, err)
	require.Greater(t, d, 0.0)
	require.Less(t, d, 1.0)

	M, err := matrix.NewDenseFrom([][]float64{u, v})
	require.NoError(t, err)
	D, err := metric.MatrixByName(M, "gdv_similarity")
	require.NoError(t, err)
	got, _ := D.At(0, 1)
	require.InDelta(t, d, got, 1e-12)

	w := metric.OrbitWeights(15)
	require.Equal(t, 1.0, w[0])
	require.InDelta(t, 1-math.Log(4)/math.Log(15), w[5], 1e-15)
	require.Equal(t, []float64{1, 1, 1}, metric.OrbitWeights(3))
}

// boundedNames are the metrics whose table normalizer bounds convex vectors.
var boundedNames = []string{
	"cityblock", "euclidean", "sqeuclidean", "chebyshev", "cosine", "correlation",
	"canberra", "braycurtis", "hellinger", "js_divergence",
	"normalized1_l1", "normalized1_l3", "normalized1_linf",
	"normalized2_l1", "normalized2_l2", "normalized2_l4", "normalized2_linf",
}

// toConvex rescales a prefix of raw to sum 1; ok is false for an all-zero prefix.
func toConvex(raw []float64, k int) ([]float64, bool) {
	out := append([]float64(nil), raw[:k]...)
	var s float64
	for _, x := range out {
		s += x
	}
	if s == 0 {
		return nil, false
	}
	for i := range out {
		out[i] /= s
	}
	return out, true
}

// TestConvexBoundedness: distance / normalizer stays in [0, 1] on the simplex.
func TestConvexBoundedness(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(42)
	properties := gopter.NewProperties(parameters)

	metrics := make([]metric.Metric, len(boundedNames))
	for i, n := range boundedNames {
		metrics[i] = metric.MustParse(n)
	}

	properties.Property("0 <= d/normalizer <= 1", prop.ForAll(
		func(k int, a, b []float64) bool {
			u, okU := toConvex(a, k)
			v, okV := toConvex(b, k)
			if !okU || !okV {
				return true
			}
			for _, m := range metrics {
				d, err := metric.Distance(u, v, m)
				if err != nil {
					return false
				}
				if math.IsNaN(d) {
					if m.Standard == metric.Correlation && m.Kind == metric.KindStandard {
						continue // constant vector
					}
					return false
				}
				n, _ := m.Normalizer(k)
				if d < -1e-12 || d/n > 1+1e-9 {
					return false
				}
			}
			return true
		},
		gen.IntRange(2, 5),
		gen.SliceOfN(5, gen.Float64Range(0, 1)),
		gen.SliceOfN(5, gen.Float64Range(0, 1)),
	))

	properties.TestingRun(t)
}

// TestSEuclideanBounded: with variances taken from a convex sample, the
// variance-derived normalizer bounds every pair of the sample.
func TestSEuclideanBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	rows := [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for i := 0; i < 20; i++ {
		raw := []float64{rng.Float64(), rng.Float64(), rng.Float64()}
		u, _ := toConvex(raw, 3)
		rows = append(rows, u)
	}
	M, err := matrix.NewDenseFrom(rows)
	require.NoError(t, err)
	vars, err := matrix.ColumnVariances(M)
	require.NoError(t, err)
	n, err := metric.SEuclideanNormalizer(vars)
	require.NoError(t, err)

	D, err := metric.MatrixByName(M, "seuclidean")
	require.NoError(t, err)
	D.Do(func(_, _ int, v float64) bool {
		require.LessOrEqual(t, v/n, 1+1e-9)
		return true
	})
}
