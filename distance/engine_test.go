// SPDX-License-Identifier: MIT
package distance_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/graco/distance"
	"github.com/katalvlaran/graco/matrix"
	"github.com/katalvlaran/graco/metric"
)

// extremalNames reach 1 on the pair [1,0], [0,1].
var extremalNames = []string{
	"cityblock", "euclidean", "sqeuclidean", "chebyshev", "cosine", "correlation",
	"canberra", "braycurtis", "seuclidean", "hellinger", "js_divergence",
	"normalized1_l1", "normalized1_l2", "normalized1_linf",
	"normalized2_l1", "normalized2_l2", "normalized2_linf",
}

// vertexMax lists the metrics that reach 1 on two simplex vertices of any dimension.
var vertexMax = map[string]bool{
	"cityblock": true, "euclidean": true, "sqeuclidean": true, "chebyshev": true,
	"cosine": true, "braycurtis": true, "hellinger": true, "js_divergence": true,
	"normalized1_linf": true, "normalized2_l2": true, "normalized2_linf": true,
}

// fakeExecutor answers with the closed form and counts calls.
type fakeExecutor struct {
	calls []string
	err   error
}

func (f *fakeExecutor) Supports(m metric.Metric) bool {
	return m.Kind != metric.KindStandard
}

func (f *fakeExecutor) DistanceMatrix(_ context.Context, M *matrix.Dense, m metric.Metric) (*matrix.Dense, error) {
	f.calls = append(f.calls, m.Name)
	if f.err != nil {
		return nil, f.err
	}

	return metric.Matrix(M, m)
}

func simplexSample(t *testing.T, rng *rand.Rand, n, dim int) *matrix.Dense {
	t.Helper()
	rows := make([][]float64, 0, n+dim)
	for i := 0; i < dim; i++ {
		e := make([]float64, dim)
		e[i] = 1
		rows = append(rows, e)
	}
	for len(rows) < n+dim {
		row := make([]float64, dim)
		var s float64
		for j := range row {
			row[j] = rng.Float64()
			s += row[j]
		}
		for j := range row {
			row[j] /= s
		}
		rows = append(rows, row)
	}
	M, err := matrix.NewDenseFrom(rows)
	require.NoError(t, err)

	return M
}

func TestConvexDistanceExtremal(t *testing.T) {
	e := distance.NewEngine()
	u, v := []float64{1, 0}, []float64{0, 1}
	for _, name := range extremalNames {
		d, err := e.ConvexDistance(u, v, name)
		require.NoError(t, err, name)
		require.InDelta(t, 1, d, 1e-12, name)

		d, err = e.ConvexDistance(u, u, name)
		require.NoError(t, err, name)
		require.InDelta(t, 0, d, 1e-12, name)
	}
}

func TestConvexDistanceRejectsNonConvex(t *testing.T) {
	e := distance.NewEngine()
	_, err := e.ConvexDistance([]float64{0.5, 0.6}, []float64{0, 1}, "cityblock")
	require.ErrorIs(t, err, distance.ErrNotConvex)
	var inv *distance.InvariantError
	require.True(t, errors.As(err, &inv))
	require.Contains(t, inv.Detail, "sum(u)")

	_, err = e.ConvexDistance([]float64{1, 0}, []float64{1, 1e-9}, "cityblock")
	require.NoError(t, err, "within tolerance")

	// Sums to 1 but leaves the simplex.
	for _, name := range []string{"cityblock", "euclidean", "hellinger"} {
		_, err = e.ConvexDistance([]float64{1.5, -0.5}, []float64{0, 1}, name)
		require.ErrorIs(t, err, distance.ErrNotConvex, name)
		require.True(t, errors.As(err, &inv))
		require.Equal(t, "u[1]=-0.5", inv.Detail)
	}
	_, err = e.ConvexDistance([]float64{0, 1}, []float64{math.NaN(), 1}, "cityblock")
	require.ErrorIs(t, err, distance.ErrNotConvex)
	require.True(t, errors.As(err, &inv))
	require.Contains(t, inv.Detail, "v[0]")

	_, err = e.ConvexDistance([]float64{1, 0}, []float64{0, 1}, "minkowski")
	require.ErrorIs(t, err, metric.ErrUnknownMetric)
	require.False(t, errors.As(err, &inv))
}

// TestNormalizedMatrixMatchesConvexDistance checks the batch path against the
// pairwise one on a simplex sample, including the variance-derived seuclidean.
func TestNormalizedMatrixMatchesConvexDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	M := simplexSample(t, rng, 8, 4)
	vars, err := matrix.ColumnVariances(M)
	require.NoError(t, err)
	rows := matrix.Rows2D(M)

	e := distance.NewEngine()
	ctx := context.Background()
	for _, name := range extremalNames {
		t.Run(name, func(t *testing.T) {
			D, err := e.NormalizedDistanceMatrix(ctx, M, name)
			require.NoError(t, err)
			require.NoError(t, matrix.ValidateZeroDiagonal(D, 0))

			var opts []metric.Option
			if name == "seuclidean" {
				opts = append(opts, metric.WithVariances(vars))
			}
			for i := range rows {
				for j := range rows {
					want, err := e.ConvexDistance(rows[i], rows[j], name, opts...)
					require.NoError(t, err)
					got, _ := D.At(i, j)
					require.InDelta(t, want, got, 1e-9, "(%d,%d)", i, j)
					require.LessOrEqual(t, got, 1+1e-9)
				}
			}
			if vertexMax[name] {
				got, _ := D.At(0, 1)
				require.InDelta(t, 1, got, 1e-9)
			}
		})
	}
}

func TestExecutorRouting(t *testing.T) {
	x := &fakeExecutor{}
	e := distance.NewEngine(distance.WithExecutor(x))
	ctx := context.Background()
	M, err := matrix.NewDenseFrom([][]float64{{1, 2, 0}, {0, 1, 3}, {2, 2, 2}})
	require.NoError(t, err)

	_, err = e.DistanceMatrix(ctx, M, "hellinger")
	require.NoError(t, err)
	_, err = e.DistanceMatrix(ctx, M, "normalized2_l2")
	require.NoError(t, err)
	_, err = e.DistanceMatrix(ctx, M, "cosine")
	require.NoError(t, err)
	_, err = e.DistanceMatrix(ctx, M, "gdv_similarity", metric.WithWeights([]float64{1, 2, 3}))
	require.NoError(t, err)
	require.Equal(t, []string{"hellinger", "normalized2_l2"}, x.calls)

	x.err = errors.New("boom")
	_, err = e.NormalizedDistanceMatrix(ctx, M, "js_divergence")
	require.ErrorIs(t, err, x.err)
}

func TestDistanceMatrixEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	rows := make([][]float64, 7)
	for i := range rows {
		rows[i] = []float64{rng.Float64() + 0.1, rng.Float64() + 0.1, rng.Float64() + 0.1}
	}
	M, err := matrix.NewDenseFrom(rows)
	require.NoError(t, err)

	e := distance.NewEngine(distance.WithExecutor(&fakeExecutor{}))
	for _, name := range []string{"braycurtis", "canberra", "hellinger", "js_divergence", "normalized1_l2"} {
		D, err := e.DistanceMatrix(context.Background(), M, name)
		require.NoError(t, err)
		require.NoError(t, matrix.ValidateSymmetric(D, 0))
		for i := range rows {
			for j := range rows {
				want, err := e.Distance(rows[i], rows[j], name)
				require.NoError(t, err)
				got, _ := D.At(i, j)
				require.InDelta(t, want, got, 1e-4, "%s (%d,%d)", name, i, j)
			}
		}
	}
}

func TestNormalizedSmallInput(t *testing.T) {
	M, err := matrix.NewDenseFrom([][]float64{{0.2, 0.8}})
	require.NoError(t, err)
	D, err := distance.NewEngine().NormalizedDistanceMatrix(context.Background(), M, "seuclidean")
	require.NoError(t, err)
	require.Equal(t, 1, D.Rows())
}
