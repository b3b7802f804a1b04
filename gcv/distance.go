// SPDX-License-Identifier: MIT

package gcv

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/graco/distance"
	"github.com/katalvlaran/graco/matrix"
	"github.com/katalvlaran/graco/metric"
)

// Option configures Distance.
type Option func(*options)

type options struct {
	variances map[BlockKey][]float64
}

// WithBlockVariances supplies seuclidean variances per block, usually from
// Matrix.BlockVariances. Blocks without an entry use the variances of the pair.
func WithBlockVariances(v map[BlockKey][]float64) Option {
	return func(o *options) { o.variances = v }
}

// Distance returns the mean of e.ConvexDistance over the blocks defined in
// both u and v, in u's order. It is NaN when no block qualifies.
//
// Errors:
//   - ErrBlockDim when a shared block has different lengths.
//   - distance and metric errors, including *distance.InvariantError for a
//     defined block that is not convex.
func Distance(e *distance.Engine, u, v Vector, name string, opts ...Option) (float64, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var (
		sum float64
		cnt int
	)
	for _, eu := range u {
		bv, ok := v.Lookup(eu.Key)
		if !ok || !eu.Block.IsDefined() || !bv.IsDefined() {
			continue
		}
		if eu.Block.Dim() != bv.Dim() {
			return 0, fmt.Errorf("Distance: %s %d vs %d: %w", eu.Key, eu.Block.Dim(), bv.Dim(), ErrBlockDim)
		}
		var mopts []metric.Option
		if vars, ok := o.variances[eu.Key]; ok {
			mopts = append(mopts, metric.WithVariances(vars))
		}
		d, err := e.ConvexDistance(eu.Block.Values(), bv.Values(), name, mopts...)
		if err != nil {
			return 0, fmt.Errorf("Distance: block %s: %w", eu.Key, err)
		}
		sum += d
		cnt++
	}
	if cnt == 0 {
		return math.NaN(), nil
	}

	return sum / float64(cnt), nil
}

// DistanceMatrix returns the n×n matrix whose (i, j) entry equals
// Distance(G.Row(i), G.Row(j)) with G.BlockVariances() supplied.
//
// Implementation:
//   - Stage 1: for each block, select the rows where it is defined.
//   - Stage 2: with two or more rows, add the block's normalised distance matrix
//     (e.NormalizedDistanceMatrix on those rows) into a running sum and 1 into a
//     running divisor at those row pairs. A single row only counts toward its
//     own diagonal; a block defined nowhere contributes nothing.
//   - Stage 3: divide elementwise; pairs with divisor 0 are NaN.
//
// Errors: metric.ErrUnknownMetric; distance, executor and matrix errors.
// Complexity: O(Σ_b k_b²·d_b) for block b defined on k_b rows with dimension d_b.
func DistanceMatrix(ctx context.Context, e *distance.Engine, G *Matrix, name string) (*matrix.Dense, error) {
	if _, err := metric.Parse(name); err != nil {
		return nil, fmt.Errorf("DistanceMatrix: %w", err)
	}
	n := G.Len()
	if n == 0 {
		return nil, fmt.Errorf("DistanceMatrix: %w", matrix.ErrInvalidDimensions)
	}
	sum, err := matrix.NewZerosNaNOK(n, n)
	if err != nil {
		return nil, fmt.Errorf("DistanceMatrix: %w", err)
	}
	div, _ := matrix.NewZeros(n, n)

	for b, k := range G.Keys {
		idx, B, err := G.defined(b)
		if err != nil {
			return nil, fmt.Errorf("DistanceMatrix: block %s: %w", k, err)
		}
		if err = checkConvexRows(k, idx, B); err != nil {
			return nil, err
		}
		switch len(idx) {
		case 0:
			continue
		case 1:
			v, _ := div.At(idx[0], idx[0])
			_ = div.Set(idx[0], idx[0], v+1)
			continue
		}

		D, err := e.NormalizedDistanceMatrix(ctx, B, name)
		if err != nil {
			return nil, fmt.Errorf("DistanceMatrix: block %s: %w", k, err)
		}
		if err = matrix.ScatterAdd(sum, idx, D); err != nil {
			return nil, fmt.Errorf("DistanceMatrix: block %s: %w", k, err)
		}
		ones, _ := matrix.NewDense(len(idx), len(idx))
		_ = ones.Apply(func(_, _ int, _ float64) float64 { return 1 })
		if err = matrix.ScatterAdd(div, idx, ones); err != nil {
			return nil, fmt.Errorf("DistanceMatrix: block %s: %w", k, err)
		}
	}

	out, err := matrix.DivideOrNaN(sum, div)
	if err != nil {
		return nil, fmt.Errorf("DistanceMatrix: %w", err)
	}

	return out, nil
}

// checkConvexRows applies the ConvexDistance precondition to every defined row of a block.
func checkConvexRows(k BlockKey, idx []int, B *matrix.Dense) error {
	if B == nil {
		return nil
	}
	for a := 0; a < B.Rows(); a++ {
		row, err := B.Row(a)
		if err != nil {
			return err
		}
		label := fmt.Sprintf("block %s row %d", k, idx[a])
		if err = distance.CheckConvex("DistanceMatrix", label, row); err != nil {
			return err
		}
	}

	return nil
}
