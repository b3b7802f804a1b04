// SPDX-License-Identifier: MIT

// Package distance is the entry point for collaborators: it resolves metric
// names, routes batch work to an external executor when one is configured, and
// rescales raw distances into [0,1] for convex inputs.
//
// Both routes of DistanceMatrix agree with Distance on every pair (within the
// 7-digit precision of the executor wire format).
package distance

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/graco/matrix"
	"github.com/katalvlaran/graco/metric"
)

// ConvexTolerance is how far from 1 the sum of a convex vector may be.
const ConvexTolerance = 1e-8

const (
	opDistance                 = "Distance"
	opDistanceMatrix           = "DistanceMatrix"
	opConvexDistance           = "ConvexDistance"
	opNormalizedDistanceMatrix = "NormalizedDistanceMatrix"
)

// BatchExecutor computes all-pairs matrices out of process. *executor.Executor
// implements it.
type BatchExecutor interface {
	Supports(m metric.Metric) bool
	DistanceMatrix(ctx context.Context, M *matrix.Dense, m metric.Metric) (*matrix.Dense, error)
}

// Engine holds no per-call state and is safe for concurrent use.
type Engine struct {
	exec BatchExecutor
	log  zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithExecutor routes the metrics x supports to x in DistanceMatrix.
func WithExecutor(x BatchExecutor) Option {
	return func(e *Engine) { e.exec = x }
}

// WithLogger sets the logger (default: disabled).
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine returns an Engine; without WithExecutor every metric uses its closed form.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Distance returns the raw distance between u and v under the named metric.
// Errors: metric.ErrUnknownMetric and the metric package input errors.
func (e *Engine) Distance(u, v []float64, name string, opts ...metric.Option) (float64, error) {
	m, err := metric.Parse(name)
	if err != nil {
		return 0, distanceErrorf(opDistance, err)
	}
	d, err := metric.Distance(u, v, m, opts...)
	if err != nil {
		return 0, distanceErrorf(opDistance, err)
	}

	return d, nil
}

// DistanceMatrix returns the raw all-pairs matrix of the rows of M.
//
// Metrics with a batch executable go to the configured executor unless
// parameter options are given (the executables take none); everything else
// uses metric.Matrix.
//
// Errors: metric.ErrUnknownMetric; executor and metric errors unchanged.
func (e *Engine) DistanceMatrix(ctx context.Context, M *matrix.Dense, name string, opts ...metric.Option) (*matrix.Dense, error) {
	m, err := metric.Parse(name)
	if err != nil {
		return nil, distanceErrorf(opDistanceMatrix, err)
	}

	return e.distanceMatrix(ctx, M, m, opts...)
}

func (e *Engine) distanceMatrix(ctx context.Context, M *matrix.Dense, m metric.Metric, opts ...metric.Option) (*matrix.Dense, error) {
	var (
		D   *matrix.Dense
		err error
	)
	if e.exec != nil && len(opts) == 0 && e.exec.Supports(m) {
		e.log.Debug().Str("metric", m.Name).Msg("distance matrix via executor")
		D, err = e.exec.DistanceMatrix(ctx, M, m)
	} else {
		e.log.Debug().Str("metric", m.Name).Msg("distance matrix in process")
		D, err = metric.Matrix(M, m, opts...)
	}
	if err != nil {
		return nil, distanceErrorf(opDistanceMatrix, err)
	}

	return D, nil
}

// ConvexDistance returns Distance(u, v) divided by the metric's normalizer for
// len(u), a value in [0,1] for convex u and v.
//
// seuclidean is divided by the variance-derived SEuclideanNormalizer, using the
// variances supplied with metric.WithVariances or, without one, the sample
// variances of the pair.
//
// Errors:
//   - *InvariantError wrapping ErrNotConvex when an entry is negative or NaN,
//     or a sum is off by more than ConvexTolerance.
//   - as Distance.
func (e *Engine) ConvexDistance(u, v []float64, name string, opts ...metric.Option) (float64, error) {
	m, err := metric.Parse(name)
	if err != nil {
		return 0, distanceErrorf(opConvexDistance, err)
	}
	if err = CheckConvex(opConvexDistance, "u", u); err != nil {
		return 0, err
	}
	if err = CheckConvex(opConvexDistance, "v", v); err != nil {
		return 0, err
	}

	if m.Kind == metric.KindStandard && m.Standard == metric.SEuclidean {
		if opts, err = withVariances(opts, [][]float64{u, v}); err != nil {
			return 0, distanceErrorf(opConvexDistance, err)
		}
	}
	d, err := metric.Distance(u, v, m, opts...)
	if err != nil {
		return 0, distanceErrorf(opConvexDistance, err)
	}
	norm, err := normalizer(m, len(u), opts)
	if err != nil {
		return 0, distanceErrorf(opConvexDistance, err)
	}

	return d / norm, nil
}

// NormalizedDistanceMatrix returns DistanceMatrix(M) divided by the metric's
// normalizer for M.Cols(). For seuclidean the variances (supplied, or the
// column variances of M) drive both the distances and the normalizer.
// A matrix with fewer than 2 rows yields zeros.
func (e *Engine) NormalizedDistanceMatrix(ctx context.Context, M *matrix.Dense, name string, opts ...metric.Option) (*matrix.Dense, error) {
	m, err := metric.Parse(name)
	if err != nil {
		return nil, distanceErrorf(opNormalizedDistanceMatrix, err)
	}
	if err = matrix.ValidateNotNil(M); err != nil {
		return nil, distanceErrorf(opNormalizedDistanceMatrix, err)
	}
	if M.Rows() < 2 {
		return matrix.NewZerosNaNOK(M.Rows(), M.Rows())
	}

	if m.Kind == metric.KindStandard && m.Standard == metric.SEuclidean {
		if opts, err = withVariances(opts, matrix.Rows2D(M)); err != nil {
			return nil, distanceErrorf(opNormalizedDistanceMatrix, err)
		}
	}
	D, err := e.distanceMatrix(ctx, M, m, opts...)
	if err != nil {
		return nil, distanceErrorf(opNormalizedDistanceMatrix, err)
	}
	norm, err := normalizer(m, M.Cols(), opts)
	if err != nil {
		return nil, distanceErrorf(opNormalizedDistanceMatrix, err)
	}
	if norm == 1 {
		return D, nil
	}
	S, err := matrix.Scale(D, 1/norm)
	if err != nil {
		return nil, distanceErrorf(opNormalizedDistanceMatrix, err)
	}

	return S.(*matrix.Dense), nil
}

// CheckConvex reports whether x is a convex vector: no entry negative or NaN,
// and a sum within ConvexTolerance of 1. Violations are an *InvariantError
// tagged with op, naming x by label.
func CheckConvex(op, label string, x []float64) error {
	for i, xi := range x {
		if math.IsNaN(xi) || xi < 0 {
			return &InvariantError{Op: op, Detail: fmt.Sprintf("%s[%d]=%g", label, i, xi), Err: ErrNotConvex}
		}
	}
	if s := floats.Sum(x); !(math.Abs(s-1) <= ConvexTolerance) {
		return &InvariantError{Op: op, Detail: fmt.Sprintf("sum(%s)=%.12g", label, s), Err: ErrNotConvex}
	}

	return nil
}

// withVariances appends the column variances of rows unless opts already set them.
func withVariances(opts []metric.Option, rows [][]float64) ([]metric.Option, error) {
	if metric.Resolve(opts...).Variances() != nil {
		return opts, nil
	}
	X, err := matrix.NewDenseFrom(rows, matrix.WithNoValidateNaNInf())
	if err != nil {
		return nil, err
	}
	vars, err := matrix.ColumnVariances(X)
	if err != nil {
		return nil, err
	}

	return append(append([]metric.Option{}, opts...), metric.WithVariances(vars)), nil
}

func normalizer(m metric.Metric, length int, opts []metric.Option) (float64, error) {
	if m.Kind == metric.KindStandard && m.Standard == metric.SEuclidean {
		return metric.SEuclideanNormalizer(metric.Resolve(opts...).Variances())
	}

	return m.Normalizer(length)
}
