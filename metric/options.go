// SPDX-License-Identifier: MIT

package metric

import "github.com/katalvlaran/graco/matrix"

// Option supplies metric parameters that would otherwise be derived from the data.
type Option func(*Options)

// Options is the resolved parameter set. Zero value means "derive".
type Options struct {
	variances []float64     // seuclidean V
	invCov    *matrix.Dense // mahalanobis VI
	weights   []float64     // gdv_similarity orbit weights
}

// WithVariances fixes the per-coordinate variances used by seuclidean.
// The slice is not copied; callers must not mutate it while in use.
func WithVariances(v []float64) Option {
	return func(o *Options) { o.variances = v }
}

// WithInverseCovariance fixes the inverse covariance matrix used by mahalanobis.
func WithInverseCovariance(vi *matrix.Dense) Option {
	return func(o *Options) { o.invCov = vi }
}

// WithWeights overrides the per-orbit weights used by gdv_similarity.
func WithWeights(w []float64) Option {
	return func(o *Options) { o.weights = w }
}

// Variances returns the fixed seuclidean variances, or nil.
func (o Options) Variances() []float64 { return o.variances }

// InverseCovariance returns the fixed mahalanobis VI, or nil.
func (o Options) InverseCovariance() *matrix.Dense { return o.invCov }

// Weights returns the fixed gdv_similarity weights, or nil.
func (o Options) Weights() []float64 { return o.weights }

// Resolve applies opts on top of the zero Options.
func Resolve(opts ...Option) Options {
	var o Options
	for _, set := range opts {
		set(&o)
	}

	return o
}
