// SPDX-License-Identifier: MIT

// Package metric names, parses and evaluates the dissimilarity metrics used on
// graphlet feature vectors.
//
// A metric is identified by a string and parsed into a tagged value:
//
//   - KindStandard: euclidean, sqeuclidean, cityblock, chebyshev, cosine,
//     correlation, canberra, braycurtis, seuclidean, mahalanobis.
//   - KindNormalizedLp: normalized1_l<p> and normalized2_l<p>, p ∈ ℕ⁺ or "inf".
//   - KindExternal: gdv_similarity, hellinger, js_divergence.
//
// Every metric has a normalizer: the largest value it can take on convex
// vectors (points of the standard simplex) of a given length, so that
// distance/normalizer lies in [0,1]. seuclidean is the exception that proves
// the rule: its bound depends on the variances, see SEuclideanNormalizer.
//
// Distance evaluates one pair, Matrix evaluates all pairs of the rows of a
// matrix. Both go through the same kernels, so Matrix(M)[i,j] equals
// Distance(M[i], M[j]) whenever the metric parameters (variances, inverse
// covariance) are the same. Without explicit parameters seuclidean and
// mahalanobis derive them from the rows at hand: the two vectors for Distance,
// the whole matrix for Matrix.
//
// Usage:
//
//	m, err := metric.Parse("normalized1_l2")
//	d, err := metric.Distance(u, v, m)
//	n, err := m.Normalizer(len(u))
//	D, err := metric.Matrix(M, m)
package metric
