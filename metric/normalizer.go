// SPDX-License-Identifier: MIT

package metric

import (
	"fmt"
	"math"
	"sort"
)

// Normalizer parses name and returns its normalizer for vectors of the given length.
// See Metric.Normalizer.
func Normalizer(name string, length int) (float64, error) {
	m, err := Parse(name)
	if err != nil {
		return 0, metricErrorf("Normalizer", err)
	}

	return m.Normalizer(length)
}

// Normalizer returns the maximum value the metric takes on two convex vectors
// of the given length.
//
// Table:
//
//	cityblock 2        euclidean √2      sqeuclidean 2     chebyshev 1
//	cosine 1           correlation 2     canberra length   braycurtis 1
//	hellinger 1        js_divergence 1   gdv_similarity 1
//	mahalanobis 1      seuclidean 1 (see SEuclideanNormalizer)
//	normalized1_l<p>   length^(1/p), p=inf → 1
//	normalized2_l<p>   p=1 → length, p=inf → 1, otherwise 2^(1/p)
//
// Errors: ErrBadLength for length <= 0.
// Complexity: O(1).
func (m Metric) Normalizer(length int) (float64, error) {
	if length <= 0 {
		return 0, metricErrorf("Normalizer", fmt.Errorf("%s with length %d: %w", m.Name, length, ErrBadLength))
	}
	n := float64(length)

	switch m.Kind {
	case KindStandard:
		switch m.Standard {
		case Cityblock, SqEuclidean, Correlation:
			return 2, nil
		case Euclidean:
			return math.Sqrt2, nil
		case Chebyshev, Cosine, BrayCurtis, Mahalanobis, SEuclidean:
			return 1, nil
		case Canberra:
			return n, nil
		}
	case KindNormalizedLp:
		if math.IsInf(m.P, 1) {
			return 1, nil
		}
		switch m.Family {
		case Family1:
			return math.Pow(n, 1/m.P), nil
		case Family2:
			if m.P == 1 {
				return n, nil
			}
			return math.Pow(2, 1/m.P), nil
		}
	case KindExternal:
		switch m.External {
		case GDVSimilarity, Hellinger, JSDivergence:
			return 1, nil
		}
	}

	return 0, metricErrorf("Normalizer", &unknownError{name: m.Name})
}

// SEuclideanNormalizer bounds the standardized Euclidean distance between two
// convex vectors: √(1/s₁ + 1/s₂) with s₁ ≤ s₂ the two smallest positive variances.
//
// Coordinates with zero variance are constant over the rows the variances
// came from and never differ, so they are ignored. With a single positive
// variance the bound is √(1/s₁); with none every distance is 0 and 1 is returned.
//
// Errors: ErrBadVariance for a negative or NaN variance; ErrEmptyVector for no variances.
func SEuclideanNormalizer(variances []float64) (float64, error) {
	if len(variances) == 0 {
		return 0, metricErrorf("SEuclideanNormalizer", ErrEmptyVector)
	}
	pos := make([]float64, 0, len(variances))
	for i, s := range variances {
		if math.IsNaN(s) || s < 0 {
			return 0, metricErrorf("SEuclideanNormalizer", fmt.Errorf("variance[%d]=%g: %w", i, s, ErrBadVariance))
		}
		if s > 0 {
			pos = append(pos, s)
		}
	}
	sort.Float64s(pos)

	switch len(pos) {
	case 0:
		return 1, nil
	case 1:
		return math.Sqrt(1 / pos[0]), nil
	}

	return math.Sqrt(1/pos[0] + 1/pos[1]), nil
}
