// SPDX-License-Identifier: MIT

package metric

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// params holds the resolved, data-dependent parameters shared by every pair of
// one Distance or Matrix call.
type params struct {
	variances []float64  // seuclidean
	invCov    *mat.Dense // mahalanobis
	weights   []float64  // gdv_similarity
}

// kernel evaluates one pair. u and v have equal, non-zero length and are already
// mass-normalized for hellinger and js_divergence.
type kernel func(u, v []float64, p *params) (float64, error)

// kernelFor returns the pairwise kernel of m.
func kernelFor(m Metric) (kernel, error) {
	switch m.Kind {
	case KindStandard:
		switch m.Standard {
		case Euclidean:
			return func(u, v []float64, _ *params) (float64, error) { return floats.Distance(u, v, 2), nil }, nil
		case SqEuclidean:
			return sqEuclidean, nil
		case Cityblock:
			return func(u, v []float64, _ *params) (float64, error) { return floats.Distance(u, v, 1), nil }, nil
		case Chebyshev:
			return func(u, v []float64, _ *params) (float64, error) {
				return floats.Distance(u, v, math.Inf(1)), nil
			}, nil
		case Cosine:
			return cosine, nil
		case Correlation:
			return correlation, nil
		case Canberra:
			return canberra, nil
		case BrayCurtis:
			return brayCurtis, nil
		case SEuclidean:
			return seuclidean, nil
		case Mahalanobis:
			return mahalanobis, nil
		}
	case KindNormalizedLp:
		switch m.Family {
		case Family1:
			return normalized1(m.P), nil
		case Family2:
			return normalized2(m.P), nil
		}
	case KindExternal:
		switch m.External {
		case GDVSimilarity:
			return gdvSimilarity, nil
		case Hellinger:
			return hellinger, nil
		case JSDivergence:
			return jsDivergence, nil
		}
	}

	return nil, &unknownError{name: m.Name}
}

func sqEuclidean(u, v []float64, _ *params) (float64, error) {
	var s, d float64
	for i := range u {
		d = u[i] - v[i]
		s += d * d
	}

	return s, nil
}

// clampAngular keeps 1 - cos within [0, 2] against rounding; NaN passes through.
func clampAngular(d float64) float64 {
	if math.IsNaN(d) {
		return d
	}

	return math.Max(0, math.Min(2, d))
}

func cosine(u, v []float64, _ *params) (float64, error) {
	nu, nv := floats.Norm(u, 2), floats.Norm(v, 2)

	return clampAngular(1 - floats.Dot(u, v)/(nu*nv)), nil
}

func correlation(u, v []float64, _ *params) (float64, error) {
	mu, mv := stat.Mean(u, nil), stat.Mean(v, nil)
	var dot, su, sv, a, b float64
	for i := range u {
		a, b = u[i]-mu, v[i]-mv
		dot += a * b
		su += a * a
		sv += b * b
	}

	return clampAngular(1 - dot/math.Sqrt(su*sv)), nil
}

// canberra drops 0/0 terms.
func canberra(u, v []float64, _ *params) (float64, error) {
	var s, den float64
	for i := range u {
		den = math.Abs(u[i]) + math.Abs(v[i])
		if den == 0 {
			continue
		}
		s += math.Abs(u[i]-v[i]) / den
	}

	return s, nil
}

func brayCurtis(u, v []float64, _ *params) (float64, error) {
	var num, den float64
	for i := range u {
		num += math.Abs(u[i] - v[i])
		den += math.Abs(u[i] + v[i])
	}

	return num / den, nil
}

// seuclidean skips coordinates that do not differ, so zero variance is only an
// error where the vectors actually disagree.
func seuclidean(u, v []float64, p *params) (float64, error) {
	if len(p.variances) != len(u) {
		return 0, fmt.Errorf("variances: %d for length %d: %w", len(p.variances), len(u), ErrLengthMismatch)
	}
	var s, d, vi float64
	for i := range u {
		d = u[i] - v[i]
		if d == 0 {
			continue
		}
		vi = p.variances[i]
		if !(vi > 0) || math.IsInf(vi, 0) {
			return 0, fmt.Errorf("variance[%d]=%g: %w", i, vi, ErrBadVariance)
		}
		s += d * d / vi
	}

	return math.Sqrt(s), nil
}

func mahalanobis(u, v []float64, p *params) (float64, error) {
	if p.invCov == nil {
		return 0, ErrSingular
	}
	if r, c := p.invCov.Dims(); r != len(u) || c != len(u) {
		return 0, fmt.Errorf("inverse covariance %dx%d for length %d: %w", r, c, len(u), ErrLengthMismatch)
	}
	d := make([]float64, len(u))
	floats.SubTo(d, u, v)
	x := mat.NewVecDense(len(d), d)
	q := mat.Inner(x, p.invCov, x)
	if q < 0 && q > -1e-12 {
		q = 0 // rounding on a positive semi-definite form
	}

	return math.Sqrt(q), nil
}

func normalized1(pw float64) kernel {
	inf := math.IsInf(pw, 1)

	return func(u, v []float64, _ *params) (float64, error) {
		var s, den, ratio float64
		for i := range u {
			den = math.Abs(u[i]) + math.Abs(v[i])
			if den == 0 {
				continue
			}
			ratio = math.Abs(u[i]-v[i]) / den
			if inf {
				s = math.Max(s, ratio)
				continue
			}
			s += math.Pow(ratio, pw)
		}
		if inf {
			return s, nil
		}

		return math.Pow(s, 1/pw), nil
	}
}

func normalized2(pw float64) kernel {
	inf := math.IsInf(pw, 1)

	return func(u, v []float64, _ *params) (float64, error) {
		if inf {
			return floats.Distance(u, v, math.Inf(1)), nil
		}
		var s, den float64
		for i := range u {
			den = math.Abs(u[i]) + math.Abs(v[i])
			if den == 0 {
				continue
			}
			s += math.Pow(math.Abs(u[i]-v[i]), pw) / den
		}

		return math.Pow(s, 1/pw), nil
	}
}

// hellinger expects distributions: √(Σ (√p - √q)²) / √2.
func hellinger(u, v []float64, _ *params) (float64, error) {
	var s, d float64
	for i := range u {
		d = math.Sqrt(u[i]) - math.Sqrt(v[i])
		s += d * d
	}

	return math.Sqrt(s) / math.Sqrt2, nil
}

// jsDivergence expects distributions; the result is in bits, so it lies in [0, 1].
func jsDivergence(u, v []float64, _ *params) (float64, error) {
	var s, m float64
	for i := range u {
		m = (u[i] + v[i]) / 2
		if u[i] != 0 {
			s += u[i] * math.Log(u[i]/m)
		}
		if v[i] != 0 {
			s += v[i] * math.Log(v[i]/m)
		}
	}

	return s / 2 / math.Ln2, nil
}

// gdvSimilarity is the weighted log-ratio distance on orbit counts:
//
//	D_i = w_i · |log(u_i+1) - log(v_i+1)| / log(max(u_i, v_i) + 2)
//	D   = Σ D_i / Σ w_i
func gdvSimilarity(u, v []float64, p *params) (float64, error) {
	w := p.weights
	if w == nil {
		w = OrbitWeights(len(u))
	}
	if len(w) != len(u) {
		return 0, fmt.Errorf("weights: %d for length %d: %w", len(w), len(u), ErrLengthMismatch)
	}
	var num, den float64
	for i := range u {
		num += w[i] * math.Abs(math.Log(u[i]+1)-math.Log(v[i]+1)) / math.Log(math.Max(u[i], v[i])+2)
		den += w[i]
	}

	return num / den, nil
}

// orbitDependencies counts, for each of the 15 orbits of 2–4 node graphlets, the
// orbits it depends on (itself included).
var orbitDependencies = [15]float64{1, 2, 2, 2, 3, 4, 3, 3, 4, 3, 4, 4, 4, 4, 3}

// OrbitWeights returns the gdv_similarity weights for vectors of length n:
// w_i = 1 - log(o_i)/log(15) for the 15 orbits of 2–4 node graphlets, uniform
// weights of 1 for any other length.
func OrbitWeights(n int) []float64 {
	w := make([]float64, n)
	if n == len(orbitDependencies) {
		logN := math.Log(float64(n))
		for i, o := range orbitDependencies {
			w[i] = 1 - math.Log(o)/logN
		}

		return w
	}
	for i := range w {
		w[i] = 1
	}

	return w
}

// needsDistribution reports whether rows must be mass-normalized before the kernel.
func needsDistribution(m Metric) bool {
	return m.Kind == KindExternal && (m.External == Hellinger || m.External == JSDivergence)
}

// toDistribution divides v by its sum. Errors: ErrZeroMass.
func toDistribution(v []float64) ([]float64, error) {
	s := floats.Sum(v)
	if s == 0 || math.IsNaN(s) {
		return nil, ErrZeroMass
	}
	out := make([]float64, len(v))
	floats.ScaleTo(out, 1/s, v)

	return out, nil
}
