// SPDX-License-Identifier: MIT

package metric

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind tags which variant a Metric holds.
type Kind int

const (
	// KindStandard is a general vector distance (Standard field set).
	KindStandard Kind = iota
	// KindNormalizedLp is a normalized Lp family member (Family and P set).
	KindNormalizedLp
	// KindExternal is a metric whose batch form historically ran out of process
	// (External field set).
	KindExternal
)

// String returns a lowercase tag for logs.
func (k Kind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindNormalizedLp:
		return "normalized_lp"
	case KindExternal:
		return "external"
	}

	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Standard enumerates the general vector distances.
type Standard int

const (
	Euclidean Standard = iota
	SqEuclidean
	Cityblock
	Chebyshev
	Cosine
	Correlation
	Canberra
	BrayCurtis
	SEuclidean
	Mahalanobis
)

// External enumerates the closed-form metrics with an external batch executable.
type External int

const (
	GDVSimilarity External = iota
	Hellinger
	JSDivergence
)

// Family selects the normalized Lp formula.
//
//	Family 1: (Σ (|u-v| / (|u|+|v|))^p)^(1/p), p=inf → max ratio.
//	Family 2: (Σ |u-v|^p / (|u|+|v|))^(1/p),   p=inf → max |u-v|.
//
// Terms whose denominator |u|+|v| is 0 are skipped.
type Family int

const (
	Family1 Family = 1
	Family2 Family = 2
)

// Metric is a parsed metric identifier. Exactly the fields matching Kind are meaningful.
type Metric struct {
	Name     string   // canonical name
	Kind     Kind     // variant tag
	Standard Standard // KindStandard
	Family   Family   // KindNormalizedLp
	P        float64  // KindNormalizedLp; math.Inf(1) for "linf"
	External External // KindExternal
}

// IsInfP reports whether a normalized Lp metric uses p = ∞.
func (m Metric) IsInfP() bool { return m.Kind == KindNormalizedLp && math.IsInf(m.P, 1) }

// String returns the canonical name.
func (m Metric) String() string { return m.Name }

var standardNames = map[string]Standard{
	"euclidean":   Euclidean,
	"sqeuclidean": SqEuclidean,
	"cityblock":   Cityblock,
	"chebyshev":   Chebyshev,
	"cosine":      Cosine,
	"correlation": Correlation,
	"canberra":    Canberra,
	"braycurtis":  BrayCurtis,
	"seuclidean":  SEuclidean,
	"mahalanobis": Mahalanobis,
}

var externalNames = map[string]External{
	"gdv_similarity": GDVSimilarity,
	"hellinger":      Hellinger,
	"js_divergence":  JSDivergence,
}

// aliases accepted by Parse and mapped to canonical names.
var aliases = map[string]string{
	"GDV_similarity": "gdv_similarity",
}

const (
	normalizedPrefix = "normalized"
	lpSeparator      = "_l"
	infToken         = "inf"
)

// Parse resolves a metric name into its tagged value.
//
// Accepted forms: any standard or external name, the alias GDV_similarity, and
// normalized{1,2}_l<p> with p a positive integer without sign or leading zeros,
// or "inf".
//
// Errors: ErrUnknownMetric (wrapped with the offending name).
func Parse(name string) (Metric, error) {
	if canon, ok := aliases[name]; ok {
		name = canon
	}
	if s, ok := standardNames[name]; ok {
		return Metric{Name: name, Kind: KindStandard, Standard: s}, nil
	}
	if e, ok := externalNames[name]; ok {
		return Metric{Name: name, Kind: KindExternal, External: e}, nil
	}
	if m, ok := parseNormalized(name); ok {
		return m, nil
	}

	return Metric{}, metricErrorf("Parse", &unknownError{name: name})
}

// MustParse is Parse for package-level constants and tests; it panics on error.
func MustParse(name string) Metric {
	m, err := Parse(name)
	if err != nil {
		panic(err)
	}

	return m
}

// parseNormalized decodes normalized{1,2}_l{p|inf}.
func parseNormalized(name string) (Metric, bool) {
	rest, ok := strings.CutPrefix(name, normalizedPrefix)
	if !ok || len(rest) < 1 {
		return Metric{}, false
	}
	var fam Family
	switch rest[0] {
	case '1':
		fam = Family1
	case '2':
		fam = Family2
	default:
		return Metric{}, false
	}
	pTok, ok := strings.CutPrefix(rest[1:], lpSeparator)
	if !ok || pTok == "" {
		return Metric{}, false
	}

	var p float64
	if pTok == infToken {
		p = math.Inf(1)
	} else {
		if pTok[0] < '1' || pTok[0] > '9' {
			return Metric{}, false // rejects "0", "+2", "02", "-1"
		}
		n, err := strconv.Atoi(pTok)
		if err != nil || n <= 0 {
			return Metric{}, false
		}
		p = float64(n)
	}

	return Metric{Name: name, Kind: KindNormalizedLp, Family: fam, P: p}, true
}

// Names lists the fixed metric names (standard and external), sorted.
// The parameterised normalized{1,2}_l<p> family is described by Patterns.
func Names() []string {
	out := make([]string, 0, len(standardNames)+len(externalNames))
	for n := range standardNames {
		out = append(out, n)
	}
	for n := range externalNames {
		out = append(out, n)
	}
	sort.Strings(out)

	return out
}

// Patterns describes the parameterised names accepted by Parse.
func Patterns() []string {
	return []string{"normalized1_l<p>", "normalized2_l<p>"}
}

// unknownError carries the offending name while matching ErrUnknownMetric.
type unknownError struct{ name string }

func (e *unknownError) Error() string { return ErrUnknownMetric.Error() + " " + strconv.Quote(e.name) }
func (e *unknownError) Unwrap() error { return ErrUnknownMetric }
