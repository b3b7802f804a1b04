// SPDX-License-Identifier: MIT
package metric_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/graco/metric"
	"github.com/stretchr/testify/require"
)

// TestParse covers every variant and the malformed parameterised names.
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		kind    metric.Kind
		family  metric.Family
		p       float64
		wantErr bool
	}{
		{name: "euclidean", kind: metric.KindStandard},
		{name: "mahalanobis", kind: metric.KindStandard},
		{name: "hellinger", kind: metric.KindExternal},
		{name: "GDV_similarity", kind: metric.KindExternal},
		{name: "normalized1_l1", kind: metric.KindNormalizedLp, family: metric.Family1, p: 1},
		{name: "normalized2_l12", kind: metric.KindNormalizedLp, family: metric.Family2, p: 12},
		{name: "normalized1_linf", kind: metric.KindNormalizedLp, family: metric.Family1, p: math.Inf(1)},
		{name: "normalized3_l2", wantErr: true},
		{name: "normalized1_l0", wantErr: true},
		{name: "normalized1_l02", wantErr: true},
		{name: "normalized1_l-1", wantErr: true},
		{name: "normalized1_l", wantErr: true},
		{name: "normalized1_lx", wantErr: true},
		{name: "normalized_l2", wantErr: true},
		{name: "manhattan", wantErr: true},
		{name: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := metric.Parse(tc.name)
			if tc.wantErr {
				require.ErrorIs(t, err, metric.ErrUnknownMetric)
				require.Contains(t, err.Error(), tc.name)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.kind, m.Kind)
			if tc.kind == metric.KindNormalizedLp {
				require.Equal(t, tc.family, m.Family)
				require.Equal(t, tc.p, m.P)
				require.Equal(t, math.IsInf(tc.p, 1), m.IsInfP())
			}
		})
	}
}

// TestParseAliasCanonical checks that the alias resolves to the canonical name.
func TestParseAliasCanonical(t *testing.T) {
	m := metric.MustParse("GDV_similarity")
	require.Equal(t, "gdv_similarity", m.String())
	require.Equal(t, metric.GDVSimilarity, m.External)
	require.Panics(t, func() { metric.MustParse("nope") })
}

// TestNames checks the registry listing is sorted and parseable.
func TestNames(t *testing.T) {
	names := metric.Names()
	require.Len(t, names, 13)
	require.IsIncreasing(t, names)
	for _, n := range names {
		_, err := metric.Parse(n)
		require.NoError(t, err, n)
	}
	require.Len(t, metric.Patterns(), 2)
}
