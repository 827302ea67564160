package units

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeStandardUnits(t *testing.T) {
	cases := []struct {
		qty      float64
		unit     string
		expect   float64
		baseUnit string
	}{
		{2, "ton", 2000, "kg"},
		{1.5, "kwintal", 150, "kg"},
		{5, "ons", 0.5, "kg"},
		{2, "pon", 1, "kg"},
		{3, "lusin", 36, "pcs"},
		{2, "kodi", 40, "pcs"},
		{1, "gross", 144, "pcs"},
		{2, "rim", 1000, "lembar"},
	}
	for _, tc := range cases {
		got := Normalize(tc.qty, tc.unit, nil, "")
		require.True(t, got.Applied, tc.unit)
		require.InDelta(t, tc.expect, got.Qty, 0.0001, tc.unit)
		require.Equal(t, tc.baseUnit, got.Unit)
		require.NotEmpty(t, got.Note)
	}
}

func TestNormalizeCaseAndWhitespace(t *testing.T) {
	got := Normalize(2, "  Ton ", nil, "")
	require.True(t, got.Applied)
	require.InDelta(t, 2000, got.Qty, 0.0001)
}

func TestNormalizeProductRule(t *testing.T) {
	rules := map[string]float64{"karton": 36}
	got := Normalize(2, "karton", rules, "pcs")
	require.True(t, got.Applied)
	require.InDelta(t, 72, got.Qty, 0.0001)
	require.Equal(t, "pcs", got.Unit)
}

func TestNormalizeUnknownUnitPassesThrough(t *testing.T) {
	got := Normalize(7, "bal", nil, "")
	require.False(t, got.Applied)
	require.InDelta(t, 7, got.Qty, 0.0001)
	require.Equal(t, "bal", got.Unit)
	require.Empty(t, got.Note)
}

func TestNormalizeIsSingleShot(t *testing.T) {
	rules := map[string]float64{"karton": 36}
	first := Normalize(2, "karton", rules, "pcs")
	second := Normalize(first.Qty, first.Unit, rules, "pcs")
	require.False(t, second.Applied)
	require.InDelta(t, first.Qty, second.Qty, 0.0001)
}

func TestFactor(t *testing.T) {
	f, ok := Factor("ton", nil)
	require.True(t, ok)
	require.InDelta(t, 1000, f, 0.0001)

	f, ok = Factor("dus", map[string]float64{"dus": 40})
	require.True(t, ok)
	require.InDelta(t, 40, f, 0.0001)

	_, ok = Factor("bal", nil)
	require.False(t, ok)
}

func TestPackSize(t *testing.T) {
	cases := map[string]float64{
		"Isi 36":        36,
		"isi 12":        12,
		"x24":           24,
		"@ 10":          10,
		"1kg":           1,
		"Besar":         1,
		"":              1,
		"Level 5 Pedas": 5,
	}
	for variant, expect := range cases {
		require.InDelta(t, expect, PackSize(variant), 0.0001, variant)
	}
}
