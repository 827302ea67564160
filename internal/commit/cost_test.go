package commit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewAverageCost(t *testing.T) {
	cases := []struct {
		name     string
		oldStock float64
		oldAvg   float64
		baseQty  float64
		unitCost float64
		want     float64
	}{
		{"weighted blend", 10, 100, 10, 200, 150.00},
		{"negative stock clamped", -5, 100, 10, 300, 300.00},
		{"first purchase", 0, 0, 24, 1250, 1250.00},
		{"zero denominator", 0, 500, 0, 750, 750.00},
		{"rounds to cents", 3, 10, 7, 11, 10.70},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewAverageCost(tc.oldStock, tc.oldAvg, tc.baseQty, tc.unitCost)
			require.InDelta(t, tc.want, got, 0.001)
		})
	}
}

func TestBaseUnitPrice(t *testing.T) {
	require.InDelta(t, 1000, BaseUnitPrice(120000, 10, 12), 0.001)
	require.InDelta(t, 2500, BaseUnitPrice(25000, 10, 1), 0.001)
	// zero guards fall back to divisor 1
	require.InDelta(t, 5000, BaseUnitPrice(5000, 0, 0), 0.001)
}

func TestParseDate(t *testing.T) {
	now := time.Date(2025, 3, 15, 13, 45, 0, 0, time.UTC)
	want := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{"2025-01-31", "31-01-2025", "31/01/2025", "2025/01/31"} {
		require.Equal(t, want, ParseDate(raw, now), raw)
	}
	// unparseable input falls back to today's date
	today := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	require.Equal(t, today, ParseDate("kemarin sore", now))
	require.Equal(t, today, ParseDate("", now))
}

func TestGenerateInvoiceNumber(t *testing.T) {
	now := time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)
	inv := GenerateInvoiceNumber(now)
	require.Regexp(t, `^INV-20250702-\d{5}$`, inv)
}
