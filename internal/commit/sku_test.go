package commit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSKUPrefix(t *testing.T) {
	cases := []struct {
		name     string
		category string
		product  string
		unit     string
		want     string
	}{
		{"category from catalog", "frozen food", "Singkong Original", "bungkus", "FRZ-SING-BKS"},
		{"category from name keyword", "", "Kripik Singkong", "bungkus", "SNK-KRIP-BKS"},
		{"unknown category", "", "Gula Pasir", "kg", "GEN-GULA-KG"},
		{"descriptive word skipped", "", "Original Sambal Terasi", "botol", "GEN-SAMB-BTL"},
		{"unit outside table", "", "Telur Ayam", "tray", "GEN-TELU-TRA"},
		{"empty unit", "", "Beras", "", "GEN-BERA-PCS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, SKUPrefix(tc.category, tc.product, tc.unit))
		})
	}
}

func TestNextSKU(t *testing.T) {
	require.Equal(t, "FRZ-SING-BKS-001", NextSKU("FRZ-SING-BKS", ""))
	require.Equal(t, "FRZ-SING-BKS-008", NextSKU("FRZ-SING-BKS", "FRZ-SING-BKS-007"))
	require.Equal(t, "FRZ-SING-BKS-100", NextSKU("FRZ-SING-BKS", "FRZ-SING-BKS-099"))
}
