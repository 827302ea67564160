package match

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRatioIdentical(t *testing.T) {
	require.Equal(t, 100, Ratio("Toko Sinar Jaya", "toko sinar jaya"))
}

func TestRatioOrdering(t *testing.T) {
	near := Ratio("Toko Sinar Jaya", "Toko Sinar Jay")
	far := Ratio("Toko Sinar Jaya", "Warung Bu Tini")
	require.Greater(t, near, far)
	require.Greater(t, near, 85)
}

func TestTokenSortIgnoresWordOrder(t *testing.T) {
	require.Equal(t, 100, TokenSortRatio("Kripik Singkong", "Singkong Kripik"))
}

func TestTokenSetIgnoresExtraTokens(t *testing.T) {
	require.Equal(t, 100, TokenSetRatio("Kripik Pedas", "Kripik Pedas Pedas Kripik"))
}

func TestEqual(t *testing.T) {
	require.True(t, Equal("  Besar ", "besar"))
	require.False(t, Equal("Besar", "Kecil"))
}
