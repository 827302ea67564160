package draft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func item(name, variant string, qty, total float64) Item {
	return Item{ProductName: name, Variant: variant, Qty: qty, Unit: "pcs", TotalPrice: total}
}

func TestClassifyNumericVariantMismatch(t *testing.T) {
	existing := item("Kripik", "Level 2", 5, 50000)
	incoming := item("Kripik", "Level 5", 3, 30000)
	require.Equal(t, matchNone, classify(existing, incoming))
}

func TestClassifyNumericVariantMatch(t *testing.T) {
	existing := item("Kripik", "Level 2", 5, 50000)
	incoming := item("Kripik", "Level 2 Pedas", 3, 30000)
	require.Equal(t, matchExact, classify(existing, incoming))
}

func TestClassifyOneSidedNumberIsDistinct(t *testing.T) {
	existing := item("Kripik", "Level 2", 5, 50000)
	incoming := item("Kripik", "Pedas", 3, 30000)
	require.Equal(t, matchNone, classify(existing, incoming))
	require.Equal(t, matchNone, classify(incoming, existing))
}

func TestClassifyPlainVariants(t *testing.T) {
	require.Equal(t, matchExact, classify(item("Nangka", "Besar", 1, 0), item("Nangka", "besar", 2, 0)))
	require.Equal(t, matchNone, classify(item("Nangka", "Besar", 1, 0), item("Nangka", "Kecil", 2, 0)))
}

func TestClassifyNameGate(t *testing.T) {
	require.Equal(t, matchNone, classify(item("Alpukat", "", 1, 0), item("Kripik", "", 1, 0)))
}

func TestResolveSingleDuplicateAsksMergeConfirm(t *testing.T) {
	current := Draft{Action: ActionNew, Items: []Item{item("Kripik", "Level 2", 5, 50000)}}
	next := Resolve(current, []Item{item("Kripik", "Level 2 Pedas", 3, 30000)})

	require.Equal(t, ActionMergeConfirm, next.Action)
	require.Empty(t, next.Items)
	require.NotNil(t, next.Merge)
	require.Equal(t, 0, next.Merge.ExistingIndex)
	require.Equal(t, "Kripik", next.Merge.Incoming.ProductName)
	require.Equal(t, []string{"Tambah ke Qty", "Tidak, Buat Baru"}, next.SuggestedAction)
	// caller's draft untouched
	require.Equal(t, ActionNew, current.Action)
	require.Len(t, current.Items, 1)
}

func TestResolveMixedBatchKeepsOnlyNewItems(t *testing.T) {
	current := Draft{Items: []Item{item("Kripik", "Level 2", 5, 50000)}}
	next := Resolve(current, []Item{
		item("Alpukat", "", 10, 150000),
		item("Kripik", "Level 2", 2, 20000),
	})

	require.Equal(t, ActionAppend, next.Action)
	require.Len(t, next.Items, 1)
	require.Equal(t, "Alpukat", next.Items[0].ProductName)
	require.Nil(t, next.Merge)
	require.Contains(t, next.FollowUp, "Kripik")
}

func TestResolveMultipleDuplicatesRefusesAutoMerge(t *testing.T) {
	current := Draft{Items: []Item{
		item("Kripik", "Level 2", 5, 50000),
		item("Alpukat", "", 10, 150000),
	}}
	next := Resolve(current, []Item{
		item("Kripik", "Level 2", 1, 10000),
		item("Alpukat", "", 2, 30000),
	})

	require.Equal(t, ActionClarify, next.Action)
	require.Empty(t, next.Items)
	require.Nil(t, next.Merge)
	require.Contains(t, next.FollowUp, "Kripik")
	require.Contains(t, next.FollowUp, "Alpukat")
}

func TestResolveAllNewItems(t *testing.T) {
	next := Resolve(Draft{}, []Item{item("Alpukat", "", 10, 150000)})
	require.Equal(t, ActionAppend, next.Action)
	require.Len(t, next.Items, 1)
	require.Equal(t, []string{"Simpan", "Tambah Lagi"}, next.SuggestedAction)
}

func TestResolveFirstExactMatchWins(t *testing.T) {
	current := Draft{Items: []Item{
		item("Kripik", "Level 2", 5, 50000),
		item("Kripik", "Level 2 Pedas", 9, 90000),
	}}
	next := Resolve(current, []Item{item("Kripik", "Level 2", 1, 10000)})
	require.Equal(t, ActionMergeConfirm, next.Action)
	require.Equal(t, 0, next.Merge.ExistingIndex)
}
