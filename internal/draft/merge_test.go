package draft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pendingMergeDraft() Draft {
	existing := item("Kripik", "Level 2", 5, 50000)
	incoming := Item{ProductName: "Kripik", Variant: "Level 2 Pedas", Qty: 3, Unit: "pcs", TotalPrice: 30000, Notes: "stok gudang"}
	return Draft{
		Action: ActionMergeConfirm,
		Items:  []Item{existing},
		Merge:  &MergeCandidate{ExistingIndex: 0, Existing: existing, Incoming: incoming},
	}
}

func TestApplyMergeSumsQtyAndPrice(t *testing.T) {
	current := pendingMergeDraft()
	next, err := ApplyMerge(current)
	require.NoError(t, err)

	require.Equal(t, ActionUpdate, next.Action)
	require.Nil(t, next.Merge)
	require.Len(t, next.Items, 1)
	merged := next.Items[0]
	require.InDelta(t, 8, merged.Qty, 0.0001)
	require.InDelta(t, 80000, merged.TotalPrice, 0.0001)
	require.Contains(t, merged.Notes, "stok gudang")
	require.Contains(t, merged.Notes, "Level 2 Pedas")

	// caller's copy stays as it was
	require.NotNil(t, current.Merge)
	require.InDelta(t, 5, current.Items[0].Qty, 0.0001)
}

func TestApplyMergeDeduplicatesNotes(t *testing.T) {
	current := pendingMergeDraft()
	current.Items[0].Notes = "stok gudang"
	current.Merge.Existing.Notes = "stok gudang"
	next, err := ApplyMerge(current)
	require.NoError(t, err)
	require.Equal(t, 1, countOccurrences(next.Items[0].Notes, "stok gudang"))
}

func TestApplyCreateNewAppendsIndependentLine(t *testing.T) {
	current := pendingMergeDraft()
	next, err := ApplyCreateNew(current)
	require.NoError(t, err)

	require.Equal(t, ActionUpdate, next.Action)
	require.Nil(t, next.Merge)
	require.Len(t, next.Items, 2)
	require.InDelta(t, 5, next.Items[0].Qty, 0.0001)
	require.InDelta(t, 3, next.Items[1].Qty, 0.0001)
}

func TestApplyMergeWithoutCandidate(t *testing.T) {
	_, err := ApplyMerge(Draft{})
	require.ErrorIs(t, err, ErrNoPendingMerge)
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}
