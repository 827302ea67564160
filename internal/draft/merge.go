package draft

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoPendingMerge indicates the draft carries no merge candidate.
var ErrNoPendingMerge = errors.New("draft: no pending merge candidate")

// ApplyMerge combines the pending candidate into its matched existing
// line: quantities and line totals are summed and any variant/notes text
// not already present is appended. The merged line replaces the existing
// one in place and the returned draft carries the complete item list.
func ApplyMerge(current Draft) (Draft, error) {
	if current.Merge == nil {
		return Draft{}, ErrNoPendingMerge
	}
	m := current.Merge
	if m.ExistingIndex < 0 || m.ExistingIndex >= len(current.Items) {
		return Draft{}, fmt.Errorf("draft: merge index %d out of range", m.ExistingIndex)
	}

	out := current.Clone()
	merged := out.Items[m.ExistingIndex]
	merged.Qty += m.Incoming.Qty
	merged.TotalPrice += m.Incoming.TotalPrice
	merged.Notes = appendDistinct(merged.Notes, m.Incoming.Notes)
	if m.Incoming.Variant != "" && m.Incoming.Variant != merged.Variant {
		merged.Notes = appendDistinct(merged.Notes, m.Incoming.Variant)
	}
	out.Items[m.ExistingIndex] = merged

	out.Action = ActionUpdate
	out.Merge = nil
	out.FollowUp = fmt.Sprintf("Oke, qty %s digabung jadi %s.", merged.Display(), trimQty(merged.Qty))
	out.SuggestedAction = []string{saveAction, addMoreAction}
	return out, nil
}

// ApplyCreateNew inserts the pending candidate as an independent new line
// and returns the complete replacement item list.
func ApplyCreateNew(current Draft) (Draft, error) {
	if current.Merge == nil {
		return Draft{}, ErrNoPendingMerge
	}
	out := current.Clone()
	out.Items = append(out.Items, current.Merge.Incoming)
	out.Action = ActionUpdate
	out.Merge = nil
	out.FollowUp = fmt.Sprintf("Oke, %s dibuat sebagai baris baru.", current.Merge.Incoming.Display())
	out.SuggestedAction = []string{saveAction, addMoreAction}
	return out, nil
}

// appendDistinct appends extra to base unless base already contains it.
func appendDistinct(base, extra string) string {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return base
	}
	if strings.Contains(strings.ToLower(base), strings.ToLower(extra)) {
		return base
	}
	if base == "" {
		return extra
	}
	return base + ", " + extra
}

func trimQty(qty float64) string {
	s := fmt.Sprintf("%.2f", qty)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
