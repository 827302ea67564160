package draft

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/gudangchat/gudangchat/internal/match"
)

const (
	nameThreshold     = 85
	variantThreshold  = 85
	mergeActionAdd    = "Tambah ke Qty"
	mergeActionNew    = "Tidak, Buat Baru"
	saveAction        = "Simpan"
	addMoreAction     = "Tambah Lagi"
)

// matchKind classifies one incoming item against one existing draft item.
type matchKind int

const (
	matchNone matchKind = iota
	matchExact
)

var variantNumberRe = regexp.MustCompile(`\d+`)

// variantNumbers returns the sorted distinct numbers embedded in a
// variant label.
func variantNumbers(variant string) []string {
	found := variantNumberRe.FindAllString(variant, -1)
	if len(found) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(found))
	for _, n := range found {
		n = strings.TrimLeft(n, "0")
		if n == "" {
			n = "0"
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func sameNumbers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// classify decides whether incoming refers to the same product line as
// existing. Numbers inside variants are treated as SKU-distinguishing:
// "Level 2" and "Level 5" are different products no matter how similar
// the names are, and a numbered variant never matches an unnumbered one.
func classify(existing, incoming Item) matchKind {
	if match.TokenSortRatio(existing.ProductName, incoming.ProductName) < nameThreshold {
		return matchNone
	}
	existingNums := variantNumbers(existing.Variant)
	incomingNums := variantNumbers(incoming.Variant)
	switch {
	case len(existingNums) > 0 && len(incomingNums) > 0:
		if sameNumbers(existingNums, incomingNums) {
			return matchExact
		}
		return matchNone
	case len(existingNums) == 0 && len(incomingNums) == 0:
		if match.Equal(existing.Variant, incoming.Variant) {
			return matchExact
		}
		if match.TokenSetRatio(existing.Display(), incoming.Display()) > variantThreshold {
			return matchExact
		}
		return matchNone
	default:
		// Exactly one side carries a number: conservatively distinct.
		return matchNone
	}
}

type duplicate struct {
	incoming      Item
	existingIndex int
}

// Resolve classifies a batch of freshly extracted items against the
// current draft and produces the next conversational state. The caller's
// draft is never mutated.
//
// Mixed batches make forward progress: new items are accepted (returned
// as an append delta) and duplicates are reported as skipped. A lone
// duplicate becomes a merge_confirm state; multiple duplicates are
// refused and handed back for manual editing.
func Resolve(current Draft, incoming []Item) Draft {
	var fresh []Item
	var dups []duplicate

	for _, item := range incoming {
		matched := -1
		for idx, existing := range current.Items {
			if classify(existing, item) == matchExact {
				matched = idx
				break
			}
		}
		if matched >= 0 {
			dups = append(dups, duplicate{incoming: item, existingIndex: matched})
			continue
		}
		fresh = append(fresh, item)
	}

	out := current.Clone()
	out.Merge = nil
	out.SuggestedAction = nil

	switch {
	case len(fresh) > 0:
		out.Action = ActionAppend
		out.Items = fresh
		if len(dups) > 0 {
			names := make([]string, 0, len(dups))
			for _, d := range dups {
				names = append(names, d.incoming.Display())
			}
			out.FollowUp = fmt.Sprintf("%d item ditambahkan. %s sudah ada di daftar dan dilewati, silakan edit manual kalau perlu digabung.", len(fresh), strings.Join(names, ", "))
		} else {
			out.FollowUp = fmt.Sprintf("Oke, %d item ditambahkan!", len(fresh))
			out.SuggestedAction = []string{saveAction, addMoreAction}
		}
	case len(dups) == 1:
		d := dups[0]
		out.Action = ActionMergeConfirm
		out.Items = nil
		out.Merge = &MergeCandidate{
			ExistingIndex: d.existingIndex,
			Existing:      current.Items[d.existingIndex],
			Incoming:      d.incoming,
		}
		out.FollowUp = fmt.Sprintf("Sudah ada %s di daftar. Mau ditambahkan ke qty yang ada atau buat baris baru?", current.Items[d.existingIndex].Display())
		out.SuggestedAction = []string{mergeActionAdd, mergeActionNew}
	case len(dups) > 1:
		names := make([]string, 0, len(dups))
		for _, d := range dups {
			names = append(names, current.Items[d.existingIndex].Display())
		}
		out.Action = ActionClarify
		out.Items = nil
		out.FollowUp = fmt.Sprintf("Beberapa item kembar dengan daftar: %s. Silakan edit manual satu per satu.", strings.Join(names, ", "))
	default:
		out.Action = ActionChat
		out.Items = nil
		out.FollowUp = "Tidak ada item baru yang bisa ditambahkan."
	}
	return out
}
