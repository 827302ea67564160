package draft

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gudangchat/gudangchat/internal/catalog"
	"github.com/gudangchat/gudangchat/internal/contacts"
	"github.com/gudangchat/gudangchat/internal/extract"
	"github.com/gudangchat/gudangchat/internal/match"
	"github.com/gudangchat/gudangchat/internal/units"
)

const extractorDownMessage = "Waduh, sistem lagi gangguan. Coba ulangi sebentar lagi ya."

// SnapshotSource provides the known-entity snapshot incoming items are
// matched against.
type SnapshotSource interface {
	Load(ctx context.Context) (catalog.Snapshot, error)
}

// Service runs the full draft pipeline: extraction, unit normalisation,
// duplicate resolution and counterparty matching.
type Service struct {
	extractor extract.Client
	snapshots SnapshotSource
	logger    *slog.Logger
}

// NewService constructs Service.
func NewService(extractor extract.Client, snapshots SnapshotSource, logger *slog.Logger) *Service {
	return &Service{extractor: extractor, snapshots: snapshots, logger: logger}
}

// ParseText advances the draft with a chat message. current may be nil
// for a fresh conversation. Extraction failures degrade to a chat reply
// instead of an error: the conversation must never dead-end.
func (s *Service) ParseText(ctx context.Context, text string, current *Draft) Draft {
	res, err := s.extractor.ParseText(ctx, text, promptContext(current))
	return s.process(ctx, res, err, current)
}

// ParseImage advances the draft with a receipt photo.
func (s *Service) ParseImage(ctx context.Context, image []byte, current *Draft) Draft {
	res, err := s.extractor.ParseImage(ctx, image, promptContext(current))
	return s.process(ctx, res, err, current)
}

func (s *Service) process(ctx context.Context, res extract.Result, extractErr error, current *Draft) Draft {
	base := Draft{}
	if current != nil {
		base = current.Clone()
	}
	if extractErr != nil {
		s.logger.Error("extraction failed", slog.Any("error", extractErr))
		out := base
		out.Action = ActionChat
		out.FollowUp = extractorDownMessage
		out.SuggestedAction = nil
		out.Confidence = 0
		return out
	}

	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		// Matching degrades to an empty catalog rather than blocking the chat.
		s.logger.Warn("snapshot load failed", slog.Any("error", err))
		snap = catalog.Snapshot{}
	}

	incoming, missingQty := s.normalizeItems(res.Items, snap)
	if len(missingQty) > 0 {
		out := base
		out.Action = ActionClarify
		out.FollowUp = fmt.Sprintf("Jumlah untuk %s belum jelas. Tolong sebutkan qty-nya ya.", strings.Join(missingQty, ", "))
		out.SuggestedAction = nil
		return out
	}

	var out Draft
	switch res.Action {
	case "new":
		out = base
		out.Action = ActionNew
		out.Items = incoming
		out.TransactionDate = firstNonEmpty(res.TransactionDate, base.TransactionDate)
		out.FollowUp = res.FollowUp
		out.SuggestedAction = res.SuggestedActions
		recomputeTotals(&out)
	case "append":
		out = Resolve(base, incoming)
	case "update":
		out = applyReplacements(base, incoming)
	case "delete":
		out = applyDeletions(base, incoming)
	default:
		out = base
		out.Action = ActionChat
		out.FollowUp = res.FollowUp
		out.SuggestedAction = res.SuggestedActions
	}
	out.Confidence = res.Confidence

	s.resolveSupplier(&out, res.SupplierName, snap.Suppliers)
	return out
}

// normalizeItems converts extracted items to draft lines in base units,
// returning the display names of lines whose quantity is unusable.
func (s *Service) normalizeItems(raw []extract.Item, snap catalog.Snapshot) ([]Item, []string) {
	items := make([]Item, 0, len(raw))
	var missingQty []string
	for _, in := range raw {
		item := Item{
			ProductName: in.ProductName,
			Variant:     in.Variant,
			Qty:         in.Qty,
			Unit:        in.Unit,
			TotalPrice:  in.TotalPrice,
			Notes:       in.Notes,
		}
		if item.Qty <= 0 {
			missingQty = append(missingQty, item.Display())
			continue
		}
		rules, baseUnit := productRules(snap, item)
		conv := units.Normalize(item.Qty, item.Unit, rules, baseUnit)
		if conv.Applied {
			item.Qty = conv.Qty
			item.Unit = conv.Unit
			item.Notes = appendDistinct(item.Notes, conv.Note)
		}
		items = append(items, item)
	}
	return items, missingQty
}

// productRules finds the conversion rules of the catalog product the
// item refers to, using the same match the duplicate resolver applies.
func productRules(snap catalog.Snapshot, item Item) (map[string]float64, string) {
	for _, p := range snap.Products {
		known := Item{ProductName: p.Name, Variant: p.Variant}
		if classify(known, item) == matchExact {
			return p.ConversionRules, p.BaseUnit
		}
	}
	return nil, ""
}

// applyReplacements swaps matched lines for their new values; unmatched
// lines are reported instead of guessed at.
func applyReplacements(current Draft, incoming []Item) Draft {
	out := current.Clone()
	out.Merge = nil
	out.SuggestedAction = nil

	var replaced, missing []string
	for _, item := range incoming {
		idx := findMatch(out.Items, item)
		if idx < 0 {
			missing = append(missing, item.Display())
			continue
		}
		out.Items[idx] = item
		replaced = append(replaced, item.Display())
	}
	switch {
	case len(missing) > 0:
		out.Action = ActionChat
		out.FollowUp = fmt.Sprintf("Barang %s tidak ditemukan di daftar.", strings.Join(missing, ", "))
	case len(replaced) > 0:
		out.Action = ActionUpdate
		out.FollowUp = fmt.Sprintf("Oke, %s sudah diupdate.", strings.Join(replaced, ", "))
		out.SuggestedAction = []string{saveAction, addMoreAction}
		recomputeTotals(&out)
	default:
		out.Action = ActionChat
		out.FollowUp = "Tidak ada perubahan yang bisa diterapkan."
	}
	return out
}

// applyDeletions removes matched lines from the draft.
func applyDeletions(current Draft, incoming []Item) Draft {
	out := current.Clone()
	out.Merge = nil
	out.SuggestedAction = nil

	var removed, missing []string
	for _, item := range incoming {
		idx := findMatch(out.Items, item)
		if idx < 0 {
			missing = append(missing, item.Display())
			continue
		}
		removed = append(removed, out.Items[idx].Display())
		out.Items = append(out.Items[:idx], out.Items[idx+1:]...)
	}
	switch {
	case len(missing) > 0:
		out.Action = ActionChat
		out.FollowUp = fmt.Sprintf("Barang %s tidak ditemukan di daftar.", strings.Join(missing, ", "))
	case len(removed) > 0:
		out.Action = ActionUpdate
		out.FollowUp = fmt.Sprintf("Oke, %s sudah dihapus dari daftar.", strings.Join(removed, ", "))
		out.SuggestedAction = []string{saveAction, addMoreAction}
		recomputeTotals(&out)
	default:
		out.Action = ActionChat
		out.FollowUp = "Tidak ada item yang cocok untuk dihapus."
	}
	return out
}

func findMatch(items []Item, target Item) int {
	for idx, existing := range items {
		if classify(existing, target) == matchExact {
			return idx
		}
	}
	return -1
}

// resolveSupplier reconciles a freshly extracted counterparty name with
// the known suppliers. A near-but-not-exact match turns the draft into a
// confirmation question; pending merge or clarify states keep priority.
func (s *Service) resolveSupplier(out *Draft, extracted string, known []catalog.KnownSupplier) {
	name := strings.TrimSpace(extracted)
	if name == "" || match.Equal(name, out.SupplierName) {
		return
	}
	if out.Action == ActionMergeConfirm || out.Action == ActionClarify {
		out.SupplierName = name
		return
	}

	candidates := make([]contacts.Known, 0, len(known))
	for _, k := range known {
		candidates = append(candidates, contacts.Known{Name: k.Name, Phone: k.Phone})
	}
	decision := contacts.ResolveCounterparty(name, candidates)
	switch decision.Kind {
	case contacts.DecisionReuse:
		out.SupplierName = decision.CandidateName
		if out.SupplierPhone == "" {
			out.SupplierPhone = decision.CandidatePhone
		}
	case contacts.DecisionConfirm:
		out.Action = ActionSupplierConfirm
		out.Supplier = &SupplierCandidate{
			NewName:      name,
			ExistingName: decision.CandidateName,
			Phone:        decision.CandidatePhone,
			Score:        decision.Score,
		}
		out.FollowUp = fmt.Sprintf("Supplier %q mirip dengan %q yang sudah tercatat. Pakai yang lama atau buat baru?", name, decision.CandidateName)
		out.SuggestedAction = []string{supplierActionReuse, supplierActionNew}
	default:
		out.SupplierName = name
	}
}

func recomputeTotals(d *Draft) {
	var subtotal float64
	for _, item := range d.Items {
		subtotal += item.TotalPrice
	}
	d.Subtotal = subtotal
	d.Total = subtotal - d.Discount
}

// promptContext hands the in-flight draft to the extractor, nil for a
// fresh conversation.
func promptContext(current *Draft) any {
	if current == nil {
		return nil
	}
	return *current
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
