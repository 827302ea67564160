package draft

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gudangchat/gudangchat/internal/catalog"
	"github.com/gudangchat/gudangchat/internal/extract"
)

type fakeExtractor struct {
	res      extract.Result
	err      error
	gotText  string
	gotDraft any
}

func (f *fakeExtractor) ParseText(ctx context.Context, text string, currentDraft any) (extract.Result, error) {
	f.gotText = text
	f.gotDraft = currentDraft
	return f.res, f.err
}

func (f *fakeExtractor) ParseImage(ctx context.Context, image []byte, currentDraft any) (extract.Result, error) {
	f.gotDraft = currentDraft
	return f.res, f.err
}

type fakeSnapshots struct {
	snap catalog.Snapshot
	err  error
}

func (f *fakeSnapshots) Load(ctx context.Context) (catalog.Snapshot, error) {
	return f.snap, f.err
}

func newPipeline(extractor *fakeExtractor, snap catalog.Snapshot) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(extractor, &fakeSnapshots{snap: snap}, logger)
}

func TestParseTextNewDraft(t *testing.T) {
	extractor := &fakeExtractor{res: extract.Result{
		Action:          "new",
		SupplierName:    "Toko Sumber Rejeki",
		TransactionDate: "2025-06-10",
		Items: []extract.Item{
			{ProductName: "Beras Rojolele", Qty: 2, Unit: "ton", TotalPrice: 24000000},
			{ProductName: "Keripik Pisang", Qty: 5, Unit: "bal", TotalPrice: 250000},
		},
		FollowUp:   "Oke, dicatat!",
		Confidence: 0.92,
	}}
	svc := newPipeline(extractor, catalog.Snapshot{})

	out := svc.ParseText(context.Background(), "nota dari sumber rejeki", nil)

	require.Equal(t, ActionNew, out.Action)
	require.Equal(t, "Toko Sumber Rejeki", out.SupplierName)
	require.Equal(t, "2025-06-10", out.TransactionDate)
	require.Len(t, out.Items, 2)
	require.InDelta(t, 2000, out.Items[0].Qty, 0.001)
	require.Equal(t, "kg", out.Items[0].Unit)
	require.Contains(t, out.Items[0].Notes, "Dikonversi")
	require.InDelta(t, 5, out.Items[1].Qty, 0.001)
	require.Equal(t, "bal", out.Items[1].Unit)
	require.InDelta(t, 24250000, out.Total, 0.001)
	require.InDelta(t, 0.92, out.Confidence, 0.001)
}

func TestParseTextUsesProductConversionRules(t *testing.T) {
	snap := catalog.Snapshot{Products: []catalog.KnownProduct{{
		Name: "Teh Botol", BaseUnit: "pcs",
		ConversionRules: map[string]float64{"dus": 40},
	}}}
	extractor := &fakeExtractor{res: extract.Result{
		Action: "new",
		Items:  []extract.Item{{ProductName: "teh botol", Qty: 2, Unit: "dus", TotalPrice: 160000}},
	}}
	svc := newPipeline(extractor, snap)

	out := svc.ParseText(context.Background(), "teh botol 2 dus", nil)

	require.Len(t, out.Items, 1)
	require.InDelta(t, 80, out.Items[0].Qty, 0.001)
	require.Equal(t, "pcs", out.Items[0].Unit)
}

func TestParseTextAppendDuplicateAsksToMerge(t *testing.T) {
	current := &Draft{
		Action:       ActionNew,
		SupplierName: "Toko Berkah",
		Items:        []Item{{ProductName: "Alpukat", Qty: 50, Unit: "kg", TotalPrice: 500000}},
	}
	extractor := &fakeExtractor{res: extract.Result{
		Action: "append",
		Items:  []extract.Item{{ProductName: "alpukat", Qty: 20, Unit: "kg", TotalPrice: 200000}},
	}}
	svc := newPipeline(extractor, catalog.Snapshot{})

	out := svc.ParseText(context.Background(), "tambah alpukat 20kg 200rb", current)

	require.Equal(t, ActionMergeConfirm, out.Action)
	require.NotNil(t, out.Merge)
	require.Equal(t, []string{"Tambah ke Qty", "Tidak, Buat Baru"}, out.SuggestedAction)
	require.NotNil(t, extractor.gotDraft)
}

func TestParseTextSimilarSupplierAsksToConfirm(t *testing.T) {
	snap := catalog.Snapshot{Suppliers: []catalog.KnownSupplier{
		{Name: "Toko Berkah Jaya", Phone: "0812345678"},
	}}
	extractor := &fakeExtractor{res: extract.Result{
		Action:       "new",
		SupplierName: "Toko Berkah",
		Items:        []extract.Item{{ProductName: "Gula", Qty: 5, Unit: "kg", TotalPrice: 75000}},
	}}
	svc := newPipeline(extractor, snap)

	out := svc.ParseText(context.Background(), "nota toko berkah", nil)

	require.Equal(t, ActionSupplierConfirm, out.Action)
	require.NotNil(t, out.Supplier)
	require.Equal(t, "Toko Berkah", out.Supplier.NewName)
	require.Equal(t, "Toko Berkah Jaya", out.Supplier.ExistingName)
	require.Equal(t, []string{"Pakai Yang Lama", "Buat Baru"}, out.SuggestedAction)

	reused, err := ApplySupplierReuse(out)
	require.NoError(t, err)
	require.Equal(t, "Toko Berkah Jaya", reused.SupplierName)
	require.Equal(t, "0812345678", reused.SupplierPhone)
	require.Nil(t, reused.Supplier)
}

func TestParseTextExactSupplierReused(t *testing.T) {
	snap := catalog.Snapshot{Suppliers: []catalog.KnownSupplier{
		{Name: "Toko Berkah", Phone: "0812345678"},
	}}
	extractor := &fakeExtractor{res: extract.Result{
		Action:       "new",
		SupplierName: "toko berkah",
		Items:        []extract.Item{{ProductName: "Gula", Qty: 5, Unit: "kg", TotalPrice: 75000}},
	}}
	svc := newPipeline(extractor, snap)

	out := svc.ParseText(context.Background(), "nota toko berkah", nil)

	require.Equal(t, ActionNew, out.Action)
	require.Equal(t, "Toko Berkah", out.SupplierName)
	require.Equal(t, "0812345678", out.SupplierPhone)
	require.Nil(t, out.Supplier)
}

func TestParseTextExtractionFailureFallsBackToChat(t *testing.T) {
	current := &Draft{
		SupplierName: "Toko Berkah",
		Items:        []Item{{ProductName: "Gula", Qty: 5, Unit: "kg"}},
	}
	extractor := &fakeExtractor{err: errors.New("api down")}
	svc := newPipeline(extractor, catalog.Snapshot{})

	out := svc.ParseText(context.Background(), "beli gula", current)

	require.Equal(t, ActionChat, out.Action)
	require.Equal(t, extractorDownMessage, out.FollowUp)
	require.Len(t, out.Items, 1)
	require.Equal(t, "Toko Berkah", out.SupplierName)
	require.Zero(t, out.Confidence)
}

func TestParseTextMissingQtyAsksForClarification(t *testing.T) {
	extractor := &fakeExtractor{res: extract.Result{
		Action: "new",
		Items:  []extract.Item{{ProductName: "Gula Pasir", TotalPrice: 75000}},
	}}
	svc := newPipeline(extractor, catalog.Snapshot{})

	out := svc.ParseText(context.Background(), "gula pasir 75rb", nil)

	require.Equal(t, ActionClarify, out.Action)
	require.Contains(t, out.FollowUp, "Gula Pasir")
	require.Empty(t, out.Items)
}

func TestParseTextUpdateReplacesLine(t *testing.T) {
	current := &Draft{
		Items: []Item{
			{ProductName: "Alpukat", Qty: 50, Unit: "kg", TotalPrice: 500000},
			{ProductName: "Gula", Qty: 5, Unit: "kg", TotalPrice: 75000},
		},
	}
	extractor := &fakeExtractor{res: extract.Result{
		Action: "update",
		Items:  []extract.Item{{ProductName: "Alpukat", Qty: 60, Unit: "kg", TotalPrice: 600000}},
	}}
	svc := newPipeline(extractor, catalog.Snapshot{})

	out := svc.ParseText(context.Background(), "ganti alpukat jadi 60kg", current)

	require.Equal(t, ActionUpdate, out.Action)
	require.Len(t, out.Items, 2)
	require.InDelta(t, 60, out.Items[0].Qty, 0.001)
	require.InDelta(t, 675000, out.Total, 0.001)
}

func TestParseTextDeleteRemovesLine(t *testing.T) {
	current := &Draft{
		Items: []Item{
			{ProductName: "Alpukat", Qty: 50, Unit: "kg", TotalPrice: 500000},
			{ProductName: "Gula", Qty: 5, Unit: "kg", TotalPrice: 75000},
		},
	}
	extractor := &fakeExtractor{res: extract.Result{
		Action: "delete",
		Items:  []extract.Item{{ProductName: "gula", Qty: 5, Unit: "kg"}},
	}}
	svc := newPipeline(extractor, catalog.Snapshot{})

	out := svc.ParseText(context.Background(), "hapus gula", current)

	require.Equal(t, ActionUpdate, out.Action)
	require.Len(t, out.Items, 1)
	require.Equal(t, "Alpukat", out.Items[0].ProductName)
	require.Contains(t, out.FollowUp, "dihapus")
}

func TestParseTextDeleteUnknownItem(t *testing.T) {
	current := &Draft{
		Items: []Item{{ProductName: "Alpukat", Qty: 50, Unit: "kg", TotalPrice: 500000}},
	}
	extractor := &fakeExtractor{res: extract.Result{
		Action: "delete",
		Items:  []extract.Item{{ProductName: "Durian", Qty: 1}},
	}}
	svc := newPipeline(extractor, catalog.Snapshot{})

	out := svc.ParseText(context.Background(), "hapus durian", current)

	require.Equal(t, ActionChat, out.Action)
	require.Contains(t, out.FollowUp, "tidak ditemukan")
	require.Len(t, out.Items, 1)
}

func TestApplySupplierNewKeepsExtractedName(t *testing.T) {
	pending := Draft{
		Action:   ActionSupplierConfirm,
		Supplier: &SupplierCandidate{NewName: "Toko Berkah", ExistingName: "Toko Berkah Jaya", Score: 86},
	}
	out, err := ApplySupplierNew(pending)
	require.NoError(t, err)
	require.Equal(t, "Toko Berkah", out.SupplierName)
	require.Nil(t, out.Supplier)

	_, err = ApplySupplierNew(Draft{})
	require.ErrorIs(t, err, ErrNoPendingSupplier)
}
