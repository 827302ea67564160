package commit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gudangchat/gudangchat/internal/contacts"
	"github.com/gudangchat/gudangchat/internal/units"
)

// skuRetryLimit bounds whole-commit retries when two concurrent commits
// race for the same generated SKU.
const skuRetryLimit = 3

// Service orchestrates the atomic commit of an approved draft.
type Service struct {
	repo RepositoryPort
	log  *slog.Logger
	now  func() time.Time
}

// NewService constructs Service.
func NewService(repo RepositoryPort, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// Commit persists a procurement draft: supplier, transaction header,
// product upserts with moving-average cost, line items and ledger rows.
// All writes happen in one transaction; any failure leaves no trace.
func (s *Service) Commit(ctx context.Context, in Input) Result {
	return s.commit(ctx, in, MovementIn)
}

// CommitSale persists a sale against a customer. Stock moves out at the
// product's current average cost; average cost itself is untouched.
func (s *Service) CommitSale(ctx context.Context, in Input) Result {
	return s.commit(ctx, in, MovementOut)
}

func (s *Service) commit(ctx context.Context, in Input, direction MovementType) Result {
	var res Result
	var err error
	for attempt := 0; attempt < skuRetryLimit; attempt++ {
		res, err = s.commitOnce(ctx, in, direction)
		if !errors.Is(err, ErrSKUConflict) {
			break
		}
		s.log.Warn("sku conflict, retrying commit", "attempt", attempt+1)
	}
	if err != nil {
		s.log.Error("commit failed", "counterparty", in.CounterpartyName, "error", err)
		return Result{Success: false, Message: "Gagal menyimpan transaksi: " + err.Error()}
	}
	return res
}

func (s *Service) commitOnce(ctx context.Context, in Input, direction MovementType) (Result, error) {
	if strings.TrimSpace(in.CounterpartyName) == "" {
		return Result{}, errors.New("nama kontak kosong")
	}
	if len(in.Items) == 0 {
		return Result{}, errors.New("tidak ada item")
	}

	now := s.now()
	txDate := ParseDate(in.TransactionDate, now)
	invoice := strings.TrimSpace(in.ReceiptNumber)
	if invoice == "" {
		invoice = GenerateInvoiceNumber(now)
	}
	source := in.InputSource
	if source == "" {
		source = SourceManual
	}
	ctype := contacts.TypeSupplier
	if direction == MovementOut {
		ctype = contacts.TypeCustomer
	}

	var processed, created int
	txID := uuid.New()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		contactID, err := s.resolveContact(ctx, tx, in, ctype)
		if err != nil {
			return err
		}

		if err := tx.InsertTransaction(ctx, Transaction{
			ID:            txID,
			Type:          direction,
			ContactID:     contactID,
			Date:          txDate,
			InvoiceNumber: invoice,
			TotalAmount:   in.Total,
			PaymentMethod: in.PaymentMethod,
			InputSource:   source,
			EvidenceURL:   in.EvidenceURL,
		}); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		for _, line := range in.Items {
			if line.Qty <= 0 || strings.TrimSpace(line.ProductName) == "" {
				continue
			}
			isNew, err := s.commitLine(ctx, tx, txID, txDate, line, direction, in.CounterpartyName)
			if err != nil {
				return err
			}
			if isNew {
				created++
			}
			processed++
		}
		if processed == 0 {
			return errors.New("tidak ada item valid")
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.log.Info("transaction committed",
		"transaction_id", txID, "type", string(direction),
		"items", processed, "new_products", created)
	return Result{
		Success:            true,
		TransactionID:      txID,
		InvoiceNumber:      invoice,
		ItemsProcessed:     processed,
		NewProductsCreated: created,
		Message:            fmt.Sprintf("Transaksi berhasil disimpan! %d item diproses.", processed),
	}, nil
}

// resolveContact reuses the counterparty row by case-insensitive name or
// creates it, refreshing phone and address opportunistically when the
// incoming draft carries fresher values.
func (s *Service) resolveContact(ctx context.Context, tx TxRepository, in Input, ctype contacts.Type) (uuid.UUID, error) {
	phone := contacts.NormalizePhone(in.CounterpartyPhone)
	existing, err := tx.GetContactByName(ctx, strings.TrimSpace(in.CounterpartyName), ctype)
	switch {
	case err == nil:
		if (phone != "" && phone != existing.Phone) || (in.CounterpartyAddress != "" && in.CounterpartyAddress != existing.Address) {
			if err := tx.UpdateContactDetails(ctx, existing.ID, phone, in.CounterpartyAddress); err != nil {
				return uuid.Nil, fmt.Errorf("update contact: %w", err)
			}
		}
		return existing.ID, nil
	case errors.Is(err, ErrContactNotFound):
		id, err := tx.InsertContact(ctx, contacts.Contact{
			Name:    strings.TrimSpace(in.CounterpartyName),
			Type:    ctype,
			Phone:   phone,
			Address: in.CounterpartyAddress,
		})
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert contact: %w", err)
		}
		return id, nil
	default:
		return uuid.Nil, fmt.Errorf("lookup contact: %w", err)
	}
}

func (s *Service) commitLine(ctx context.Context, tx TxRepository, txID uuid.UUID, txDate time.Time, line LineInput, direction MovementType, counterparty string) (bool, error) {
	name := strings.TrimSpace(line.ProductName)
	variant := strings.TrimSpace(line.Variant)

	var isNew bool
	product, err := tx.GetProductForUpdate(ctx, name, variant)
	switch {
	case err == nil:
	case errors.Is(err, ErrProductNotFound):
		if direction == MovementOut {
			return false, fmt.Errorf("produk %q tidak ditemukan", name)
		}
		isNew = true
	default:
		return false, fmt.Errorf("lookup product %q: %w", name, err)
	}

	rate, known := units.Factor(line.Unit, product.ConversionRules)
	if !known {
		rate = units.PackSize(variant)
	}
	baseQty := line.Qty * rate
	lineTotal := line.TotalPrice
	if lineTotal == 0 {
		lineTotal = line.UnitPrice * line.Qty
	}
	unitCost := BaseUnitPrice(lineTotal, line.Qty, rate)

	if isNew {
		product, err = s.createProduct(ctx, tx, name, variant, line.Unit, rate)
		if err != nil {
			return false, err
		}
	}

	var newStock, newCost, costAtMoment, qtyChange float64
	if direction == MovementIn {
		newStock = product.CurrentStock + baseQty
		newCost = NewAverageCost(product.CurrentStock, product.AverageCost, baseQty, unitCost)
		costAtMoment = unitCost
		qtyChange = baseQty
	} else {
		newStock = product.CurrentStock - baseQty
		newCost = product.AverageCost
		costAtMoment = product.AverageCost
		qtyChange = -baseQty
	}

	if err := tx.InsertTransactionItem(ctx, TransactionItem{
		ID:             uuid.New(),
		TransactionID:  txID,
		ProductID:      product.ID,
		InputQty:       line.Qty,
		InputUnit:      line.Unit,
		InputPrice:     lineTotal,
		ConversionRate: rate,
		CostAtMoment:   costAtMoment,
		Notes:          line.Notes,
	}); err != nil {
		return false, fmt.Errorf("insert item %q: %w", name, err)
	}
	if err := tx.InsertLedgerEntry(ctx, LedgerEntry{
		ProductID:     product.ID,
		TransactionID: txID,
		Date:          txDate,
		Type:          direction,
		QtyChange:     qtyChange,
		StockAfter:    newStock,
		Notes:         ledgerNote(direction, counterparty, line.Notes),
	}); err != nil {
		return false, fmt.Errorf("insert ledger %q: %w", name, err)
	}
	if err := tx.UpdateProductStockCost(ctx, product.ID, newStock, newCost); err != nil {
		return false, fmt.Errorf("update product %q: %w", name, err)
	}
	return isNew, nil
}

// ledgerNote labels a stock movement with its counterparty, keeping any
// per-line note as a suffix.
func ledgerNote(direction MovementType, counterparty, itemNotes string) string {
	note := "Pembelian dari " + strings.TrimSpace(counterparty)
	if direction == MovementOut {
		note = "Penjualan ke " + strings.TrimSpace(counterparty)
	}
	if itemNotes != "" {
		note += " - " + itemNotes
	}
	return note
}

// createProduct inserts a new product row with a generated SKU. Pack
// conversions imply a piece-count base unit; otherwise the purchase unit
// becomes the base unit.
func (s *Service) createProduct(ctx context.Context, tx TxRepository, name, variant, unit string, rate float64) (Product, error) {
	baseUnit := strings.ToLower(strings.TrimSpace(unit))
	if baseUnit == "" || rate != 1 {
		baseUnit = "pcs"
	}
	prefix := SKUPrefix("", name, baseUnit)
	last, err := tx.LastSKUWithPrefix(ctx, prefix)
	if err != nil {
		return Product{}, fmt.Errorf("last sku %q: %w", prefix, err)
	}
	product := Product{
		Name:     name,
		Variant:  variant,
		SKU:      NextSKU(prefix, last),
		BaseUnit: baseUnit,
	}
	id, err := tx.InsertProduct(ctx, product)
	if err != nil {
		return Product{}, err
	}
	product.ID = id
	return product, nil
}
