// Package commit turns an approved procurement or sale draft into
// persisted state: counterparty, transaction header, products, line
// items and stock ledger rows, all inside one atomic unit of work.
package commit

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MovementType tags the direction of a stock movement.
type MovementType string

const (
	// MovementIn adds stock (procurement).
	MovementIn MovementType = "IN"
	// MovementOut removes stock (sale).
	MovementOut MovementType = "OUT"
)

// InputSource records where a committed transaction came from.
type InputSource string

const (
	SourceOCR    InputSource = "OCR"
	SourceManual InputSource = "MANUAL"
)

// Product is the stock-keeping record. Identity is the case-insensitive
// (name, variant) pair; CurrentStock and AverageCost are mutated only by
// the commit orchestrator and the recalculation pass, always together.
type Product struct {
	ID              uuid.UUID
	SKU             string
	Name            string
	Variant         string
	BaseUnit        string
	Category        string
	CurrentStock    float64
	AverageCost     float64
	ConversionRules map[string]float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Transaction is one committed procurement or sale event. Immutable once
// written.
type Transaction struct {
	ID            uuid.UUID
	Type          MovementType
	ContactID     uuid.UUID
	Date          time.Time
	InvoiceNumber string
	TotalAmount   float64
	PaymentMethod string
	InputSource   InputSource
	EvidenceURL   string
	CreatedAt     time.Time
}

// TransactionItem is one product line of a transaction. CostAtMoment
// freezes the per-base-unit cost at commit time and never changes
// afterwards, except for the recalculation pass backfilling values that
// were stored as zero.
type TransactionItem struct {
	ID             uuid.UUID
	TransactionID  uuid.UUID
	ProductID      uuid.UUID
	InputQty       float64
	InputUnit      string
	InputPrice     float64
	ConversionRate float64
	CostAtMoment   float64
	Notes          string
}

// LedgerEntry is one append-only stock movement row. Replaying a
// product's entries in chronological order from zero must reproduce its
// current stock; this is the system's consistency anchor.
type LedgerEntry struct {
	ID            int64
	ProductID     uuid.UUID
	TransactionID uuid.UUID
	Date          time.Time
	Type          MovementType
	QtyChange     float64
	StockAfter    float64
	Notes         string
}

// LineInput is one line of a commit request, in purchase units.
type LineInput struct {
	ProductName string  `json:"product_name" validate:"required"`
	Variant     string  `json:"variant"`
	Qty         float64 `json:"qty"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
	Notes       string  `json:"notes"`
}

// Input is an approved draft ready for persistence.
type Input struct {
	CounterpartyName    string      `json:"supplier_name" validate:"required"`
	CounterpartyPhone   string      `json:"supplier_phone"`
	CounterpartyAddress string      `json:"supplier_address"`
	TransactionDate     string      `json:"transaction_date"`
	ReceiptNumber       string      `json:"receipt_number"`
	Items               []LineInput `json:"items" validate:"required,min=1,dive"`
	Discount            float64     `json:"discount"`
	Total               float64     `json:"total" validate:"required"`
	PaymentMethod       string      `json:"payment_method"`
	InputSource         InputSource `json:"input_source"`
	EvidenceURL         string      `json:"evidence_url"`
}

// Result reports the outcome of a commit. Failures carry Success=false
// and a user-facing message; the other fields are zero.
type Result struct {
	Success            bool      `json:"success"`
	TransactionID      uuid.UUID `json:"transaction_id,omitempty"`
	InvoiceNumber      string    `json:"invoice_number,omitempty"`
	ItemsProcessed     int       `json:"items_processed,omitempty"`
	NewProductsCreated int       `json:"new_products_created,omitempty"`
	Message            string    `json:"message"`
}

// RecalcResult reports a recalculation pass over one product.
type RecalcResult struct {
	Success        bool    `json:"success"`
	NewAverageCost float64 `json:"new_average_cost"`
	ItemsUpdated   int     `json:"items_updated"`
	Message        string  `json:"message"`
}

// ErrProductNotFound indicates a missing product row.
var ErrProductNotFound = errors.New("commit: product not found")

// ErrContactNotFound indicates a missing contact row.
var ErrContactNotFound = errors.New("commit: contact not found")

// ErrSKUConflict is returned by repositories on a SKU unique violation so
// the generator can retry with the next sequence.
var ErrSKUConflict = errors.New("commit: sku already taken")
