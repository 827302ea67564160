// Package catalog exposes read models over products and committed
// transactions, plus the cached known-entity snapshot the draft pipeline
// matches against.
package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/gudangchat/gudangchat/internal/platform/httpx"
)

// KnownProduct is the matching view of a product: enough to fuzzy-match
// incoming names and convert purchase units.
type KnownProduct struct {
	ID              uuid.UUID          `json:"id"`
	SKU             string             `json:"sku"`
	Name            string             `json:"name"`
	Variant         string             `json:"variant,omitempty"`
	BaseUnit        string             `json:"base_unit"`
	Category        string             `json:"category,omitempty"`
	CurrentStock    float64            `json:"current_stock"`
	AverageCost     float64            `json:"average_cost"`
	ConversionRules map[string]float64 `json:"conversion_rules,omitempty"`
}

// KnownSupplier is the matching view of a supplier.
type KnownSupplier struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Snapshot is the full known-entity set handed to the draft pipeline.
type Snapshot struct {
	Products  []KnownProduct  `json:"products"`
	Suppliers []KnownSupplier `json:"suppliers"`
}

// LedgerRow is one stock movement in a product's history.
type LedgerRow struct {
	Date       time.Time `json:"date"`
	Type       string    `json:"type"`
	QtyChange  float64   `json:"qty_change"`
	StockAfter float64   `json:"stock_after"`
	Notes      string    `json:"notes,omitempty"`
}

// TransactionSummary is one row of the transaction list.
type TransactionSummary struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	ContactName   string    `json:"contact_name"`
	Date          time.Time `json:"date"`
	InvoiceNumber string    `json:"invoice_number"`
	TotalAmount   float64   `json:"total_amount"`
	InputSource   string    `json:"input_source"`
}

// TransactionLine is one line of a transaction detail view.
type TransactionLine struct {
	ProductName    string  `json:"product_name"`
	Variant        string  `json:"variant,omitempty"`
	InputQty       float64 `json:"input_qty"`
	InputUnit      string  `json:"input_unit,omitempty"`
	InputPrice     float64 `json:"input_price"`
	ConversionRate float64 `json:"conversion_rate"`
	CostAtMoment   float64 `json:"cost_at_moment"`
}

// TransactionDetail is a transaction with its lines.
type TransactionDetail struct {
	TransactionSummary
	PaymentMethod string            `json:"payment_method,omitempty"`
	Items         []TransactionLine `json:"items"`
}

// ProductFilter narrows the product list.
type ProductFilter struct {
	Search  string
	Page    int
	PerPage int
}

// TransactionFilter narrows the transaction list.
type TransactionFilter struct {
	Type    string
	Page    int
	PerPage int
}

// ProductPage is one page of the product list.
type ProductPage struct {
	Items      []KnownProduct   `json:"items"`
	Pagination httpx.Pagination `json:"pagination"`
}

// TransactionPage is one page of the transaction list.
type TransactionPage struct {
	Items      []TransactionSummary `json:"items"`
	Pagination httpx.Pagination     `json:"pagination"`
}
