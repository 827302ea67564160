// Package contacts holds counterparty records and the fuzzy deduplication
// used when a supplier or customer name arrives from extraction.
package contacts

import (
	"time"

	"github.com/google/uuid"
)

// Type discriminates counterparties.
type Type string

const (
	TypeSupplier Type = "SUPPLIER"
	TypeCustomer Type = "CUSTOMER"
)

// Contact is a supplier or customer. Identity is the case-insensitive
// (name, type) pair; contacts are never deleted.
type Contact struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Known is the read-only snapshot row handed to the deduplicator.
type Known struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Stats summarises a contact's transaction history.
type Stats struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}
