package commit

import (
	"context"

	"github.com/google/uuid"

	"github.com/gudangchat/gudangchat/internal/contacts"
)

// RepositoryPort abstracts the transactional store for the orchestrator.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations available inside one atomic unit
// of work. GetProductForUpdate must lock the row until the transaction
// ends so concurrent commits against the same product serialise.
type TxRepository interface {
	GetContactByName(ctx context.Context, name string, ctype contacts.Type) (contacts.Contact, error)
	InsertContact(ctx context.Context, c contacts.Contact) (uuid.UUID, error)
	UpdateContactDetails(ctx context.Context, id uuid.UUID, phone, address string) error

	GetProductForUpdate(ctx context.Context, name, variant string) (Product, error)
	InsertProduct(ctx context.Context, p Product) (uuid.UUID, error)
	UpdateProductStockCost(ctx context.Context, id uuid.UUID, stock, avgCost float64) error
	LastSKUWithPrefix(ctx context.Context, prefix string) (string, error)

	InsertTransaction(ctx context.Context, tx Transaction) error
	InsertTransactionItem(ctx context.Context, item TransactionItem) error
	InsertLedgerEntry(ctx context.Context, entry LedgerEntry) error

	ListInboundItems(ctx context.Context, productID uuid.UUID) ([]TransactionItem, error)
	UpdateItemCostAtMoment(ctx context.Context, itemID uuid.UUID, cost float64) error
	GetProductByIDForUpdate(ctx context.Context, id uuid.UUID) (Product, error)
}
