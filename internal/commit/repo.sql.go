package commit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gudangchat/gudangchat/internal/contacts"
	"github.com/gudangchat/gudangchat/internal/platform/db"
)

const uniqueViolation = "23505"

// Repository persists commit data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx runs fn inside a repeatable-read transaction, rolling back on
// error.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("commit: repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetContactByName(ctx context.Context, name string, ctype contacts.Type) (contacts.Contact, error) {
	var c contacts.Contact
	err := r.tx.QueryRow(ctx, `SELECT id, name, type, COALESCE(phone,''), COALESCE(address,'')
FROM contacts WHERE LOWER(name)=LOWER($1) AND type=$2`, name, string(ctype)).
		Scan(&c.ID, &c.Name, &c.Type, &c.Phone, &c.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return contacts.Contact{}, ErrContactNotFound
	}
	return c, err
}

func (r *txRepository) InsertContact(ctx context.Context, c contacts.Contact) (uuid.UUID, error) {
	id := c.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	_, err := r.tx.Exec(ctx, `INSERT INTO contacts (id, name, type, phone, address, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW(),NOW())`, id, c.Name, string(c.Type), nullStr(c.Phone), nullStr(c.Address))
	return id, err
}

func (r *txRepository) UpdateContactDetails(ctx context.Context, id uuid.UUID, phone, address string) error {
	_, err := r.tx.Exec(ctx, `UPDATE contacts SET
phone=COALESCE($2, phone), address=COALESCE($3, address), updated_at=NOW()
WHERE id=$1`, id, nullStr(phone), nullStr(address))
	return err
}

func (r *txRepository) GetProductForUpdate(ctx context.Context, name, variant string) (Product, error) {
	query := `SELECT id, COALESCE(sku,''), name, COALESCE(variant,''), base_unit, COALESCE(category,''), current_stock, average_cost, conversion_rules
FROM products WHERE LOWER(name)=LOWER($1) AND `
	args := []any{name}
	if variant == "" {
		query += `(variant IS NULL OR variant='')`
	} else {
		query += `LOWER(variant)=LOWER($2)`
		args = append(args, variant)
	}
	query += ` FOR UPDATE`
	return scanProduct(r.tx.QueryRow(ctx, query, args...))
}

func (r *txRepository) GetProductByIDForUpdate(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(r.tx.QueryRow(ctx, `SELECT id, COALESCE(sku,''), name, COALESCE(variant,''), base_unit, COALESCE(category,''), current_stock, average_cost, conversion_rules
FROM products WHERE id=$1 FOR UPDATE`, id))
}

func (r *txRepository) InsertProduct(ctx context.Context, p Product) (uuid.UUID, error) {
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	var rules any
	if len(p.ConversionRules) > 0 {
		raw, err := json.Marshal(p.ConversionRules)
		if err != nil {
			return uuid.Nil, err
		}
		rules = raw
	}
	_, err := r.tx.Exec(ctx, `INSERT INTO products (id, sku, name, variant, base_unit, category, current_stock, average_cost, conversion_rules, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())`,
		id, p.SKU, p.Name, nullStr(p.Variant), p.BaseUnit, nullStr(p.Category), p.CurrentStock, p.AverageCost, rules)
	if isUniqueViolation(err) {
		return uuid.Nil, ErrSKUConflict
	}
	return id, err
}

func (r *txRepository) UpdateProductStockCost(ctx context.Context, id uuid.UUID, stock, avgCost float64) error {
	_, err := r.tx.Exec(ctx, `UPDATE products SET current_stock=$2, average_cost=$3, updated_at=NOW() WHERE id=$1`, id, stock, avgCost)
	return err
}

func (r *txRepository) LastSKUWithPrefix(ctx context.Context, prefix string) (string, error) {
	var sku string
	err := r.tx.QueryRow(ctx, `SELECT sku FROM products WHERE sku LIKE $1 || '-%' ORDER BY sku DESC LIMIT 1`, prefix).Scan(&sku)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return sku, err
}

func (r *txRepository) InsertTransaction(ctx context.Context, t Transaction) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO transactions (id, type, contact_id, transaction_date, invoice_number, total_amount, payment_method, input_source, evidence_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())`,
		t.ID, string(t.Type), t.ContactID, t.Date, t.InvoiceNumber, t.TotalAmount, nullStr(t.PaymentMethod), string(t.InputSource), nullStr(t.EvidenceURL))
	return err
}

func (r *txRepository) InsertTransactionItem(ctx context.Context, item TransactionItem) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO transaction_items (id, transaction_id, product_id, input_qty, input_unit, input_price, conversion_rate, cost_price_at_moment, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		item.ID, item.TransactionID, item.ProductID, item.InputQty, item.InputUnit, item.InputPrice, item.ConversionRate, item.CostAtMoment, nullStr(item.Notes))
	return err
}

func (r *txRepository) InsertLedgerEntry(ctx context.Context, entry LedgerEntry) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO stock_ledger (product_id, transaction_id, date, type, qty_change, stock_after, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		entry.ProductID, entry.TransactionID, entry.Date, string(entry.Type), entry.QtyChange, entry.StockAfter, nullStr(entry.Notes))
	return err
}

func (r *txRepository) ListInboundItems(ctx context.Context, productID uuid.UUID) ([]TransactionItem, error) {
	rows, err := r.tx.Query(ctx, `SELECT ti.id, ti.transaction_id, ti.product_id, ti.input_qty, COALESCE(ti.input_unit,''), ti.input_price, ti.conversion_rate, COALESCE(ti.cost_price_at_moment,0), COALESCE(ti.notes,'')
FROM transaction_items ti
JOIN transactions t ON ti.transaction_id = t.id
WHERE ti.product_id=$1 AND t.type='IN'
ORDER BY t.transaction_date ASC, t.created_at ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TransactionItem{}
	for rows.Next() {
		var it TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.ProductID, &it.InputQty, &it.InputUnit, &it.InputPrice, &it.ConversionRate, &it.CostAtMoment, &it.Notes); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *txRepository) UpdateItemCostAtMoment(ctx context.Context, itemID uuid.UUID, cost float64) error {
	_, err := r.tx.Exec(ctx, `UPDATE transaction_items SET cost_price_at_moment=$2 WHERE id=$1`, itemID, cost)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	var rules []byte
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Variant, &p.BaseUnit, &p.Category, &p.CurrentStock, &p.AverageCost, &rules)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, err
	}
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &p.ConversionRules); err != nil {
			// Malformed legacy rules are ignored rather than blocking a commit.
			p.ConversionRules = nil
		}
	}
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
