package catalog

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gudangchat/gudangchat/internal/platform/httpx"
)

// ErrNotFound indicates a missing row.
var ErrNotFound = errors.New("catalog: not found")

// Repository serves catalog read models from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, COALESCE(sku,''), name, COALESCE(variant,''), base_unit, COALESCE(category,''), current_stock, average_cost, conversion_rules`

// ListProducts returns one page of products ordered by name, optionally
// filtered by a case-insensitive substring of the name.
func (r *Repository) ListProducts(ctx context.Context, filter ProductFilter) (ProductPage, error) {
	page := httpx.NewPagination(filter.Page, perPageOrDefault(filter.PerPage, 100), 0)

	var total int
	countQuery := `SELECT COUNT(*) FROM products`
	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if filter.Search != "" {
		countQuery += ` WHERE name ILIKE '%' || $1 || '%'`
		if err := r.pool.QueryRow(ctx, countQuery, filter.Search).Scan(&total); err != nil {
			return ProductPage{}, err
		}
		query += ` WHERE name ILIKE '%' || $1 || '%' ORDER BY name ASC LIMIT $2 OFFSET $3`
		args = append(args, filter.Search, page.PerPage, page.Offset())
	} else {
		if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
			return ProductPage{}, err
		}
		query += ` ORDER BY name ASC LIMIT $1 OFFSET $2`
		args = append(args, page.PerPage, page.Offset())
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return ProductPage{}, err
	}
	defer rows.Close()
	products, err := collectProducts(rows)
	if err != nil {
		return ProductPage{}, err
	}
	return ProductPage{
		Items:      products,
		Pagination: httpx.NewPagination(page.Page, page.PerPage, total),
	}, nil
}

func perPageOrDefault(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	return perPage
}

// GetProduct fetches one product.
func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (KnownProduct, error) {
	p, err := scanKnownProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return KnownProduct{}, ErrNotFound
	}
	return p, err
}

// ProductLedger returns a product's stock movements, newest first.
func (r *Repository) ProductLedger(ctx context.Context, id uuid.UUID, limit int) ([]LedgerRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT date, type, qty_change, stock_after, COALESCE(notes,'')
FROM stock_ledger WHERE product_id=$1 ORDER BY date DESC, id DESC LIMIT $2`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LedgerRow{}
	for rows.Next() {
		var lr LedgerRow
		if err := rows.Scan(&lr.Date, &lr.Type, &lr.QtyChange, &lr.StockAfter, &lr.Notes); err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

// ListTransactions returns one page of committed transactions, newest
// first.
func (r *Repository) ListTransactions(ctx context.Context, filter TransactionFilter) (TransactionPage, error) {
	page := httpx.NewPagination(filter.Page, perPageOrDefault(filter.PerPage, 50), 0)

	var total int
	countQuery := `SELECT COUNT(*) FROM transactions t`
	query := `SELECT t.id, t.type, c.name, t.transaction_date, COALESCE(t.invoice_number,''), t.total_amount, t.input_source
FROM transactions t JOIN contacts c ON t.contact_id = c.id`
	args := []any{}
	if filter.Type != "" {
		if err := r.pool.QueryRow(ctx, countQuery+` WHERE t.type=$1`, filter.Type).Scan(&total); err != nil {
			return TransactionPage{}, err
		}
		query += ` WHERE t.type=$1 ORDER BY t.transaction_date DESC, t.created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, filter.Type, page.PerPage, page.Offset())
	} else {
		if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
			return TransactionPage{}, err
		}
		query += ` ORDER BY t.transaction_date DESC, t.created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, page.PerPage, page.Offset())
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return TransactionPage{}, err
	}
	defer rows.Close()
	out := []TransactionSummary{}
	for rows.Next() {
		var ts TransactionSummary
		if err := rows.Scan(&ts.ID, &ts.Type, &ts.ContactName, &ts.Date, &ts.InvoiceNumber, &ts.TotalAmount, &ts.InputSource); err != nil {
			return TransactionPage{}, err
		}
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return TransactionPage{}, err
	}
	return TransactionPage{
		Items:      out,
		Pagination: httpx.NewPagination(page.Page, page.PerPage, total),
	}, nil
}

// GetTransaction fetches one transaction with its lines.
func (r *Repository) GetTransaction(ctx context.Context, id uuid.UUID) (TransactionDetail, error) {
	var d TransactionDetail
	err := r.pool.QueryRow(ctx, `SELECT t.id, t.type, c.name, t.transaction_date, COALESCE(t.invoice_number,''), t.total_amount, t.input_source, COALESCE(t.payment_method,'')
FROM transactions t JOIN contacts c ON t.contact_id = c.id WHERE t.id=$1`, id).
		Scan(&d.ID, &d.Type, &d.ContactName, &d.Date, &d.InvoiceNumber, &d.TotalAmount, &d.InputSource, &d.PaymentMethod)
	if errors.Is(err, pgx.ErrNoRows) {
		return TransactionDetail{}, ErrNotFound
	}
	if err != nil {
		return TransactionDetail{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT p.name, COALESCE(p.variant,''), ti.input_qty, COALESCE(ti.input_unit,''), ti.input_price, ti.conversion_rate, COALESCE(ti.cost_price_at_moment,0)
FROM transaction_items ti JOIN products p ON ti.product_id = p.id
WHERE ti.transaction_id=$1 ORDER BY p.name ASC`, id)
	if err != nil {
		return TransactionDetail{}, err
	}
	defer rows.Close()
	d.Items = []TransactionLine{}
	for rows.Next() {
		var line TransactionLine
		if err := rows.Scan(&line.ProductName, &line.Variant, &line.InputQty, &line.InputUnit, &line.InputPrice, &line.ConversionRate, &line.CostAtMoment); err != nil {
			return TransactionDetail{}, err
		}
		d.Items = append(d.Items, line)
	}
	return d, rows.Err()
}

// LoadSnapshot builds the full known-entity snapshot for the draft
// pipeline. Small-reseller catalogs fit in one pass; pagination belongs
// to the list endpoints, not here.
func (r *Repository) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name ASC`)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()
	products, err := collectProducts(rows)
	if err != nil {
		return Snapshot{}, err
	}

	srows, err := r.pool.Query(ctx, `SELECT name, COALESCE(phone,'') FROM contacts WHERE type='SUPPLIER' ORDER BY name ASC`)
	if err != nil {
		return Snapshot{}, err
	}
	defer srows.Close()
	suppliers := []KnownSupplier{}
	for srows.Next() {
		var s KnownSupplier
		if err := srows.Scan(&s.Name, &s.Phone); err != nil {
			return Snapshot{}, err
		}
		suppliers = append(suppliers, s)
	}
	if err := srows.Err(); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Products: products, Suppliers: suppliers}, nil
}

func collectProducts(rows pgx.Rows) ([]KnownProduct, error) {
	out := []KnownProduct{}
	for rows.Next() {
		p, err := scanKnownProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKnownProduct(row rowScanner) (KnownProduct, error) {
	var p KnownProduct
	var rules []byte
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Variant, &p.BaseUnit, &p.Category, &p.CurrentStock, &p.AverageCost, &rules); err != nil {
		return KnownProduct{}, err
	}
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &p.ConversionRules); err != nil {
			p.ConversionRules = nil
		}
	}
	return p, nil
}
