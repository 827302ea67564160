package contacts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates a missing contact row.
var ErrNotFound = errors.New("contacts: not found")

// Repository reads and writes contact rows outside of commit scope.
// Commit-time upserts run inside the commit transaction instead.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns contacts ordered by name, optionally filtered by type.
func (r *Repository) List(ctx context.Context, ctype Type, limit, offset int) ([]Contact, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, name, type, COALESCE(phone,''), COALESCE(address,''), COALESCE(notes,''), created_at, updated_at
FROM contacts`
	args := []any{}
	if ctype != "" {
		query += ` WHERE type=$1 ORDER BY name ASC LIMIT $2 OFFSET $3`
		args = append(args, string(ctype), limit, offset)
	} else {
		query += ` ORDER BY name ASC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Contact{}
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Phone, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get fetches one contact.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Contact, error) {
	var c Contact
	err := r.pool.QueryRow(ctx, `SELECT id, name, type, COALESCE(phone,''), COALESCE(address,''), COALESCE(notes,''), created_at, updated_at
FROM contacts WHERE id=$1`, id).Scan(&c.ID, &c.Name, &c.Type, &c.Phone, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	return c, err
}

// Create inserts a contact created directly from the UI.
func (r *Repository) Create(ctx context.Context, c Contact) (Contact, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Phone = NormalizePhone(c.Phone)
	err := r.pool.QueryRow(ctx, `INSERT INTO contacts (id, name, type, phone, address, notes, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW()) RETURNING created_at, updated_at`,
		c.ID, c.Name, string(c.Type), nullStr(c.Phone), nullStr(c.Address), nullStr(c.Notes)).Scan(&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Update rewrites the mutable contact fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, c Contact) (Contact, error) {
	c.Phone = NormalizePhone(c.Phone)
	row := r.pool.QueryRow(ctx, `UPDATE contacts SET name=$2, phone=$3, address=$4, notes=$5, updated_at=NOW()
WHERE id=$1 RETURNING id, name, type, COALESCE(phone,''), COALESCE(address,''), COALESCE(notes,''), created_at, updated_at`,
		id, c.Name, nullStr(c.Phone), nullStr(c.Address), nullStr(c.Notes))
	var out Contact
	err := row.Scan(&out.ID, &out.Name, &out.Type, &out.Phone, &out.Address, &out.Notes, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	return out, err
}

// Stats aggregates transaction count and amount for a contact.
func (r *Repository) Stats(ctx context.Context, id uuid.UUID) (Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(total_amount),0) FROM transactions WHERE contact_id=$1`, id).
		Scan(&s.Count, &s.TotalAmount)
	return s, err
}

// KnownByType loads the lightweight snapshot used for deduplication.
func (r *Repository) KnownByType(ctx context.Context, ctype Type) ([]Known, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, COALESCE(phone,'') FROM contacts WHERE type=$1`, string(ctype))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Known{}
	for rows.Next() {
		var k Known
		if err := rows.Scan(&k.Name, &k.Phone); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
