// Package supplier manages the vendors products are sourced from, including
// the dropship partners.
package supplier

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a supplier does not exist.
var ErrNotFound = errors.New("supplier: not found")

// Supplier is a sourcing partner.
type Supplier struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contactName,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Address     string    `json:"address,omitempty"`
	IsDropship  bool      `json:"isDropship"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Store executes supplier queries against PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore builds a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const columns = `id::text, name, COALESCE(contact_name, ''), COALESCE(phone, ''), COALESCE(email, ''),
COALESCE(address, ''), is_dropship, is_active, created_at, updated_at`

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.ContactName, &s.Phone, &s.Email, &s.Address, &s.IsDropship, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// List returns all suppliers ordered by name.
func (s *Store) List(ctx context.Context) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+columns+` FROM suppliers ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Supplier
	for rows.Next() {
		sup, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sup)
	}
	return result, rows.Err()
}

// Create inserts a supplier.
func (s *Store) Create(ctx context.Context, sup Supplier) (Supplier, error) {
	q := `
INSERT INTO suppliers (name, contact_name, phone, email, address, is_dropship, is_active)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7)
RETURNING ` + columns
	return scanSupplier(s.pool.QueryRow(ctx, q, sup.Name, sup.ContactName, sup.Phone, sup.Email, sup.Address, sup.IsDropship, sup.IsActive))
}

// Update replaces the mutable fields of a supplier.
func (s *Store) Update(ctx context.Context, sup Supplier) (Supplier, error) {
	q := `
UPDATE suppliers
SET name = $2, contact_name = NULLIF($3, ''), phone = NULLIF($4, ''), email = NULLIF($5, ''),
    address = NULLIF($6, ''), is_dropship = $7, is_active = $8, updated_at = now()
WHERE id = $1
RETURNING ` + columns
	out, err := scanSupplier(s.pool.QueryRow(ctx, q, sup.ID, sup.Name, sup.ContactName, sup.Phone, sup.Email, sup.Address, sup.IsDropship, sup.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	return out, err
}

// Delete removes a supplier.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
