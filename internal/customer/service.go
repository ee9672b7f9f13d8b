// Package customer manages the admin customer book.
package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a customer does not exist.
var ErrNotFound = errors.New("customer: not found")

// Customer is a known buyer, individual or business.
type Customer struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone"`
	CustomerType string    `json:"customerType"`
	Notes        string    `json:"notes,omitempty"`
	IsActive     bool      `json:"isActive"`
	Addresses    []Address `json:"addresses,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Address is one delivery address of a customer.
type Address struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customerId"`
	Label        string `json:"label,omitempty"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	Region       string `json:"region,omitempty"`
	IsDefault    bool   `json:"isDefault"`
}

// Store executes customer queries against PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore builds a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const columns = `id::text, full_name, COALESCE(email, ''), phone, customer_type, COALESCE(notes, ''), is_active, created_at, updated_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.CustomerType, &c.Notes, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// List returns a customer page filtered by an optional search term.
func (s *Store) List(ctx context.Context, search string, limit, offset int32) ([]Customer, int64, error) {
	where := ``
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where = ` WHERE full_name ILIKE $1 OR phone ILIKE $1`
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	q := `SELECT ` + columns + ` FROM customers` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, c)
	}
	return result, total, rows.Err()
}

// Get loads a customer with addresses.
func (s *Store) Get(ctx context.Context, id string) (Customer, error) {
	c, err := scanCustomer(s.pool.QueryRow(ctx, `SELECT `+columns+` FROM customers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	if err != nil {
		return Customer{}, err
	}

	rows, err := s.pool.Query(ctx, `
SELECT id::text, customer_id::text, COALESCE(label, ''), address_line1, COALESCE(address_line2, ''),
       city, COALESCE(region, ''), is_default
FROM customer_addresses WHERE customer_id = $1
ORDER BY is_default DESC, created_at ASC`, id)
	if err != nil {
		return Customer{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Label, &a.AddressLine1, &a.AddressLine2, &a.City, &a.Region, &a.IsDefault); err != nil {
			return Customer{}, err
		}
		c.Addresses = append(c.Addresses, a)
	}
	return c, rows.Err()
}

// Create inserts a customer.
func (s *Store) Create(ctx context.Context, c Customer) (Customer, error) {
	q := `
INSERT INTO customers (full_name, email, phone, customer_type, notes, is_active)
VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), $6)
RETURNING ` + columns
	return scanCustomer(s.pool.QueryRow(ctx, q, c.FullName, c.Email, c.Phone, c.CustomerType, c.Notes, c.IsActive))
}

// Update replaces the mutable fields of a customer.
func (s *Store) Update(ctx context.Context, c Customer) (Customer, error) {
	q := `
UPDATE customers
SET full_name = $2, email = NULLIF($3, ''), phone = $4, customer_type = $5,
    notes = NULLIF($6, ''), is_active = $7, updated_at = now()
WHERE id = $1
RETURNING ` + columns
	out, err := scanCustomer(s.pool.QueryRow(ctx, q, c.ID, c.FullName, c.Email, c.Phone, c.CustomerType, c.Notes, c.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return out, err
}

// Delete removes a customer and, via cascade, their addresses.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddAddress stores a delivery address, demoting the previous default when
// the new one takes its place.
func (s *Store) AddAddress(ctx context.Context, a Address) (Address, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Address{}, err
	}
	defer tx.Rollback(ctx)

	if a.IsDefault {
		if _, err := tx.Exec(ctx,
			`UPDATE customer_addresses SET is_default = false WHERE customer_id = $1`, a.CustomerID); err != nil {
			return Address{}, err
		}
	}
	var out Address
	err = tx.QueryRow(ctx, `
INSERT INTO customer_addresses (customer_id, label, address_line1, address_line2, city, region, is_default)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7)
RETURNING id::text, customer_id::text, COALESCE(label, ''), address_line1, COALESCE(address_line2, ''), city, COALESCE(region, ''), is_default`,
		a.CustomerID, a.Label, a.AddressLine1, a.AddressLine2, a.City, a.Region, a.IsDefault).
		Scan(&out.ID, &out.CustomerID, &out.Label, &out.AddressLine1, &out.AddressLine2, &out.City, &out.Region, &out.IsDefault)
	if err != nil {
		return Address{}, err
	}
	return out, tx.Commit(ctx)
}

// DeleteAddress removes an address.
func (s *Store) DeleteAddress(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM customer_addresses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
