// Package install manages the fixed catalog of optional installation
// services offered at checkout.
package install

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkg-services/backend-electro/internal/pricing"
)

// ErrNotFound is returned when an installation service does not exist.
var ErrNotFound = errors.New("install: not found")

// Service is one bookable installation offering with a flat fee.
type Service struct {
	ID          string        `json:"id"`
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Fee         pricing.Money `json:"fee"`
	IsActive    bool          `json:"isActive"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Store reads and writes the installation service catalog.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore builds a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const columns = `id::text, code, name, COALESCE(description, ''), fee, is_active, created_at, updated_at`

func scanService(row pgx.Row) (Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.Fee, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// List returns installation services, optionally only active ones.
func (s *Store) List(ctx context.Context, activeOnly bool) ([]Service, error) {
	q := `SELECT ` + columns + ` FROM installation_services`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY code ASC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}

// GetByIDs loads the selected services. Unknown IDs are simply absent from
// the result, the caller decides whether that is an error.
func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + columns + ` FROM installation_services WHERE id = ANY($1) AND is_active`
	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}

// Update changes the fee, wording or availability of a service.
func (s *Store) Update(ctx context.Context, svc Service) (Service, error) {
	q := `
UPDATE installation_services
SET name = $2, description = NULLIF($3, ''), fee = $4, is_active = $5, updated_at = now()
WHERE id = $1
RETURNING ` + columns
	out, err := scanService(s.pool.QueryRow(ctx, q, svc.ID, svc.Name, svc.Description, svc.Fee, svc.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return Service{}, ErrNotFound
	}
	return out, err
}
