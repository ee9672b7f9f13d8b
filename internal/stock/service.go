// Package stock tracks per-variant inventory levels through an append-only
// movement journal.
package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/nkg-services/backend-electro/internal/notify"
	"github.com/nkg-services/backend-electro/internal/obs"
)

// ErrNotFound is returned when a stock record does not exist.
var ErrNotFound = errors.New("stock: not found")

// ErrInsufficient is returned when an OUT movement would drive stock negative.
var ErrInsufficient = errors.New("stock: insufficient quantity")

// Level is the current quantity of one variant.
type Level struct {
	VariantID    string    `json:"variantId"`
	SKU          string    `json:"sku"`
	ProductName  string    `json:"productName"`
	Quantity     int       `json:"quantity"`
	ReorderLevel int       `json:"reorderLevel"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Movement is one journal entry.
type Movement struct {
	ID           string    `json:"id"`
	VariantID    string    `json:"variantId"`
	MovementType string    `json:"movementType"`
	Quantity     int       `json:"quantity"`
	Reason       string    `json:"reason,omitempty"`
	Reference    string    `json:"reference,omitempty"`
	CreatedBy    *string   `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MovementInput is a validated movement request.
type MovementInput struct {
	VariantID    string
	MovementType string
	Quantity     int
	Reason       string
	Reference    string
	CreatedBy    string
}

// Service applies movements and keeps levels consistent.
type Service struct {
	pool     *pgxpool.Pool
	enqueuer notify.Enqueuer
	logger   zerolog.Logger
}

// NewService wires the stock service.
func NewService(pool *pgxpool.Pool, enqueuer notify.Enqueuer, logger zerolog.Logger) *Service {
	return &Service{pool: pool, enqueuer: enqueuer, logger: logger}
}

// Levels returns current stock levels, optionally only those at or below
// their reorder level.
func (s *Service) Levels(ctx context.Context, lowOnly bool, limit, offset int32) ([]Level, int64, error) {
	where := ``
	if lowOnly {
		where = ` WHERE l.quantity <= l.reorder_level`
	}

	var total int64
	countQ := `SELECT count(*) FROM stock_levels l` + where
	if err := s.pool.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `
SELECT l.variant_id::text, v.sku, p.name, l.quantity, l.reorder_level, l.updated_at
FROM stock_levels l
JOIN product_variants v ON v.id = l.variant_id
JOIN products p ON p.id = v.product_id` + where + `
ORDER BY l.updated_at DESC
LIMIT $1 OFFSET $2`
	rows, err := s.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Level
	for rows.Next() {
		var l Level
		if err := rows.Scan(&l.VariantID, &l.SKU, &l.ProductName, &l.Quantity, &l.ReorderLevel, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, l)
	}
	return result, total, rows.Err()
}

// Movements returns the journal for one variant, newest first.
func (s *Service) Movements(ctx context.Context, variantID string, limit, offset int32) ([]Movement, error) {
	q := `
SELECT id::text, variant_id::text, movement_type, quantity, COALESCE(reason, ''), COALESCE(reference, ''), created_by::text, created_at
FROM stock_movements
WHERE variant_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := s.pool.Query(ctx, q, variantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.VariantID, &m.MovementType, &m.Quantity, &m.Reason, &m.Reference, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// Apply records a movement and adjusts the level atomically. IN adds, OUT
// subtracts and refuses to go negative, ADJUST sets the absolute quantity.
func (s *Service) Apply(ctx context.Context, in MovementInput) (Level, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Level{}, err
	}
	defer tx.Rollback(ctx)

	var (
		current int
		reorder int
		sku     string
	)
	err = tx.QueryRow(ctx, `
SELECT l.quantity, l.reorder_level, v.sku
FROM stock_levels l
JOIN product_variants v ON v.id = l.variant_id
WHERE l.variant_id = $1
FOR UPDATE OF l`, in.VariantID).
		Scan(&current, &reorder, &sku)
	if errors.Is(err, pgx.ErrNoRows) {
		// First movement for this variant seeds the level row.
		if _, err := tx.Exec(ctx, `
INSERT INTO stock_levels (variant_id, quantity) VALUES ($1, 0)`, in.VariantID); err != nil {
			return Level{}, err
		}
		if err := tx.QueryRow(ctx, `
SELECT sku FROM product_variants WHERE id = $1`, in.VariantID).Scan(&sku); err != nil {
			return Level{}, err
		}
		current, reorder = 0, 0
	} else if err != nil {
		return Level{}, err
	}

	next := current
	switch in.MovementType {
	case "IN":
		next = current + in.Quantity
	case "OUT":
		next = current - in.Quantity
		if next < 0 {
			return Level{}, fmt.Errorf("%w: have %d, want %d", ErrInsufficient, current, in.Quantity)
		}
	case "ADJUST":
		next = in.Quantity
	default:
		return Level{}, fmt.Errorf("stock: unknown movement type %q", in.MovementType)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO stock_movements (variant_id, movement_type, quantity, reason, reference, created_by)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, '')::uuid)`,
		in.VariantID, in.MovementType, in.Quantity, in.Reason, in.Reference, in.CreatedBy); err != nil {
		return Level{}, err
	}
	if _, err := tx.Exec(ctx, `
UPDATE stock_levels SET quantity = $2, updated_at = now() WHERE variant_id = $1`,
		in.VariantID, next); err != nil {
		return Level{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Level{}, err
	}

	level := Level{VariantID: in.VariantID, SKU: sku, Quantity: next, ReorderLevel: reorder, UpdatedAt: time.Now().UTC()}
	if next <= reorder && next < current {
		s.alertLowStock(level)
	}
	return level, nil
}

// SetReorderLevel changes the threshold below which alerts fire.
func (s *Service) SetReorderLevel(ctx context.Context, variantID string, reorder int) error {
	tag, err := s.pool.Exec(ctx, `
INSERT INTO stock_levels (variant_id, quantity, reorder_level)
VALUES ($1, 0, $2)
ON CONFLICT (variant_id) DO UPDATE SET reorder_level = EXCLUDED.reorder_level, updated_at = now()`,
		variantID, reorder)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) alertLowStock(level Level) {
	if obs.StockLowTotal != nil {
		obs.StockLowTotal.Inc()
	}
	if s.enqueuer == nil {
		return
	}
	task, err := notify.NewLowStockTask(notify.LowStockPayload{
		VariantID: level.VariantID,
		SKU:       level.SKU,
		Quantity:  level.Quantity,
		Reorder:   level.ReorderLevel,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("variant_id", level.VariantID).Msg("build low stock alert task")
		return
	}
	if _, err := s.enqueuer.Enqueue(task); err != nil {
		s.logger.Error().Err(err).Str("variant_id", level.VariantID).Msg("enqueue low stock alert")
	}
}
