// Package quote handles "quote required" products: storefront requests and
// the admin responses that close them.
package quote

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/nkg-services/backend-electro/internal/notify"
	"github.com/nkg-services/backend-electro/internal/obs"
)

// ErrNotFound is returned when a quote does not exist.
var ErrNotFound = errors.New("quote: not found")

// Quote is a persisted quotation request.
type Quote struct {
	ID            string     `json:"id"`
	QuoteNumber   string     `json:"quoteNumber"`
	CustomerName  string     `json:"customerName"`
	CustomerPhone string     `json:"customerPhone"`
	CustomerEmail string     `json:"customerEmail,omitempty"`
	VariantID     *string    `json:"variantId,omitempty"`
	ProductName   string     `json:"productName"`
	Quantity      int        `json:"quantity"`
	Message       string     `json:"message,omitempty"`
	Status        string     `json:"status"`
	AdminResponse string     `json:"adminResponse,omitempty"`
	RespondedAt   *time.Time `json:"respondedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// CreateInput is a validated storefront quote request.
type CreateInput struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	VariantID     *string
	ProductName   string
	Quantity      int
	Message       string
}

// Service persists quotes and notifies staff.
type Service struct {
	pool     *pgxpool.Pool
	enqueuer notify.Enqueuer
	logger   zerolog.Logger
}

// NewService wires the quote service.
func NewService(pool *pgxpool.Pool, enqueuer notify.Enqueuer, logger zerolog.Logger) *Service {
	return &Service{pool: pool, enqueuer: enqueuer, logger: logger}
}

const columns = `id::text, quote_number, customer_name, customer_phone, COALESCE(customer_email, ''),
variant_id::text, product_name, quantity, COALESCE(message, ''), status,
COALESCE(admin_response, ''), responded_at, created_at, updated_at`

func scanQuote(row pgx.Row) (Quote, error) {
	var q Quote
	err := row.Scan(&q.ID, &q.QuoteNumber, &q.CustomerName, &q.CustomerPhone, &q.CustomerEmail,
		&q.VariantID, &q.ProductName, &q.Quantity, &q.Message, &q.Status,
		&q.AdminResponse, &q.RespondedAt, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

// Create stores a storefront quote request. Quantity is clamped to 1.
func (s *Service) Create(ctx context.Context, in CreateInput) (Quote, error) {
	if in.Quantity < 1 {
		in.Quantity = 1
	}
	number := newQuoteNumber()
	q, err := scanQuote(s.pool.QueryRow(ctx, `
INSERT INTO quotes (quote_number, customer_name, customer_phone, customer_email, variant_id, product_name, quantity, message)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''))
RETURNING `+columns,
		number, in.CustomerName, in.CustomerPhone, in.CustomerEmail, in.VariantID, in.ProductName, in.Quantity, in.Message))
	if err != nil {
		s.countResult("error")
		return Quote{}, err
	}
	s.countResult("created")

	if s.enqueuer != nil {
		task, err := notify.NewQuoteRequestedTask(notify.QuoteRequestedPayload{
			QuoteID:     q.ID,
			QuoteNumber: q.QuoteNumber,
			ProductName: q.ProductName,
			Quantity:    q.Quantity,
		})
		if err == nil {
			if _, err := s.enqueuer.Enqueue(task); err != nil {
				s.logger.Error().Err(err).Str("quote_number", q.QuoteNumber).Msg("enqueue quote notification")
			}
		}
	}
	return q, nil
}

// List returns a page of quotes for the back office, newest first.
func (s *Service) List(ctx context.Context, status string, limit, offset int32) ([]Quote, int64, error) {
	where := ``
	args := []any{}
	if status != "" {
		args = append(args, status)
		where = ` WHERE status = $1`
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM quotes`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	q := `SELECT ` + columns + ` FROM quotes` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, quote)
	}
	return result, total, rows.Err()
}

// Respond records the admin answer and marks the quote RESPONDED.
func (s *Service) Respond(ctx context.Context, id, response string) (Quote, error) {
	q, err := scanQuote(s.pool.QueryRow(ctx, `
UPDATE quotes
SET admin_response = $2, status = 'RESPONDED', responded_at = now(), updated_at = now()
WHERE id = $1 AND status = 'OPEN'
RETURNING `+columns, id, response))
	if errors.Is(err, pgx.ErrNoRows) {
		return Quote{}, ErrNotFound
	}
	return q, err
}

// Close marks a quote CLOSED.
func (s *Service) Close(ctx context.Context, id string) (Quote, error) {
	q, err := scanQuote(s.pool.QueryRow(ctx, `
UPDATE quotes SET status = 'CLOSED', updated_at = now()
WHERE id = $1 AND status != 'CLOSED'
RETURNING `+columns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Quote{}, ErrNotFound
	}
	return q, err
}

func (s *Service) countResult(result string) {
	if obs.QuoteRequestsTotal != nil {
		obs.QuoteRequestsTotal.WithLabelValues(result).Inc()
	}
}

func newQuoteNumber() string {
	suffix := make([]byte, 3)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("DEV-%s-%s", time.Now().UTC().Format("20060102"), hex.EncodeToString(suffix))
}
