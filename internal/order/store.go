package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkg-services/backend-electro/internal/pricing"
)

// ErrNotFound is returned when an order does not exist.
var ErrNotFound = errors.New("order: not found")

// ErrBadTransition is returned for a status change the lifecycle forbids.
var ErrBadTransition = errors.New("order: illegal status transition")

// Item is one persisted order line, denormalized at checkout time so later
// price edits never rewrite order history.
type Item struct {
	ID                   string        `json:"id"`
	VariantID            *string       `json:"variantId,omitempty"`
	ProductName          string        `json:"productName"`
	SKU                  string        `json:"sku"`
	Quantity             int           `json:"quantity"`
	UnitPrice            pricing.Money `json:"unitPrice"`
	Tier                 string        `json:"tier"`
	LineTotal            pricing.Money `json:"lineTotal"`
	RequiresInstallation bool          `json:"requiresInstallation"`
}

// Installation is one booked installation service on an order.
type Installation struct {
	ServiceID string        `json:"serviceId"`
	Name      string        `json:"name"`
	Fee       pricing.Money `json:"fee"`
}

// Order is the persisted order with its lines.
type Order struct {
	ID                string         `json:"id"`
	OrderNumber       string         `json:"orderNumber"`
	CustomerName      string         `json:"customerName"`
	CustomerPhone     string         `json:"customerPhone"`
	CustomerEmail     string         `json:"customerEmail,omitempty"`
	AddressLine1      string         `json:"addressLine1"`
	City              string         `json:"city"`
	Status            Status         `json:"status"`
	OrderType         string         `json:"orderType"`
	Subtotal          pricing.Money  `json:"subtotal"`
	InstallationCost  pricing.Money  `json:"installationCost"`
	DeliveryCost      pricing.Money  `json:"deliveryCost"`
	Discount          pricing.Money  `json:"discount"`
	TotalAmount       pricing.Money  `json:"totalAmount"`
	Currency          string         `json:"currency"`
	CustomerNotes     string         `json:"customerNotes,omitempty"`
	InstallationNotes string         `json:"installationNotes,omitempty"`
	WhatsAppURL       string         `json:"whatsappUrl,omitempty"`
	Items             []Item         `json:"items,omitempty"`
	Installations     []Installation `json:"installations,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	ConfirmedAt       *time.Time     `json:"confirmedAt,omitempty"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
}

// Filter narrows admin order listings.
type Filter struct {
	Status    string
	OrderType string
	Phone     string
	From      *time.Time
	To        *time.Time
}

// Store executes order queries against PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore builds a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const orderColumns = `id::text, order_number, customer_name, customer_phone, COALESCE(customer_email, ''),
address_line1, city, status, order_type, subtotal, installation_cost, delivery_cost, discount,
total_amount, currency, COALESCE(customer_notes, ''), COALESCE(installation_notes, ''),
COALESCE(whatsapp_url, ''), created_at, updated_at, confirmed_at, completed_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail,
		&o.AddressLine1, &o.City, &o.Status, &o.OrderType, &o.Subtotal, &o.InstallationCost,
		&o.DeliveryCost, &o.Discount, &o.TotalAmount, &o.Currency, &o.CustomerNotes,
		&o.InstallationNotes, &o.WhatsAppURL, &o.CreatedAt, &o.UpdatedAt, &o.ConfirmedAt, &o.CompletedAt)
	return o, err
}

func buildFilter(f Filter) (string, []any) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if f.OrderType != "" {
		args = append(args, f.OrderType)
		where += fmt.Sprintf(` AND order_type = $%d`, len(args))
	}
	if f.Phone != "" {
		args = append(args, "%"+f.Phone+"%")
		where += fmt.Sprintf(` AND customer_phone LIKE $%d`, len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where += fmt.Sprintf(` AND created_at < $%d`, len(args))
	}
	return where, args
}

// List returns a filtered order page, newest first, plus the match count.
func (s *Store) List(ctx context.Context, f Filter, limit, offset int32) ([]Order, int64, error) {
	where, args := buildFilter(f)

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	q := `SELECT ` + orderColumns + ` FROM orders` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, o)
	}
	return result, total, rows.Err()
}

// ListAll returns every order matching the filter, for exports.
func (s *Store) ListAll(ctx context.Context, f Filter) ([]Order, error) {
	where, args := buildFilter(f)
	q := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

// GetByID loads an order with its items and installations.
func (s *Store) GetByID(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return s.hydrate(ctx, o)
}

// GetByNumber loads an order by its public reference.
func (s *Store) GetByNumber(ctx context.Context, number string) (Order, error) {
	o, err := scanOrder(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return s.hydrate(ctx, o)
}

func (s *Store) hydrate(ctx context.Context, o Order) (Order, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id::text, variant_id::text, product_name, sku, quantity, unit_price, tier, line_total, requires_installation
FROM order_items WHERE order_id = $1
ORDER BY product_name ASC`, o.ID)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.VariantID, &item.ProductName, &item.SKU, &item.Quantity,
			&item.UnitPrice, &item.Tier, &item.LineTotal, &item.RequiresInstallation); err != nil {
			return Order{}, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Order{}, err
	}

	instRows, err := s.pool.Query(ctx, `
SELECT service_id::text, name, fee FROM order_installations WHERE order_id = $1 ORDER BY name ASC`, o.ID)
	if err != nil {
		return Order{}, err
	}
	defer instRows.Close()
	for instRows.Next() {
		var inst Installation
		if err := instRows.Scan(&inst.ServiceID, &inst.Name, &inst.Fee); err != nil {
			return Order{}, err
		}
		o.Installations = append(o.Installations, inst)
	}
	return o, instRows.Err()
}

// UpdateStatus applies a lifecycle transition, stamping confirmation and
// completion times as the order moves forward.
func (s *Store) UpdateStatus(ctx context.Context, id string, next Status) (Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback(ctx)

	var current Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if !current.CanTransition(next) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrBadTransition, current, next)
	}

	q := `UPDATE orders SET status = $2, updated_at = now()`
	switch next {
	case StatusConfirmed:
		q += `, confirmed_at = now()`
	case StatusDelivered:
		q += `, completed_at = now()`
	}
	q += ` WHERE id = $1`
	if _, err := tx.Exec(ctx, q, id, string(next)); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return s.GetByID(ctx, id)
}

// ApplyDiscount records a manual discount and recomputes the total.
func (s *Store) ApplyDiscount(ctx context.Context, id string, discount pricing.Money) (Order, error) {
	tag, err := s.pool.Exec(ctx, `
UPDATE orders
SET discount = $2,
    total_amount = subtotal + installation_cost + delivery_cost - $2,
    updated_at = now()
WHERE id = $1 AND status IN ('DRAFT', 'PENDING', 'CONFIRMED')`, id, discount)
	if err != nil {
		return Order{}, err
	}
	if tag.RowsAffected() == 0 {
		return Order{}, ErrNotFound
	}
	return s.GetByID(ctx, id)
}
