package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/nkg-services/backend-electro/internal/common"
	"github.com/nkg-services/backend-electro/internal/install"
	"github.com/nkg-services/backend-electro/internal/notify"
	"github.com/nkg-services/backend-electro/internal/obs"
	"github.com/nkg-services/backend-electro/internal/pricing"
)

// CartSource is what checkout needs from the session cart.
type CartSource interface {
	Lines(ctx context.Context, sessionID string) ([]pricing.CartLine, error)
	Clear(ctx context.Context, sessionID string) error
}

// InstallCatalog resolves selected installation services.
type InstallCatalog interface {
	GetByIDs(ctx context.Context, ids []string) ([]install.Service, error)
}

// DashboardCache is dropped after a submission so the back-office overview
// picks up the new order before its TTL lapses.
type DashboardCache interface {
	Invalidate(ctx context.Context)
}

// Request is a validated checkout submission.
type Request struct {
	SessionID             string
	CustomerName          string
	CustomerPhone         string
	CustomerEmail         string
	AddressLine1          string
	City                  string
	CustomerNotes         string
	InstallationNotes     string
	InstallationServiceID []string
}

// Result is returned to the storefront: the persisted order reference plus
// the wa.me link the client opens to actually submit the order.
type Result struct {
	OrderID     string         `json:"orderId"`
	OrderNumber string         `json:"orderNumber"`
	OrderType   string         `json:"orderType"`
	Totals      pricing.Totals `json:"totals"`
	WhatsAppURL string         `json:"whatsappUrl"`
}

// Config carries checkout policy knobs.
type Config struct {
	DeliveryFlatFee pricing.Money
	CurrencyCode    string
	WhatsAppPhone   string
}

// Service persists orders and builds the outbound WhatsApp link.
type Service struct {
	pool      *pgxpool.Pool
	cart      CartSource
	installs  InstallCatalog
	enqueuer  notify.Enqueuer
	dashboard DashboardCache
	cfg       Config
	logger    zerolog.Logger
}

// NewService wires the checkout service.
func NewService(pool *pgxpool.Pool, cart CartSource, installs InstallCatalog, enqueuer notify.Enqueuer, dashboard DashboardCache, cfg Config, logger zerolog.Logger) *Service {
	return &Service{pool: pool, cart: cart, installs: installs, enqueuer: enqueuer, dashboard: dashboard, cfg: cfg, logger: logger}
}

// Submit turns the session cart into a PENDING order. The delivery fee only
// applies to non-empty carts, and an empty cart is rejected outright.
func (s *Service) Submit(ctx context.Context, req Request) (Result, error) {
	lines, err := s.cart.Lines(ctx, req.SessionID)
	if err != nil {
		return Result{}, err
	}
	if len(lines) == 0 {
		return Result{}, common.NewAppError("EMPTY_CART", "cart is empty", 400, nil)
	}

	selections, installNames, err := s.resolveInstallations(ctx, req.InstallationServiceID)
	if err != nil {
		return Result{}, err
	}

	totals, warnings, err := pricing.ComputeTotals(lines, selections, s.cfg.DeliveryFlatFee)
	if err != nil {
		return Result{}, err
	}
	obs.LogWarnings(s.logger, warnings)

	orderType := "STANDARD"
	if len(selections) > 0 {
		orderType = "WITH_INSTALLATION"
	}

	summary := Summary{
		CustomerName: req.CustomerName,
		Phone:        req.CustomerPhone,
		AddressLine1: req.AddressLine1,
		City:         req.City,
		Totals:       totals,
	}
	type storedItem struct {
		line      pricing.CartLine
		unitPrice pricing.Money
		tier      pricing.Tier
		lineTotal pricing.Money
	}
	items := make([]storedItem, 0, len(lines))
	for _, line := range lines {
		res, err := pricing.Resolve(line.Entry, line.Quantity)
		if err != nil {
			return Result{}, err
		}
		lineTotal := res.UnitPrice * pricing.Money(line.Quantity)
		items = append(items, storedItem{line: line, unitPrice: res.UnitPrice, tier: res.Tier, lineTotal: lineTotal})
		summary.Lines = append(summary.Lines, SummaryLine{
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			LineTotal:   lineTotal,
		})
	}

	orderNumber := newOrderNumber()
	waURL := WhatsAppLink(s.cfg.WhatsAppPhone, summary)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback(ctx)

	var orderID string
	err = tx.QueryRow(ctx, `
INSERT INTO orders (order_number, customer_name, customer_phone, customer_email, address_line1, city,
                    status, order_type, subtotal, installation_cost, delivery_cost, total_amount,
                    currency, customer_notes, installation_notes, whatsapp_url)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, 'PENDING', $7, $8, $9, $10, $11, $12, NULLIF($13, ''), NULLIF($14, ''), $15)
RETURNING id::text`,
		orderNumber, req.CustomerName, req.CustomerPhone, req.CustomerEmail, req.AddressLine1, req.City,
		orderType, totals.Subtotal, totals.InstallationCost, totals.DeliveryCost, totals.GrandTotal,
		s.cfg.CurrencyCode, req.CustomerNotes, req.InstallationNotes, waURL,
	).Scan(&orderID)
	if err != nil {
		return Result{}, err
	}

	for _, item := range items {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, variant_id, product_name, sku, quantity, unit_price, tier, line_total, requires_installation)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			orderID, item.line.VariantID, item.line.ProductName, item.line.SKU, item.line.Quantity,
			item.unitPrice, string(item.tier), item.lineTotal, item.line.RequiresInstallation); err != nil {
			return Result{}, err
		}
	}
	for i, sel := range selections {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_installations (order_id, service_id, name, fee)
VALUES ($1, $2, $3, $4)
ON CONFLICT (order_id, service_id) DO NOTHING`,
			orderID, sel.ServiceID, installNames[i], sel.FlatFee); err != nil {
			return Result{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Result{}, err
	}

	if err := s.cart.Clear(ctx, req.SessionID); err != nil {
		s.logger.Warn().Err(err).Str("session", req.SessionID).Msg("clear cart after checkout")
	}
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
	s.enqueueNotification(orderID, orderNumber, orderType, totals.GrandTotal)

	if obs.OrdersSubmittedTotal != nil {
		obs.OrdersSubmittedTotal.WithLabelValues(orderType).Inc()
	}
	if obs.WhatsAppLinksTotal != nil {
		obs.WhatsAppLinksTotal.Inc()
	}

	return Result{
		OrderID:     orderID,
		OrderNumber: orderNumber,
		OrderType:   orderType,
		Totals:      totals,
		WhatsAppURL: waURL,
	}, nil
}

func (s *Service) resolveInstallations(ctx context.Context, ids []string) ([]pricing.InstallationSelection, []string, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	services, err := s.installs.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	known := make(map[string]install.Service, len(services))
	for _, svc := range services {
		known[svc.ID] = svc
	}
	// Preserve the submitted order, including duplicates: the calculator
	// collapses them and reports a warning.
	var (
		selections []pricing.InstallationSelection
		names      []string
	)
	for _, id := range ids {
		svc, ok := known[id]
		if !ok {
			return nil, nil, common.BadRequest("installationServiceIds", "unknown installation service: "+id)
		}
		selections = append(selections, pricing.InstallationSelection{
			ServiceID: svc.ID,
			Name:      svc.Name,
			FlatFee:   svc.Fee,
		})
		names = append(names, svc.Name)
	}
	return selections, names, nil
}

func (s *Service) enqueueNotification(orderID, orderNumber, orderType string, total pricing.Money) {
	if s.enqueuer == nil {
		return
	}
	task, err := notify.NewOrderSubmittedTask(notify.OrderSubmittedPayload{
		OrderID:     orderID,
		OrderNumber: orderNumber,
		OrderType:   orderType,
		TotalAmount: total,
		Currency:    s.cfg.CurrencyCode,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("build order notification task")
		return
	}
	if _, err := s.enqueuer.Enqueue(task); err != nil {
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("enqueue order notification")
	}
}

func newOrderNumber() string {
	suffix := make([]byte, 3)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("CMD-%s-%s", time.Now().UTC().Format("20060102"), hex.EncodeToString(suffix))
}
