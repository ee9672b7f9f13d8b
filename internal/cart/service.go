package cart

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/nkg-services/backend-electro/internal/catalog"
	"github.com/nkg-services/backend-electro/internal/common"
	"github.com/nkg-services/backend-electro/internal/obs"
	"github.com/nkg-services/backend-electro/internal/pricing"
)

// Catalog is the read surface the cart needs from the product catalog.
type Catalog interface {
	GetVariantSummary(ctx context.Context, variantID string) (catalog.VariantSummary, error)
	PriceEntry(ctx context.Context, variantID string) (pricing.PriceEntry, error)
}

// Line is a cart item with its freshly resolved price.
type Line struct {
	Item
	UnitPrice     pricing.Money `json:"unitPrice"`
	Tier          pricing.Tier  `json:"tier"`
	LineTotal     pricing.Money `json:"lineTotal"`
	QuoteRequired bool          `json:"quoteRequired"`
}

// View is the cart as returned to the storefront: stored lines plus derived
// totals, recomputed on every read.
type View struct {
	SessionID string         `json:"sessionId"`
	Lines     []Line         `json:"lines"`
	Totals    pricing.Totals `json:"totals"`
}

// Service owns cart mutations and total derivation.
type Service struct {
	store       Store
	catalog     Catalog
	deliveryFee pricing.Money
	logger      zerolog.Logger
}

// NewService wires the cart service. deliveryFee is the flat charge applied
// to non-empty carts.
func NewService(store Store, cat Catalog, deliveryFee pricing.Money, logger zerolog.Logger) *Service {
	return &Service{store: store, catalog: cat, deliveryFee: deliveryFee, logger: logger}
}

// Get returns the cart with derived totals.
func (s *Service) Get(ctx context.Context, sessionID string) (View, error) {
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, c)
}

// AddItem adds quantity of a variant, merging with an existing line.
// Quantities below 1 are clamped to 1.
func (s *Service) AddItem(ctx context.Context, sessionID, variantID string, quantity int) (View, error) {
	if quantity < 1 {
		quantity = 1
	}
	summary, err := s.catalog.GetVariantSummary(ctx, variantID)
	if errors.Is(err, catalog.ErrNotFound) {
		return View{}, common.NotFound("variant")
	}
	if err != nil {
		return View{}, err
	}

	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	merged := false
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			c.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, Item{
			VariantID:            summary.VariantID,
			ProductName:          summary.ProductName,
			SKU:                  summary.SKU,
			Quantity:             quantity,
			RequiresInstallation: summary.RequiresInstallation,
		})
	}
	if err := s.store.Save(ctx, c); err != nil {
		return View{}, err
	}
	s.countOp("add")
	return s.view(ctx, c)
}

// UpdateQuantity sets the quantity of an existing line, clamped to 1.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, variantID string, quantity int) (View, error) {
	if quantity < 1 {
		quantity = 1
	}
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	found := false
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			c.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return View{}, common.NotFound("cart item")
	}
	if err := s.store.Save(ctx, c); err != nil {
		return View{}, err
	}
	s.countOp("update")
	return s.view(ctx, c)
}

// RemoveItem drops a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, sessionID, variantID string) (View, error) {
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	kept := c.Items[:0]
	found := false
	for _, item := range c.Items {
		if item.VariantID == variantID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return View{}, common.NotFound("cart item")
	}
	c.Items = kept
	if err := s.store.Save(ctx, c); err != nil {
		return View{}, err
	}
	s.countOp("remove")
	return s.view(ctx, c)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.countOp("clear")
	return nil
}

// Lines resolves the stored items against current prices. Used by checkout
// to build the order from the same computation the storefront displays.
func (s *Service) Lines(ctx context.Context, sessionID string) ([]pricing.CartLine, error) {
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.pricingLines(ctx, c)
}

func (s *Service) pricingLines(ctx context.Context, c Cart) ([]pricing.CartLine, error) {
	lines := make([]pricing.CartLine, 0, len(c.Items))
	for _, item := range c.Items {
		entry, err := s.catalog.PriceEntry(ctx, item.VariantID)
		if errors.Is(err, catalog.ErrNotFound) {
			// Variant was unpublished after being added, sold on quote only.
			entry = pricing.PriceEntry{VariantID: item.VariantID}
		} else if err != nil {
			return nil, err
		}
		lines = append(lines, pricing.CartLine{
			VariantID:            item.VariantID,
			ProductName:          item.ProductName,
			SKU:                  item.SKU,
			Quantity:             item.Quantity,
			Entry:                entry,
			RequiresInstallation: item.RequiresInstallation,
		})
	}
	return lines, nil
}

func (s *Service) view(ctx context.Context, c Cart) (View, error) {
	pricingLines, err := s.pricingLines(ctx, c)
	if err != nil {
		return View{}, err
	}

	delivery := pricing.Money(0)
	if len(pricingLines) > 0 {
		delivery = s.deliveryFee
	}
	totals, warnings, err := pricing.ComputeTotals(pricingLines, nil, delivery)
	if err != nil {
		return View{}, err
	}
	obs.LogWarnings(s.logger, warnings)

	lines := make([]Line, 0, len(c.Items))
	for i, item := range c.Items {
		res, err := pricing.Resolve(pricingLines[i].Entry, item.Quantity)
		if err != nil {
			return View{}, err
		}
		lines = append(lines, Line{
			Item:          item,
			UnitPrice:     res.UnitPrice,
			Tier:          res.Tier,
			LineTotal:     res.UnitPrice * pricing.Money(item.Quantity),
			QuoteRequired: res.QuoteRequired(),
		})
	}
	return View{SessionID: c.SessionID, Lines: lines, Totals: totals}, nil
}

func (s *Service) countOp(op string) {
	if obs.CartOperationsTotal != nil {
		obs.CartOperationsTotal.WithLabelValues(op).Inc()
	}
}
