package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nkg-services/backend-electro/internal/catalog"
	"github.com/nkg-services/backend-electro/internal/pricing"
)

type fakeCatalog struct {
	variants map[string]catalog.VariantSummary
	prices   map[string]pricing.PriceEntry
}

func (f fakeCatalog) GetVariantSummary(_ context.Context, id string) (catalog.VariantSummary, error) {
	v, ok := f.variants[id]
	if !ok {
		return catalog.VariantSummary{}, catalog.ErrNotFound
	}
	return v, nil
}

func (f fakeCatalog) PriceEntry(_ context.Context, id string) (pricing.PriceEntry, error) {
	entry, ok := f.prices[id]
	if !ok {
		return pricing.PriceEntry{}, catalog.ErrNotFound
	}
	return entry, nil
}

const (
	variantCable   = "11111111-1111-1111-1111-111111111111"
	variantBreaker = "22222222-2222-2222-2222-222222222222"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bulk := pricing.Money(800)
	minQty := 10
	cat := fakeCatalog{
		variants: map[string]catalog.VariantSummary{
			variantCable:   {VariantID: variantCable, ProductName: "Cable cuivre 2.5mm", SKU: "CAB-25"},
			variantBreaker: {VariantID: variantBreaker, ProductName: "Disjoncteur 32A", SKU: "DIS-32", RequiresInstallation: true},
		},
		prices: map[string]pricing.PriceEntry{
			variantCable:   {VariantID: variantCable, UnitPrice: 1000, BulkPrice: &bulk, BulkMinQty: &minQty},
			variantBreaker: {VariantID: variantBreaker, UnitPrice: 15000},
		},
	}
	return NewService(Store{R: client, TTL: time.Hour}, cat, 5000, zerolog.Nop())
}

func TestAddItemComputesTotals(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	view, err := svc.AddItem(ctx, "sess", variantCable, 2)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	require.Equal(t, pricing.TierUnit, view.Lines[0].Tier)
	require.Equal(t, pricing.Money(2000), view.Totals.Subtotal)
	require.Equal(t, pricing.Money(5000), view.Totals.DeliveryCost)
	require.Equal(t, pricing.Money(7000), view.Totals.GrandTotal)
}

func TestAddItemMergesAndCrossesBulkBoundary(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", variantCable, 4)
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "sess", variantCable, 6)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	require.Equal(t, 10, view.Lines[0].Quantity)
	require.Equal(t, pricing.TierBulk, view.Lines[0].Tier)
	require.Equal(t, pricing.Money(8000), view.Totals.Subtotal)
}

func TestUpdateQuantityClampsToOne(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", variantBreaker, 3)
	require.NoError(t, err)
	view, err := svc.UpdateQuantity(ctx, "sess", variantBreaker, -5)
	require.NoError(t, err)
	require.Equal(t, 1, view.Lines[0].Quantity)
}

func TestRemoveLastItemDropsDelivery(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", variantCable, 1)
	require.NoError(t, err)
	view, err := svc.RemoveItem(ctx, "sess", variantCable)
	require.NoError(t, err)
	require.Empty(t, view.Lines)
	require.Equal(t, pricing.Totals{}, view.Totals)
}

func TestUnknownVariantRejected(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AddItem(context.Background(), "sess", "33333333-3333-3333-3333-333333333333", 1)
	require.Error(t, err)
}

func TestUnpublishedPriceFallsBackToQuote(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", variantCable, 1)
	require.NoError(t, err)

	// Simulate the price being retired after the item entered the cart.
	cat := svc.catalog.(fakeCatalog)
	delete(cat.prices, variantCable)

	view, err := svc.Get(ctx, "sess")
	require.NoError(t, err)
	require.True(t, view.Lines[0].QuoteRequired)
	require.Equal(t, pricing.Money(0), view.Lines[0].UnitPrice)
}

func TestClearEmptiesCart(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", variantCable, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "sess"))

	view, err := svc.Get(ctx, "sess")
	require.NoError(t, err)
	require.Empty(t, view.Lines)
}
