package pricing

import (
	"errors"
	"testing"
)

func bulkEntry(unit, bulk Money, min int) PriceEntry {
	return PriceEntry{VariantID: "v-1", UnitPrice: unit, BulkPrice: &bulk, BulkMinQty: &min}
}

func TestResolveBulkBoundaryInclusive(t *testing.T) {
	entry := bulkEntry(1000, 800, 10)

	below, err := Resolve(entry, 9)
	if err != nil {
		t.Fatalf("resolve qty 9: %v", err)
	}
	if below.UnitPrice != 1000 || below.Tier != TierUnit {
		t.Fatalf("expected unit tier 1000 below minimum, got %d/%s", below.UnitPrice, below.Tier)
	}

	at, err := Resolve(entry, 10)
	if err != nil {
		t.Fatalf("resolve qty 10: %v", err)
	}
	if at.UnitPrice != 800 || at.Tier != TierBulk {
		t.Fatalf("expected bulk tier 800 at minimum, got %d/%s", at.UnitPrice, at.Tier)
	}
}

func TestResolveNoBulkFallback(t *testing.T) {
	entry := PriceEntry{VariantID: "v-2", UnitPrice: 500}
	for _, qty := range []int{1, 10, 1000} {
		res, err := Resolve(entry, qty)
		if err != nil {
			t.Fatalf("resolve qty %d: %v", qty, err)
		}
		if res.UnitPrice != 500 || res.Tier != TierUnit {
			t.Fatalf("qty %d: expected unit 500, got %d/%s", qty, res.UnitPrice, res.Tier)
		}
		if len(res.Warnings) != 0 {
			t.Fatalf("qty %d: unexpected warnings %v", qty, res.Warnings)
		}
	}
}

func TestResolveRejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int{0, -1, -100} {
		if _, err := Resolve(PriceEntry{UnitPrice: 100}, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestResolveMalformedBulkFallsBackWithWarning(t *testing.T) {
	bulk := Money(900)
	cases := map[string]PriceEntry{
		"missing minimum": {VariantID: "v-3", UnitPrice: 1000, BulkPrice: &bulk},
		"minimum of one":  bulkEntry(1000, 900, 1),
		"bulk above unit": bulkEntry(1000, 1500, 5),
	}
	for name, entry := range cases {
		res, err := Resolve(entry, 50)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if res.UnitPrice != entry.UnitPrice || res.Tier != TierUnit {
			t.Fatalf("%s: expected unit fallback, got %d/%s", name, res.UnitPrice, res.Tier)
		}
		if len(res.Warnings) != 1 {
			t.Fatalf("%s: expected one warning, got %v", name, res.Warnings)
		}
	}
}

func TestResolveZeroUnitPriceMeansQuoteRequired(t *testing.T) {
	res, err := Resolve(PriceEntry{VariantID: "v-4"}, 3)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.QuoteRequired() {
		t.Fatal("expected zero price to signal quote required")
	}
	if res.Tier != TierUnit {
		t.Fatalf("expected unit tier for unpriced entry, got %s", res.Tier)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	entry := bulkEntry(2500, 2000, 4)
	first, err := Resolve(entry, 4)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for i := 0; i < 100; i++ {
		again, err := Resolve(entry, 4)
		if err != nil {
			t.Fatalf("resolve run %d: %v", i, err)
		}
		if again.UnitPrice != first.UnitPrice || again.Tier != first.Tier {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}
