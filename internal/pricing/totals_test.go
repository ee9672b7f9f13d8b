package pricing

import (
	"errors"
	"testing"
)

func TestComputeTotalsEmptyCart(t *testing.T) {
	totals, warnings, err := ComputeTotals(nil, nil, 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if totals != (Totals{}) {
		t.Fatalf("expected all-zero totals, got %+v", totals)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
}

func TestComputeTotalsAdditivity(t *testing.T) {
	lines := []CartLine{
		{VariantID: "a", Quantity: 3, Entry: PriceEntry{UnitPrice: 15000}},
		{VariantID: "b", Quantity: 12, Entry: bulkEntry(4000, 3200, 10)},
		{VariantID: "c", Quantity: 1, Entry: PriceEntry{}},
	}
	var want Money
	for _, line := range lines {
		res, err := Resolve(line.Entry, line.Quantity)
		if err != nil {
			t.Fatalf("resolve %s: %v", line.VariantID, err)
		}
		want += res.UnitPrice * Money(line.Quantity)
	}

	totals, _, err := ComputeTotals(lines, nil, 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if totals.Subtotal != want {
		t.Fatalf("subtotal mismatch: got %d want %d", totals.Subtotal, want)
	}
	if totals.GrandTotal != want {
		t.Fatalf("grand total without fees should equal subtotal, got %d", totals.GrandTotal)
	}
}

func TestComputeTotalsSumsFees(t *testing.T) {
	lines := []CartLine{
		{VariantID: "a", Quantity: 2, Entry: PriceEntry{UnitPrice: 10000}},
	}
	installs := []InstallationSelection{
		{ServiceID: "basic", FlatFee: 25000},
		{ServiceID: "complete", FlatFee: 25000},
	}
	totals, warnings, err := ComputeTotals(lines, installs, 5000)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if totals.Subtotal != 20000 {
		t.Fatalf("subtotal: got %d", totals.Subtotal)
	}
	if totals.InstallationCost != 50000 {
		t.Fatalf("installation: got %d", totals.InstallationCost)
	}
	if totals.DeliveryCost != 5000 {
		t.Fatalf("delivery: got %d", totals.DeliveryCost)
	}
	if totals.GrandTotal != 75000 {
		t.Fatalf("grand total: got %d", totals.GrandTotal)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
}

func TestComputeTotalsDeduplicatesInstallations(t *testing.T) {
	installs := []InstallationSelection{
		{ServiceID: "maintenance", FlatFee: 25000},
		{ServiceID: "maintenance", FlatFee: 25000},
	}
	totals, warnings, err := ComputeTotals(nil, installs, 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if totals.InstallationCost != 25000 {
		t.Fatalf("expected duplicate selection collapsed, got %d", totals.InstallationCost)
	}
	if len(warnings) != 1 || warnings[0].Code != WarnDuplicateInstallation {
		t.Fatalf("expected duplicate-installation warning, got %v", warnings)
	}
}

func TestComputeTotalsPropagatesInvalidQuantity(t *testing.T) {
	lines := []CartLine{{VariantID: "a", Quantity: 0, Entry: PriceEntry{UnitPrice: 100}}}
	if _, _, err := ComputeTotals(lines, nil, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestComputeTotalsSurfacesLineWarnings(t *testing.T) {
	badBulk := Money(2000)
	lines := []CartLine{
		{VariantID: "warned", Quantity: 5, Entry: PriceEntry{VariantID: "warned", UnitPrice: 1000, BulkPrice: &badBulk}},
	}
	totals, warnings, err := ComputeTotals(lines, nil, 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if totals.Subtotal != 5000 {
		t.Fatalf("expected unit fallback subtotal 5000, got %d", totals.Subtotal)
	}
	if len(warnings) != 1 || warnings[0].Subject != "warned" {
		t.Fatalf("expected one line warning, got %v", warnings)
	}
}

func TestComputeTotalsDeterministic(t *testing.T) {
	lines := []CartLine{
		{VariantID: "a", Quantity: 7, Entry: bulkEntry(3000, 2500, 5)},
		{VariantID: "b", Quantity: 2, Entry: PriceEntry{UnitPrice: 9000}},
	}
	installs := []InstallationSelection{{ServiceID: "basic", FlatFee: 25000}}
	first, _, err := ComputeTotals(lines, installs, 5000)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, _, err := ComputeTotals(lines, installs, 5000)
		if err != nil {
			t.Fatalf("compute run %d: %v", i, err)
		}
		if again != first {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}
