package pricing

// CartLine is one entry of a session cart as seen by the calculator.
type CartLine struct {
	VariantID            string
	ProductName          string
	SKU                  string
	Quantity             int
	Entry                PriceEntry
	RequiresInstallation bool
}

// InstallationSelection is one optional service ticked during checkout.
type InstallationSelection struct {
	ServiceID string
	Name      string
	FlatFee   Money
}

// Totals aggregates the computed order amounts. Totals are always derived
// from the current cart and selections, never stored and re-read.
type Totals struct {
	Subtotal         Money `json:"subtotal"`
	InstallationCost Money `json:"installationCost"`
	DeliveryCost     Money `json:"deliveryCost"`
	GrandTotal       Money `json:"grandTotal"`
}

// ComputeTotals resolves every line through Resolve, sums installation fees
// with duplicates collapsed by service ID, and passes the delivery cost
// through untouched. Shipping-rate policy stays with the caller: it supplies
// zero for an empty cart and the flat configured fee otherwise.
//
// An empty cart with no selections and zero delivery yields all-zero totals.
func ComputeTotals(lines []CartLine, installations []InstallationSelection, deliveryCost Money) (Totals, []Warning, error) {
	var (
		totals   Totals
		warnings []Warning
	)
	for _, line := range lines {
		res, err := Resolve(line.Entry, line.Quantity)
		if err != nil {
			return Totals{}, nil, err
		}
		warnings = append(warnings, res.Warnings...)
		totals.Subtotal += res.UnitPrice * Money(line.Quantity)
	}

	seen := make(map[string]struct{}, len(installations))
	for _, sel := range installations {
		if _, dup := seen[sel.ServiceID]; dup {
			warnings = append(warnings, Warning{
				Code:    WarnDuplicateInstallation,
				Subject: sel.ServiceID,
				Detail:  "installation service selected more than once",
			})
			continue
		}
		seen[sel.ServiceID] = struct{}{}
		totals.InstallationCost += sel.FlatFee
	}

	totals.DeliveryCost = deliveryCost
	totals.GrandTotal = totals.Subtotal + totals.InstallationCost + totals.DeliveryCost
	return totals, warnings, nil
}
