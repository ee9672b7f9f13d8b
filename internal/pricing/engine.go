package pricing

import "errors"

// Money represents a monetary value stored in minor units. XAF carries no
// sub-units, so all amounts are whole francs and no rounding ever happens
// inside this package.
type Money = int64

// Tier identifies which price tier was applied to a line.
type Tier string

const (
	// TierUnit is the default per-piece price.
	TierUnit Tier = "unit"
	// TierBulk is the discounted price applied at or above the bulk minimum.
	TierBulk Tier = "bulk"
)

// ErrInvalidQuantity is returned when a quantity below 1 reaches the resolver.
// Callers clamp user input to a minimum of 1 before resolving.
var ErrInvalidQuantity = errors.New("pricing: quantity must be at least 1")

// WarningCode classifies non-fatal data-quality findings.
type WarningCode string

const (
	// WarnBulkWithoutMinimum flags a bulk price published without a usable
	// minimum quantity.
	WarnBulkWithoutMinimum WarningCode = "BULK_WITHOUT_MINIMUM"
	// WarnBulkAboveUnit flags a bulk price greater than the unit price.
	WarnBulkAboveUnit WarningCode = "BULK_ABOVE_UNIT"
	// WarnCategoryCycle flags a category that is its own ancestor.
	WarnCategoryCycle WarningCode = "CATEGORY_CYCLE"
	// WarnDuplicateInstallation flags the same installation service selected twice.
	WarnDuplicateInstallation WarningCode = "DUPLICATE_INSTALLATION"
)

// Warning reports a suspicious-but-plausible input the computation degraded
// around instead of failing. The subject identifies the offending record
// (variant ID, category ID, service ID).
type Warning struct {
	Code    WarningCode
	Subject string
	Detail  string
}

// PriceEntry is the validated price shape for a single variant. A zero
// UnitPrice is legal and means the product is sold on quotation only.
type PriceEntry struct {
	VariantID  string
	UnitPrice  Money
	BulkPrice  *Money
	BulkMinQty *int
}

// Resolution is the outcome of tier resolution for one entry and quantity.
type Resolution struct {
	UnitPrice Money
	Tier      Tier
	Warnings  []Warning
}

// QuoteRequired reports whether the resolved price signals a human-mediated
// quotation instead of a published amount.
func (r Resolution) QuoteRequired() bool {
	return r.UnitPrice == 0
}

// Resolve picks the applicable unit price for the given quantity. The bulk
// tier applies when both bulk fields are present, consistent, and the
// quantity meets the minimum (inclusive). A malformed bulk tier is ignored
// with a warning so the caller still gets a deterministic unit price.
func Resolve(entry PriceEntry, quantity int) (Resolution, error) {
	if quantity < 1 {
		return Resolution{}, ErrInvalidQuantity
	}
	res := Resolution{UnitPrice: entry.UnitPrice, Tier: TierUnit}

	if entry.BulkPrice == nil {
		if entry.BulkMinQty != nil {
			res.Warnings = append(res.Warnings, Warning{
				Code:    WarnBulkWithoutMinimum,
				Subject: entry.VariantID,
				Detail:  "bulk minimum quantity set without a bulk price",
			})
		}
		return res, nil
	}

	if entry.BulkMinQty == nil || *entry.BulkMinQty <= 1 {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnBulkWithoutMinimum,
			Subject: entry.VariantID,
			Detail:  "bulk price set without a minimum quantity above 1",
		})
		return res, nil
	}
	if *entry.BulkPrice > entry.UnitPrice {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnBulkAboveUnit,
			Subject: entry.VariantID,
			Detail:  "bulk price exceeds unit price",
		})
		return res, nil
	}

	if quantity >= *entry.BulkMinQty {
		res.UnitPrice = *entry.BulkPrice
		res.Tier = TierBulk
	}
	return res, nil
}
