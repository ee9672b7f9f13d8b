// Package checkout turns a session cart into a persisted order and the
// WhatsApp deep link that actually submits it to the shop.
package checkout

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/nkg-services/backend-electro/internal/pricing"
)

// SummaryLine is one order line as rendered into the outbound message.
type SummaryLine struct {
	ProductName string
	Quantity    int
	LineTotal   pricing.Money
}

// Summary carries everything the message template needs.
type Summary struct {
	Lines        []SummaryLine
	CustomerName string
	Phone        string
	AddressLine1 string
	City         string
	Totals       pricing.Totals
}

// WhatsAppLink builds the wa.me deep link carrying the order summary. The
// same totals shown in the cart must appear here, both come from the same
// deterministic computation.
func WhatsAppLink(shopPhone string, s Summary) string {
	var b strings.Builder
	b.WriteString("Bonjour, je souhaite confirmer ma commande:\n\n")
	for _, line := range s.Lines {
		b.WriteString("• ")
		b.WriteString(line.ProductName)
		b.WriteString(" (x")
		b.WriteString(strconv.Itoa(line.Quantity))
		b.WriteString(") - ")
		b.WriteString(FormatXAF(line.LineTotal))
		b.WriteString("\n")
	}
	b.WriteString("\nClientèle: ")
	b.WriteString(s.CustomerName)
	b.WriteString("\nTéléphone: ")
	b.WriteString(s.Phone)
	b.WriteString("\nAdresse: ")
	b.WriteString(s.AddressLine1)
	b.WriteString(", ")
	b.WriteString(s.City)
	b.WriteString("\n\nSous-total: ")
	b.WriteString(FormatXAF(s.Totals.Subtotal))
	b.WriteString("\nLivraison: ")
	b.WriteString(FormatXAF(s.Totals.DeliveryCost))
	b.WriteString("\nInstallation: ")
	b.WriteString(FormatXAF(s.Totals.InstallationCost))
	b.WriteString("\nTOTAL: ")
	b.WriteString(FormatXAF(s.Totals.GrandTotal))

	encoded := strings.ReplaceAll(url.QueryEscape(b.String()), "+", "%20")
	return "https://wa.me/" + digitsOnly(shopPhone) + "?text=" + encoded
}

// digitsOnly strips everything but digits from a phone number, the format
// wa.me expects.
func digitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatXAF renders an amount with space-grouped thousands and the currency
// suffix. XAF has no sub-units so there is never a decimal part.
func FormatXAF(amount pricing.Money) string {
	digits := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(d)
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	return out + " XAF"
}
