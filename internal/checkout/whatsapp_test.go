package checkout

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkg-services/backend-electro/internal/pricing"
)

func TestFormatXAF(t *testing.T) {
	cases := map[pricing.Money]string{
		0:       "0 XAF",
		500:     "500 XAF",
		5000:    "5 000 XAF",
		25000:   "25 000 XAF",
		1234567: "1 234 567 XAF",
	}
	for amount, want := range cases {
		require.Equal(t, want, FormatXAF(amount))
	}
}

func TestWhatsAppLinkShape(t *testing.T) {
	link := WhatsAppLink("+237 696 12 34 56", Summary{
		Lines: []SummaryLine{
			{ProductName: "Cable cuivre 2.5mm", Quantity: 10, LineTotal: 8000},
		},
		CustomerName: "Jean Dupont",
		Phone:        "+237 699 00 00 00",
		AddressLine1: "Rue 1234",
		City:         "Douala",
		Totals: pricing.Totals{
			Subtotal:         8000,
			InstallationCost: 25000,
			DeliveryCost:     5000,
			GrandTotal:       38000,
		},
	})

	require.True(t, strings.HasPrefix(link, "https://wa.me/237696123456?text="), link)
	require.NotContains(t, link, "+", "encoded text must use %20, not +")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	text := parsed.Query().Get("text")
	require.Contains(t, text, "Bonjour, je souhaite confirmer ma commande:")
	require.Contains(t, text, "• Cable cuivre 2.5mm (x10) - 8 000 XAF")
	require.Contains(t, text, "Clientèle: Jean Dupont")
	require.Contains(t, text, "Adresse: Rue 1234, Douala")
	require.Contains(t, text, "Sous-total: 8 000 XAF")
	require.Contains(t, text, "Livraison: 5 000 XAF")
	require.Contains(t, text, "Installation: 25 000 XAF")
	require.Contains(t, text, "TOTAL: 38 000 XAF")
}

func TestWhatsAppLinkDeterministic(t *testing.T) {
	summary := Summary{
		Lines:        []SummaryLine{{ProductName: "Disjoncteur 32A", Quantity: 1, LineTotal: 15000}},
		CustomerName: "Awa",
		Phone:        "699",
		AddressLine1: "BP 1",
		City:         "Yaoundé",
		Totals:       pricing.Totals{Subtotal: 15000, DeliveryCost: 5000, GrandTotal: 20000},
	}
	first := WhatsAppLink("237696123456", summary)
	second := WhatsAppLink("237696123456", summary)
	require.Equal(t, first, second)
}
