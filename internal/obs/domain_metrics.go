package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nkg-services/backend-electro/internal/pricing"
)

var (
	domainOnce sync.Once

	// OrdersSubmittedTotal counts checkout submissions by order type.
	OrdersSubmittedTotal *prometheus.CounterVec
	// WhatsAppLinksTotal counts generated wa.me order links.
	WhatsAppLinksTotal prometheus.Counter
	// QuoteRequestsTotal counts storefront quote requests by outcome.
	QuoteRequestsTotal *prometheus.CounterVec
	// DataWarningsTotal counts data-quality warnings surfaced by the pure
	// computations (inconsistent price entries, category cycles, duplicate
	// installation selections).
	DataWarningsTotal *prometheus.CounterVec
	// StockLowTotal counts variants crossing their reorder threshold.
	StockLowTotal prometheus.Counter
	// CartOperationsTotal counts cart mutations by operation.
	CartOperationsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific
// Prometheus collectors. Safe to call more than once.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrdersSubmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_submitted_total",
			Help:      "Count of submitted orders by order type.",
		}, []string{"order_type"})
		WhatsAppLinksTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "whatsapp_links_total",
			Help:      "Count of generated WhatsApp order links.",
		})
		QuoteRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_requests_total",
			Help:      "Count of storefront quote requests by outcome.",
		}, []string{"result"})
		DataWarningsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_warnings_total",
			Help:      "Count of data-quality warnings by code.",
		}, []string{"code"})
		StockLowTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_low_total",
			Help:      "Count of low-stock threshold crossings.",
		})
		CartOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Count of cart mutations by operation.",
		}, []string{"op"})

		reg.MustRegister(
			OrdersSubmittedTotal,
			WhatsAppLinksTotal,
			QuoteRequestsTotal,
			DataWarningsTotal,
			StockLowTotal,
			CartOperationsTotal,
		)
	})
}

// CountWarning bumps the warning counter for a single finding. No-op before
// registration so pure-function tests stay metric-free.
func CountWarning(warning pricing.Warning) {
	if DataWarningsTotal == nil {
		return
	}
	DataWarningsTotal.WithLabelValues(string(warning.Code)).Inc()
}
