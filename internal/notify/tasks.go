// Package notify defines the background tasks emitted by the API and
// consumed by the worker process.
package notify

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// TypeOrderSubmitted is enqueued after a checkout persists an order.
	TypeOrderSubmitted = "notify:order_submitted"
	// TypeQuoteRequested is enqueued when a storefront quote request lands.
	TypeQuoteRequested = "notify:quote_requested"
	// TypeLowStock is enqueued when a stock movement crosses the reorder level.
	TypeLowStock = "notify:low_stock"
)

// OrderSubmittedPayload notifies staff about a new order.
type OrderSubmittedPayload struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	OrderType   string `json:"orderType"`
	TotalAmount int64  `json:"totalAmount"`
	Currency    string `json:"currency"`
}

// NewOrderSubmittedTask builds the order notification task.
func NewOrderSubmittedTask(p OrderSubmittedPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOrderSubmitted, payload, asynq.MaxRetry(5)), nil
}

// QuoteRequestedPayload notifies staff about a new quote request.
type QuoteRequestedPayload struct {
	QuoteID     string `json:"quoteId"`
	QuoteNumber string `json:"quoteNumber"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// NewQuoteRequestedTask builds the quote notification task.
func NewQuoteRequestedTask(p QuoteRequestedPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeQuoteRequested, payload, asynq.MaxRetry(5)), nil
}

// LowStockPayload flags a variant that fell to or below its reorder level.
type LowStockPayload struct {
	VariantID string `json:"variantId"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	Reorder   int    `json:"reorderLevel"`
}

// NewLowStockTask builds the low stock alert task.
func NewLowStockTask(p LowStockPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeLowStock, payload, asynq.MaxRetry(3)), nil
}

// Enqueuer is the slice of asynq.Client the services depend on.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
