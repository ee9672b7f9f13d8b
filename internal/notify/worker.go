package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Worker handles notification tasks. Delivery today is a structured log line
// picked up by the ops channel exporter.
// TODO: plug in the WhatsApp Business API sender once the account is approved.
type Worker struct {
	Logger zerolog.Logger
}

// Register attaches all task handlers to the mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOrderSubmitted, w.HandleOrderSubmitted)
	mux.HandleFunc(TypeQuoteRequested, w.HandleQuoteRequested)
	mux.HandleFunc(TypeLowStock, w.HandleLowStock)
}

// HandleOrderSubmitted processes order notifications.
func (w *Worker) HandleOrderSubmitted(_ context.Context, t *asynq.Task) error {
	var p OrderSubmittedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %w: %w", t.Type(), err, asynq.SkipRetry)
	}
	w.Logger.Info().
		Str("order_id", p.OrderID).
		Str("order_number", p.OrderNumber).
		Str("order_type", p.OrderType).
		Int64("total_amount", p.TotalAmount).
		Str("currency", p.Currency).
		Msg("order submitted")
	return nil
}

// HandleQuoteRequested processes quote notifications.
func (w *Worker) HandleQuoteRequested(_ context.Context, t *asynq.Task) error {
	var p QuoteRequestedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %w: %w", t.Type(), err, asynq.SkipRetry)
	}
	w.Logger.Info().
		Str("quote_id", p.QuoteID).
		Str("quote_number", p.QuoteNumber).
		Str("product", p.ProductName).
		Int("quantity", p.Quantity).
		Msg("quote requested")
	return nil
}

// HandleLowStock processes low stock alerts.
func (w *Worker) HandleLowStock(_ context.Context, t *asynq.Task) error {
	var p LowStockPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %w: %w", t.Type(), err, asynq.SkipRetry)
	}
	w.Logger.Warn().
		Str("variant_id", p.VariantID).
		Str("sku", p.SKU).
		Int("quantity", p.Quantity).
		Int("reorder_level", p.Reorder).
		Msg("stock below reorder level")
	return nil
}
