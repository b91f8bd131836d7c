package webhook_handlers

import (
	"context"

	"github.com/rs/zerolog"

	"shopmetrics-backend/internal/domain"
)

// OrderReconciler folds an order webhook payload into the store.
type OrderReconciler interface {
	ReconcileOrder(ctx context.Context, event *domain.InboundEvent) (string, error)
}

// OrderHandler handles order-related webhook events
type OrderHandler struct {
	reconciler OrderReconciler
	logger     zerolog.Logger
}

// NewOrderHandler creates a new order webhook handler
func NewOrderHandler(reconciler OrderReconciler, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{reconciler: reconciler, logger: logger}
}

// CanHandle returns true if this handler can process the given topic
func (h *OrderHandler) CanHandle(topic string) bool {
	return topic == domain.TopicOrderCreate || topic == domain.TopicOrderUpdate
}

// Handle processes an order webhook event
func (h *OrderHandler) Handle(ctx context.Context, event *domain.InboundEvent) (string, error) {
	h.logger.Debug().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Msg("Processing order webhook event")

	return h.reconciler.ReconcileOrder(ctx, event)
}
