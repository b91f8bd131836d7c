package webhook_handlers

import (
	"context"

	"github.com/rs/zerolog"

	"shopmetrics-backend/internal/domain"
)

// CustomerReconciler folds a customer webhook payload into the store.
type CustomerReconciler interface {
	ReconcileCustomer(ctx context.Context, event *domain.InboundEvent) (string, error)
}

// CustomerHandler handles customer-related webhook events
type CustomerHandler struct {
	reconciler CustomerReconciler
	logger     zerolog.Logger
}

// NewCustomerHandler creates a new customer webhook handler
func NewCustomerHandler(reconciler CustomerReconciler, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{reconciler: reconciler, logger: logger}
}

// CanHandle returns true if this handler can process the given topic
func (h *CustomerHandler) CanHandle(topic string) bool {
	return topic == domain.TopicCustomerCreate || topic == domain.TopicCustomerUpdate
}

// Handle processes a customer webhook event
func (h *CustomerHandler) Handle(ctx context.Context, event *domain.InboundEvent) (string, error) {
	h.logger.Debug().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Msg("Processing customer webhook event")

	return h.reconciler.ReconcileCustomer(ctx, event)
}
