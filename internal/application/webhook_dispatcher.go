package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"shopmetrics-backend/internal/domain"
)

// WebhookHandler processes one family of webhook topics. Handle returns the
// external id of the affected entity.
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.InboundEvent) (string, error)
}

// WebhookDispatcher routes verified deliveries to the first handler that
// accepts the topic.
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates a new webhook dispatcher
func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

// RegisterHandler adds a handler to the dispatch chain
func (d *WebhookDispatcher) RegisterHandler(handler WebhookHandler) {
	d.handlers = append(d.handlers, handler)
}

// Dispatch routes the event. Returns domain.ErrUnhandledTopic when no
// registered handler accepts the topic.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.InboundEvent) (string, error) {
	for _, handler := range d.handlers {
		if handler.CanHandle(event.Topic) {
			return handler.Handle(ctx, event)
		}
	}

	d.logger.Warn().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Msg("No handler registered for webhook topic")
	return "", fmt.Errorf("%w: %s", domain.ErrUnhandledTopic, event.Topic)
}
