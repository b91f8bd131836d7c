package application

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"shopmetrics-backend/internal/domain"
	"shopmetrics-backend/internal/ports"
)

// WebhookManager registers the webhook subscriptions a tenant needs on the
// commerce platform. The resulting topic-to-subscription-id map is stored on
// the tenant as an opaque blob; registration failures are recorded in the
// same blob instead of failing the caller.
type WebhookManager struct {
	baseURL string
	logger  zerolog.Logger
}

// NewWebhookManager creates a webhook manager delivering to the given
// public base URL.
func NewWebhookManager(baseURL string, logger zerolog.Logger) *WebhookManager {
	return &WebhookManager{baseURL: strings.TrimSuffix(baseURL, "/"), logger: logger}
}

// RegisterSubscriptions ensures one subscription per default topic exists,
// reusing subscriptions that already point at our endpoint. It always
// returns a state blob worth persisting; the error reports the first
// platform failure, if any.
func (m *WebhookManager) RegisterSubscriptions(ctx context.Context, client ports.PlatformClient, shopDomain string) ([]byte, error) {
	state := make(map[string]interface{})

	existing, err := client.ListWebhooks(ctx)
	if err != nil {
		m.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to list existing webhooks")
		state["error"] = err.Error()
		blob, _ := json.Marshal(state)
		return blob, err
	}

	byTopic := make(map[string]uint64)
	for _, webhook := range existing {
		if strings.HasPrefix(webhook.Address, m.baseURL) {
			byTopic[webhook.Topic] = webhook.Id
		}
	}

	var firstErr error
	for _, topic := range domain.DefaultWebhookTopics() {
		if id, ok := byTopic[topic]; ok {
			state[topic] = id
			continue
		}

		created, err := client.CreateWebhook(ctx, topic, m.baseURL+"/webhooks/"+topic)
		if err != nil {
			m.logger.Error().Err(err).
				Str("shop", shopDomain).
				Str("topic", topic).
				Msg("Failed to create webhook subscription")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		state[topic] = created.Id
		m.logger.Info().
			Str("shop", shopDomain).
			Str("topic", topic).
			Uint64("webhookId", created.Id).
			Msg("Webhook subscription created")
	}

	if firstErr != nil {
		state["error"] = firstErr.Error()
	}

	blob, _ := json.Marshal(state)
	return blob, firstErr
}
