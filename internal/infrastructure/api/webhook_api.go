package api

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"shopmetrics-backend/internal/domain"
	"shopmetrics-backend/internal/infrastructure/metrics"
)

// Webhook deliveries top out well below this; anything larger is not a
// legitimate delivery.
const maxWebhookBodyBytes = 1 << 20

const (
	headerSignature  = "X-Shopify-Hmac-Sha256"
	headerShopDomain = "X-Shopify-Shop-Domain"
)

// Verifier checks a delivery signature against the raw body.
type Verifier interface {
	Verify(body []byte, signatureHeader string) error
}

// Dispatcher routes a verified delivery to its topic handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, event *domain.InboundEvent) (string, error)
}

// WebhookAPI receives platform webhook deliveries. Verification always runs
// on the raw body before any parsing.
type WebhookAPI struct {
	verifier   Verifier
	dispatcher Dispatcher
	logger     zerolog.Logger
}

// NewWebhookAPI creates a new webhook API
func NewWebhookAPI(verifier Verifier, dispatcher Dispatcher, logger zerolog.Logger) *WebhookAPI {
	return &WebhookAPI{verifier: verifier, dispatcher: dispatcher, logger: logger}
}

// HandleDelivery processes POST /webhooks/{resource}/{action}. The topic is
// taken from the path, the tenant from the shop-domain header.
func (a *WebhookAPI) HandleDelivery(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "resource") + "/" + chi.URLParam(r, "action")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues(topic, metrics.OutcomeError).Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	if err := a.verifier.Verify(body, r.Header.Get(headerSignature)); err != nil {
		metrics.WebhookDeliveries.WithLabelValues(topic, metrics.OutcomeRejected).Inc()
		a.logger.Warn().Err(err).
			Str("topic", topic).
			Str("shop", r.Header.Get(headerShopDomain)).
			Msg("Rejected webhook delivery")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid webhook signature"})
		return
	}

	shopDomain := r.Header.Get(headerShopDomain)
	if shopDomain == "" {
		metrics.WebhookDeliveries.WithLabelValues(topic, metrics.OutcomeRejected).Inc()
		writeError(w, a.logger, domain.ErrUnknownTenant)
		return
	}

	event := &domain.InboundEvent{Topic: topic, ShopDomain: shopDomain, Payload: body}
	id, err := a.dispatcher.Dispatch(r.Context(), event)
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues(topic, metrics.OutcomeError).Inc()
		writeError(w, a.logger, err)
		return
	}

	metrics.WebhookDeliveries.WithLabelValues(topic, metrics.OutcomeOK).Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"topic":   topic,
		"id":      id,
	})
}

// HandleTest answers POST /webhooks/test so storefront operators can check
// connectivity without a signed payload.
func (a *WebhookAPI) HandleTest(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	a.logger.Info().
		Int("bytes", len(body)).
		Str("shop", r.Header.Get(headerShopDomain)).
		Msg("Test webhook received")
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "received": len(body)})
}
