package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"shopmetrics-backend/internal/domain"
	"shopmetrics-backend/internal/ports"
)

// Reconciler folds verified webhook payloads into the current-state entity
// tables. Both webhook delivery and bulk ingestion converge on the same
// upserts, so redelivered or replayed events are harmless: the row ends up
// identical and only the audit log grows.
type Reconciler struct {
	tenants ports.TenantRepository
	store   ports.EntityStore
	logger  zerolog.Logger
}

// NewReconciler creates a new webhook reconciler
func NewReconciler(tenants ports.TenantRepository, store ports.EntityStore, logger zerolog.Logger) *Reconciler {
	return &Reconciler{tenants: tenants, store: store, logger: logger}
}

// orderPayload is the subset of an order webhook body the reconciler reads.
// IDs arrive as numbers beyond 2^53, so they are kept as json.Number and
// stored as strings.
type orderPayload struct {
	ID         json.Number `json:"id"`
	TotalPrice string      `json:"total_price"`
	Currency   string      `json:"currency"`
	Email      string      `json:"email"`
	CreatedAt  time.Time   `json:"created_at"`
	Customer   *struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"customer"`
}

type customerPayload struct {
	ID          json.Number `json:"id"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	TotalSpent  string      `json:"total_spent"`
	OrdersCount int64       `json:"orders_count"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ReconcileOrder upserts the order carried by the event and appends an audit
// row. Returns the external order id.
func (r *Reconciler) ReconcileOrder(ctx context.Context, event *domain.InboundEvent) (string, error) {
	tenant, err := r.tenants.GetByDomain(ctx, event.ShopDomain)
	if err != nil {
		return "", err
	}

	var payload orderPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return "", fmt.Errorf("%w: malformed order payload: %v", domain.ErrValidation, err)
	}
	if payload.ID.String() == "" {
		return "", fmt.Errorf("%w: order payload missing id", domain.ErrValidation)
	}

	email := payload.Email
	var name *string
	if payload.Customer != nil {
		if email == "" {
			email = payload.Customer.Email
		}
		name = displayName(payload.Customer.FirstName, payload.Customer.LastName)
	}

	order := &domain.Order{
		TenantID:       tenant.ID,
		ShopifyOrderID: payload.ID.String(),
		TotalPrice:     parseAmount(payload.TotalPrice),
		Currency:       payload.Currency,
		CustomerEmail:  strOrNil(email),
		CustomerName:   name,
		CreatedAt:      orUTCNow(payload.CreatedAt),
		Raw:            event.Payload,
	}
	if err := r.store.UpsertOrder(ctx, order); err != nil {
		return "", err
	}

	r.audit(ctx, tenant, event, order.ShopifyOrderID)

	r.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Str("orderId", order.ShopifyOrderID).
		Str("totalPrice", order.TotalPrice.String()).
		Msg("Order reconciled")

	return order.ShopifyOrderID, nil
}

// ReconcileCustomer upserts the customer carried by the event and appends an
// audit row. Returns the external customer id.
func (r *Reconciler) ReconcileCustomer(ctx context.Context, event *domain.InboundEvent) (string, error) {
	tenant, err := r.tenants.GetByDomain(ctx, event.ShopDomain)
	if err != nil {
		return "", err
	}

	var payload customerPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return "", fmt.Errorf("%w: malformed customer payload: %v", domain.ErrValidation, err)
	}
	if payload.ID.String() == "" {
		return "", fmt.Errorf("%w: customer payload missing id", domain.ErrValidation)
	}

	customer := &domain.Customer{
		TenantID:          tenant.ID,
		ShopifyCustomerID: payload.ID.String(),
		Email:             strOrNil(payload.Email),
		FirstName:         strOrNil(payload.FirstName),
		LastName:          strOrNil(payload.LastName),
		Name:              displayName(payload.FirstName, payload.LastName),
		TotalSpent:        parseAmount(payload.TotalSpent),
		OrdersCount:       payload.OrdersCount,
		CreatedAt:         orUTCNow(payload.CreatedAt),
		Raw:               event.Payload,
	}
	if err := r.store.UpsertCustomer(ctx, customer); err != nil {
		return "", err
	}

	r.audit(ctx, tenant, event, customer.ShopifyCustomerID)

	r.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Str("customerId", customer.ShopifyCustomerID).
		Msg("Customer reconciled")

	return customer.ShopifyCustomerID, nil
}

// audit appends the delivery to the webhook log. Audit failures never fail
// the delivery: the entity upsert already committed.
func (r *Reconciler) audit(ctx context.Context, tenant *domain.Tenant, event *domain.InboundEvent, shopifyID string) {
	err := r.store.LogWebhookEvent(ctx, &domain.WebhookEvent{
		TenantID:    tenant.ID,
		Topic:       event.Topic,
		ShopifyID:   shopifyID,
		ShopDomain:  event.ShopDomain,
		ProcessedAt: time.Now().UTC(),
		Payload:     event.Payload,
	})
	if err != nil {
		r.logger.Error().Err(err).
			Str("topic", event.Topic).
			Str("shop", event.ShopDomain).
			Msg("Failed to append webhook audit row")
	}
}

// parseAmount reads a decimal money string, defaulting to zero on anything
// unparsable.
func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// displayName joins the name parts, nil when both are empty.
func displayName(first, last string) *string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		return nil
	}
	return &name
}

func orUTCNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
