package domain

import (
	"time"

	"github.com/google/uuid"
)

// Webhook topics accepted by the delivery endpoint.
const (
	TopicOrderCreate    = "orders/create"
	TopicOrderUpdate    = "orders/updated"
	TopicCustomerCreate = "customers/create"
	TopicCustomerUpdate = "customers/update"
)

// DefaultWebhookTopics are the topics subscribed to at registration time.
func DefaultWebhookTopics() []string {
	return []string{
		TopicOrderCreate,
		TopicOrderUpdate,
		TopicCustomerCreate,
		TopicCustomerUpdate,
	}
}

// InboundEvent is a verified webhook delivery in flight to its handler.
type InboundEvent struct {
	Topic      string
	ShopDomain string
	Payload    []byte
}

// WebhookEvent is one append-only audit record. Rows are never mutated,
// deleted or deduplicated; duplicates form a replay-able log distinct from
// the current-state entity tables.
type WebhookEvent struct {
	TenantID    uuid.UUID
	Topic       string
	ShopifyID   string
	ShopDomain  string
	ProcessedAt time.Time
	Payload     []byte
}
