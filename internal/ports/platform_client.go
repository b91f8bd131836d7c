package ports

import (
	"context"

	shopify "github.com/bold-commerce/go-shopify/v4"
)

// PlatformClient defines the commerce-platform API operations the backend
// depends on: paginated bulk listings for ingestion and webhook-subscription
// management. Implementations surface non-2xx responses as
// *domain.UpstreamError carrying the upstream status and body.
type PlatformClient interface {
	// Bulk listings. pageSize bounds each page request; implementations
	// follow pagination and return the full result set.
	ListCustomers(ctx context.Context, pageSize int) ([]shopify.Customer, error)
	ListOrders(ctx context.Context, pageSize int) ([]shopify.Order, error)
	ListProducts(ctx context.Context, pageSize int) ([]shopify.Product, error)

	// Webhook subscription management
	ListWebhooks(ctx context.Context) ([]shopify.Webhook, error)
	CreateWebhook(ctx context.Context, topic string, address string) (*shopify.Webhook, error)
	DeleteWebhook(ctx context.Context, webhookID uint64) error
}

// PlatformClientFactory builds a PlatformClient bound to one tenant's shop
// domain and (decrypted) access token.
type PlatformClientFactory interface {
	ClientFor(shopDomain string, accessToken string) (PlatformClient, error)
}
