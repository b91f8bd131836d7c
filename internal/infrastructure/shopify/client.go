package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"

	"shopmetrics-backend/internal/domain"
	"shopmetrics-backend/internal/ports"
)

// client implements ports.PlatformClient on top of the go-shopify Admin API
// client, bound to one shop domain and access token.
type client struct {
	api    *goshopify.Client
	logger zerolog.Logger
}

// Factory builds per-tenant platform clients.
type Factory struct {
	logger zerolog.Logger
}

// NewFactory creates a platform client factory
func NewFactory(logger zerolog.Logger) *Factory {
	return &Factory{logger: logger}
}

// ClientFor builds a client for the given shop domain and access token.
func (f *Factory) ClientFor(shopDomain string, accessToken string) (ports.PlatformClient, error) {
	// Tokens obtained out of band behave like private-app tokens; no OAuth
	// app credentials are needed for Admin API calls.
	api, err := goshopify.NewClient(goshopify.App{}, normalizeShopDomain(shopDomain), accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform client: %w", err)
	}
	return &client{api: api, logger: f.logger}, nil
}

// normalizeShopDomain strips a scheme prefix pasted in by store owners.
func normalizeShopDomain(shopDomain string) string {
	shopDomain = strings.TrimPrefix(shopDomain, "https://")
	shopDomain = strings.TrimPrefix(shopDomain, "http://")
	return strings.TrimSuffix(shopDomain, "/")
}

// wrapUpstream converts go-shopify response errors into the typed upstream
// failure so callers see the platform's status and body instead of a
// swallowed error.
func wrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) {
		return &domain.UpstreamError{Status: respErr.GetStatus(), Body: respErr.GetMessage()}
	}
	return err
}

func (c *client) ListCustomers(ctx context.Context, pageSize int) ([]goshopify.Customer, error) {
	var all []goshopify.Customer
	var options interface{} = &goshopify.ListOptions{Limit: pageSize}

	for options != nil {
		page, pagination, err := c.api.Customer.ListWithPagination(ctx, options)
		if err != nil {
			return nil, wrapUpstream(fmt.Errorf("failed to list customers: %w", err))
		}
		all = append(all, page...)

		options = nil
		if pagination != nil && pagination.NextPageOptions != nil {
			options = pagination.NextPageOptions
		}
	}

	return all, nil
}

func (c *client) ListOrders(ctx context.Context, pageSize int) ([]goshopify.Order, error) {
	var all []goshopify.Order
	// status=any matches the historical pull: closed and cancelled orders
	// count toward revenue too.
	var options interface{} = &goshopify.OrderListOptions{
		Status:      "any",
		ListOptions: goshopify.ListOptions{Limit: pageSize},
	}

	for options != nil {
		page, pagination, err := c.api.Order.ListWithPagination(ctx, options)
		if err != nil {
			return nil, wrapUpstream(fmt.Errorf("failed to list orders: %w", err))
		}
		all = append(all, page...)

		options = nil
		if pagination != nil && pagination.NextPageOptions != nil {
			options = pagination.NextPageOptions
		}
	}

	return all, nil
}

func (c *client) ListProducts(ctx context.Context, pageSize int) ([]goshopify.Product, error) {
	var all []goshopify.Product
	var options interface{} = &goshopify.ListOptions{Limit: pageSize}

	for options != nil {
		page, pagination, err := c.api.Product.ListWithPagination(ctx, options)
		if err != nil {
			return nil, wrapUpstream(fmt.Errorf("failed to list products: %w", err))
		}
		all = append(all, page...)

		options = nil
		if pagination != nil && pagination.NextPageOptions != nil {
			options = pagination.NextPageOptions
		}
	}

	return all, nil
}

func (c *client) ListWebhooks(ctx context.Context) ([]goshopify.Webhook, error) {
	webhooks, err := c.api.Webhook.List(ctx, nil)
	if err != nil {
		return nil, wrapUpstream(fmt.Errorf("failed to list webhooks: %w", err))
	}
	return webhooks, nil
}

func (c *client) CreateWebhook(ctx context.Context, topic string, address string) (*goshopify.Webhook, error) {
	webhook := goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	}
	created, err := c.api.Webhook.Create(ctx, webhook)
	if err != nil {
		return nil, wrapUpstream(fmt.Errorf("failed to create webhook: %w", err))
	}
	return created, nil
}

func (c *client) DeleteWebhook(ctx context.Context, webhookID uint64) error {
	if err := c.api.Webhook.Delete(ctx, webhookID); err != nil {
		return wrapUpstream(fmt.Errorf("failed to delete webhook: %w", err))
	}
	return nil
}
