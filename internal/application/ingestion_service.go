package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"shopmetrics-backend/internal/domain"
	"shopmetrics-backend/internal/infrastructure/metrics"
	"shopmetrics-backend/internal/ports"
)

const defaultIngestionPageSize = 250

// IngestionService pulls a tenant's full catalog from the commerce platform
// and upserts it through the shared entity store. Passes run sequentially,
// customers first, then orders, then products, and the run aborts on the
// first failed pass. A rerun converges to the same rows, so an aborted run
// only needs to be retried.
type IngestionService struct {
	tenants  ports.TenantRepository
	store    ports.EntityStore
	clients  ports.PlatformClientFactory
	crypto   ports.EncryptionService
	pageSize int
	logger   zerolog.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	tenants ports.TenantRepository,
	store ports.EntityStore,
	clients ports.PlatformClientFactory,
	crypto ports.EncryptionService,
	logger zerolog.Logger,
) *IngestionService {
	return &IngestionService{
		tenants:  tenants,
		store:    store,
		clients:  clients,
		crypto:   crypto,
		pageSize: defaultIngestionPageSize,
		logger:   logger,
	}
}

// IngestByTenantID resolves the tenant and runs a full ingestion.
func (s *IngestionService) IngestByTenantID(ctx context.Context, tenantID uuid.UUID) error {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return err
	}
	return s.IngestTenantData(ctx, tenant)
}

// IngestTenantData runs one full ingestion for the tenant.
func (s *IngestionService) IngestTenantData(ctx context.Context, tenant *domain.Tenant) error {
	token, err := s.crypto.Decrypt(tenant.AccessToken)
	if err != nil {
		metrics.IngestionRuns.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("failed to decrypt access token: %w", err)
	}

	client, err := s.clients.ClientFor(tenant.ShopDomain, token)
	if err != nil {
		metrics.IngestionRuns.WithLabelValues(metrics.OutcomeError).Inc()
		return err
	}

	s.logger.Info().Str("shop", tenant.ShopDomain).Msg("Starting data ingestion")

	if err := s.ingestCustomers(ctx, tenant, client); err != nil {
		metrics.IngestionRuns.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("customer ingestion failed: %w", err)
	}
	if err := s.ingestOrders(ctx, tenant, client); err != nil {
		metrics.IngestionRuns.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("order ingestion failed: %w", err)
	}
	if err := s.ingestProducts(ctx, tenant, client); err != nil {
		metrics.IngestionRuns.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("product ingestion failed: %w", err)
	}

	metrics.IngestionRuns.WithLabelValues(metrics.OutcomeOK).Inc()
	s.logger.Info().Str("shop", tenant.ShopDomain).Msg("Data ingestion complete")
	return nil
}

func (s *IngestionService) ingestCustomers(ctx context.Context, tenant *domain.Tenant, client ports.PlatformClient) error {
	customers, err := client.ListCustomers(ctx, s.pageSize)
	if err != nil {
		return err
	}

	for i := range customers {
		if err := s.store.UpsertCustomer(ctx, customerFromPlatform(tenant.ID, &customers[i])); err != nil {
			return err
		}
		metrics.IngestionRecords.WithLabelValues("customer").Inc()
	}

	s.logger.Info().
		Str("shop", tenant.ShopDomain).
		Int("count", len(customers)).
		Msg("Customers ingested")
	return nil
}

func (s *IngestionService) ingestOrders(ctx context.Context, tenant *domain.Tenant, client ports.PlatformClient) error {
	orders, err := client.ListOrders(ctx, s.pageSize)
	if err != nil {
		return err
	}

	for i := range orders {
		if err := s.store.UpsertOrder(ctx, orderFromPlatform(tenant.ID, &orders[i])); err != nil {
			return err
		}
		metrics.IngestionRecords.WithLabelValues("order").Inc()
	}

	s.logger.Info().
		Str("shop", tenant.ShopDomain).
		Int("count", len(orders)).
		Msg("Orders ingested")
	return nil
}

func (s *IngestionService) ingestProducts(ctx context.Context, tenant *domain.Tenant, client ports.PlatformClient) error {
	products, err := client.ListProducts(ctx, s.pageSize)
	if err != nil {
		return err
	}

	for i := range products {
		if err := s.store.UpsertProduct(ctx, productFromPlatform(tenant.ID, &products[i])); err != nil {
			return err
		}
		metrics.IngestionRecords.WithLabelValues("product").Inc()
	}

	s.logger.Info().
		Str("shop", tenant.ShopDomain).
		Int("count", len(products)).
		Msg("Products ingested")
	return nil
}

func customerFromPlatform(tenantID uuid.UUID, c *goshopify.Customer) *domain.Customer {
	totalSpent := decimal.Zero
	if c.TotalSpent != nil {
		totalSpent = *c.TotalSpent
	}

	customer := &domain.Customer{
		TenantID:          tenantID,
		ShopifyCustomerID: strconv.FormatUint(c.Id, 10),
		Email:             strOrNil(c.Email),
		FirstName:         strOrNil(c.FirstName),
		LastName:          strOrNil(c.LastName),
		Name:              displayName(c.FirstName, c.LastName),
		TotalSpent:        totalSpent,
		OrdersCount:       int64(c.OrdersCount),
	}
	if c.CreatedAt != nil {
		customer.CreatedAt = *c.CreatedAt
	}
	customer.CreatedAt = orUTCNow(customer.CreatedAt)
	customer.Raw, _ = json.Marshal(c)
	return customer
}

func orderFromPlatform(tenantID uuid.UUID, o *goshopify.Order) *domain.Order {
	totalPrice := decimal.Zero
	if o.TotalPrice != nil {
		totalPrice = *o.TotalPrice
	}

	email := o.Email
	var name *string
	if o.Customer != nil {
		if email == "" {
			email = o.Customer.Email
		}
		name = displayName(o.Customer.FirstName, o.Customer.LastName)
	}

	order := &domain.Order{
		TenantID:       tenantID,
		ShopifyOrderID: strconv.FormatUint(o.Id, 10),
		TotalPrice:     totalPrice,
		Currency:       o.Currency,
		CustomerEmail:  strOrNil(email),
		CustomerName:   name,
	}
	if o.CreatedAt != nil {
		order.CreatedAt = *o.CreatedAt
	}
	order.CreatedAt = orUTCNow(order.CreatedAt)
	order.Raw, _ = json.Marshal(o)
	return order
}

func productFromPlatform(tenantID uuid.UUID, p *goshopify.Product) *domain.Product {
	product := &domain.Product{
		TenantID:         tenantID,
		ShopifyProductID: strconv.FormatUint(p.Id, 10),
		Title:            p.Title,
		Handle:           p.Handle,
		Vendor:           p.Vendor,
		ProductType:      p.ProductType,
	}
	product.Raw, _ = json.Marshal(p)
	return product
}
