package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopmetrics-backend/internal/domain"
	"shopmetrics-backend/internal/infrastructure/repository/entity"
)

// GormEntityStore implements ports.EntityStore. Every write is an upsert
// keyed on the (tenant_id, external id) unique index, so webhook delivery
// and bulk ingestion can race without producing duplicate rows. Audit rows
// are plain inserts and intentionally keep duplicates.
type GormEntityStore struct {
	db *gorm.DB
}

// NewGormEntityStore creates a new entity store
func NewGormEntityStore(db *gorm.DB) *GormEntityStore {
	return &GormEntityStore{db: db}
}

func (s *GormEntityStore) UpsertCustomer(ctx context.Context, customer *domain.Customer) error {
	model := entity.CustomerModelFromDomain(customer)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "shopify_customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "first_name", "last_name", "name",
			"total_spent", "orders_count", "raw", "updated_at",
		}),
	}).Create(model).Error
	if err != nil {
		return &domain.PersistenceError{Op: "customer.upsert", Err: err}
	}
	return nil
}

func (s *GormEntityStore) UpsertOrder(ctx context.Context, order *domain.Order) error {
	model := entity.OrderModelFromDomain(order)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "shopify_order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_price", "currency", "customer_email", "customer_name",
			"raw", "updated_at",
		}),
	}).Create(model).Error
	if err != nil {
		return &domain.PersistenceError{Op: "order.upsert", Err: err}
	}
	return nil
}

func (s *GormEntityStore) UpsertProduct(ctx context.Context, product *domain.Product) error {
	model := entity.ProductModelFromDomain(product)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "shopify_product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "handle", "vendor", "product_type", "raw", "updated_at",
		}),
	}).Create(model).Error
	if err != nil {
		return &domain.PersistenceError{Op: "product.upsert", Err: err}
	}
	return nil
}

func (s *GormEntityStore) LogWebhookEvent(ctx context.Context, event *domain.WebhookEvent) error {
	model := entity.WebhookEventModelFromDomain(event)
	if model.ProcessedAt.IsZero() {
		model.ProcessedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return &domain.PersistenceError{Op: "webhook_event.log", Err: err}
	}
	return nil
}
