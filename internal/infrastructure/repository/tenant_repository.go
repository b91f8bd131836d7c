package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shopmetrics-backend/internal/domain"
	"shopmetrics-backend/internal/infrastructure/repository/entity"
)

// GormTenantRepository implements ports.TenantRepository on a relational
// store.
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new tenant repository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

func (r *GormTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	model := entity.TenantModelFromDomain(tenant)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateRegistration
		}
		return &domain.PersistenceError{Op: "tenant.create", Err: err}
	}
	return nil
}

func (r *GormTenantRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	var model entity.TenantModel
	err := r.db.WithContext(ctx).Where("shop_domain = ?", shopDomain).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnknownTenant
		}
		return nil, &domain.PersistenceError{Op: "tenant.get_by_domain", Err: err}
	}
	return model.ToDomain(), nil
}

func (r *GormTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	var model entity.TenantModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnknownTenant
		}
		return nil, &domain.PersistenceError{Op: "tenant.get_by_id", Err: err}
	}
	return model.ToDomain(), nil
}

func (r *GormTenantRepository) UpdateWebhookState(ctx context.Context, id uuid.UUID, state []byte) error {
	err := r.db.WithContext(ctx).
		Model(&entity.TenantModel{}).
		Where("id = ?", id).
		Update("webhook_state", state).Error
	if err != nil {
		return &domain.PersistenceError{Op: "tenant.update_webhook_state", Err: err}
	}
	return nil
}
