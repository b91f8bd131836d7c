package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shopmetrics-backend/internal/domain"
	"shopmetrics-backend/internal/infrastructure/repository/entity"
)

// GormRegistrationStore implements ports.RegistrationStore. The tenant and
// user inserts share one transaction, so a failed user insert cannot leave
// an orphaned tenant row behind.
type GormRegistrationStore struct {
	db *gorm.DB
}

// NewGormRegistrationStore creates a new registration store
func NewGormRegistrationStore(db *gorm.DB) *GormRegistrationStore {
	return &GormRegistrationStore{db: db}
}

func (r *GormRegistrationStore) CreateTenantWithUser(ctx context.Context, tenant *domain.Tenant, user *domain.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entity.TenantModelFromDomain(tenant)).Error; err != nil {
			return err
		}
		return tx.Create(entity.UserModelFromDomain(user)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateRegistration
		}
		return &domain.PersistenceError{Op: "registration.create", Err: err}
	}
	return nil
}
