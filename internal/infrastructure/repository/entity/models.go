package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopmetrics-backend/internal/domain"
)

// TenantModel is the storage representation of a connected storefront.
type TenantModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ShopDomain   string    `gorm:"uniqueIndex;not null"`
	AccessToken  string    `gorm:"column:encrypted_access_token;not null"`
	Scopes       string
	Status       string `gorm:"not null;default:active"`
	InstalledAt  time.Time
	WebhookState []byte `gorm:"type:jsonb"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (TenantModel) TableName() string { return "tenants" }

// UserModel is the storage representation of a dashboard login.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

// CustomerModel is the current-state customer row, unique per
// (tenant_id, shopify_customer_id).
type CustomerModel struct {
	ID                uint      `gorm:"primaryKey;autoIncrement"`
	TenantID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customers_tenant_shopify"`
	ShopifyCustomerID string    `gorm:"not null;uniqueIndex:idx_customers_tenant_shopify"`
	Email             *string
	FirstName         *string
	LastName          *string
	Name              *string
	TotalSpent        decimal.Decimal `gorm:"type:numeric(12,2)"`
	OrdersCount       int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Raw               []byte `gorm:"type:jsonb"`
}

func (CustomerModel) TableName() string { return "customers" }

// OrderModel is the current-state order row, unique per
// (tenant_id, shopify_order_id).
type OrderModel struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_orders_tenant_shopify"`
	ShopifyOrderID string          `gorm:"not null;uniqueIndex:idx_orders_tenant_shopify"`
	TotalPrice     decimal.Decimal `gorm:"type:numeric(12,2)"`
	Currency       string
	CustomerEmail  *string
	CustomerName   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Raw            []byte `gorm:"type:jsonb"`
}

func (OrderModel) TableName() string { return "orders" }

// ProductModel is the current-state product row, unique per
// (tenant_id, shopify_product_id).
type ProductModel struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	TenantID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_shopify"`
	ShopifyProductID string    `gorm:"not null;uniqueIndex:idx_products_tenant_shopify"`
	Title            string
	Handle           string
	Vendor           string
	ProductType      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Raw              []byte `gorm:"type:jsonb"`
}

func (ProductModel) TableName() string { return "products" }

// WebhookEventModel is one append-only audit row. No unique constraint on
// (tenant, shopify_id): duplicates are kept deliberately.
type WebhookEventModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Topic       string    `gorm:"column:event_type;not null"`
	ShopifyID   string
	ShopDomain  string
	ProcessedAt time.Time
	RawPayload  []byte `gorm:"type:jsonb"`
}

func (WebhookEventModel) TableName() string { return "webhook_events" }

// AllModels lists every model for auto-migration.
func AllModels() []interface{} {
	return []interface{}{
		&TenantModel{},
		&UserModel{},
		&CustomerModel{},
		&OrderModel{},
		&ProductModel{},
		&WebhookEventModel{},
	}
}

// Conversions between storage and domain representations.

func TenantModelFromDomain(t *domain.Tenant) *TenantModel {
	return &TenantModel{
		ID:           t.ID,
		ShopDomain:   t.ShopDomain,
		AccessToken:  t.AccessToken,
		Scopes:       strings.Join(t.Scopes, ","),
		Status:       string(t.Status),
		InstalledAt:  t.InstalledAt,
		WebhookState: t.WebhookState,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (m *TenantModel) ToDomain() *domain.Tenant {
	var scopes []string
	if m.Scopes != "" {
		scopes = strings.Split(m.Scopes, ",")
	}
	return &domain.Tenant{
		ID:           m.ID,
		ShopDomain:   m.ShopDomain,
		AccessToken:  m.AccessToken,
		Scopes:       scopes,
		Status:       domain.TenantStatus(m.Status),
		InstalledAt:  m.InstalledAt,
		WebhookState: m.WebhookState,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func UserModelFromDomain(u *domain.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		TenantID:     u.TenantID,
		CreatedAt:    u.CreatedAt,
	}
}

func (m *UserModel) ToDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		TenantID:     m.TenantID,
		CreatedAt:    m.CreatedAt,
	}
}

func CustomerModelFromDomain(c *domain.Customer) *CustomerModel {
	return &CustomerModel{
		TenantID:          c.TenantID,
		ShopifyCustomerID: c.ShopifyCustomerID,
		Email:             c.Email,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		Name:              c.Name,
		TotalSpent:        c.TotalSpent,
		OrdersCount:       c.OrdersCount,
		CreatedAt:         c.CreatedAt,
		Raw:               c.Raw,
	}
}

func OrderModelFromDomain(o *domain.Order) *OrderModel {
	return &OrderModel{
		TenantID:       o.TenantID,
		ShopifyOrderID: o.ShopifyOrderID,
		TotalPrice:     o.TotalPrice,
		Currency:       o.Currency,
		CustomerEmail:  o.CustomerEmail,
		CustomerName:   o.CustomerName,
		CreatedAt:      o.CreatedAt,
		Raw:            o.Raw,
	}
}

func ProductModelFromDomain(p *domain.Product) *ProductModel {
	return &ProductModel{
		TenantID:         p.TenantID,
		ShopifyProductID: p.ShopifyProductID,
		Title:            p.Title,
		Handle:           p.Handle,
		Vendor:           p.Vendor,
		ProductType:      p.ProductType,
		Raw:              p.Raw,
	}
}

func WebhookEventModelFromDomain(e *domain.WebhookEvent) *WebhookEventModel {
	return &WebhookEventModel{
		TenantID:    e.TenantID,
		Topic:       e.Topic,
		ShopifyID:   e.ShopifyID,
		ShopDomain:  e.ShopDomain,
		ProcessedAt: e.ProcessedAt,
		RawPayload:  e.Payload,
	}
}
