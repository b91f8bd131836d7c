package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shopmetrics-backend/internal/domain"
)

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	// Create creates a new tenant. Returns domain.ErrDuplicateRegistration
	// when the shop domain is already registered.
	Create(ctx context.Context, tenant *domain.Tenant) error

	// GetByDomain retrieves a tenant by shop domain. Returns
	// domain.ErrUnknownTenant when no tenant matches.
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error)

	// GetByID retrieves a tenant by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)

	// UpdateWebhookState replaces the opaque webhook-subscription state blob
	UpdateWebhookState(ctx context.Context, id uuid.UUID, state []byte) error
}

// UserRepository defines the interface for dashboard-user persistence
type UserRepository interface {
	// Create creates a new user. Returns domain.ErrDuplicateRegistration
	// when the email is already registered.
	Create(ctx context.Context, user *domain.User) error

	// GetByEmail retrieves a user by email. Returns domain.ErrNotFound
	// when no user matches.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RegistrationStore persists a tenant and its first user as one unit:
// either both rows commit or neither does.
type RegistrationStore interface {
	// CreateTenantWithUser returns domain.ErrDuplicateRegistration when the
	// shop domain or the email is already taken.
	CreateTenantWithUser(ctx context.Context, tenant *domain.Tenant, user *domain.User) error
}

// EntityStore is the upsert surface shared by webhook reconciliation and
// bulk ingestion. Upserts are keyed on the (tenant, external id) uniqueness
// constraint; the constraint is the sole concurrency-control mechanism and
// concurrent writers resolve last-writer-wins.
type EntityStore interface {
	UpsertCustomer(ctx context.Context, customer *domain.Customer) error
	UpsertOrder(ctx context.Context, order *domain.Order) error
	UpsertProduct(ctx context.Context, product *domain.Product) error

	// LogWebhookEvent appends one audit row. Never deduplicates.
	LogWebhookEvent(ctx context.Context, event *domain.WebhookEvent) error
}

// AnalyticsRepository defines the tenant-scoped read queries backing the
// dashboard endpoints.
type AnalyticsRepository interface {
	Overview(ctx context.Context, tenantID uuid.UUID) (*domain.Overview, error)
	OrdersByDate(ctx context.Context, tenantID uuid.UUID, start, end *time.Time) ([]domain.DailyOrders, error)
	TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.TopCustomer, error)
	RecentOrders(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.OrderSummary, error)
}
