package domain

import (
	"time"

	"github.com/google/uuid"
)

// TenantStatus represents the installation status of a tenant
type TenantStatus string

const (
	TenantStatusActive TenantStatus = "active"
)

// Tenant represents one connected storefront. The access token is stored
// encrypted; identity fields are immutable after creation.
type Tenant struct {
	ID           uuid.UUID
	ShopDomain   string
	AccessToken  string // encrypted at rest
	Scopes       []string
	Status       TenantStatus
	InstalledAt  time.Time
	WebhookState []byte // opaque serialized subscription state or error marker
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User represents one dashboard login belonging to exactly one tenant.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	TenantID     uuid.UUID
	CreatedAt    time.Time
}
