package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is the current-state record for one storefront customer.
// (TenantID, ShopifyCustomerID) is unique; re-ingestion updates in place.
type Customer struct {
	TenantID          uuid.UUID
	ShopifyCustomerID string
	Email             *string
	FirstName         *string
	LastName          *string
	Name              *string // derived display name, nil when empty
	TotalSpent        decimal.Decimal
	OrdersCount       int64
	CreatedAt         time.Time // external creation timestamp
	Raw               []byte
}

// Order is the current-state record for one storefront order. Customer
// contact fields are denormalized from the order payload.
type Order struct {
	TenantID       uuid.UUID
	ShopifyOrderID string
	TotalPrice     decimal.Decimal
	Currency       string
	CustomerEmail  *string
	CustomerName   *string
	CreatedAt      time.Time // external creation timestamp
	Raw            []byte
}

// Product is the current-state record for one storefront product.
type Product struct {
	TenantID         uuid.UUID
	ShopifyProductID string
	Title            string
	Handle           string
	Vendor           string
	ProductType      string
	Raw              []byte
}
