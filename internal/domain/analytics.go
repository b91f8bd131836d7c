package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Overview holds the dashboard headline figures for one tenant.
type Overview struct {
	TotalCustomers int64           `json:"total_customers"`
	TotalOrders    int64           `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	Currency       string          `json:"currency"`
}

// DailyOrders is one row of the per-day order aggregation.
type DailyOrders struct {
	OrderDate    string          `json:"order_date"`
	OrderCount   int64           `json:"order_count"`
	DailyRevenue decimal.Decimal `json:"daily_revenue"`
}

// TopCustomer is one row of the top-customers-by-spend aggregation.
// Orders with no matching customer row are grouped as guest purchases.
type TopCustomer struct {
	CustomerEmail string          `json:"customer_email"`
	CustomerName  string          `json:"customer_name"`
	OrderCount    int64           `json:"order_count"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
}

// OrderSummary is one row of the recent-orders listing.
type OrderSummary struct {
	ShopifyOrderID string          `json:"shopify_order_id"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Currency       string          `json:"currency"`
	CreatedAt      time.Time       `json:"created_at"`
}
