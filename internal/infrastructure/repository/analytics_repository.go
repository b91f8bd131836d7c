package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"shopmetrics-backend/internal/domain"
	"shopmetrics-backend/internal/infrastructure/repository/entity"
)

// GormAnalyticsRepository implements ports.AnalyticsRepository with
// aggregate queries over the current-state tables. Every query filters on
// tenant_id; date expressions are written to behave identically on Postgres
// and SQLite.
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormAnalyticsRepository creates a new analytics repository
func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

func (r *GormAnalyticsRepository) Overview(ctx context.Context, tenantID uuid.UUID) (*domain.Overview, error) {
	overview := &domain.Overview{}

	err := r.db.WithContext(ctx).
		Model(&entity.CustomerModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&overview.TotalCustomers).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: "analytics.overview.customers", Err: err}
	}

	err = r.db.WithContext(ctx).
		Model(&entity.OrderModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&overview.TotalOrders).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: "analytics.overview.orders", Err: err}
	}

	var totals struct {
		TotalRevenue decimal.NullDecimal
		Currency     *string
	}
	err = r.db.WithContext(ctx).
		Model(&entity.OrderModel{}).
		Select("COALESCE(SUM(total_price), 0) AS total_revenue, MAX(currency) AS currency").
		Where("tenant_id = ?", tenantID).
		Scan(&totals).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: "analytics.overview.revenue", Err: err}
	}
	if totals.TotalRevenue.Valid {
		overview.TotalRevenue = totals.TotalRevenue.Decimal
	}
	if totals.Currency != nil {
		overview.Currency = *totals.Currency
	}

	return overview, nil
}

func (r *GormAnalyticsRepository) OrdersByDate(ctx context.Context, tenantID uuid.UUID, start, end *time.Time) ([]domain.DailyOrders, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.OrderModel{}).
		Select("CAST(DATE(created_at) AS TEXT) AS order_date, COUNT(*) AS order_count, COALESCE(SUM(total_price), 0) AS daily_revenue").
		Where("tenant_id = ?", tenantID)
	if start != nil {
		query = query.Where("created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("created_at <= ?", *end)
	}

	var rows []domain.DailyOrders
	err := query.
		Group("DATE(created_at)").
		Order("order_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: "analytics.orders_by_date", Err: err}
	}
	return rows, nil
}

func (r *GormAnalyticsRepository) TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.TopCustomer, error) {
	var rows []domain.TopCustomer
	err := r.db.WithContext(ctx).
		Table("orders AS o").
		Select("COALESCE(o.customer_email, '') AS customer_email, "+
			"COALESCE(c.name, o.customer_name, 'Guest Customer') AS customer_name, "+
			"COUNT(*) AS order_count, "+
			"COALESCE(SUM(o.total_price), 0) AS total_spent").
		// The customer side collapses to one row per (tenant, email) first:
		// email is not unique in customers, and a bare join would multiply
		// order rows.
		Joins("LEFT JOIN (SELECT tenant_id, email, MAX(name) AS name FROM customers GROUP BY tenant_id, email) AS c "+
			"ON c.tenant_id = o.tenant_id AND c.email = o.customer_email").
		Where("o.tenant_id = ?", tenantID).
		Group("o.customer_email, c.name, o.customer_name").
		Order("total_spent DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: "analytics.top_customers", Err: err}
	}
	return rows, nil
}

func (r *GormAnalyticsRepository) RecentOrders(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.OrderSummary, error) {
	var rows []domain.OrderSummary
	err := r.db.WithContext(ctx).
		Model(&entity.OrderModel{}).
		Select("shopify_order_id, total_price, currency, created_at").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: "analytics.recent_orders", Err: err}
	}
	return rows, nil
}
