package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopmetrics-backend/internal/domain"
	"shopmetrics-backend/internal/infrastructure/repository/entity"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entity.AllModels()...))
	return db
}

func strPtr(s string) *string { return &s }

func seedTenant(t *testing.T, db *gorm.DB, shopDomain string) *domain.Tenant {
	t.Helper()
	tenant := &domain.Tenant{
		ID:          uuid.New(),
		ShopDomain:  shopDomain,
		AccessToken: "encrypted-token",
		Status:      domain.TenantStatusActive,
		InstalledAt: time.Now().UTC(),
	}
	require.NoError(t, NewGormTenantRepository(db).Create(context.Background(), tenant))
	return tenant
}

func TestGormTenantRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormTenantRepository(db)
	ctx := context.Background()

	tenant := seedTenant(t, db, "alpha.myshopify.com")

	t.Run("rejects a duplicate shop domain", func(t *testing.T) {
		dup := &domain.Tenant{
			ID:          uuid.New(),
			ShopDomain:  "alpha.myshopify.com",
			AccessToken: "other-token",
			Status:      domain.TenantStatusActive,
		}
		assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrDuplicateRegistration)
	})

	t.Run("finds a tenant by shop domain", func(t *testing.T) {
		found, err := repo.GetByDomain(ctx, "alpha.myshopify.com")
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, found.ID)
		assert.Equal(t, "encrypted-token", found.AccessToken)
	})

	t.Run("reports an unknown shop domain", func(t *testing.T) {
		_, err := repo.GetByDomain(ctx, "nobody.myshopify.com")
		assert.ErrorIs(t, err, domain.ErrUnknownTenant)
	})

	t.Run("finds a tenant by id", func(t *testing.T) {
		found, err := repo.GetByID(ctx, tenant.ID)
		require.NoError(t, err)
		assert.Equal(t, "alpha.myshopify.com", found.ShopDomain)
	})

	t.Run("updates the webhook state blob", func(t *testing.T) {
		state := []byte(`{"orders/create":12345}`)
		require.NoError(t, repo.UpdateWebhookState(ctx, tenant.ID, state))

		found, err := repo.GetByID(ctx, tenant.ID)
		require.NoError(t, err)
		assert.JSONEq(t, `{"orders/create":12345}`, string(found.WebhookState))
	})

	t.Run("round-trips the scope list", func(t *testing.T) {
		scoped := &domain.Tenant{
			ID:          uuid.New(),
			ShopDomain:  "delta.myshopify.com",
			AccessToken: "encrypted-token",
			Scopes:      []string{"read_orders", "read_customers"},
			Status:      domain.TenantStatusActive,
		}
		require.NoError(t, repo.Create(ctx, scoped))

		found, err := repo.GetByDomain(ctx, "delta.myshopify.com")
		require.NoError(t, err)
		assert.Equal(t, []string{"read_orders", "read_customers"}, found.Scopes)
	})
}

func TestGormRegistrationStore(t *testing.T) {
	db := openTestDB(t)
	store := NewGormRegistrationStore(db)
	tenants := NewGormTenantRepository(db)
	users := NewGormUserRepository(db)
	ctx := context.Background()

	tenant := &domain.Tenant{
		ID:          uuid.New(),
		ShopDomain:  "alpha.myshopify.com",
		AccessToken: "encrypted-token",
		Status:      domain.TenantStatusActive,
	}
	user := &domain.User{ID: uuid.New(), Email: "owner@alpha.com", PasswordHash: "$2a$10$hash", TenantID: tenant.ID}
	require.NoError(t, store.CreateTenantWithUser(ctx, tenant, user))

	t.Run("commits both rows", func(t *testing.T) {
		_, err := tenants.GetByDomain(ctx, "alpha.myshopify.com")
		require.NoError(t, err)
		found, err := users.GetByEmail(ctx, "owner@alpha.com")
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, found.TenantID)
	})

	t.Run("rolls back the tenant when the user insert fails", func(t *testing.T) {
		other := &domain.Tenant{
			ID:          uuid.New(),
			ShopDomain:  "beta.myshopify.com",
			AccessToken: "encrypted-token",
			Status:      domain.TenantStatusActive,
		}
		taken := &domain.User{ID: uuid.New(), Email: "owner@alpha.com", PasswordHash: "x", TenantID: other.ID}

		err := store.CreateTenantWithUser(ctx, other, taken)
		assert.ErrorIs(t, err, domain.ErrDuplicateRegistration)

		_, err = tenants.GetByDomain(ctx, "beta.myshopify.com")
		assert.ErrorIs(t, err, domain.ErrUnknownTenant, "no orphaned tenant row")
	})
}

func TestGormUserRepository(t *testing.T) {
	db := openTestDB(t)
	tenant := seedTenant(t, db, "alpha.myshopify.com")
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		ID:           uuid.New(),
		Email:        "owner@alpha.com",
		PasswordHash: "$2a$10$hash",
		TenantID:     tenant.ID,
	}
	require.NoError(t, repo.Create(ctx, user))

	t.Run("rejects a duplicate email", func(t *testing.T) {
		dup := &domain.User{ID: uuid.New(), Email: "owner@alpha.com", PasswordHash: "x", TenantID: tenant.ID}
		assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrDuplicateRegistration)
	})

	t.Run("finds a user by email", func(t *testing.T) {
		found, err := repo.GetByEmail(ctx, "owner@alpha.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, tenant.ID, found.TenantID)
	})

	t.Run("reports an unknown email", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "nobody@alpha.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGormEntityStore_Upserts(t *testing.T) {
	db := openTestDB(t)
	tenant := seedTenant(t, db, "alpha.myshopify.com")
	store := NewGormEntityStore(db)
	ctx := context.Background()

	t.Run("customer upsert converges to one row", func(t *testing.T) {
		first := &domain.Customer{
			TenantID:          tenant.ID,
			ShopifyCustomerID: "9001",
			Email:             strPtr("a@x.com"),
			Name:              strPtr("Ada Adams"),
			TotalSpent:        decimal.RequireFromString("10.00"),
			OrdersCount:       1,
			CreatedAt:         time.Now().UTC(),
		}
		require.NoError(t, store.UpsertCustomer(ctx, first))

		second := *first
		second.TotalSpent = decimal.RequireFromString("25.50")
		second.OrdersCount = 3
		require.NoError(t, store.UpsertCustomer(ctx, &second))

		var count int64
		require.NoError(t, db.Model(&entity.CustomerModel{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		var row entity.CustomerModel
		require.NoError(t, db.First(&row).Error)
		assert.True(t, row.TotalSpent.Equal(decimal.RequireFromString("25.50")))
		assert.Equal(t, int64(3), row.OrdersCount)
	})

	t.Run("order upsert converges to one row", func(t *testing.T) {
		first := &domain.Order{
			TenantID:       tenant.ID,
			ShopifyOrderID: "5001",
			TotalPrice:     decimal.RequireFromString("99.99"),
			Currency:       "USD",
			CustomerEmail:  strPtr("a@x.com"),
			CreatedAt:      time.Now().UTC(),
		}
		require.NoError(t, store.UpsertOrder(ctx, first))

		second := *first
		second.TotalPrice = decimal.RequireFromString("120.00")
		require.NoError(t, store.UpsertOrder(ctx, &second))

		var count int64
		require.NoError(t, db.Model(&entity.OrderModel{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		var row entity.OrderModel
		require.NoError(t, db.First(&row).Error)
		assert.True(t, row.TotalPrice.Equal(decimal.RequireFromString("120.00")))
	})

	t.Run("same external id under another tenant is a separate row", func(t *testing.T) {
		other := seedTenant(t, db, "beta.myshopify.com")
		require.NoError(t, store.UpsertOrder(ctx, &domain.Order{
			TenantID:       other.ID,
			ShopifyOrderID: "5001",
			TotalPrice:     decimal.RequireFromString("5.00"),
			Currency:       "EUR",
			CreatedAt:      time.Now().UTC(),
		}))

		var count int64
		require.NoError(t, db.Model(&entity.OrderModel{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("product upsert converges to one row", func(t *testing.T) {
		first := &domain.Product{
			TenantID:         tenant.ID,
			ShopifyProductID: "7001",
			Title:            "Widget",
			Handle:           "widget",
		}
		require.NoError(t, store.UpsertProduct(ctx, first))

		second := *first
		second.Title = "Widget v2"
		require.NoError(t, store.UpsertProduct(ctx, &second))

		var count int64
		require.NoError(t, db.Model(&entity.ProductModel{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		var row entity.ProductModel
		require.NoError(t, db.First(&row).Error)
		assert.Equal(t, "Widget v2", row.Title)
	})
}

func TestGormEntityStore_LogWebhookEvent(t *testing.T) {
	db := openTestDB(t)
	tenant := seedTenant(t, db, "alpha.myshopify.com")
	store := NewGormEntityStore(db)
	ctx := context.Background()

	event := &domain.WebhookEvent{
		TenantID:   tenant.ID,
		Topic:      domain.TopicOrderCreate,
		ShopifyID:  "5001",
		ShopDomain: tenant.ShopDomain,
		Payload:    []byte(`{"id":5001}`),
	}

	// Redelivery of the same event appends a second audit row.
	require.NoError(t, store.LogWebhookEvent(ctx, event))
	require.NoError(t, store.LogWebhookEvent(ctx, event))

	var count int64
	require.NoError(t, db.Model(&entity.WebhookEventModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var rows []entity.WebhookEventModel
	require.NoError(t, db.Find(&rows).Error)
	for _, row := range rows {
		assert.Equal(t, domain.TopicOrderCreate, row.Topic)
		assert.False(t, row.ProcessedAt.IsZero())
	}
}

func TestGormAnalyticsRepository(t *testing.T) {
	db := openTestDB(t)
	tenant := seedTenant(t, db, "alpha.myshopify.com")
	other := seedTenant(t, db, "beta.myshopify.com")
	store := NewGormEntityStore(db)
	repo := NewGormAnalyticsRepository(db)
	ctx := context.Background()

	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 17, 30, 0, 0, time.UTC)

	require.NoError(t, store.UpsertCustomer(ctx, &domain.Customer{
		TenantID: tenant.ID, ShopifyCustomerID: "9001",
		Email: strPtr("a@x.com"), Name: strPtr("Ada Adams"),
		CreatedAt: day1,
	}))
	require.NoError(t, store.UpsertCustomer(ctx, &domain.Customer{
		TenantID: tenant.ID, ShopifyCustomerID: "9002",
		Email: strPtr("b@x.com"), Name: strPtr("Bo Berg"),
		CreatedAt: day1,
	}))

	orders := []domain.Order{
		{TenantID: tenant.ID, ShopifyOrderID: "5001", TotalPrice: decimal.RequireFromString("50.00"), Currency: "USD", CustomerEmail: strPtr("a@x.com"), CreatedAt: day1},
		{TenantID: tenant.ID, ShopifyOrderID: "5002", TotalPrice: decimal.RequireFromString("30.00"), Currency: "USD", CustomerEmail: strPtr("a@x.com"), CreatedAt: day2},
		{TenantID: tenant.ID, ShopifyOrderID: "5003", TotalPrice: decimal.RequireFromString("70.00"), Currency: "USD", CreatedAt: day2},
	}
	for i := range orders {
		require.NoError(t, store.UpsertOrder(ctx, &orders[i]))
	}

	// Another tenant's data must never leak into the aggregates.
	require.NoError(t, store.UpsertOrder(ctx, &domain.Order{
		TenantID: other.ID, ShopifyOrderID: "5001",
		TotalPrice: decimal.RequireFromString("999.00"), Currency: "EUR", CreatedAt: day1,
	}))

	t.Run("overview", func(t *testing.T) {
		overview, err := repo.Overview(ctx, tenant.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), overview.TotalCustomers)
		assert.Equal(t, int64(3), overview.TotalOrders)
		assert.True(t, overview.TotalRevenue.Equal(decimal.RequireFromString("150")),
			"got %s", overview.TotalRevenue)
		assert.Equal(t, "USD", overview.Currency)
	})

	t.Run("overview of an empty tenant is all zeroes", func(t *testing.T) {
		empty := seedTenant(t, db, "gamma.myshopify.com")
		overview, err := repo.Overview(ctx, empty.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), overview.TotalCustomers)
		assert.Equal(t, int64(0), overview.TotalOrders)
		assert.True(t, overview.TotalRevenue.IsZero())
		assert.Equal(t, "", overview.Currency)
	})

	t.Run("orders by date, newest first", func(t *testing.T) {
		rows, err := repo.OrdersByDate(ctx, tenant.ID, nil, nil)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "2025-03-11", rows[0].OrderDate)
		assert.Equal(t, int64(2), rows[0].OrderCount)
		assert.True(t, rows[0].DailyRevenue.Equal(decimal.RequireFromString("100")))

		assert.Equal(t, "2025-03-10", rows[1].OrderDate)
		assert.Equal(t, int64(1), rows[1].OrderCount)
		assert.True(t, rows[1].DailyRevenue.Equal(decimal.RequireFromString("50")))
	})

	t.Run("orders by date honours the window", func(t *testing.T) {
		from := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
		rows, err := repo.OrdersByDate(ctx, tenant.ID, &from, nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "2025-03-11", rows[0].OrderDate)
	})

	t.Run("top customers", func(t *testing.T) {
		rows, err := repo.TopCustomers(ctx, tenant.ID, 10)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "a@x.com", rows[0].CustomerEmail)
		assert.Equal(t, "Ada Adams", rows[0].CustomerName)
		assert.Equal(t, int64(2), rows[0].OrderCount)
		assert.True(t, rows[0].TotalSpent.Equal(decimal.RequireFromString("80")))

		assert.Equal(t, "", rows[1].CustomerEmail)
		assert.Equal(t, "Guest Customer", rows[1].CustomerName)
		assert.Equal(t, int64(1), rows[1].OrderCount)
		assert.True(t, rows[1].TotalSpent.Equal(decimal.RequireFromString("70")))
	})

	t.Run("top customers do not multiply when two customer rows share an email", func(t *testing.T) {
		require.NoError(t, store.UpsertCustomer(ctx, &domain.Customer{
			TenantID: tenant.ID, ShopifyCustomerID: "502",
			Email: strPtr("a@x.com"), Name: strPtr("Ada Again"),
		}))

		rows, err := repo.TopCustomers(ctx, tenant.ID, 10)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, int64(2), rows[0].OrderCount)
		assert.True(t, rows[0].TotalSpent.Equal(decimal.RequireFromString("80")))
	})

	t.Run("recent orders", func(t *testing.T) {
		rows, err := repo.RecentOrders(ctx, tenant.ID, 2)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2025-03-11", rows[0].CreatedAt.UTC().Format("2006-01-02"))
		for _, row := range rows {
			assert.NotEqual(t, "999", row.TotalPrice.String())
		}
	})
}
