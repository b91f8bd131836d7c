package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmetrics-backend/internal/domain"
)

type fakeAnalyticsRepo struct {
	overviewCalls int
	lastLimit     int
}

func (r *fakeAnalyticsRepo) Overview(context.Context, uuid.UUID) (*domain.Overview, error) {
	r.overviewCalls++
	return &domain.Overview{
		TotalCustomers: 2,
		TotalOrders:    3,
		TotalRevenue:   decimal.RequireFromString("150.00"),
		Currency:       "USD",
	}, nil
}

func (r *fakeAnalyticsRepo) OrdersByDate(context.Context, uuid.UUID, *time.Time, *time.Time) ([]domain.DailyOrders, error) {
	return []domain.DailyOrders{{OrderDate: "2025-03-10", OrderCount: 1}}, nil
}

func (r *fakeAnalyticsRepo) TopCustomers(_ context.Context, _ uuid.UUID, limit int) ([]domain.TopCustomer, error) {
	r.lastLimit = limit
	return nil, nil
}

func (r *fakeAnalyticsRepo) RecentOrders(_ context.Context, _ uuid.UUID, limit int) ([]domain.OrderSummary, error) {
	r.lastLimit = limit
	return nil, nil
}

func TestAnalyticsService_Overview(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("serves repeated reads from the cache", func(t *testing.T) {
		repo := &fakeAnalyticsRepo{}
		cache := newFakeCache()
		service := NewAnalyticsService(repo, cache, zerolog.Nop())

		first, err := service.Overview(ctx, tenantID)
		require.NoError(t, err)
		second, err := service.Overview(ctx, tenantID)
		require.NoError(t, err)

		assert.Equal(t, 1, repo.overviewCalls)
		assert.Equal(t, 1, cache.hits)
		assert.True(t, first.TotalRevenue.Equal(second.TotalRevenue))
		assert.Equal(t, first.TotalCustomers, second.TotalCustomers)
	})

	t.Run("works without a cache", func(t *testing.T) {
		repo := &fakeAnalyticsRepo{}
		service := NewAnalyticsService(repo, nil, zerolog.Nop())

		overview, err := service.Overview(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), overview.TotalOrders)
		assert.Equal(t, 1, repo.overviewCalls)
	})

	t.Run("cache keys are tenant scoped", func(t *testing.T) {
		repo := &fakeAnalyticsRepo{}
		cache := newFakeCache()
		service := NewAnalyticsService(repo, cache, zerolog.Nop())

		_, err := service.Overview(ctx, tenantID)
		require.NoError(t, err)
		_, err = service.Overview(ctx, uuid.New())
		require.NoError(t, err)

		assert.Equal(t, 2, repo.overviewCalls)
	})
}

func TestAnalyticsService_OrdersByDate(t *testing.T) {
	service := NewAnalyticsService(&fakeAnalyticsRepo{}, nil, zerolog.Nop())

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -5)

	_, err := service.OrdersByDate(context.Background(), uuid.New(), &start, &end)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAnalyticsService_LimitClamping(t *testing.T) {
	ctx := context.Background()
	repo := &fakeAnalyticsRepo{}
	service := NewAnalyticsService(repo, nil, zerolog.Nop())

	_, err := service.TopCustomers(ctx, uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, 5, repo.lastLimit)

	_, err = service.RecentOrders(ctx, uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastLimit)

	_, err = service.RecentOrders(ctx, uuid.New(), 5000)
	require.NoError(t, err)
	assert.Equal(t, 100, repo.lastLimit)
}
