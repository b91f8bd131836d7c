package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shopmetrics-backend/internal/domain"
	"shopmetrics-backend/internal/ports"
)

const (
	defaultTopCustomersLimit = 5
	defaultRecentOrdersLimit = 10
	maxListLimit             = 100
)

// AnalyticsService serves the dashboard read model. Every call is scoped to
// the tenant resolved from the session; the overview additionally goes
// through a short-TTL cache since it is polled by every dashboard load.
type AnalyticsService struct {
	repo   ports.AnalyticsRepository
	cache  ports.AnalyticsCache
	logger zerolog.Logger
}

// NewAnalyticsService creates a new analytics service. cache may be nil.
func NewAnalyticsService(repo ports.AnalyticsRepository, cache ports.AnalyticsCache, logger zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: cache, logger: logger}
}

func (s *AnalyticsService) Overview(ctx context.Context, tenantID uuid.UUID) (*domain.Overview, error) {
	key := fmt.Sprintf("analytics:overview:%s", tenantID)

	if s.cache != nil {
		var cached domain.Overview
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	overview, err := s.repo.Overview(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, overview)
	}
	return overview, nil
}

func (s *AnalyticsService) OrdersByDate(ctx context.Context, tenantID uuid.UUID, start, end *time.Time) ([]domain.DailyOrders, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: end date precedes start date", domain.ErrValidation)
	}
	return s.repo.OrdersByDate(ctx, tenantID, start, end)
}

func (s *AnalyticsService) TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.TopCustomer, error) {
	return s.repo.TopCustomers(ctx, tenantID, clampLimit(limit, defaultTopCustomersLimit))
}

func (s *AnalyticsService) RecentOrders(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.OrderSummary, error) {
	return s.repo.RecentOrders(ctx, tenantID, clampLimit(limit, defaultRecentOrdersLimit))
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
