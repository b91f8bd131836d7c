package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shopmetrics-backend/internal/domain"
)

// AnalyticsProvider is the slice of the analytics service the handlers need.
type AnalyticsProvider interface {
	Overview(ctx context.Context, tenantID uuid.UUID) (*domain.Overview, error)
	OrdersByDate(ctx context.Context, tenantID uuid.UUID, start, end *time.Time) ([]domain.DailyOrders, error)
	TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.TopCustomer, error)
	RecentOrders(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.OrderSummary, error)
}

// SyncRunner runs a blocking full ingestion for a tenant.
type SyncRunner interface {
	IngestByTenantID(ctx context.Context, tenantID uuid.UUID) error
}

// AnalyticsAPI serves the authenticated dashboard endpoints. Every handler
// reads the tenant scope from the request context placed there by the JWT
// middleware.
type AnalyticsAPI struct {
	analytics AnalyticsProvider
	sync      SyncRunner
	logger    zerolog.Logger
}

// NewAnalyticsAPI creates a new analytics API
func NewAnalyticsAPI(analytics AnalyticsProvider, sync SyncRunner, logger zerolog.Logger) *AnalyticsAPI {
	return &AnalyticsAPI{analytics: analytics, sync: sync, logger: logger}
}

func tenantFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	tenantID := domain.GetTenantIDFromContext(r.Context())
	if tenantID == uuid.Nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing tenant scope"})
		return uuid.Nil, false
	}
	return tenantID, true
}

// HandleOverview processes GET /api/overview.
func (a *AnalyticsAPI) HandleOverview(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	overview, err := a.analytics.Overview(r.Context(), tenantID)
	if err != nil {
		writeError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// HandleOrdersByDate processes GET /api/orders-by-date. start_date and
// end_date are optional YYYY-MM-DD bounds; the end bound is inclusive of
// the whole day.
func (a *AnalyticsAPI) HandleOrdersByDate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	start, err := parseDateParam(r, "start_date", false)
	if err != nil {
		writeError(w, a.logger, err)
		return
	}
	end, err := parseDateParam(r, "end_date", true)
	if err != nil {
		writeError(w, a.logger, err)
		return
	}

	rows, err := a.analytics.OrdersByDate(r.Context(), tenantID, start, end)
	if err != nil {
		writeError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmptyDaily(rows))
}

// HandleTopCustomers processes GET /api/top-customers.
func (a *AnalyticsAPI) HandleTopCustomers(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	rows, err := a.analytics.TopCustomers(r.Context(), tenantID, limitParam(r))
	if err != nil {
		writeError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmptyTop(rows))
}

// HandleRecentOrders processes GET /api/recent-orders.
func (a *AnalyticsAPI) HandleRecentOrders(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	rows, err := a.analytics.RecentOrders(r.Context(), tenantID, limitParam(r))
	if err != nil {
		writeError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmptySummaries(rows))
}

// HandleSync processes POST /api/sync: a blocking full re-ingestion for the
// caller's tenant.
func (a *AnalyticsAPI) HandleSync(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	if err := a.sync.IngestByTenantID(r.Context(), tenantID); err != nil {
		writeError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func parseDateParam(r *http.Request, name string, endOfDay bool) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, domain.ErrValidation
	}
	if endOfDay {
		parsed = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return &parsed, nil
}

func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

// JSON list endpoints return [] rather than null for empty results.

func orEmptyDaily(rows []domain.DailyOrders) []domain.DailyOrders {
	if rows == nil {
		return []domain.DailyOrders{}
	}
	return rows
}

func orEmptyTop(rows []domain.TopCustomer) []domain.TopCustomer {
	if rows == nil {
		return []domain.TopCustomer{}
	}
	return rows
}

func orEmptySummaries(rows []domain.OrderSummary) []domain.OrderSummary {
	if rows == nil {
		return []domain.OrderSummary{}
	}
	return rows
}
