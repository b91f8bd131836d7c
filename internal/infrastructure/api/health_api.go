package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// HealthAPI serves liveness and database connectivity probes.
type HealthAPI struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewHealthAPI creates a new health API
func NewHealthAPI(db *gorm.DB, logger zerolog.Logger) *HealthAPI {
	return &HealthAPI{db: db, logger: logger}
}

// HandleHealth processes GET /health.
func (a *HealthAPI) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleDBTest processes GET /dbtest and verifies the connection by asking
// the database for its clock.
func (a *HealthAPI) HandleDBTest(w http.ResponseWriter, r *http.Request) {
	var dbTime time.Time
	err := a.db.WithContext(r.Context()).Raw("SELECT CURRENT_TIMESTAMP").Scan(&dbTime).Error
	if err != nil {
		a.logger.Error().Err(err).Msg("Database probe failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"database": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"database": "ok", "db_time": dbTime})
}
