package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values shared by the counters below.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	// WebhookDeliveries counts processed webhook deliveries by topic and
	// outcome, redeliveries included.
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries_total",
		Help: "Webhook deliveries processed, by topic and outcome.",
	}, []string{"topic", "outcome"})

	// IngestionRuns counts completed bulk ingestion runs by outcome.
	IngestionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingestion_runs_total",
		Help: "Bulk ingestion runs, by outcome.",
	}, []string{"outcome"})

	// IngestionRecords counts records written during bulk ingestion by
	// resource type.
	IngestionRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingestion_records_total",
		Help: "Records upserted during bulk ingestion, by resource.",
	}, []string{"resource"})
)

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
