package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcome label values.
const (
	OutcomeAccepted    = "accepted"
	OutcomeMerged      = "merged"
	OutcomeRateLimited = "rate_limited"
	OutcomeInvalid     = "invalid"
)

// Metrics holds the Prometheus collectors for the hazard service.
type Metrics struct {
	Submissions   *prometheus.CounterVec // labels: report_type, outcome={accepted,merged,rate_limited,invalid}
	NearbyQueries *prometheus.CounterVec // labels: kind={cameras,reports,combined}
	PurgedReports prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Submissions,
		m.NearbyQueries,
		m.PurgedReports,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so
// repeated construction across tests does not panic.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadwatch",
			Name:      "report_submissions_total",
			Help:      "Report submissions by type and lifecycle outcome.",
		}, []string{"report_type", "outcome"}),
		NearbyQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadwatch",
			Name:      "nearby_queries_total",
			Help:      "Proximity queries served, by result kind.",
		}, []string{"kind"}),
		PurgedReports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roadwatch",
			Name:      "purged_reports_total",
			Help:      "Expired reports removed by the background compaction pass.",
		}),
	}
}
