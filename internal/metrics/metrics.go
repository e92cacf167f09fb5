package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	seriesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roombook",
			Name:      "series_created_total",
			Help:      "Count of reservation series accepted and written.",
		},
	)

	seriesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roombook",
			Name:      "series_rejected_total",
			Help:      "Count of reservation requests rejected, by reason.",
		},
		[]string{"reason"},
	)

	seriesEdited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roombook",
			Name:      "series_edited_total",
			Help:      "Count of reservation series replaced in place.",
		},
	)

	seriesDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roombook",
			Name:      "series_deleted_total",
			Help:      "Count of reservation series deleted.",
		},
	)

	recommendRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roombook",
			Name:      "recommend_requests_total",
			Help:      "Count of room recommendation requests served.",
		},
	)

	exportRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roombook",
			Name:      "export_runs_total",
			Help:      "Count of schedule export runs, by format.",
		},
		[]string{"format"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roombook",
			Name:      "http_requests_total",
			Help:      "Count of HTTP API requests, by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(seriesCreated, seriesRejected, seriesEdited, seriesDeleted, recommendRequests, exportRuns, httpRequests)
	})
}

func IncSeriesCreated() {
	seriesCreated.Inc()
}

func IncSeriesRejected(reason string) {
	seriesRejected.WithLabelValues(reason).Inc()
}

func IncSeriesEdited() {
	seriesEdited.Inc()
}

func IncSeriesDeleted() {
	seriesDeleted.Inc()
}

func IncRecommendRequest() {
	recommendRequests.Inc()
}

func IncExportRun(format string) {
	exportRuns.WithLabelValues(format).Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
