package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "laundry_alert"

// Metrics holds the Prometheus collectors for a single alert run.
type Metrics struct {
	ProviderRequests *prometheus.CounterVec   // labels: source={openweather_current,openweather_forecast,yolp}, outcome={success,error}
	ProviderDuration *prometheus.HistogramVec // labels: source
	AreaScore        *prometheus.GaugeVec     // labels: area
	DegradedAreas    prometheus.Gauge

	Notifications     *prometheus.CounterVec // labels: outcome={sent,failed,skipped}
	ReadingsPublished prometheus.Counter

	RunDuration      prometheus.Gauge
	RunOutcome       *prometheus.GaugeVec // labels: outcome; 1 for the outcome of the last run
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics creates the run metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.ProviderRequests,
		m.ProviderDuration,
		m.AreaScore,
		m.DegradedAreas,
		m.Notifications,
		m.ReadingsPublished,
		m.RunDuration,
		m.RunOutcome,
		m.LastRunTimestamp,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Weather provider requests by source and outcome.",
		}, []string{"source", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Weather provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}),
		AreaScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "area_score",
			Help:      "Dryability score (0-100) per monitored area from the last run.",
		}, []string{"area"}),
		DegradedAreas: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "degraded_areas",
			Help:      "Number of areas scored with at least one failed data source.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification attempts by outcome.",
		}, []string{"outcome"}),
		ReadingsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_published_total",
			Help:      "Area readings written to Kafka.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		RunOutcome: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_outcome",
			Help:      "1 for the outcome of the last run, 0 otherwise.",
		}, []string{"outcome"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run completed.",
		}),
	}
}
