// Package metric exposes Prometheus collectors for the feature store
// pipeline: ingestion, materialization, online serving and registry reloads.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the client records into.
type Metrics struct {
	IngestedRows        *prometheus.CounterVec
	IngestErrors        *prometheus.CounterVec
	MaterializeRuns     *prometheus.CounterVec
	MaterializeDuration *prometheus.HistogramVec
	OnlineRequests      *prometheus.CounterVec
	OnlineLatency       *prometheus.HistogramVec
	RegistryReloads     *prometheus.CounterVec
}

// NewMetrics creates the collector set. Callers register it on their own
// registry via Register.
func NewMetrics() *Metrics {
	return &Metrics{
		IngestedRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "feature_store",
				Subsystem: "ingestion",
				Name:      "rows_total",
				Help:      "Total number of rows appended to the offline store",
			},
			[]string{"feature_view"},
		),
		IngestErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "feature_store",
				Subsystem: "ingestion",
				Name:      "errors_total",
				Help:      "Total number of failed ingestion batches",
			},
			[]string{"feature_view"},
		),
		MaterializeRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "feature_store",
				Subsystem: "materialization",
				Name:      "runs_total",
				Help:      "Total number of materialization runs",
			},
			[]string{"feature_view", "status"},
		),
		MaterializeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "feature_store",
				Subsystem: "materialization",
				Name:      "duration_seconds",
				Help:      "Materialization run duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"feature_view"},
		),
		OnlineRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "feature_store",
				Subsystem: "online",
				Name:      "requests_total",
				Help:      "Total online feature requests",
			},
			[]string{"feature_view", "result"},
		),
		OnlineLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "feature_store",
				Subsystem: "online",
				Name:      "latency_seconds",
				Help:      "Online read latency",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
			},
			[]string{"feature_view"},
		),
		RegistryReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "feature_store",
				Subsystem: "registry",
				Name:      "reloads_total",
				Help:      "Total registry reload attempts",
			},
			[]string{"status"},
		),
	}
}

// Register attaches every collector to the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.IngestedRows,
		m.IngestErrors,
		m.MaterializeRuns,
		m.MaterializeDuration,
		m.OnlineRequests,
		m.OnlineLatency,
		m.RegistryReloads,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) RecordIngest(view string, rows int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.IngestErrors.WithLabelValues(view).Inc()
		return
	}
	m.IngestedRows.WithLabelValues(view).Add(float64(rows))
}

func (m *Metrics) RecordMaterialize(view string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.MaterializeRuns.WithLabelValues(view, status).Inc()
	m.MaterializeDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

func (m *Metrics) RecordOnlineRequest(view string, start time.Time, hit bool) {
	if m == nil {
		return
	}
	result := "hit"
	if !hit {
		result = "miss"
	}
	m.OnlineRequests.WithLabelValues(view, result).Inc()
	m.OnlineLatency.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

func (m *Metrics) RecordRegistryReload(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RegistryReloads.WithLabelValues(status).Inc()
}
