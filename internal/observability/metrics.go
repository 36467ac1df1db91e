package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	UploadOK     = "ok"
	UploadFailed = "failed"
)

// Metrics owns its registry so tests can build as many as they like.
type Metrics struct {
	registry       *prometheus.Registry
	uploads        *prometheus.CounterVec
	uploadRows     prometheus.Histogram
	renderDuration prometheus.Histogram
	exports        prometheus.Counter
}

// NewMetrics registers the dashboard collectors. activeSessions is sampled
// on every scrape.
func NewMetrics(activeSessions func() float64) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "uploads_total",
			Help:      "Dataset uploads by result.",
		}, []string{"result"}),
		uploadRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Name:      "upload_rows",
			Help:      "Rows per successfully loaded dataset.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Name:      "render_duration_seconds",
			Help:      "Time spent deriving a dashboard view.",
			Buckets:   prometheus.DefBuckets,
		}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "exports_total",
			Help:      "CSV downloads served.",
		}),
	}

	reg.MustRegister(
		m.uploads,
		m.uploadRows,
		m.renderDuration,
		m.exports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if activeSessions != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "dashboard",
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}, activeSessions))
	}

	return m
}

func (m *Metrics) ObserveUpload(result string, rows int) {
	m.uploads.WithLabelValues(result).Inc()
	if result == UploadOK {
		m.uploadRows.Observe(float64(rows))
	}
}

func (m *Metrics) ObserveRender(d time.Duration) {
	m.renderDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveExport() {
	m.exports.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
