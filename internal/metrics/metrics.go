// Package metrics exposes compile counters and timings to Prometheus.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dgallion1/bookc/internal/book"
)

// Compile outcomes.
const (
	OutcomeSuccess = "success" // built without error reports
	OutcomeFailed  = "failed"  // stopped by error reports in the document
	OutcomeError   = "error"   // engine or builder failure
)

// Metrics holds the bookc collectors.
type Metrics struct {
	compiles   *prometheus.CounterVec
	reports    *prometheus.CounterVec
	duration   prometheus.Histogram
	chapters   prometheus.Counter
	queueDepth prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		compiles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookc",
			Name:      "compiles_total",
			Help:      "Compilations by outcome.",
		}, []string{"outcome"}),
		reports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookc",
			Name:      "reports_total",
			Help:      "Document reports by level and code.",
		}, []string{"level", "code"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bookc",
			Name:      "compile_duration_seconds",
			Help:      "Wall time of a compilation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		chapters: f.NewCounter(prometheus.CounterOpts{
			Namespace: "bookc",
			Name:      "chapters_total",
			Help:      "Chapters compiled.",
		}),
		queueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "bookc",
			Name:      "queue_depth",
			Help:      "Compile jobs waiting for a worker.",
		}),
	}
}

// ObserveCompile records one finished compilation.
func (m *Metrics) ObserveCompile(outcome string, d time.Duration, chapters int) {
	if m == nil {
		return
	}
	m.compiles.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
	m.chapters.Add(float64(chapters))
}

// ObserveReports counts reports by level and code.
func (m *Metrics) ObserveReports(reports []book.Report) {
	if m == nil {
		return
	}
	for _, r := range reports {
		m.reports.WithLabelValues(string(r.Level), string(r.Code)).Inc()
	}
}

// SetQueueDepth records the number of queued jobs.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}
