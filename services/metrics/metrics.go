package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lead_sites"

// Metrics groups the counters the lead pipeline reports. A nil *Metrics is valid
// and records nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	registry *prometheus.Registry

	leadSubmissions  *prometheus.CounterVec
	analyticsEvents  *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	activeForms      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		leadSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_submissions_total",
			Help:      "Lead form submission attempts by form and outcome.",
		}, []string{"form", "outcome"}),
		analyticsEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_events_total",
			Help:      "Analytics events forwarded to external collectors.",
		}, []string{"sink", "event", "result"}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "email_dispatch_seconds",
			Help:      "Latency of transactional email provider calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "outcome"}),
		activeForms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_forms",
			Help:      "Visitor form instances held in memory.",
		}),
	}

	m.registry.MustRegister(
		m.leadSubmissions,
		m.analyticsEvents,
		m.dispatchDuration,
		m.activeForms,
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) LeadSubmission(form, outcome string) {
	if m == nil {
		return
	}
	m.leadSubmissions.WithLabelValues(form, outcome).Inc()
}

func (m *Metrics) AnalyticsEvent(sink, event, result string) {
	if m == nil {
		return
	}
	m.analyticsEvents.WithLabelValues(sink, event, result).Inc()
}

func (m *Metrics) Dispatch(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.dispatchDuration.WithLabelValues(provider, outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) ActiveForms(n int) {
	if m == nil {
		return
	}
	m.activeForms.Set(float64(n))
}
