package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carlosfiori/integrador-apis/internal/apperrors"
)

// Metrics holds the collectors updated by the pipeline.
type Metrics struct {
	Lookups        *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
	Reports        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "integrador",
			Name:      "upstream_lookups_total",
			Help:      "Upstream lookups by service and outcome.",
		}, []string{"service", "outcome"}),
		LookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "integrador",
			Name:      "upstream_lookup_duration_seconds",
			Help:      "Upstream lookup latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		Reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "integrador",
			Name:      "reports_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.Lookups, m.LookupDuration, m.Reports)
	return m
}

// ObserveLookup records one upstream call. A nil receiver is a no-op.
func (m *Metrics) ObserveLookup(service string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(service, apperrors.Kind(err)).Inc()
	m.LookupDuration.WithLabelValues(service).Observe(time.Since(started).Seconds())
}

// ObserveReport records the outcome of a whole run. A nil receiver is a no-op.
func (m *Metrics) ObserveReport(err error) {
	if m == nil {
		return
	}
	m.Reports.WithLabelValues(apperrors.Kind(err)).Inc()
}
