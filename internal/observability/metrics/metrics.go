package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	// ResultSuccess labels a successful run.
	ResultSuccess = "success"
	// ResultError labels a failed run.
	ResultError = "error"
	// ResultUnauthorized labels a rejected trigger.
	ResultUnauthorized = "unauthorized"
)

// Metrics bundles settlement engine metrics.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
	SettlementsCreated prometheus.Counter
	SettlementsSkipped prometheus.Counter
	PartnerFailures    prometheus.Counter
	NotifyFailures     prometheus.Counter
	PartnerDuration    prometheus.Histogram
	ExportDuration     *prometheus.HistogramVec
}

// ObserveExport records a statement export.
func (m *Metrics) ObserveExport(format, result string, seconds float64) {
	if m == nil {
		return
	}
	m.ExportDuration.WithLabelValues(format, result).Observe(seconds)
}

// New constructs and registers metrics.
func New() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platform_settlement_runs_total",
				Help: "Total settlement batch runs by result",
			},
			[]string{"result"},
		),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "platform_settlement_run_duration_seconds",
			Help:    "Settlement batch run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		SettlementsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platform_settlements_created_total",
			Help: "Total settlements created",
		}),
		SettlementsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platform_settlements_skipped_total",
			Help: "Total settlements skipped as already settled",
		}),
		PartnerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platform_settlement_partner_failures_total",
			Help: "Total partners failed within settlement runs",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platform_settlement_notify_failures_total",
			Help: "Total statement notification failures",
		}),
		PartnerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "platform_settlement_partner_duration_seconds",
			Help:    "Per-partner settlement duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		ExportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "platform_settlement_export_duration_seconds",
				Help:    "Statement export duration in seconds by format and result",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		),
	}
	prometheus.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.SettlementsCreated,
		m.SettlementsSkipped,
		m.PartnerFailures,
		m.NotifyFailures,
		m.PartnerDuration,
		m.ExportDuration,
	)
	return m
}
