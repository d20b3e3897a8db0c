package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for report generation.
type Metrics struct {
	ReportsBuilt   prometheus.Counter
	ReportErrors   prometheus.Counter
	BuildDuration  prometheus.Histogram
	RowsLoaded     prometheus.Gauge
	WindowRows     prometheus.Gauge
	CoercionNulls  *prometheus.CounterVec // labels: field={incident_date,latitude,longitude}
	ChartsRendered *prometheus.CounterVec // labels: chart, format={html,svg,json,xlsx}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.ReportsBuilt,
		m.ReportErrors,
		m.BuildDuration,
		m.RowsLoaded,
		m.WindowRows,
		m.CoercionNulls,
		m.ChartsRendered,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they need without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_dashboard",
			Name:      "reports_built_total",
			Help:      "Total reports computed from the dataset.",
		}),
		ReportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_dashboard",
			Name:      "report_errors_total",
			Help:      "Total report builds that failed to load the dataset.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_dashboard",
			Name:      "report_build_duration_seconds",
			Help:      "Duration of a complete load-normalize-aggregate cycle.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		RowsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "incident_dashboard",
			Name:      "rows_loaded",
			Help:      "Rows read from the dataset by the most recent build.",
		}),
		WindowRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "incident_dashboard",
			Name:      "window_rows",
			Help:      "Rows inside the 12-month window in the most recent build.",
		}),
		CoercionNulls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_dashboard",
			Name:      "coercion_nulls_total",
			Help:      "Malformed field values coerced to null, by field.",
		}, []string{"field"}),
		ChartsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_dashboard",
			Name:      "charts_rendered_total",
			Help:      "Charts and exports served, by chart and format.",
		}, []string{"chart", "format"}),
	}
}
