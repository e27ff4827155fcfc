package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pinwatch"

// Metrics holds the scan metrics on a private registry, so a run can be
// exported as a node_exporter textfile without touching global state.
type Metrics struct {
	Registry *prometheus.Registry

	PackagesInventoried *prometheus.GaugeVec
	FindingsTotal       *prometheus.GaugeVec
	DegradedReads       *prometheus.CounterVec
	KnownBadPackages    prometheus.Gauge
	ScanDuration        *prometheus.HistogramVec
	LastScanTimestamp   prometheus.Gauge
}

// New creates and registers all metrics.
func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.PackagesInventoried = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "packages_inventoried",
			Help:      "Distinct name@version pairs found per project and collector",
		},
		[]string{"project", "source"},
	)

	m.FindingsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "findings",
			Help:      "Installed package versions matching the known-bad list",
		},
		[]string{"project"},
	)

	m.DegradedReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_reads_total",
			Help:      "Inputs skipped because they were missing, unreadable or corrupt",
		},
		[]string{"source", "reason"},
	)

	m.KnownBadPackages = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "known_bad_packages",
			Help:      "Package names monitored by the loaded known-bad list",
		},
	)

	m.ScanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Duration of one project scan",
			Buckets:   []float64{.005, .01, .05, .1, .5, 1, 2.5, 5, 10},
		},
		[]string{"project"},
	)

	m.LastScanTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_scan_timestamp_seconds",
			Help:      "Unix time the last scan finished",
		},
	)

	m.Registry.MustRegister(
		m.PackagesInventoried,
		m.FindingsTotal,
		m.DegradedReads,
		m.KnownBadPackages,
		m.ScanDuration,
		m.LastScanTimestamp,
	)
	return m
}

// ObserveScan records the outcome of one project scan.
func (m *Metrics) ObserveScan(project string, sources map[string]int, findings int, took time.Duration) {
	for source, n := range sources {
		m.PackagesInventoried.WithLabelValues(project, source).Set(float64(n))
	}
	m.FindingsTotal.WithLabelValues(project).Set(float64(findings))
	m.ScanDuration.WithLabelValues(project).Observe(took.Seconds())
	m.LastScanTimestamp.SetToCurrentTime()
}

// IncDegraded counts one degraded read.
func (m *Metrics) IncDegraded(source, reason string) {
	m.DegradedReads.WithLabelValues(source, reason).Inc()
}

// WriteTextfile writes every metric to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
