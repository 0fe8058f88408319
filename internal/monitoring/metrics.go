package monitoring

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics run-level counters for one batch run, kept in their own registry.
type Metrics struct {
	registry *prometheus.Registry

	quotesLoaded    prometheus.Counter
	eventsProcessed prometheus.Counter
	users           prometheus.Gauge
	barRows         *prometheus.GaugeVec
	stageDuration   *prometheus.GaugeVec
}

// NewMetrics creates and registers the run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		quotesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usdbars_quotes_loaded_total",
			Help: "Number of exchange-rate quotes loaded",
		}),
		eventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usdbars_events_processed_total",
			Help: "Number of ledger events applied",
		}),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "usdbars_users",
			Help: "Distinct users in the output",
		}),
		barRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "usdbars_bars_rows",
				Help: "Output rows per window",
			},
			[]string{"window"},
		),
		stageDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "usdbars_stage_duration_seconds",
				Help: "Wall time spent per run stage",
			},
			[]string{"stage"},
		),
	}

	m.registry.MustRegister(m.quotesLoaded, m.eventsProcessed, m.users, m.barRows, m.stageDuration)
	return m
}

// RecordLoad records input sizes.
func (m *Metrics) RecordLoad(quotes, events int) {
	m.quotesLoaded.Add(float64(quotes))
	m.eventsProcessed.Add(float64(events))
}

// RecordWindow records the number of output rows for a window.
func (m *Metrics) RecordWindow(window string, rows int) {
	m.barRows.WithLabelValues(window).Set(float64(rows))
}

// RecordUsers records the number of distinct users.
func (m *Metrics) RecordUsers(n int) {
	m.users.Set(float64(n))
}

// RecordStage records how long a stage took.
func (m *Metrics) RecordStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// Gatherer exposes the registry, mostly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteFile writes all metrics in text exposition format, e.g. for node_exporter's textfile collector.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrap(err, "write metrics textfile")
	}
	return nil
}
