package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// HistogramBuckets are millisecond buckets shared by request, upstream and job latencies.
var HistogramBuckets = []float64{
	// --- Fast responses (0 - 500ms) ---
	25, 50, 100, 200, 300, 500,

	// --- Store API calls (500ms - 10s) ---
	750, 1000, 1500, 2000, 3000, 5000, 10000,

	// --- Job runs (10s - 10m) ---
	20000,  // 20s
	30000,  // 30s
	60000,  // 1m
	120000, // 2m
	300000, // 5m
	600000, // 10m
}

// Metric describes one collector: its name, help text, kind and label names.
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric builds the collector for m.Type. Histograms use HistogramBuckets.
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter_vec":
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
		}, m.Args)
	case "histogram_vec":
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
			Buckets:   HistogramBuckets,
		}, m.Args)
	case "summary_vec":
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Subsystem: subsystem,
			Name:      m.Name,
			Help:      m.Description,
		}, m.Args)
	}
	panic(fmt.Sprintf("metrics: unsupported type %q for %s", m.Type, m.Name))
}

// register builds and registers m, reusing the existing collector when an identical
// one is already registered.
func register(m *Metric, subsystem string) (prometheus.Collector, error) {
	c := NewMetric(m, subsystem)
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			c = are.ExistingCollector
		} else {
			return c, err
		}
	}
	m.MetricCollector = c
	return c, nil
}
