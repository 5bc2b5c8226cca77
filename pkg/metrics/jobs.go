package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const appSubsystem = "steamwatch"

// Job item outcomes.
const (
	OutcomeSynced  = "synced"
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

var jobItems = &Metric{
	ID:          "jobItems",
	Name:        "job_items_total",
	Description: "Items processed by the scheduled jobs, partitioned by job and outcome.",
	Type:        "counter_vec",
	Args:        []string{"job", "outcome"},
}

var jobDur = &Metric{
	ID:          "jobDur",
	Name:        "job_dur_ms",
	Description: "Scheduled job run latencies in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"job"},
}

var upstreamDur = &Metric{
	ID:          "upstreamDur",
	Name:        "store_req_dur_ms",
	Description: "Store API call latencies in milliseconds, partitioned by endpoint and result.",
	Type:        "histogram_vec",
	Args:        []string{"endpoint", "result"},
}

var (
	appOnce        sync.Once
	jobItemsVec    *prometheus.CounterVec
	jobDurVec      *prometheus.HistogramVec
	upstreamDurVec *prometheus.HistogramVec
)

func appCollectors() {
	appOnce.Do(func() {
		jobItemsVec = mustRegister(jobItems).(*prometheus.CounterVec)
		jobDurVec = mustRegister(jobDur).(*prometheus.HistogramVec)
		upstreamDurVec = mustRegister(upstreamDur).(*prometheus.HistogramVec)
	})
}

func mustRegister(m *Metric) prometheus.Collector {
	c, err := register(m, appSubsystem)
	if err != nil {
		panic(err)
	}
	return c
}

// JobItem counts one processed item of a job run.
func JobItem(job, outcome string) {
	appCollectors()
	jobItemsVec.WithLabelValues(job, outcome).Inc()
}

// ObserveJob records a finished job run started at start.
func ObserveJob(job string, start time.Time) {
	appCollectors()
	jobDurVec.WithLabelValues(job).Observe(MillisecondsSince(start))
}

// ObserveUpstream records one store API call. result is an HTTP status code or "error".
func ObserveUpstream(endpoint, result string, start time.Time) {
	appCollectors()
	upstreamDurVec.WithLabelValues(endpoint, result).Observe(MillisecondsSince(start))
}
