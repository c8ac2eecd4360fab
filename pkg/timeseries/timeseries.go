// Package timeseries persists and queries the four sample streams
// (metrics, service_status, log_events, trigger_events) described in
// §4.8: batched append, bucketed aggregate queries, a latest-per-metric
// projection, and a statistical summary over an hour window, backed by
// Postgres tables chunked by day.
package timeseries

import "time"

// MetricSample is one named reading passed to StoreMetrics for a batched
// multi-metric insert (the §4.8 "(a) append via batched inserts" path).
type MetricSample struct {
	Value    float64
	Unit     string
	Metadata map[string]any
}

// MetricStatistics is the §4.8 "(d) statistical summary" result: average,
// max, min, standard deviation, and sample count over a window.
type MetricStatistics struct {
	Avg         float64
	Max         float64
	Min         float64
	Stddev      float64
	Samples     int
	PeriodHours int
}

// ServiceStatusSample is one service's observed state, as passed to
// StoreServiceStatus for a batched insert.
type ServiceStatusSample struct {
	Name        string
	Status      string
	ActiveState string
	Metadata    map[string]any
}

// ServiceStatusRecord is one row returned by ServiceHistory.
type ServiceStatusRecord struct {
	Time        time.Time
	Status      string
	ActiveState string
	Metadata    map[string]any
}

// LogEventRecord is one row returned by LogEvents.
type LogEventRecord struct {
	Time     time.Time
	Severity string
	Message  string
	Unit     string
	Metadata map[string]any
}

// MetricBucket is one time-bucketed aggregate row returned by QueryMetrics.
type MetricBucket struct {
	Bucket     time.Time
	MetricName string
	Avg        float64
	Max        float64
	Min        float64
	Unit       string
}
