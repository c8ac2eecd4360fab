package contextwindow

import "context"

// MetricReading is one named metric's most recent value, as returned by
// the time-series store for the context header's metrics summary.
type MetricReading struct {
	Value float64
	Unit  string
	Age   string // human-formatted age, e.g. "12s ago"
}

// MetricsStore is the subset of pkg/timeseries the context layer depends
// on: write-through for admitted events, and read-through for the
// metrics-summary section of get_window.
type MetricsStore interface {
	StoreMetric(ctx context.Context, host, name string, value float64) error
	StoreLogEvent(ctx context.Context, host, severity, message, unit string) error
	StoreTriggerEvent(ctx context.Context, host, kind, message string, metadata map[string]any) error
	LatestMetrics(ctx context.Context, host string) (map[string]MetricReading, error)
	MetricTrends(ctx context.Context, name string, hours int) (map[string]any, error)
}

// SimilarEvent is one hit from the vector store's similarity search.
type SimilarEvent struct {
	Description string
	Score       float64
	Metadata    map[string]any
}

// VectorStore is the subset of pkg/vectorstore the context layer
// delegates query_similar to.
type VectorStore interface {
	QuerySimilar(ctx context.Context, description string, k int) ([]SimilarEvent, error)
}

// SarProvider supplies an optional System Activity Reporter snapshot.
// No concrete implementation ships in this module (sar is a physical
// collector abstracted behind the pluggable signal source, per the
// spec's Non-goals); nil is a valid, always-skipped SarProvider.
type SarProvider interface {
	Available() bool
	Snapshot(hours int) string
}
