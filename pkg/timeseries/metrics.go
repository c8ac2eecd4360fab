package timeseries

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/contextwindow"
)

const defaultBucketInterval = 5 * time.Minute

// StoreMetric appends a single metric reading. Satisfies
// contextwindow.MetricsStore for the context layer's write-through path.
func (s *Store) StoreMetric(ctx context.Context, host, name string, value float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO system_metrics (time, hostname, metric_name, value, unit, metadata)
		 VALUES ($1, $2, $3, $4, '', '{}'::jsonb)`,
		time.Now().UTC(), host, name, value)
	if err != nil {
		return fmt.Errorf("store metric: %w", err)
	}
	return nil
}

// StoreMetrics appends a batch of readings for host in a single insert,
// the §4.8 "(a) append via batched inserts" path for a full probe cycle
// (e.g. cpu/memory/disk/load together), grounded on the original's
// execute_values batch.
func (s *Store) StoreMetrics(ctx context.Context, host string, samples map[string]MetricSample) error {
	if len(samples) == 0 {
		return nil
	}

	now := time.Now().UTC()
	var sb strings.Builder
	sb.WriteString("INSERT INTO system_metrics (time, hostname, metric_name, value, unit, metadata) VALUES ")

	args := make([]any, 0, len(samples)*6)
	i := 0
	for name, sample := range samples {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 6
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6)

		metadata, err := json.Marshal(sample.Metadata)
		if err != nil {
			metadata = []byte("{}")
		}
		args = append(args, now, host, name, sample.Value, sample.Unit, metadata)
		i++
	}

	if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("store metrics: %w", err)
	}
	return nil
}

// LatestMetrics returns the most recent reading for every metric name
// recorded for host. Satisfies contextwindow.MetricsStore.
func (s *Store) LatestMetrics(ctx context.Context, host string) (map[string]contextwindow.MetricReading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT ON (metric_name) metric_name, value, unit, time
		 FROM system_metrics
		 WHERE hostname = $1
		 ORDER BY metric_name, time DESC`,
		host)
	if err != nil {
		return nil, fmt.Errorf("latest metrics: %w", err)
	}
	defer rows.Close()

	out := make(map[string]contextwindow.MetricReading)
	for rows.Next() {
		var (
			name  string
			value float64
			unit  string
			at    time.Time
		)
		if err := rows.Scan(&name, &value, &unit, &at); err != nil {
			return nil, fmt.Errorf("latest metrics: scan: %w", err)
		}
		out[name] = contextwindow.MetricReading{Value: value, Unit: unit, Age: formatAge(at)}
	}
	return out, rows.Err()
}

// MetricTrends buckets name's readings over the last hours hours (5
// minute buckets) and summarises the direction of change. Satisfies
// contextwindow.MetricsStore.
func (s *Store) MetricTrends(ctx context.Context, name string, hours int) (map[string]any, error) {
	since := time.Now().UTC().Add(-clampHours(hours))
	bucketSeconds := defaultBucketInterval.Seconds()

	rows, err := s.db.QueryContext(ctx,
		`SELECT to_timestamp(floor(extract(epoch from time) / $1::double precision) * $1::double precision) AS bucket,
		        AVG(value), MAX(value), MIN(value)
		 FROM system_metrics
		 WHERE metric_name = $2 AND time >= $3
		 GROUP BY bucket
		 ORDER BY bucket ASC`,
		bucketSeconds, name, since)
	if err != nil {
		return nil, fmt.Errorf("metric trends: %w", err)
	}
	defer rows.Close()

	var buckets []MetricBucket
	for rows.Next() {
		var b MetricBucket
		if err := rows.Scan(&b.Bucket, &b.Avg, &b.Max, &b.Min); err != nil {
			return nil, fmt.Errorf("metric trends: scan: %w", err)
		}
		b.MetricName = name
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	direction := "flat"
	if len(buckets) >= 2 {
		first, last := buckets[0].Avg, buckets[len(buckets)-1].Avg
		switch {
		case last > first*1.05:
			direction = "rising"
		case last < first*0.95:
			direction = "falling"
		}
	}

	return map[string]any{"buckets": buckets, "direction": direction}, nil
}

// QueryMetrics implements the §4.8 "(b) bucketed aggregate queries"
// operation across an arbitrary interval and metric name filter.
func (s *Store) QueryMetrics(ctx context.Context, host string, metricNames []string, since, until time.Time, interval time.Duration) ([]MetricBucket, error) {
	query := `SELECT to_timestamp(floor(extract(epoch from time) / $1::double precision) * $1::double precision) AS bucket,
	                 metric_name, AVG(value), MAX(value), MIN(value), unit
		FROM system_metrics
		WHERE hostname = $2 AND time >= $3 AND time <= $4`
	args := []any{interval.Seconds(), host, since, until}

	if len(metricNames) > 0 {
		query += " AND metric_name = ANY($5)"
		args = append(args, metricNames)
	}
	query += " GROUP BY bucket, metric_name, unit ORDER BY bucket DESC, metric_name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var out []MetricBucket
	for rows.Next() {
		var b MetricBucket
		if err := rows.Scan(&b.Bucket, &b.MetricName, &b.Avg, &b.Max, &b.Min, &b.Unit); err != nil {
			return nil, fmt.Errorf("query metrics: scan: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// MetricStatistics implements the §4.8 "(d) statistical summary"
// operation: avg/max/min/stddev/count over the last hours hours.
func (s *Store) MetricStatistics(ctx context.Context, host, name string, hours int) (*MetricStatistics, error) {
	since := time.Now().UTC().Add(-clampHours(hours))

	row := s.db.QueryRowContext(ctx,
		`SELECT AVG(value), MAX(value), MIN(value), COALESCE(STDDEV(value), 0), COUNT(*)
		 FROM system_metrics
		 WHERE hostname = $1 AND metric_name = $2 AND time >= $3`,
		host, name, since)

	var (
		avg, max, min, stddev sqlNullFloat
		count                 int
	)
	if err := row.Scan(&avg, &max, &min, &stddev, &count); err != nil {
		return nil, fmt.Errorf("metric statistics: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	return &MetricStatistics{
		Avg:         avg.float64(),
		Max:         max.float64(),
		Min:         min.float64(),
		Stddev:      stddev.float64(),
		Samples:     count,
		PeriodHours: hours,
	}, nil
}

func formatAge(at time.Time) string {
	d := time.Since(at)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}
