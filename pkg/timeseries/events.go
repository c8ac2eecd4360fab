package timeseries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const logEventQueryLimit = 1000

// StoreLogEvent appends one log line. Satisfies contextwindow.MetricsStore.
func (s *Store) StoreLogEvent(ctx context.Context, host, severity, message, unit string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO log_events (time, hostname, severity, message, unit, metadata)
		 VALUES ($1, $2, $3, $4, $5, '{}'::jsonb)`,
		time.Now().UTC(), host, severity, message, unit)
	if err != nil {
		return fmt.Errorf("store log event: %w", err)
	}
	return nil
}

// LogEvents queries log_events for host over the last hours hours,
// optionally filtered to a single severity, newest first and capped at
// logEventQueryLimit rows (matching the original's hard LIMIT 1000).
func (s *Store) LogEvents(ctx context.Context, host, severity string, hours int) ([]LogEventRecord, error) {
	since := time.Now().UTC().Add(-clampHours(hours))

	query := `SELECT time, severity, message, unit, metadata
		FROM log_events
		WHERE hostname = $1 AND time >= $2`
	args := []any{host, since}

	if severity != "" {
		query += " AND severity = $3"
		args = append(args, severity)
	}
	query += fmt.Sprintf(" ORDER BY time DESC LIMIT %d", logEventQueryLimit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("log events: %w", err)
	}
	defer rows.Close()

	var out []LogEventRecord
	for rows.Next() {
		var (
			rec      LogEventRecord
			metadata []byte
		)
		if err := rows.Scan(&rec.Time, &rec.Severity, &rec.Message, &rec.Unit, &metadata); err != nil {
			return nil, fmt.Errorf("log events: scan: %w", err)
		}
		_ = json.Unmarshal(metadata, &rec.Metadata)
		out = append(out, rec)
	}
	return out, rows.Err()
}
