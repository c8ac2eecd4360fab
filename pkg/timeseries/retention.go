package timeseries

import (
	"context"
	"fmt"
	"time"
)

var retentionTables = []string{"system_metrics", "service_status", "log_events", "trigger_events"}

// Cleanup drops rows older than the store's configured retention period
// from all four streams. Without the timescaledb extension this is a
// plain DELETE rather than drop_chunks, but the effect — bulk removal of
// whole trailing chunk_date ranges — is the same; the chunk_date index
// keeps it from degenerating into a full table scan.
func (s *Store) Cleanup(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)

	for _, table := range retentionTables {
		query := fmt.Sprintf("DELETE FROM %s WHERE chunk_date < $1", table)
		if _, err := s.db.ExecContext(ctx, query, cutoff); err != nil {
			return fmt.Errorf("cleanup %s: %w", table, err)
		}
	}
	return nil
}
