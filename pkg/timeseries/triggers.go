package timeseries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// StoreTriggerEvent appends a trigger-layer decision record. Satisfies
// contextwindow.MetricsStore.
func (s *Store) StoreTriggerEvent(ctx context.Context, host, triggerType, reason string, metadata map[string]any) error {
	data, err := json.Marshal(metadata)
	if err != nil {
		data = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO trigger_events (time, hostname, trigger_type, trigger_reason, metadata)
		 VALUES ($1, $2, $3, $4, $5)`,
		time.Now().UTC(), host, triggerType, reason, data)
	if err != nil {
		return fmt.Errorf("store trigger event: %w", err)
	}
	return nil
}
