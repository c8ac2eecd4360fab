package timeseries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// StoreServiceStatus appends one host's observed service states in a
// single batched insert.
func (s *Store) StoreServiceStatus(ctx context.Context, host string, services []ServiceStatusSample) error {
	if len(services) == 0 {
		return nil
	}

	now := time.Now().UTC()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store service status: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO service_status (time, hostname, service_name, status, active_state, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("store service status: prepare: %w", err)
	}
	defer stmt.Close()

	for _, svc := range services {
		metadata, err := json.Marshal(svc.Metadata)
		if err != nil {
			metadata = []byte("{}")
		}
		if _, err := stmt.ExecContext(ctx, now, host, svc.Name, svc.Status, svc.ActiveState, metadata); err != nil {
			return fmt.Errorf("store service status: exec: %w", err)
		}
	}

	return tx.Commit()
}

// ServiceHistory returns service_name's recorded states for host over the
// last hours hours, newest first.
func (s *Store) ServiceHistory(ctx context.Context, host, serviceName string, hours int) ([]ServiceStatusRecord, error) {
	since := time.Now().UTC().Add(-clampHours(hours))

	rows, err := s.db.QueryContext(ctx,
		`SELECT time, status, active_state, metadata
		 FROM service_status
		 WHERE hostname = $1 AND service_name = $2 AND time >= $3
		 ORDER BY time DESC`,
		host, serviceName, since)
	if err != nil {
		return nil, fmt.Errorf("service history: %w", err)
	}
	defer rows.Close()

	var out []ServiceStatusRecord
	for rows.Next() {
		var (
			rec      ServiceStatusRecord
			metadata []byte
		)
		if err := rows.Scan(&rec.Time, &rec.Status, &rec.ActiveState, &metadata); err != nil {
			return nil, fmt.Errorf("service history: scan: %w", err)
		}
		_ = json.Unmarshal(metadata, &rec.Metadata)
		out = append(out, rec)
	}
	return out, rows.Err()
}
