package vectorstore

import (
	"context"
	stdsql "database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations
var migrationsFS embed.FS

// pgBackend persists records to a single vector_records table (see
// migrations), computing similarity application-side since no pgvector
// extension is assumed — same cosine computation the in-memory fallback
// uses, just over rows fetched from Postgres.
type pgBackend struct {
	db *sqlx.DB
}

func newPGBackend(ctx context.Context, dsn string, maxOpenConns, maxIdleConns int) (*pgBackend, error) {
	sqlDB, err := stdsql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(maxIdleConns)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if err := runMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &pgBackend{db: sqlx.NewDb(sqlDB, "pgx")}, nil
}

func runMigrations(db *stdsql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "vectorstore", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// Must not call m.Close(): it would close the shared *sql.DB.
	return sourceDriver.Close()
}

func (b *pgBackend) Upsert(ctx context.Context, collection Collection, rec Record) error {
	embedding, err := json.Marshal(rec.Embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}
	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		metadata = []byte("{}")
	}

	_, err = b.db.ExecContext(ctx,
		`INSERT INTO vector_records (collection, id, document, embedding, metadata, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (collection, id) DO UPDATE
		 SET document = EXCLUDED.document, embedding = EXCLUDED.embedding,
		     metadata = EXCLUDED.metadata, updated_at = EXCLUDED.updated_at`,
		collection, rec.ID, rec.Document, embedding, metadata, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

func (b *pgBackend) Get(ctx context.Context, collection Collection, id string) (*Record, error) {
	row := b.db.QueryRowContext(ctx,
		`SELECT id, document, embedding, metadata, updated_at
		 FROM vector_records WHERE collection = $1 AND id = $2`,
		collection, id)

	rec, err := scanRecord(row)
	if errors.Is(err, stdsql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return rec, nil
}

func (b *pgBackend) Query(ctx context.Context, collection Collection, embedding []float64, k int, filter map[string]string) ([]Hit, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, document, embedding, metadata, updated_at FROM vector_records WHERE collection = $1`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("query: scan: %w", err)
		}
		if !matchesFilter(*rec, filter) {
			continue
		}
		hits = append(hits, Hit{Record: *rec, Score: cosineSimilarity(embedding, rec.Embedding)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (b *pgBackend) Close() error {
	return b.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec            Record
		embedding, raw []byte
	)
	if err := row.Scan(&rec.ID, &rec.Document, &embedding, &raw, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal(embedding, &rec.Embedding)
	_ = json.Unmarshal(raw, &rec.Metadata)
	return &rec, nil
}
