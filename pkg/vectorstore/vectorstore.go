// Package vectorstore implements the §4.7 adapter over six logical
// collections (systems, relationships, issues, decisions, config_files,
// knowledge): upsert, semantic query, and by-id fetch. The embedding
// itself is opaque — callers supply a precomputed float64 vector; this
// package only indexes and searches it.
package vectorstore

import (
	"context"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/contextwindow"
)

// Collection names one of the six logical collections.
type Collection string

// Recognised collections.
const (
	CollectionSystems       Collection = "systems"
	CollectionRelationships Collection = "relationships"
	CollectionIssues        Collection = "issues"
	CollectionDecisions     Collection = "decisions"
	CollectionConfigFiles   Collection = "config_files"
	CollectionKnowledge     Collection = "knowledge"
)

// IsValid reports whether c is one of the recognised collections.
func (c Collection) IsValid() bool {
	switch c {
	case CollectionSystems, CollectionRelationships, CollectionIssues,
		CollectionDecisions, CollectionConfigFiles, CollectionKnowledge:
		return true
	default:
		return false
	}
}

// Record is one upserted entry. Id stability rules are the caller's
// responsibility (§4.7: hostname for systems, UUID for issues/decisions/
// knowledge, relative path for config files).
type Record struct {
	ID        string
	Document  string
	Embedding []float64
	Metadata  map[string]any
	UpdatedAt time.Time
}

// Hit is one semantic-query result: Score is the distance normalised to
// a [0,1] relevance score (1-d), per §4.7's invariant.
type Hit struct {
	Record
	Score float64
}

// backend is implemented by both the pgx-backed store and the in-memory
// fallback, so Store itself stays storage-agnostic.
type backend interface {
	Upsert(ctx context.Context, collection Collection, rec Record) error
	Get(ctx context.Context, collection Collection, id string) (*Record, error)
	Query(ctx context.Context, collection Collection, embedding []float64, k int, filter map[string]string) ([]Hit, error)
	Close() error
}

// Store is the public entry point. Safe for concurrent use.
type Store struct {
	backend backend
}

// Upsert inserts or replaces rec in collection.
func (s *Store) Upsert(ctx context.Context, collection Collection, rec Record) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	return s.backend.Upsert(ctx, collection, rec)
}

// Get fetches rec by id, or (nil, nil) if absent.
func (s *Store) Get(ctx context.Context, collection Collection, id string) (*Record, error) {
	return s.backend.Get(ctx, collection, id)
}

// Query returns the k closest records to embedding, optionally filtered
// by exact metadata-field match (e.g. {"category": "network"}).
func (s *Store) Query(ctx context.Context, collection Collection, embedding []float64, k int, filter map[string]string) ([]Hit, error) {
	if k <= 0 {
		k = 5
	}
	return s.backend.Query(ctx, collection, embedding, k, filter)
}

// QuerySimilar adapts Query to contextwindow.VectorStore: the context
// layer only has a free-text description, not a precomputed embedding,
// so it is hashed into a deterministic pseudo-embedding via the
// package's bag-of-words projection (textEmbedding), which only matches
// records whose stored embedding was built the same way — good enough for
// "degraded recall", per §7, when no embedding service is configured.
func (s *Store) QuerySimilar(ctx context.Context, description string, k int) ([]contextwindow.SimilarEvent, error) {
	hits, err := s.Query(ctx, CollectionKnowledge, textEmbedding(description), k, nil)
	if err != nil {
		return nil, err
	}

	out := make([]contextwindow.SimilarEvent, 0, len(hits))
	for _, h := range hits {
		out = append(out, contextwindow.SimilarEvent{Description: h.Document, Score: h.Score, Metadata: h.Metadata})
	}
	return out, nil
}

// Close releases the underlying storage resources.
func (s *Store) Close() error {
	return s.backend.Close()
}
