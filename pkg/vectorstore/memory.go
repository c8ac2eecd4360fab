package vectorstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// memoryBackend is the in-memory fallback used when no database DSN is
// configured (§7 "Store unavailable — core continues with degraded
// recall"). Optionally persisted to a JSON file between runs.
type memoryBackend struct {
	mu   sync.RWMutex
	data map[Collection]map[string]Record
	path string
}

func newMemoryBackend(path string) *memoryBackend {
	m := &memoryBackend{data: make(map[Collection]map[string]Record), path: path}
	m.load()
	return m
}

func (m *memoryBackend) Upsert(_ context.Context, collection Collection, rec Record) error {
	m.mu.Lock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]Record)
	}
	m.data[collection][rec.ID] = rec
	m.mu.Unlock()

	return m.save()
}

func (m *memoryBackend) Get(_ context.Context, collection Collection, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.data[collection][id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memoryBackend) Query(_ context.Context, collection Collection, embedding []float64, k int, filter map[string]string) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []Hit
	for _, rec := range m.data[collection] {
		if !matchesFilter(rec, filter) {
			continue
		}
		hits = append(hits, Hit{Record: rec, Score: cosineSimilarity(embedding, rec.Embedding)})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *memoryBackend) Close() error { return nil }

func matchesFilter(rec Record, filter map[string]string) bool {
	for key, want := range filter {
		got, _ := rec.Metadata[key].(string)
		if got != want {
			return false
		}
	}
	return true
}

func (m *memoryBackend) save() error {
	if m.path == "" {
		return nil
	}

	m.mu.RLock()
	data, err := json.MarshalIndent(m.data, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(m.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(m.path, data, 0o644)
}

func (m *memoryBackend) load() {
	if m.path == "" {
		return
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		return
	}

	var loaded map[Collection]map[string]Record
	if err := json.Unmarshal(data, &loaded); err != nil {
		return
	}

	m.mu.Lock()
	m.data = loaded
	m.mu.Unlock()
}
