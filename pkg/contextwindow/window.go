package contextwindow

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/events"
)

// compressionEligibilityAge is how long an entry must sit before it may
// be compressed, so the most recent context stays verbatim.
const compressionEligibilityAge = 10 * time.Minute

// CompressionStats mirrors the original monitor's compression counters.
type CompressionStats struct {
	TotalCompressions int
	TokensSaved       int
	EntriesCompressed int
}

// Window is a token-budgeted rolling buffer of events. Safe for
// concurrent use.
type Window struct {
	mu         sync.RWMutex
	budget     int
	entries    []events.Event
	tokenCount int
	stats      CompressionStats
	hostname   string
	statePath  string

	store   MetricsStore
	vectors VectorStore
	sar     SarProvider
}

// Option configures optional dependencies at construction time.
type Option func(*Window)

// WithMetricsStore wires the dual-store write-through and metrics-summary
// read-through target.
func WithMetricsStore(s MetricsStore) Option { return func(w *Window) { w.store = s } }

// WithVectorStore wires query_similar's delegate.
func WithVectorStore(s VectorStore) Option { return func(w *Window) { w.vectors = s } }

// WithSarProvider wires an optional SAR snapshot source.
func WithSarProvider(s SarProvider) Option { return func(w *Window) { w.sar = s } }

// WithStatePath overrides the checkpoint file location (default
// "<stateDir>/context_buffer.json").
func WithStatePath(path string) Option { return func(w *Window) { w.statePath = path } }

// New builds an empty Window with the given token budget and state
// directory, then attempts to restore a prior checkpoint from disk.
func New(budgetTokens int, stateDir string, opts ...Option) *Window {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}

	w := &Window{
		budget:    budgetTokens,
		hostname:  hostname,
		statePath: defaultStatePath(stateDir),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.load()
	return w
}

func defaultStatePath(stateDir string) string {
	if stateDir == "" {
		return "context_buffer.json"
	}
	return stateDir + "/context_buffer.json"
}

// ClampTokenBudget caps a configured token budget at 75% of the model's
// declared capacity (§4.2 "Context-size validation"). A zero capacity
// means the model's size is unknown and no clamp is applied.
func ClampTokenBudget(budgetTokens, modelCapacityTokens int) int {
	if modelCapacityTokens <= 0 {
		return budgetTokens
	}
	capped := modelCapacityTokens * 3 / 4
	if budgetTokens > capped {
		slog.Warn("context: configured budget exceeds 75% of model capacity, clamping",
			"configured", budgetTokens, "model_capacity", modelCapacityTokens, "clamped_to", capped)
		return capped
	}
	return budgetTokens
}

// Stats returns a snapshot of the running compression counters.
func (w *Window) Stats() CompressionStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// TokenCount returns the buffer's current total token usage.
func (w *Window) TokenCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tokenCount
}

// Len returns the number of entries currently held (compressed or not).
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entries)
}

// AddEvent admits evt into the buffer, applying §7's "context overflow"
// policy first if admission would overflow the budget: compress eligible
// older entries, then drop the oldest non-critical entries, until evt
// fits. A critical-severity evt is always admitted, even if the buffer
// is left over budget as a result — every other evt that still doesn't
// fit once there is nothing left to compress or drop is itself dropped
// rather than blown through the budget. Write-through to the time-series
// store runs regardless of admission: it is a durable audit trail, not
// subject to the in-memory buffer's budget, and a failure there is
// logged and never blocks it.
func (w *Window) AddEvent(ctx context.Context, evt events.Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	evt.TokenCount = measureTokens(evt)

	w.mu.Lock()
	w.admitLocked(evt)
	w.mu.Unlock()

	w.writeThrough(ctx, evt)
}

// admitLocked applies the compress/drop/admit sequence described on
// AddEvent. Caller must hold w.mu for writing.
func (w *Window) admitLocked(evt events.Event) {
	if w.tokenCount+evt.TokenCount > w.budget {
		w.compressLocked(w.budget / 2)
	}
	w.dropOldestNonCriticalLocked(evt.TokenCount)

	if evt.Severity != events.SeverityCritical && w.tokenCount+evt.TokenCount > w.budget {
		return
	}

	w.entries = append(w.entries, evt)
	w.tokenCount += evt.TokenCount
}

// dropOldestNonCriticalLocked removes the oldest non-critical entries,
// one at a time in buffer order, until incoming's admission fits the
// budget or no non-critical entry is left to drop. Caller must hold w.mu.
func (w *Window) dropOldestNonCriticalLocked(incoming int) {
	for w.tokenCount+incoming > w.budget {
		idx := -1
		for i := range w.entries {
			if w.entries[i].Severity != events.SeverityCritical {
				idx = i
				break
			}
		}
		if idx == -1 {
			return
		}
		w.tokenCount -= w.entries[idx].TokenCount
		w.entries = append(w.entries[:idx], w.entries[idx+1:]...)
	}
}

// measureTokens estimates an event's token cost the way the original
// does: serialize the entry sans its own token_count field, then measure.
func measureTokens(evt events.Event) int {
	measured := evt
	measured.TokenCount = 0
	b, err := json.Marshal(measured)
	if err != nil {
		return 0
	}
	return estimateTokens(string(b))
}

func (w *Window) writeThrough(ctx context.Context, evt events.Event) {
	if w.store == nil {
		return
	}

	if evt.Kind == events.KindMetricThreshold {
		name := evt.PayloadString("trigger_type")
		value := evt.PayloadFloat("value")
		if err := w.store.StoreMetric(ctx, w.hostname, name, value); err != nil {
			slog.Warn("context: failed to store metric", "error", err)
		}
	}
	if evt.Kind == events.KindLogPattern {
		if err := w.store.StoreLogEvent(ctx, w.hostname, string(evt.Severity), evt.PayloadString("message"), evt.PayloadString("unit")); err != nil {
			slog.Warn("context: failed to store log event", "error", err)
		}
	}

	meta := map[string]any{"source": string(evt.Source), "severity": string(evt.Severity)}
	if err := w.store.StoreTriggerEvent(ctx, w.hostname, string(evt.Kind), evt.PayloadString("message"), meta); err != nil {
		slog.Warn("context: failed to store trigger event", "error", err)
	}
}

// QuerySimilar delegates to the vector store. Returns an empty slice
// when no vector store is configured.
func (w *Window) QuerySimilar(ctx context.Context, description string, k int) ([]SimilarEvent, error) {
	if w.vectors == nil {
		return nil, nil
	}
	return w.vectors.QuerySimilar(ctx, description, k)
}

// MetricTrends delegates to the time-series store. Returns nil when no
// store is configured.
func (w *Window) MetricTrends(ctx context.Context, name string, hours int) (map[string]any, error) {
	if w.store == nil {
		return nil, nil
	}
	return w.store.MetricTrends(ctx, name, hours)
}

func (w *Window) hostLabel() string {
	return w.hostname
}
