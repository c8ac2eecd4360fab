package orchestrator

import (
	"sync"
	"time"
)

// debouncer tracks the last time each key fired, mirroring
// pkg/trigger's debounce idiom (§8 invariant 3) but scoped here to
// per-escalation-reason gating (§9 "escalation debounce" open
// question) rather than trigger keys.
type debouncer struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func newDebouncer() *debouncer {
	return &debouncer{last: make(map[string]time.Time)}
}

// allow reports whether key may fire now given window, and if so records
// the firing. A zero window always allows.
func (d *debouncer) allow(key string, window time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if window > 0 {
		if prev, ok := d.last[key]; ok && now.Sub(prev) < window {
			return false
		}
	}
	d.last[key] = now
	return true
}
