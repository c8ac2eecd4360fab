package contextwindow

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/events"
)

// checkpoint is the on-disk shape of a saved Window.
type checkpoint struct {
	Entries    []events.Event   `json:"entries"`
	TokenCount int              `json:"token_count"`
	Stats      CompressionStats `json:"stats"`
	SavedAt    time.Time        `json:"saved_at"`
}

// Save checkpoints the buffer to disk, matching the original's
// context_buffer.json shape. Safe to call at any time, typically on
// clean shutdown.
func (w *Window) Save() error {
	w.mu.RLock()
	cp := checkpoint{
		Entries:    w.entries,
		TokenCount: w.tokenCount,
		Stats:      w.stats,
		SavedAt:    time.Now().UTC(),
	}
	w.mu.RUnlock()

	if dir := filepath.Dir(w.statePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(w.statePath, data, 0o644)
}

// load restores a prior checkpoint. A missing file is normal (first
// run); a corrupt file is logged and the buffer starts empty, per §4.2
// ("Corrupt state on load is logged and replaced with an empty buffer").
func (w *Window) load() {
	data, err := os.ReadFile(w.statePath)
	if err != nil {
		return
	}

	var cp checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		slog.Warn("context: checkpoint is corrupt, starting with an empty buffer", "path", w.statePath, "error", err)
		return
	}

	w.mu.Lock()
	w.entries = cp.Entries
	w.tokenCount = cp.TokenCount
	w.stats = cp.Stats
	w.mu.Unlock()
}
