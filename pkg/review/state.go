package review

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type stateFile struct {
	Stats   Stats     `json:"stats"`
	SavedAt time.Time `json:"last_save"`
}

func statePath(stateDir string) string {
	if stateDir == "" {
		return "review_model_state.json"
	}
	return filepath.Join(stateDir, "review_model_state.json")
}

// saveState persists the running counters, matching the original's
// review_model_state.json shape. Failures are logged and otherwise
// ignored: persistence is best-effort (§4.3 "State... persisted across
// restarts", not "must persist").
func (m *Model) saveState() {
	m.mu.Lock()
	sf := stateFile{Stats: m.stats, SavedAt: time.Now().UTC()}
	m.mu.Unlock()

	if dir := filepath.Dir(m.statePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Warn("review: failed to create state directory", "error", err)
			return
		}
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		slog.Warn("review: failed to marshal state", "error", err)
		return
	}
	if err := os.WriteFile(m.statePath, data, 0o644); err != nil {
		slog.Warn("review: failed to save state", "error", err)
	}
}

// loadState restores prior counters. A missing or corrupt file leaves
// stats at zero, matching the teacher's contextwindow checkpoint policy
// of degrading to empty state rather than failing startup.
func (m *Model) loadState() {
	data, err := os.ReadFile(m.statePath)
	if err != nil {
		return
	}

	var sf stateFile
	if err := json.Unmarshal(data, &sf); err != nil {
		slog.Warn("review: state file is corrupt, starting from zero", "path", m.statePath, "error", err)
		return
	}

	m.mu.Lock()
	m.stats = sf.Stats
	m.mu.Unlock()
}
