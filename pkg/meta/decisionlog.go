package meta

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const decisionLogName = "decisions.jsonl"

type decisionLogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Analysis  AnalysisResult `json:"analysis"`
}

func (m *Model) decisionLogPath() string {
	if m.stateDir == "" {
		return decisionLogName
	}
	return filepath.Join(m.stateDir, decisionLogName)
}

// logDecision appends one analysis to the append-only decision log,
// matching the original's decisions.jsonl auditing trail. Failures are
// logged and otherwise ignored: auditing must never block an analysis
// pass from returning its result.
func (m *Model) logDecision(result AnalysisResult) {
	path := m.decisionLogPath()
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Warn("meta: failed to create decision log directory", "error", err)
			return
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Warn("meta: failed to open decision log", "error", err)
		return
	}
	defer f.Close()

	entry := decisionLogEntry{Timestamp: result.Timestamp, Analysis: result}
	data, err := json.Marshal(entry)
	if err != nil {
		slog.Warn("meta: failed to marshal decision log entry", "error", err)
		return
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		slog.Warn("meta: failed to write decision log entry", "error", err)
	}
}

// RecentDecisions returns the last count entries from the decision log,
// oldest first. A missing log or unreadable lines are tolerated: the
// call returns whatever could be parsed.
func (m *Model) RecentDecisions(count int) []AnalysisResult {
	path := m.decisionLogPath()
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var all []AnalysisResult
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry decisionLogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		all = append(all, entry.Analysis)
	}

	if count <= 0 || count >= len(all) {
		return all
	}
	return all[len(all)-count:]
}
