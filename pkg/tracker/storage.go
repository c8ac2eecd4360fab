package tracker

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

const (
	issuesFileName  = "issues.json"
	archiveFileName = "closed_issues.jsonl"
)

func (t *Tracker) issuesPath() string {
	return filepath.Join(t.stateDir, issuesFileName)
}

func (t *Tracker) archivePath() string {
	return filepath.Join(t.stateDir, archiveFileName)
}

// persist writes the full live issue set to disk. Called under t.mu.
func (t *Tracker) persist() error {
	out := make([]models.Issue, 0, len(t.issues))
	for _, issue := range t.issues {
		out = append(out, *issue)
	}
	return writeJSONFile(t.issuesPath(), out)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func readJSONFile(path string, v any) error {
	if !fileExists(path) {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func appendJSONLine(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = f.Write(append(line, '\n'))
	return err
}
