package meta

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const cacheSubdir = "tool_cache"

// resolveCacheDir mirrors the original's cache_dir fallback: prefer a
// subdirectory under the state directory, but if that isn't writable
// (e.g. running as an unprivileged operator-chat user) fall back to the
// process-temporary directory.
func resolveCacheDir(stateDir string) string {
	if stateDir == "" {
		return filepath.Join(os.TempDir(), "ai-sysadmin-cache")
	}

	dir := filepath.Join(stateDir, cacheSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return filepath.Join(os.TempDir(), "ai-sysadmin-cache")
	}
	return dir
}

// writeCache persists raw tool output under a deterministic id so the
// model can reference it later (§4.4.2). Returns the cache id.
func (m *Model) writeCache(toolName, raw string) (string, error) {
	id := fmt.Sprintf("%s_%s", toolName, time.Now().UTC().Format("20060102_150405"))

	if err := os.MkdirAll(m.cacheDir, 0o755); err != nil {
		return id, err
	}

	path := filepath.Join(m.cacheDir, id+".txt")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		return id, err
	}
	return id, nil
}
