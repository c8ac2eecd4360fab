package llmqueue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

const (
	pendingDir    = "pending"
	processingDir = "processing"
	completedDir  = "completed"
	failedDir     = "failed"
)

func (q *Queue) dirPath(sub string) string {
	return filepath.Join(q.dir, sub)
}

func (q *Queue) recordPath(sub, id string) string {
	return filepath.Join(q.dirPath(sub), id+".json")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func readRequest(path string) (models.LLMRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.LLMRequest{}, err
	}
	var req models.LLMRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return models.LLMRequest{}, err
	}
	return req, nil
}

// writeRequest writes req to path via a temp file in the same directory
// followed by an atomic rename, so a reader never observes a half-written
// file.
func writeRequest(path string, req models.LLMRequest) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// moveRequest writes req to its new location then removes the old file,
// mirroring the §4.9 worker loop's pending -> processing -> completed/failed
// transitions.
func moveRequest(oldPath, newPath string, req models.LLMRequest) error {
	if err := writeRequest(newPath, req); err != nil {
		return err
	}
	return os.Remove(oldPath)
}

// idParts splits a request id back into its submission timestamp (micros)
// and priority rank, the inverse of the §4.9 id format.
func idParts(id string) (micros int64, priority int, ok bool) {
	parts := strings.SplitN(id, "_", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	priority, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return micros, priority, true
}

// listSortedPending returns the ids of every request under pending/,
// ordered by priority then submission time (§4.9 id format comment).
func (q *Queue) listSortedPending() ([]string, error) {
	entries, err := os.ReadDir(q.dirPath(pendingDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type idOrder struct {
		id       string
		micros   int64
		priority int
	}
	var ids []idOrder
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		micros, priority, ok := idParts(id)
		if !ok {
			continue
		}
		ids = append(ids, idOrder{id: id, micros: micros, priority: priority})
	}

	for i := 1; i < len(ids); i++ {
		for j := i; j > 0; j-- {
			if less(ids[j], ids[j-1]) {
				ids[j], ids[j-1] = ids[j-1], ids[j]
			} else {
				break
			}
		}
	}

	out := make([]string, len(ids))
	for i, e := range ids {
		out[i] = e.id
	}
	return out, nil
}

func less(a, b struct {
	id       string
	micros   int64
	priority int
}) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.micros < b.micros
}

// listDirIDs lists the request ids present in a directory (pending or
// processing), unordered, for Queue.hasPendingWithPriority and retention.
func (q *Queue) listDirIDs(sub string) ([]string, error) {
	entries, err := os.ReadDir(q.dirPath(sub))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}

func ensureQueueDirs(root string) error {
	for _, sub := range []string{pendingDir, processingDir, completedDir, failedDir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return fmt.Errorf("llmqueue: create %s dir: %w", sub, err)
		}
	}
	return nil
}
