// Package llmqueue implements §4.9: a file-based queue that serialises
// inference calls across every core component, ordered by priority then
// submission time, with dedup for autonomous requests and a single
// worker loop. Grounded on original_source/ollama_queue.py.
package llmqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

// Queue is the four-directory on-disk request queue. Safe for concurrent
// use by multiple submitting goroutines; a single Worker drains it.
type Queue struct {
	mu  sync.Mutex
	dir string
}

// New roots a Queue at dir, creating its four subdirectories if absent.
func New(dir string) (*Queue, error) {
	if err := ensureQueueDirs(dir); err != nil {
		return nil, err
	}
	return &Queue{dir: dir}, nil
}

// submitSeq guarantees strictly increasing submission timestamps even
// when Submit is called faster than the clock's microsecond resolution.
var submitSeq struct {
	mu   sync.Mutex
	last int64
}

func nextSubmitMicros() int64 {
	submitSeq.mu.Lock()
	defer submitSeq.mu.Unlock()

	now := time.Now().UnixMicro()
	if now <= submitSeq.last {
		now = submitSeq.last + 1
	}
	submitSeq.last = now
	return now
}

// Submit writes payload to pending/ and returns the new request's id.
// For an AUTONOMOUS-priority request, Submit first scans pending/ and
// processing/ for any existing request of the same priority; if one is
// found, it returns ErrAlreadyInProgress and writes nothing (§4.9
// "Dedup" — prevents autonomous review pileups).
func (q *Queue) Submit(kind config.RequestKind, payload any, priority config.Priority) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if priority == config.PriorityAutonomous {
		dup, err := q.hasPendingWithPriority(priority)
		if err != nil {
			return "", fmt.Errorf("llmqueue: dedup scan: %w", err)
		}
		if dup {
			return "", ErrAlreadyInProgress
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("llmqueue: marshal payload: %w", err)
	}

	id := fmt.Sprintf("%d_%s", nextSubmitMicros(), priority.String())
	req := models.LLMRequest{
		ID:          id,
		Kind:        kind,
		Payload:     raw,
		Priority:    priority,
		SubmittedAt: time.Now().UTC(),
		Status:      models.RequestPending,
	}

	if err := writeRequest(q.recordPath(pendingDir, id), req); err != nil {
		return "", fmt.Errorf("llmqueue: write pending request: %w", err)
	}
	return id, nil
}

func (q *Queue) hasPendingWithPriority(priority config.Priority) (bool, error) {
	for _, sub := range []string{pendingDir, processingDir} {
		ids, err := q.listDirIDs(sub)
		if err != nil {
			return false, err
		}
		for _, id := range ids {
			req, err := readRequest(q.recordPath(sub, id))
			if err != nil {
				continue
			}
			if req.Priority == priority {
				return true, nil
			}
		}
	}
	return false, nil
}

// Status is the outcome of GetStatus: a snapshot of a request plus its
// queue position (only meaningful while Pending).
type Status struct {
	Request  models.LLMRequest
	Position int // 1-indexed position within pending/; 0 if not pending
	Found    bool
}

// GetStatus reports where a request currently sits.
func (q *Queue) GetStatus(id string) (Status, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.getStatusLocked(id)
}

func (q *Queue) getStatusLocked(id string) (Status, error) {
	if fileExists(q.recordPath(pendingDir, id)) {
		req, err := readRequest(q.recordPath(pendingDir, id))
		if err != nil {
			return Status{}, err
		}
		pos, err := q.queuePosition(id)
		if err != nil {
			return Status{}, err
		}
		return Status{Request: req, Position: pos, Found: true}, nil
	}
	for _, sub := range []string{processingDir, completedDir, failedDir} {
		path := q.recordPath(sub, id)
		if !fileExists(path) {
			continue
		}
		req, err := readRequest(path)
		if err != nil {
			return Status{}, err
		}
		return Status{Request: req, Found: true}, nil
	}
	return Status{}, nil
}

func (q *Queue) queuePosition(id string) (int, error) {
	ids, err := q.listSortedPending()
	if err != nil {
		return 0, err
	}
	for i, pendingID := range ids {
		if pendingID == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

// ProgressFunc receives a human-readable status line whenever
// WaitForResult observes a status change.
type ProgressFunc func(status string)

// WaitForResult polls GetStatus at pollInterval until the request reaches
// a terminal status or timeout elapses, returning the completed request's
// Result, or ErrNotFound/ErrTimeout, or the request's own recorded Error
// wrapped in an error.
func (q *Queue) WaitForResult(ctx context.Context, id string, timeout, pollInterval time.Duration, progress ProgressFunc) (json.RawMessage, error) {
	deadline := time.Now().Add(timeout)
	var lastStatus models.RequestStatus

	for {
		status, err := q.GetStatus(id)
		if err != nil {
			return nil, err
		}
		if !status.Found {
			return nil, ErrNotFound
		}

		if progress != nil && status.Request.Status != lastStatus {
			switch status.Request.Status {
			case models.RequestPending:
				progress(fmt.Sprintf("queued (position %d)", status.Position))
			case models.RequestProcessing:
				progress("processing...")
			}
		}
		lastStatus = status.Request.Status

		switch status.Request.Status {
		case models.RequestCompleted:
			return status.Request.Result, nil
		case models.RequestFailed:
			return nil, fmt.Errorf("llmqueue: request %s failed: %s", id, status.Request.Error)
		}

		if time.Now().After(deadline) {
			return nil, ErrTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Stats summarises the queue's current depth across all four directories.
type Stats struct {
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// QueueStats returns the current per-directory request counts.
func (q *Queue) QueueStats() (Stats, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var stats Stats
	for sub, dst := range map[string]*int{
		pendingDir:    &stats.Pending,
		processingDir: &stats.Processing,
		completedDir:  &stats.Completed,
		failedDir:     &stats.Failed,
	} {
		ids, err := q.listDirIDs(sub)
		if err != nil {
			return Stats{}, err
		}
		*dst = len(ids)
	}
	return stats, nil
}

// CleanupOld removes completed/failed requests older than maxAge, keyed
// off each id's embedded submission timestamp (§4.9 "Retention").
func (q *Queue) CleanupOld(maxAge time.Duration) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, sub := range []string{completedDir, failedDir} {
		ids, err := q.listDirIDs(sub)
		if err != nil {
			return removed, err
		}
		for _, id := range ids {
			micros, _, ok := idParts(id)
			if !ok {
				continue
			}
			submittedAt := time.UnixMicro(micros)
			if submittedAt.Before(cutoff) {
				if err := os.Remove(q.recordPath(sub, id)); err != nil {
					return removed, err
				}
				removed++
			}
		}
	}
	return removed, nil
}
