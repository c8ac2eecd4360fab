package llmqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/metrics"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

// defaultTemperature is used when a payload omits one.
const defaultTemperature = 0.3

// GeneratePayload is the §4.9 "generate" request kind's payload shape.
type GeneratePayload struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model"`
	System      string  `json:"system,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// ChatPayload is the §4.9 "chat"/"chat_with_tools" request kind's payload
// shape. Tools is empty for plain "chat".
type ChatPayload struct {
	Messages    []inference.Message `json:"messages"`
	Tools       []inference.Tool    `json:"tools,omitempty"`
	Model       string              `json:"model"`
	Temperature float64             `json:"temperature,omitempty"`
}

// GenerateResult wraps a completed "generate" request's text.
type GenerateResult struct {
	Text string `json:"text"`
}

// Worker is the §4.9 single-threaded queue worker: it claims the next
// pending request by priority, dispatches it to a Backend, and records
// the outcome. Grounded on original_source/ollama_queue.py's
// start_worker/_process_next_request, restructured with the teacher's
// pkg/queue/worker.go start/stop idiom.
type Worker struct {
	queue   *Queue
	backend inference.Backend

	pollInterval time.Duration
	retentionAge time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWorker builds a Worker draining queue against backend.
func NewWorker(queue *Queue, backend inference.Backend, cfg config.QueueConfig) *Worker {
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = 2 * time.Second
	}
	retention := cfg.RetentionAge
	if retention <= 0 {
		retention = time.Hour
	}
	return &Worker{
		queue:        queue,
		backend:      backend,
		pollInterval: poll,
		retentionAge: retention,
		stopCh:       make(chan struct{}),
	}
}

// Start evicts stale completed/failed requests, then begins the worker
// loop in a goroutine. Signal handling (SIGTERM/SIGINT) is the caller's
// responsibility: call Stop from the signal handler.
func (w *Worker) Start(ctx context.Context) {
	if removed, err := w.queue.CleanupOld(w.retentionAge); err != nil {
		slog.Warn("llmqueue: startup retention cleanup failed", "error", err)
	} else if removed > 0 {
		slog.Info("llmqueue: evicted stale requests on startup", "count", removed)
	}

	w.wg.Add(1)
	go w.run(ctx)
}

// Stop signals the worker to finish its current request and stop. Safe
// to call multiple times; blocks until the worker has exited.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	slog.Info("llmqueue: worker started")

	for {
		select {
		case <-w.stopCh:
			slog.Info("llmqueue: worker stopped")
			return
		case <-ctx.Done():
			slog.Info("llmqueue: worker stopped (context cancelled)")
			return
		default:
			processed, err := w.processNext(ctx)
			if err != nil {
				slog.Error("llmqueue: error processing request", "error", err)
			}
			w.publishQueueDepth()
			if !processed {
				w.sleep(w.pollInterval)
			}
		}
	}
}

// publishQueueDepth reports the current per-directory depth to pkg/metrics.
// Failures are logged and otherwise ignored — metrics are observational,
// never load-bearing for queue correctness.
func (w *Worker) publishQueueDepth() {
	stats, err := w.queue.QueueStats()
	if err != nil {
		slog.Warn("llmqueue: queue stats unavailable for metrics", "error", err)
		return
	}
	metrics.SetQueueDepth(metrics.QueueDepths{
		Pending:    stats.Pending,
		Processing: stats.Processing,
		Completed:  stats.Completed,
		Failed:     stats.Failed,
	})
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.stopCh:
	case <-time.After(d):
	}
}

// processNext claims the highest-priority pending request, if any, and
// dispatches it. Returns processed=false when the queue was empty.
func (w *Worker) processNext(ctx context.Context) (processed bool, err error) {
	ids, err := w.queue.listSortedPending()
	if err != nil {
		return false, fmt.Errorf("llmqueue: list pending: %w", err)
	}
	if len(ids) == 0 {
		return false, nil
	}
	id := ids[0]

	pendingPath := w.queue.recordPath(pendingDir, id)
	req, err := readRequest(pendingPath)
	if err != nil {
		return false, fmt.Errorf("llmqueue: read pending request %s: %w", id, err)
	}

	req.Status = models.RequestProcessing
	processingPath := w.queue.recordPath(processingDir, id)
	if err := moveRequest(pendingPath, processingPath, req); err != nil {
		return false, fmt.Errorf("llmqueue: claim request %s: %w", id, err)
	}

	result, dispatchErr := w.dispatch(ctx, req)

	if dispatchErr != nil {
		req.Status = models.RequestFailed
		req.Error = dispatchErr.Error()
		if err := moveRequest(processingPath, w.queue.recordPath(failedDir, id), req); err != nil {
			return true, fmt.Errorf("llmqueue: record failure for %s: %w", id, err)
		}
		metrics.RecordQueueOutcome("failed")
		return true, nil
	}

	req.Status = models.RequestCompleted
	req.Result = result
	if err := moveRequest(processingPath, w.queue.recordPath(completedDir, id), req); err != nil {
		return true, fmt.Errorf("llmqueue: record completion for %s: %w", id, err)
	}
	metrics.RecordQueueOutcome("completed")
	return true, nil
}

func (w *Worker) dispatch(ctx context.Context, req models.LLMRequest) (json.RawMessage, error) {
	switch req.Kind {
	case config.RequestGenerate:
		var payload GeneratePayload
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal generate payload: %w", err)
		}
		temp := payload.Temperature
		if temp == 0 {
			temp = defaultTemperature
		}
		text, err := w.backend.Generate(ctx, payload.Prompt, payload.Model, payload.System, temp, payload.MaxTokens)
		if err != nil {
			return nil, err
		}
		return json.Marshal(GenerateResult{Text: text})

	case config.RequestChat, config.RequestChatWithTools:
		var payload ChatPayload
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal chat payload: %w", err)
		}
		temp := payload.Temperature
		if temp == 0 {
			temp = defaultTemperature
		}
		result, err := w.backend.ChatWithTools(ctx, payload.Messages, payload.Tools, payload.Model, temp)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)

	default:
		return nil, fmt.Errorf("unknown request kind: %s", req.Kind)
	}
}
