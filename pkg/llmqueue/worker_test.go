package llmqueue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

func TestProcessNext_DispatchesGenerateAndCompletes(t *testing.T) {
	q := newTestQueue(t)
	backend := inference.NewFakeBackend()
	backend.GenerateFn = func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
		return "generated: " + prompt, nil
	}

	id, err := q.Submit(config.RequestGenerate, GeneratePayload{Prompt: "check disk"}, config.PriorityInteractive)
	require.NoError(t, err)

	w := NewWorker(q, backend, config.QueueConfig{})
	processed, err := w.processNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	status, err := q.GetStatus(id)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, status.Request.Status)

	var result GenerateResult
	require.NoError(t, json.Unmarshal(status.Request.Result, &result))
	assert.Equal(t, "generated: check disk", result.Text)
}

func TestProcessNext_RecordsBackendFailure(t *testing.T) {
	q := newTestQueue(t)
	backend := inference.NewFakeBackend()
	backend.GenerateFn = func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
		return "", assertError("backend down")
	}

	id, err := q.Submit(config.RequestGenerate, GeneratePayload{}, config.PriorityInteractive)
	require.NoError(t, err)

	w := NewWorker(q, backend, config.QueueConfig{})
	processed, err := w.processNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	status, err := q.GetStatus(id)
	require.NoError(t, err)
	assert.Equal(t, models.RequestFailed, status.Request.Status)
	assert.Contains(t, status.Request.Error, "backend down")
}

func TestProcessNext_DispatchesChatWithTools(t *testing.T) {
	q := newTestQueue(t)
	backend := inference.NewFakeBackend()
	backend.ChatFn = func(ctx context.Context, messages []inference.Message, tools []inference.Tool, model string, temperature float64) (inference.ChatResult, error) {
		return inference.ChatResult{Content: "ack"}, nil
	}

	id, err := q.Submit(config.RequestChatWithTools, ChatPayload{
		Messages: []inference.Message{{Role: inference.RoleUser, Content: "hi"}},
	}, config.PriorityAutonomous)
	require.NoError(t, err)

	w := NewWorker(q, backend, config.QueueConfig{})
	processed, err := w.processNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	status, err := q.GetStatus(id)
	require.NoError(t, err)
	var result inference.ChatResult
	require.NoError(t, json.Unmarshal(status.Request.Result, &result))
	assert.Equal(t, "ack", result.Content)
}

func TestProcessNext_ReturnsFalseWhenQueueEmpty(t *testing.T) {
	q := newTestQueue(t)
	w := NewWorker(q, inference.NewFakeBackend(), config.QueueConfig{})

	processed, err := w.processNext(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestWorker_StartProcessesQueuedRequestThenStop(t *testing.T) {
	q := newTestQueue(t)
	backend := inference.NewFakeBackend()
	backend.GenerateFn = func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
		return "done", nil
	}

	id, err := q.Submit(config.RequestGenerate, GeneratePayload{}, config.PriorityInteractive)
	require.NoError(t, err)

	w := NewWorker(q, backend, config.QueueConfig{PollInterval: 5 * time.Millisecond})
	w.Start(context.Background())
	defer w.Stop()

	require.Eventually(t, func() bool {
		status, err := q.GetStatus(id)
		return err == nil && status.Request.Status == models.RequestCompleted
	}, time.Second, 5*time.Millisecond)
}

func TestWorker_CleansUpStaleRequestsOnStart(t *testing.T) {
	q := newTestQueue(t)
	staleID := "100_0"
	require.NoError(t, writeRequest(q.recordPath(completedDir, staleID), models.LLMRequest{ID: staleID, Status: models.RequestCompleted}))

	w := NewWorker(q, inference.NewFakeBackend(), config.QueueConfig{RetentionAge: time.Minute, PollInterval: 5 * time.Millisecond})
	w.Start(context.Background())
	w.Stop()

	assert.False(t, fileExists(q.recordPath(completedDir, staleID)))
}

type assertError string

func (e assertError) Error() string { return string(e) }
