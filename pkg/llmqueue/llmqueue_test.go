package llmqueue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := New(t.TempDir())
	require.NoError(t, err)
	return q
}

func TestSubmit_WritesPendingFileAndReturnsID(t *testing.T) {
	q := newTestQueue(t)

	id, err := q.Submit(config.RequestGenerate, GeneratePayload{Prompt: "hi", Model: "m"}, config.PriorityInteractive)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	status, err := q.GetStatus(id)
	require.NoError(t, err)
	assert.True(t, status.Found)
	assert.Equal(t, models.RequestPending, status.Request.Status)
	assert.Equal(t, 1, status.Position)
}

func TestSubmit_IDFormatEncodesPriority(t *testing.T) {
	q := newTestQueue(t)
	id, err := q.Submit(config.RequestGenerate, GeneratePayload{}, config.PriorityBatch)
	require.NoError(t, err)

	_, priority, ok := idParts(id)
	require.True(t, ok)
	assert.Equal(t, 2, priority)
}

func TestListSortedPending_OrdersByPriorityThenTime(t *testing.T) {
	q := newTestQueue(t)

	batchID, err := q.Submit(config.RequestGenerate, GeneratePayload{}, config.PriorityBatch)
	require.NoError(t, err)
	interactiveID, err := q.Submit(config.RequestGenerate, GeneratePayload{}, config.PriorityInteractive)
	require.NoError(t, err)

	ids, err := q.listSortedPending()
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, interactiveID, ids[0])
	assert.Equal(t, batchID, ids[1])
}

func TestSubmit_DedupsAutonomousRequests(t *testing.T) {
	q := newTestQueue(t)

	_, err := q.Submit(config.RequestGenerate, GeneratePayload{Prompt: "first"}, config.PriorityAutonomous)
	require.NoError(t, err)

	_, err = q.Submit(config.RequestGenerate, GeneratePayload{Prompt: "second"}, config.PriorityAutonomous)
	assert.ErrorIs(t, err, ErrAlreadyInProgress)

	ids, err := q.listDirIDs(pendingDir)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestSubmit_DoesNotDedupInteractiveRequests(t *testing.T) {
	q := newTestQueue(t)

	_, err := q.Submit(config.RequestGenerate, GeneratePayload{}, config.PriorityInteractive)
	require.NoError(t, err)
	_, err = q.Submit(config.RequestGenerate, GeneratePayload{}, config.PriorityInteractive)
	require.NoError(t, err)

	ids, err := q.listDirIDs(pendingDir)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestGetStatus_NotFound(t *testing.T) {
	q := newTestQueue(t)
	status, err := q.GetStatus("no-such-id")
	require.NoError(t, err)
	assert.False(t, status.Found)
}

func TestWaitForResult_ReturnsNotFound(t *testing.T) {
	q := newTestQueue(t)
	_, err := q.WaitForResult(context.Background(), "missing", time.Second, 10*time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWaitForResult_TimesOutWhileStillPending(t *testing.T) {
	q := newTestQueue(t)
	id, err := q.Submit(config.RequestGenerate, GeneratePayload{}, config.PriorityInteractive)
	require.NoError(t, err)

	_, err = q.WaitForResult(context.Background(), id, 20*time.Millisecond, 5*time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWaitForResult_ReturnsResultOnceCompleted(t *testing.T) {
	q := newTestQueue(t)
	id, err := q.Submit(config.RequestGenerate, GeneratePayload{}, config.PriorityInteractive)
	require.NoError(t, err)

	req, err := readRequest(q.recordPath(pendingDir, id))
	require.NoError(t, err)
	req.Status = models.RequestCompleted
	req.Result = json.RawMessage(`{"text":"done"}`)
	require.NoError(t, moveRequest(q.recordPath(pendingDir, id), q.recordPath(completedDir, id), req))

	raw, err := q.WaitForResult(context.Background(), id, time.Second, 5*time.Millisecond, nil)
	require.NoError(t, err)

	var result GenerateResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, "done", result.Text)
}

func TestWaitForResult_SurfacesFailureError(t *testing.T) {
	q := newTestQueue(t)
	id, err := q.Submit(config.RequestGenerate, GeneratePayload{}, config.PriorityInteractive)
	require.NoError(t, err)

	req, err := readRequest(q.recordPath(pendingDir, id))
	require.NoError(t, err)
	req.Status = models.RequestFailed
	req.Error = "backend unreachable"
	require.NoError(t, moveRequest(q.recordPath(pendingDir, id), q.recordPath(failedDir, id), req))

	_, err = q.WaitForResult(context.Background(), id, time.Second, 5*time.Millisecond, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unreachable")
}

func TestCleanupOld_RemovesStaleCompletedAndFailed(t *testing.T) {
	q := newTestQueue(t)

	staleID := "100_0"
	req := models.LLMRequest{ID: staleID, Status: models.RequestCompleted}
	require.NoError(t, writeRequest(q.recordPath(completedDir, staleID), req))

	freshID, err := q.Submit(config.RequestGenerate, GeneratePayload{}, config.PriorityInteractive)
	require.NoError(t, err)
	freshReq, err := readRequest(q.recordPath(pendingDir, freshID))
	require.NoError(t, err)
	freshReq.Status = models.RequestCompleted
	require.NoError(t, moveRequest(q.recordPath(pendingDir, freshID), q.recordPath(completedDir, freshID), freshReq))

	removed, err := q.CleanupOld(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.False(t, fileExists(q.recordPath(completedDir, staleID)))
	assert.True(t, fileExists(q.recordPath(completedDir, freshID)))
}

func TestQueueStats_CountsEachDirectory(t *testing.T) {
	q := newTestQueue(t)
	_, err := q.Submit(config.RequestGenerate, GeneratePayload{}, config.PriorityInteractive)
	require.NoError(t, err)

	stats, err := q.QueueStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 0, stats.Processing)
}
