package meta

import (
	"context"
	"strings"
	"testing"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeToolResult_PassthroughBelowLimit(t *testing.T) {
	backend := inference.NewFakeBackend()
	m := New(backend, "qwen3:14b", "", nil, nil, nil, t.TempDir())

	raw := "short output"
	got := m.summarizeToolResult(context.Background(), "check_service_status", raw)
	assert.Equal(t, raw, got)
}

func TestSummarizeToolResult_OneShotForMidSize(t *testing.T) {
	backend := inference.NewFakeBackend()
	var seenPrompt string
	backend.GenerateFn = func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
		seenPrompt = prompt
		return "summary of output", nil
	}
	m := New(backend, "qwen3:14b", "", nil, nil, nil, t.TempDir())

	raw := strings.Repeat("a", passthroughLimit+100)
	require.LessOrEqual(t, len(raw), mapReduceLimit)

	got := m.summarizeToolResult(context.Background(), "view_logs", raw)
	assert.Contains(t, got, "[Summary of view_logs]")
	assert.Contains(t, got, "summary of output")
	assert.Contains(t, seenPrompt, "view_logs")
}

func TestSummarizeToolResult_MapReduceForLargeOutput(t *testing.T) {
	backend := inference.NewFakeBackend()
	calls := 0
	backend.GenerateFn = func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
		calls++
		return "chunk summary", nil
	}
	m := New(backend, "qwen3:14b", "", nil, nil, nil, t.TempDir())

	raw := strings.Repeat("b", chunkSize*3)
	got := m.summarizeToolResult(context.Background(), "get_system_metrics", raw)
	assert.Contains(t, got, "[Chunked analysis of get_system_metrics]")
	assert.Contains(t, got, "Processed 3 chunks")
	assert.Equal(t, 3, calls)
}

func TestSummarizeToolResult_MapReduceTriggersReducePassOverFiveChunks(t *testing.T) {
	backend := inference.NewFakeBackend()
	calls := 0
	backend.GenerateFn = func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
		calls++
		if strings.Contains(prompt, "Synthesize") {
			return "unified summary", nil
		}
		return "chunk summary", nil
	}
	m := New(backend, "qwen3:14b", "", nil, nil, nil, t.TempDir())

	raw := strings.Repeat("c", chunkSize*6)
	got := m.summarizeToolResult(context.Background(), "read_file", raw)
	assert.Contains(t, got, "unified summary")
	assert.Contains(t, got, "Processed 6 chunks")
	assert.Equal(t, 7, calls)
}

func TestSummarizeToolResult_FallsBackToTruncateOnBackendError(t *testing.T) {
	backend := inference.NewFakeBackend()
	backend.GenerateFn = func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
		return "", assert.AnError
	}
	m := New(backend, "qwen3:14b", "", nil, nil, nil, t.TempDir())

	raw := strings.Repeat("d", passthroughLimit+100)
	got := m.summarizeToolResult(context.Background(), "view_logs", raw)
	assert.Contains(t, got, "TRUNCATED")
}

func TestSimpleTruncate(t *testing.T) {
	short := "hello"
	assert.Equal(t, short, simpleTruncate(short, 10))

	long := strings.Repeat("x", 100)
	out := simpleTruncate(long, 20)
	assert.Contains(t, out, "TRUNCATED")
	assert.Less(t, len(out), len(long))
}
