package meta

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLearnings_ParsesArray(t *testing.T) {
	text := `Here are the learnings:
[
  {"topic": "nginx oom", "knowledge": "raise memory limit in systemd unit", "category": "troubleshooting", "confidence": "high"}
]
Hope that helps.`

	learnings, err := extractLearnings(text)
	require.NoError(t, err)
	require.Len(t, learnings, 1)
	assert.Equal(t, "nginx oom", learnings[0].Topic)
	assert.Equal(t, "high", learnings[0].Confidence)
}

func TestExtractLearnings_NoArrayFound(t *testing.T) {
	_, err := extractLearnings("no json here")
	assert.Error(t, err)
}

func TestExtractLearnings_MalformedArray(t *testing.T) {
	_, err := extractLearnings("[{not valid json]")
	assert.Error(t, err)
}

func TestReflectAndLearn_StoresLearningsOnSuccess(t *testing.T) {
	backend := fakeBackendWithGenerate(t, `[{"topic": "disk cleanup", "knowledge": "vacuum journald logs first", "category": "pattern", "confidence": "medium"}]`)
	knowledge := &fakeKnowledgeStore{}
	m := New(backend, "qwen3:14b", "", nil, nil, knowledge, t.TempDir())

	m.ReflectAndLearn(context.Background(), "disk was full", "ran journalctl --vacuum-size=200M", "disk usage dropped", true)

	require.Len(t, knowledge.upserts, 1)
	assert.Equal(t, "vacuum journald logs first", knowledge.upserts[0].Document)
	assert.NotEmpty(t, knowledge.upserts[0].ID)
	assert.Equal(t, "disk cleanup", knowledge.upserts[0].Metadata["topic"])
	assert.Equal(t, 1, m.Stats().Reflections)
}

func TestReflectAndLearn_NoopOnFailure(t *testing.T) {
	backend := fakeBackendWithGenerate(t, "should not be called")
	knowledge := &fakeKnowledgeStore{}
	m := New(backend, "qwen3:14b", "", nil, nil, knowledge, t.TempDir())

	m.ReflectAndLearn(context.Background(), "situation", "action", "outcome", false)

	assert.Empty(t, knowledge.upserts)
	assert.Equal(t, 0, m.Stats().Reflections)
}

func TestReflectAndLearn_NoopWithoutKnowledgeStore(t *testing.T) {
	backend := fakeBackendWithGenerate(t, `[{"topic": "x", "knowledge": "y", "category": "pattern", "confidence": "low"}]`)
	m := New(backend, "qwen3:14b", "", nil, nil, nil, t.TempDir())

	m.ReflectAndLearn(context.Background(), "situation", "action", "outcome", true)
	assert.Equal(t, 0, m.Stats().Reflections)
}

func TestReflectAndLearn_SkipsIncompleteEntries(t *testing.T) {
	backend := fakeBackendWithGenerate(t, `[{"topic": "", "knowledge": "something", "category": "pattern"}]`)
	knowledge := &fakeKnowledgeStore{}
	m := New(backend, "qwen3:14b", "", nil, nil, knowledge, t.TempDir())

	m.ReflectAndLearn(context.Background(), "s", "a", "o", true)
	assert.Empty(t, knowledge.upserts)
}

func TestQueryRelevantKnowledge_NoStoreReturnsEmpty(t *testing.T) {
	backend := fakeBackendWithGenerate(t, "")
	m := New(backend, "qwen3:14b", "", nil, nil, nil, t.TempDir())
	assert.Empty(t, m.queryRelevantKnowledge(context.Background(), "query", 3))
}
