package inference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogClassifierParsesStructuredResponse(t *testing.T) {
	backend := &FakeBackend{
		GenerateFn: func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
			assert.Equal(t, "trigger-small", model)
			assert.Equal(t, classificationMaxTokens, maxTokens)
			return `{"severity":"high","category":"disk","summary":"root partition full","recommended_action":"cleanup"}`, nil
		},
	}
	c := NewLogClassifier(backend, "trigger-small")

	out, err := c.ClassifyLog(context.Background(), "sshd.service", "No space left on device")
	require.NoError(t, err)
	assert.Equal(t, "high", out["severity"])
	assert.Equal(t, "disk", out["category"])
}

func TestLogClassifierWrapsNonJSONResponse(t *testing.T) {
	backend := &FakeBackend{
		GenerateFn: func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
			return "I cannot classify this", nil
		},
	}
	c := NewLogClassifier(backend, "trigger-small")

	out, err := c.ClassifyLog(context.Background(), "unit", "message")
	require.NoError(t, err)
	assert.Equal(t, "unknown", out["severity"])
	assert.Equal(t, "I cannot classify this", out["raw_response"])
}

func TestLogClassifierPropagatesBackendError(t *testing.T) {
	backend := &FakeBackend{
		GenerateFn: func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
			return "", ErrBackendUnavailable
		},
	}
	c := NewLogClassifier(backend, "trigger-small")

	_, err := c.ClassifyLog(context.Background(), "unit", "message")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}
