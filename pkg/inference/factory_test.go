package inference

import (
	"testing"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsHTTPBackendByDefault(t *testing.T) {
	backend, err := New(config.InferenceConfig{BackendURL: "http://127.0.0.1:40082/v1"})
	require.NoError(t, err)
	assert.IsType(t, &HTTPBackend{}, backend)
}

func TestNewSelectsOllamaBackendFromURL(t *testing.T) {
	backend, err := New(config.InferenceConfig{BackendURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.IsType(t, &OllamaBackend{}, backend)
}

func TestNewRequiresBackendURL(t *testing.T) {
	_, err := New(config.InferenceConfig{})
	assert.Error(t, err)
}
