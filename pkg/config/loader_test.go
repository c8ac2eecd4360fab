package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeWithNoConfigFileUsesDefaults(t *testing.T) {
	configDir := t.TempDir()

	ctx := context.Background()
	cfg, err := Initialize(ctx, configDir)
	require.NoError(t, err)

	assert.Equal(t, configDir, cfg.ConfigDir())
	assert.Equal(t, 60, cfg.TriggerIntervalSeconds)
	assert.Equal(t, AutonomySuggest, cfg.Executor.AutonomyLevel)
}

func TestInitializeMergesUserConfigJSON(t *testing.T) {
	configDir := t.TempDir()
	writeConfigJSON(t, configDir, `{
		"trigger_interval_seconds": 30,
		"executor": {"autonomy_level": "auto-safe"},
		"inference": {"backend_url": "http://localhost:11434/v1", "model": "qwen3:8b"}
	}`)

	cfg, err := Initialize(context.Background(), configDir)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.TriggerIntervalSeconds)
	assert.Equal(t, AutonomyAutoSafe, cfg.Executor.AutonomyLevel)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Inference.BackendURL)
	// Defaults not mentioned in the override are preserved.
	assert.Equal(t, 300, cfg.ReviewIntervalSeconds)
}

func TestInitializeExpandsEnvVars(t *testing.T) {
	t.Setenv("AI_SYSADMIN_BACKEND_URL", "http://10.0.0.5:40080/v1")
	configDir := t.TempDir()
	writeConfigJSON(t, configDir, `{"inference": {"backend_url": "${AI_SYSADMIN_BACKEND_URL}", "model": "qwen3:8b"}}`)

	cfg, err := Initialize(context.Background(), configDir)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:40080/v1", cfg.Inference.BackendURL)
}

func TestInitializeRejectsInvalidJSON(t *testing.T) {
	configDir := t.TempDir()
	writeConfigJSON(t, configDir, `{not valid json`)

	_, err := Initialize(context.Background(), configDir)
	require.Error(t, err)
}

func TestInitializeRejectsInvalidAutonomyLevel(t *testing.T) {
	configDir := t.TempDir()
	writeConfigJSON(t, configDir, `{"executor": {"autonomy_level": "godmode"}}`)

	_, err := Initialize(context.Background(), configDir)
	require.Error(t, err)
}

func writeConfigJSON(t *testing.T, dir, contents string) {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}
