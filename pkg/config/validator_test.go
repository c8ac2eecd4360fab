package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return Defaults()
}

func TestValidateAllAcceptsDefaults(t *testing.T) {
	err := NewValidator(validConfig()).ValidateAll()
	require.NoError(t, err)
}

func TestValidateIntervals(t *testing.T) {
	cfg := validConfig()
	cfg.ReviewIntervalSeconds = 10
	cfg.TriggerIntervalSeconds = 60
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval")
}

func TestValidateTriggerThresholdsOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Trigger.Thresholds.CPUPercent = 150
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateTriggerLogPatternRequiresPattern(t *testing.T) {
	cfg := validConfig()
	cfg.Trigger.LogPatterns = []LogPattern{{Pattern: "", Severity: "high"}}
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateTriggerLogPatternRejectsInvalidSeverity(t *testing.T) {
	cfg := validConfig()
	cfg.Trigger.LogPatterns = []LogPattern{{Pattern: "OOM", Severity: "catastrophic"}}
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateContextBudgetMustBePositive(t *testing.T) {
	cfg := validConfig()
	cfg.Context.BudgetTokens = 0
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateInferenceRequiresBackendURL(t *testing.T) {
	cfg := validConfig()
	cfg.Inference.BackendURL = ""
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateInferenceRequiresModel(t *testing.T) {
	cfg := validConfig()
	cfg.Inference.Model = ""
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateExecutorRejectsInvalidAutonomyLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Executor.AutonomyLevel = "god-mode"
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateExecutorRequiresRebuildCommand(t *testing.T) {
	cfg := validConfig()
	cfg.Executor.RebuildCommand = nil
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateQueueRequiresDir(t *testing.T) {
	cfg := validConfig()
	cfg.Queue.Dir = ""
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateQueuePollIntervalMustBePositive(t *testing.T) {
	cfg := validConfig()
	cfg.Queue.PollInterval = 0
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateDatabaseAllowsEmptyDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Database.DSN = ""
	err := NewValidator(cfg).ValidateAll()
	require.NoError(t, err)
}

func TestValidateDatabaseIdleExceedsOpenIsRejected(t *testing.T) {
	cfg := validConfig()
	cfg.Database.DSN = "postgres://localhost/db"
	cfg.Database.MaxOpenConns = 5
	cfg.Database.MaxIdleConns = 10
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateTimeseriesRetentionMustBePositive(t *testing.T) {
	cfg := validConfig()
	cfg.Timeseries.RetentionDays = 0
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateVectorStoreRequiresFallbackWhenNoDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Database.DSN = ""
	cfg.VectorStore.FallbackPath = ""
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateTrackerSimilarityRange(t *testing.T) {
	cfg := validConfig()
	cfg.Tracker.SimilarityHigh = 1.5
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateNotifyRequiresWebhookWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Notify.Enabled = true
	cfg.Notify.WebhookURL = ""
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateNotifyDisabledSkipsChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Notify.Enabled = false
	cfg.Notify.WebhookURL = ""
	err := NewValidator(cfg).ValidateAll()
	require.NoError(t, err)
}
