package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/contextwindow"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/executor"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/meta"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/notify"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/review"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/signal"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/toolset"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/tracker"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/trigger"
)

// harness bundles an Orchestrator built entirely from real layer
// packages (no network, no database) with the fakes at its true
// boundaries: the signal source and the inference backends.
type harness struct {
	orch          *Orchestrator
	source        *signal.Fake
	reviewBackend *inference.FakeBackend
	metaBackend   *inference.FakeBackend
	tracker       *tracker.Tracker
	exec          *executor.Executor
}

func newHarness(t *testing.T, triggerCfg config.TriggerConfig, execCfg config.ExecutorConfig) *harness {
	t.Helper()
	stateDir := t.TempDir()

	source := &signal.Fake{}
	monitor := trigger.NewMonitor(source, triggerCfg, nil)

	ctxWindow := contextwindow.New(100000, stateDir)

	trk, err := tracker.New(stateDir)
	require.NoError(t, err)

	exec := executor.New(execCfg, stateDir)

	reviewBackend := inference.NewFakeBackend()
	reviewModel := review.New(reviewBackend, "review-model", ctxWindow, exec, stateDir)

	metaBackend := inference.NewFakeBackend()
	tools := toolset.New(stateDir + "/tool_cache")
	metaModel := meta.New(metaBackend, "meta-model", "ai-sysadmin", ctxWindow, tools, nil, stateDir)

	orch := New(monitor, ctxWindow, reviewModel, metaModel, exec, trk, notify.NoopSink{},
		30*time.Second, 60*time.Second, 5*time.Minute)

	return &harness{orch: orch, source: source, reviewBackend: reviewBackend, metaBackend: metaBackend, tracker: trk, exec: exec}
}

func defaultTriggerConfig() config.TriggerConfig {
	return config.TriggerConfig{
		Thresholds: config.ThresholdsConfig{
			CPUPercent:    90,
			MemoryPercent: 1000,
			DiskPercent:   1000,
			LoadPerCPU:    1000,
		},
	}
}

func TestHost_FallsBackWhenHostnameFails(t *testing.T) {
	h := newHarness(t, defaultTriggerConfig(), config.ExecutorConfig{AutonomyLevel: config.AutonomySuggest})
	assert.NotEmpty(t, h.orch.Host())
}

func TestSubmitProposal_PassesThroughToExecutor(t *testing.T) {
	h := newHarness(t, defaultTriggerConfig(), config.ExecutorConfig{AutonomyLevel: config.AutonomyObserve})

	result, err := h.orch.SubmitProposal(context.Background(), models.Proposal{
		ActionType: config.ActionSystemdRestart,
		RiskLevel:  config.RiskLow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionBlocked, result.Status)
}

func TestDebouncer_SuppressesWithinWindow(t *testing.T) {
	d := newDebouncer()
	assert.True(t, d.allow("cascade", time.Hour))
	assert.False(t, d.allow("cascade", time.Hour))
	assert.True(t, d.allow("other-reason", time.Hour))
}

func TestDebouncer_ZeroWindowNeverSuppresses(t *testing.T) {
	d := newDebouncer()
	assert.True(t, d.allow("k", 0))
	assert.True(t, d.allow("k", 0))
}

func TestEscalationKey_DefaultsUnlabeledReason(t *testing.T) {
	assert.Equal(t, "unspecified", escalationKey(""))
	assert.Equal(t, "disk_pressure", escalationKey("disk_pressure"))
}

func TestRunReviewCycle_EscalatesAfterTwoConsecutiveReviewErrors(t *testing.T) {
	h := newHarness(t, defaultTriggerConfig(), config.ExecutorConfig{AutonomyLevel: config.AutonomySuggest})
	h.reviewBackend.GenerateFn = func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
		return "", assert.AnError
	}

	_, err := h.orch.RunReviewCycle(context.Background(), "poll")
	require.Error(t, err)
	assert.Empty(t, h.metaBackend.Calls, "first review failure alone must not force an escalation")

	_, err = h.orch.RunReviewCycle(context.Background(), "poll")
	require.Error(t, err)
	assert.Len(t, h.metaBackend.Calls, 1, "second consecutive review failure must force a meta escalation")

	assert.Equal(t, 0, h.orch.reviewErrorStreak, "streak resets once the forced escalation fires")
}

func TestRunReviewCycle_SuccessResetsReviewErrorStreak(t *testing.T) {
	h := newHarness(t, defaultTriggerConfig(), config.ExecutorConfig{AutonomyLevel: config.AutonomySuggest})
	h.reviewBackend.GenerateFn = func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
		return "", assert.AnError
	}
	_, err := h.orch.RunReviewCycle(context.Background(), "poll")
	require.Error(t, err)
	require.Equal(t, 1, h.orch.reviewErrorStreak)

	h.reviewBackend.GenerateFn = nil
	_, err = h.orch.RunReviewCycle(context.Background(), "poll")
	require.NoError(t, err)
	assert.Equal(t, 0, h.orch.reviewErrorStreak)
	assert.Empty(t, h.metaBackend.Calls)
}

func TestStartStop_IsIdempotentAndReturns(t *testing.T) {
	h := newHarness(t, defaultTriggerConfig(), config.ExecutorConfig{AutonomyLevel: config.AutonomySuggest})
	h.orch.triggerInterval = time.Hour
	h.orch.reviewInterval = time.Hour

	ctx := context.Background()
	h.orch.Start(ctx)
	h.orch.Start(ctx) // second call is a no-op, must not deadlock or double-run

	h.orch.Stop()
	h.orch.Stop() // stopping twice must not block or panic
}
