package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

type fakeRunner struct {
	results map[string]CommandResult
	calls   []string
}

func (f *fakeRunner) Run(ctx context.Context, command string, timeout time.Duration) CommandResult {
	f.calls = append(f.calls, command)
	if r, ok := f.results[command]; ok {
		return r
	}
	return CommandResult{Success: true}
}

type fakeLearner struct {
	calls []string
}

func (f *fakeLearner) ReflectAndLearn(ctx context.Context, situation, actionTaken, outcome string, success bool) {
	f.calls = append(f.calls, situation)
}

func testConfig() config.ExecutorConfig {
	return config.ExecutorConfig{
		AutonomyLevel:          config.AutonomySuggest,
		ProtectedServices:      []string{"sshd", "dbus"},
		RebuildCommand:         []string{"nixos-rebuild"},
		InvestigationAllowlist: []string{"journalctl", "systemctl status", "df", "free", "ps", "ss", "netstat"},
		CleanupCommands:        []string{"nix-collect-garbage --delete-old"},
	}
}

func TestShouldExecute_AutonomyLadder(t *testing.T) {
	cases := []struct {
		name       string
		level      config.AutonomyLevel
		actionType config.ActionType
		risk       config.RiskLevel
		wantAllow  bool
	}{
		{"observe blocks investigation/low", config.AutonomyObserve, config.ActionInvestigation, config.RiskLow, false},
		{"observe blocks everything", config.AutonomyObserve, config.ActionSystemdRestart, config.RiskLow, false},
		{"suggest auto-approves investigation/low", config.AutonomySuggest, config.ActionInvestigation, config.RiskLow, true},
		{"suggest queues other low", config.AutonomySuggest, config.ActionSystemdRestart, config.RiskLow, false},
		{"suggest queues medium", config.AutonomySuggest, config.ActionSystemdRestart, config.RiskMedium, false},
		{"auto-safe auto-approves low", config.AutonomyAutoSafe, config.ActionSystemdRestart, config.RiskLow, true},
		{"auto-safe queues medium", config.AutonomyAutoSafe, config.ActionSystemdRestart, config.RiskMedium, false},
		{"auto-full auto-approves medium", config.AutonomyAutoFull, config.ActionSystemdRestart, config.RiskMedium, true},
		{"high never auto-executes at auto-full", config.AutonomyAutoFull, config.ActionSystemdRestart, config.RiskHigh, false},
		{"high never auto-executes at observe", config.AutonomyObserve, config.ActionSystemdRestart, config.RiskHigh, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			allow, reason := shouldExecute(c.level, c.actionType, c.risk)
			assert.Equal(t, c.wantAllow, allow)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestExecuteAction_QueuesWhenNotAutoApproved(t *testing.T) {
	e := New(testConfig(), t.TempDir())

	result, err := e.ExecuteAction(context.Background(), models.Proposal{
		Diagnosis:      "disk almost full",
		ProposedAction: "restart nginx",
		ActionType:     config.ActionSystemdRestart,
		RiskLevel:      config.RiskLow,
		Commands:       []string{"systemctl restart nginx"},
	})

	require.NoError(t, err)
	assert.False(t, result.Executed)
	assert.Equal(t, models.ExecutionQueued, result.Status)

	pending, err := e.PendingApprovals()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "restart nginx", pending[0].Proposal.ProposedAction)
}

func TestExecuteAction_ObserveBlocksWithoutQueueing(t *testing.T) {
	cfg := testConfig()
	cfg.AutonomyLevel = config.AutonomyObserve
	e := New(cfg, t.TempDir())

	result, err := e.ExecuteAction(context.Background(), models.Proposal{
		ActionType: config.ActionSystemdRestart,
		RiskLevel:  config.RiskLow,
	})

	require.NoError(t, err)
	assert.Equal(t, models.ExecutionBlocked, result.Status)

	pending, err := e.PendingApprovals()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestExecuteAction_AutoApprovedInvestigationDispatches(t *testing.T) {
	runner := &fakeRunner{results: map[string]CommandResult{
		"journalctl -u nginx -n 50": {Success: true, Stdout: "logs here"},
	}}
	e := New(testConfig(), t.TempDir(), WithRunner(runner))

	result, err := e.ExecuteAction(context.Background(), models.Proposal{
		ActionType: config.ActionInvestigation,
		RiskLevel:  config.RiskLow,
		Commands:   []string{"journalctl -u nginx -n 50"},
	})

	require.NoError(t, err)
	assert.True(t, result.Executed)
	assert.True(t, result.Succeeded())
	assert.Contains(t, result.Output, "logs here")
}

func TestExecuteAction_DryRunNeverExecutes(t *testing.T) {
	cfg := testConfig()
	cfg.AutonomyLevel = config.AutonomyAutoFull
	cfg.DryRun = true
	runner := &fakeRunner{}
	e := New(cfg, t.TempDir(), WithRunner(runner))

	result, err := e.ExecuteAction(context.Background(), models.Proposal{
		ActionType: config.ActionSystemdRestart,
		RiskLevel:  config.RiskLow,
		Commands:   []string{"systemctl restart nginx"},
	})

	require.NoError(t, err)
	assert.Equal(t, models.ExecutionDryRun, result.Status)
	assert.Empty(t, runner.calls)
}

func TestExecuteAction_InvokesLearnerOnSuccess(t *testing.T) {
	cfg := testConfig()
	cfg.AutonomyLevel = config.AutonomyAutoFull
	runner := &fakeRunner{results: map[string]CommandResult{
		"systemctl restart nginx": {Success: true},
	}}
	learner := &fakeLearner{}
	e := New(cfg, t.TempDir(), WithRunner(runner), WithLearner(learner))

	_, err := e.ExecuteAction(context.Background(), models.Proposal{
		Diagnosis:  "nginx crashed",
		ActionType: config.ActionSystemdRestart,
		RiskLevel:  config.RiskLow,
		Commands:   []string{"systemctl restart nginx"},
	})

	require.NoError(t, err)
	require.Len(t, learner.calls, 1)
	assert.Equal(t, "nginx crashed", learner.calls[0])
}

func TestExecuteAction_DoesNotInvokeLearnerOnFailure(t *testing.T) {
	cfg := testConfig()
	cfg.AutonomyLevel = config.AutonomyAutoFull
	runner := &fakeRunner{results: map[string]CommandResult{
		"systemctl restart nginx": {Success: false, Stderr: "unit not found"},
	}}
	learner := &fakeLearner{}
	e := New(cfg, t.TempDir(), WithRunner(runner), WithLearner(learner))

	_, err := e.ExecuteAction(context.Background(), models.Proposal{
		ActionType: config.ActionSystemdRestart,
		RiskLevel:  config.RiskLow,
		Commands:   []string{"systemctl restart nginx"},
	})

	require.NoError(t, err)
	assert.Empty(t, learner.calls)
}

func TestExecuteAction_WritesExecutionLog(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.AutonomyLevel = config.AutonomyAutoFull
	e := New(cfg, dir, WithRunner(&fakeRunner{}))

	_, err := e.ExecuteAction(context.Background(), models.Proposal{
		ActionType: config.ActionCleanup,
		RiskLevel:  config.RiskLow,
	})
	require.NoError(t, err)

	assert.True(t, fileExists(e.actionLogPath()))
}
