package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

func TestRestartServices_BlocksProtectedUnits(t *testing.T) {
	runner := &fakeRunner{}
	e := New(testConfig(), t.TempDir(), WithRunner(runner))

	output, success, _ := e.restartServices(context.Background(), models.Proposal{
		Commands: []string{"systemctl restart sshd"},
	})

	assert.True(t, success)
	assert.Contains(t, output, "BLOCKED")
	assert.Empty(t, runner.calls)
}

func TestRestartServices_IgnoresNonMatchingCommands(t *testing.T) {
	runner := &fakeRunner{}
	e := New(testConfig(), t.TempDir(), WithRunner(runner))

	output, success, _ := e.restartServices(context.Background(), models.Proposal{
		Commands: []string{"rm -rf /"},
	})

	assert.False(t, success)
	assert.Empty(t, output)
	assert.Empty(t, runner.calls)
}

func TestRestartServices_RunsAllowedUnit(t *testing.T) {
	runner := &fakeRunner{results: map[string]CommandResult{
		"systemctl restart nginx": {Success: true},
	}}
	e := New(testConfig(), t.TempDir(), WithRunner(runner))

	output, success, _ := e.restartServices(context.Background(), models.Proposal{
		Commands: []string{"systemctl restart nginx"},
	})

	assert.True(t, success)
	assert.Contains(t, output, "restarted nginx")
}

func TestPerformCleanup_AccumulatesOutputAcrossFailures(t *testing.T) {
	runner := &fakeRunner{results: map[string]CommandResult{
		"journalctl --vacuum-time=7d":      {Success: false, Stderr: "permission denied"},
		"nix-collect-garbage --delete-old": {Success: true, Stdout: "freed 1GB"},
	}}
	e := New(testConfig(), t.TempDir(), WithRunner(runner))

	output, success, _ := e.performCleanup(context.Background(), models.Proposal{})

	assert.True(t, success)
	assert.Contains(t, output, "journal cleanup failed")
	assert.Contains(t, output, "freed 1GB")
}

func TestRunInvestigation_BlocksDisallowedCommands(t *testing.T) {
	runner := &fakeRunner{}
	e := New(testConfig(), t.TempDir(), WithRunner(runner))

	output, success, _ := e.runInvestigation(context.Background(), models.Proposal{
		Commands: []string{"rm -rf /", "df -h"},
	})

	assert.True(t, success)
	assert.Contains(t, output, "BLOCKED unsafe command: rm -rf /")
	assert.Contains(t, output, "$ df -h")
}

func TestHostRebuild_StopsOnDryBuildFailure(t *testing.T) {
	runner := &fakeRunner{results: map[string]CommandResult{
		"nixos-rebuild dry-build": {Success: false, Stderr: "eval error"},
	}}
	e := New(testConfig(), t.TempDir(), WithRunner(runner))

	output, success, errMsg := e.hostRebuild(context.Background(), models.Proposal{})

	assert.False(t, success)
	assert.Contains(t, output, "dry build failed")
	assert.Equal(t, "eval error", errMsg)
	assert.NotContains(t, runner.calls, "nixos-rebuild switch")
}

func TestHostRebuild_SwitchesAfterSuccessfulDryBuild(t *testing.T) {
	runner := &fakeRunner{results: map[string]CommandResult{
		"nixos-rebuild dry-build": {Success: true},
		"nixos-rebuild switch":    {Success: true, Stdout: "activation complete"},
	}}
	e := New(testConfig(), t.TempDir(), WithRunner(runner))

	output, success, _ := e.hostRebuild(context.Background(), models.Proposal{})

	assert.True(t, success)
	assert.Contains(t, output, "activation complete")
}

func TestHostRebuild_PrependsWorkDir(t *testing.T) {
	cfg := testConfig()
	cfg.RebuildWorkDir = "/etc/nixos"
	runner := &fakeRunner{results: map[string]CommandResult{
		"cd /etc/nixos && nixos-rebuild dry-build": {Success: true},
		"cd /etc/nixos && nixos-rebuild switch":    {Success: true},
	}}
	e := New(cfg, t.TempDir(), WithRunner(runner))

	_, success, _ := e.hostRebuild(context.Background(), models.Proposal{})
	assert.True(t, success)
}

func TestApplyConfigChange_WritesPatchFileRatherThanEditing(t *testing.T) {
	dir := t.TempDir()
	e := New(testConfig(), dir)

	output, success, _ := e.applyConfigChange(context.Background(), models.Proposal{
		ConfigChanges: map[string]any{
			"file":   "/etc/nginx/nginx.conf",
			"change": "increase worker_connections to 2048",
		},
		Reasoning: "connection limit reached under load",
	})

	assert.True(t, success)
	assert.Contains(t, output, "suggested_patch_")
}

func TestApplyConfigChange_RequiresFile(t *testing.T) {
	e := New(testConfig(), t.TempDir())

	_, success, _ := e.applyConfigChange(context.Background(), models.Proposal{
		ConfigChanges: map[string]any{},
	})

	assert.False(t, success)
}

func TestDispatch_UnknownActionTypeFails(t *testing.T) {
	e := New(testConfig(), t.TempDir(), WithRunner(&fakeRunner{}))

	result := e.dispatch(context.Background(), models.Proposal{ActionType: config.ActionType("unknown")})
	require.NotNil(t, result.Success)
	assert.False(t, *result.Success)
	assert.Contains(t, result.Error, "unknown action type")
}

func TestJaccardSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, jaccardSimilarity("disk is full", "disk is full"), 0.001)
	assert.Greater(t, jaccardSimilarity("nginx service is failing", "nginx service keeps failing"), 0.5)
	assert.Equal(t, 0.0, jaccardSimilarity("", "anything"))
	assert.Less(t, jaccardSimilarity("disk full", "memory leak detected"), 0.3)
}

func TestQueueForApproval_SuppressesSimilarDiagnosis(t *testing.T) {
	e := New(testConfig(), t.TempDir())

	require.NoError(t, e.queueForApproval(models.Proposal{
		Diagnosis:      "disk usage is critically high on /var",
		ProposedAction: "clean up old logs",
	}))
	require.NoError(t, e.queueForApproval(models.Proposal{
		Diagnosis:      "disk usage is critically high on the /var partition",
		ProposedAction: "remove temp files",
	}))

	pending, err := e.PendingApprovals()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestApproveAndReject(t *testing.T) {
	runner := &fakeRunner{results: map[string]CommandResult{
		"systemctl restart nginx": {Success: true},
	}}
	e := New(testConfig(), t.TempDir(), WithRunner(runner))

	require.NoError(t, e.queueForApproval(models.Proposal{
		ActionType: config.ActionSystemdRestart,
		Commands:   []string{"systemctl restart nginx"},
	}))
	require.NoError(t, e.queueForApproval(models.Proposal{
		Diagnosis:  "unrelated issue entirely",
		ActionType: config.ActionInvestigation,
	}))

	result, err := e.Approve(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, result.Succeeded())

	pending, err := e.PendingApprovals()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "unrelated issue entirely", pending[0].Proposal.Diagnosis)

	require.NoError(t, e.Reject(0))
	pending, err = e.PendingApprovals()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApprove_OutOfRangeIndexErrors(t *testing.T) {
	e := New(testConfig(), t.TempDir())
	_, err := e.Approve(context.Background(), 0)
	assert.Error(t, err)
}
