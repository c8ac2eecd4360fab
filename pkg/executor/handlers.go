package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

const (
	serviceCommandTimeout      = 30 * time.Second
	cleanupCommandTimeout      = 5 * time.Minute
	investigationTimeout       = 30 * time.Second
	rebuildDryBuildTimeout     = 10 * time.Minute
	rebuildSwitchTimeout       = 20 * time.Minute
	journalVacuumRetentionDays = 7
)

// dispatch routes an approved Proposal through the §4.5 handler table,
// the way the teacher's pkg/queue/executor.go dispatches session stages
// by a table keyed on stage kind rather than a long if/else chain.
func (e *Executor) dispatch(ctx context.Context, proposal models.Proposal) models.ExecutionResult {
	handlers := map[config.ActionType]func(context.Context, models.Proposal) (string, bool, string){
		config.ActionSystemdRestart: e.restartServices,
		config.ActionCleanup:        e.performCleanup,
		config.ActionInvestigation:  e.runInvestigation,
		config.ActionNixRebuild:     e.hostRebuild,
		config.ActionConfigChange:   e.applyConfigChange,
	}

	handler, ok := handlers[proposal.ActionType]
	if !ok {
		success := false
		return models.ExecutionResult{
			Executed:  true,
			Status:    models.ExecutionDispatched,
			Success:   &success,
			Error:     fmt.Sprintf("unknown action type: %s", proposal.ActionType),
			Timestamp: time.Now(),
		}
	}

	output, success, errMsg := handler(ctx, proposal)
	return models.ExecutionResult{
		Executed:  true,
		Status:    models.ExecutionDispatched,
		Success:   &success,
		Output:    output,
		Error:     errMsg,
		Timestamp: time.Now(),
	}
}

// restartServices handles systemd_restart: only commands of the exact
// form "systemctl restart <unit>" are honoured; protected units are
// rejected in-place regardless of autonomy.
func (e *Executor) restartServices(ctx context.Context, proposal models.Proposal) (string, bool, string) {
	var lines []string
	for _, cmd := range proposal.Commands {
		const prefix = "systemctl restart "
		if !strings.HasPrefix(cmd, prefix) {
			continue
		}
		service := strings.TrimSpace(strings.TrimPrefix(cmd, prefix))

		if e.isProtected(service) {
			lines = append(lines, fmt.Sprintf("BLOCKED: %s is protected", service))
			continue
		}

		result := e.runner.Run(ctx, fmt.Sprintf("systemctl restart %s", service), serviceCommandTimeout)
		if result.Success {
			lines = append(lines, fmt.Sprintf("restarted %s", service))
		} else {
			lines = append(lines, fmt.Sprintf("failed to restart %s: %s", service, strings.TrimSpace(result.Stderr)))
		}
	}

	return strings.Join(lines, "\n"), len(lines) > 0, ""
}

func (e *Executor) isProtected(service string) bool {
	for protected := range e.protected {
		if strings.Contains(service, protected) {
			return true
		}
	}
	return false
}

// performCleanup runs the fixed read-mostly cleanup sequence: journal
// vacuum always, then any configured host-specific garbage collection.
// Never aborts on a partial failure.
func (e *Executor) performCleanup(ctx context.Context, proposal models.Proposal) (string, bool, string) {
	var lines []string

	result := e.runner.Run(ctx, fmt.Sprintf("journalctl --vacuum-time=%dd", journalVacuumRetentionDays), cleanupCommandTimeout)
	if result.Success {
		lines = append(lines, fmt.Sprintf("journal cleanup: %s", strings.TrimSpace(result.Stdout)))
	} else {
		lines = append(lines, fmt.Sprintf("journal cleanup failed: %s", strings.TrimSpace(result.Stderr)))
	}

	for _, cmd := range e.cfg.CleanupCommands {
		r := e.runner.Run(ctx, cmd, cleanupCommandTimeout)
		if r.Success {
			lines = append(lines, fmt.Sprintf("%s: %s", cmd, strings.TrimSpace(r.Stdout)))
		} else {
			lines = append(lines, fmt.Sprintf("%s failed: %s", cmd, strings.TrimSpace(r.Stderr)))
		}
	}

	return strings.Join(lines, "\n"), true, ""
}

// runInvestigation runs read-only diagnostic commands, blocking anything
// whose first token isn't on the configured allow-list.
func (e *Executor) runInvestigation(ctx context.Context, proposal models.Proposal) (string, bool, string) {
	var lines []string
	for _, cmd := range proposal.Commands {
		if !e.isAllowedInvestigation(cmd) {
			lines = append(lines, fmt.Sprintf("BLOCKED unsafe command: %s", cmd))
			continue
		}

		result := e.runner.Run(ctx, cmd, investigationTimeout)
		lines = append(lines, fmt.Sprintf("$ %s", cmd))
		lines = append(lines, strings.TrimSpace(result.Stdout))
	}

	return strings.Join(lines, "\n"), true, ""
}

func (e *Executor) isAllowedInvestigation(cmd string) bool {
	for _, allowed := range e.allowlist {
		if cmd == allowed || strings.HasPrefix(cmd, allowed+" ") {
			return true
		}
	}
	return false
}

// hostRebuild is the OS-specific "nix_rebuild" handler: always two-phase,
// a dry build first, and only on success the real switch with a larger
// timeout. The concrete command is pluggable via config (§9 Open
// Question: OS-specificity).
func (e *Executor) hostRebuild(ctx context.Context, proposal models.Proposal) (string, bool, string) {
	if len(e.cfg.RebuildCommand) == 0 {
		return "", false, "no rebuild command configured"
	}

	dryBuildCmd := append(append([]string{}, e.cfg.RebuildCommand...), "dry-build")
	dryResult := e.runCommandInDir(ctx, dryBuildCmd, rebuildDryBuildTimeout)
	if !dryResult.Success {
		return fmt.Sprintf("dry build failed:\n%s", dryResult.Stderr), false, strings.TrimSpace(dryResult.Stderr)
	}

	switchCmd := append(append([]string{}, e.cfg.RebuildCommand...), "switch")
	switchResult := e.runCommandInDir(ctx, switchCmd, rebuildSwitchTimeout)

	output := "dry build successful\n" + switchResult.Stdout
	if switchResult.Success {
		return output, true, ""
	}
	return output, false, strings.TrimSpace(switchResult.Stderr)
}

func (e *Executor) runCommandInDir(ctx context.Context, argv []string, timeout time.Duration) CommandResult {
	cmd := strings.Join(argv, " ")
	if e.cfg.RebuildWorkDir != "" {
		cmd = fmt.Sprintf("cd %s && %s", e.cfg.RebuildWorkDir, cmd)
	}
	return e.runner.Run(ctx, cmd, timeout)
}

// applyConfigChange never writes configuration directly: it emits a
// human-readable patch description under the state directory and
// returns the path.
func (e *Executor) applyConfigChange(ctx context.Context, proposal models.Proposal) (string, bool, string) {
	file, _ := proposal.ConfigChanges["file"].(string)
	if file == "" {
		return "no file specified in config_changes", false, ""
	}

	change, _ := proposal.ConfigChanges["change"].(string)
	if change == "" {
		change = "no change description"
	}

	patchPath := filepath.Join(e.stateDir, fmt.Sprintf("suggested_patch_%d.txt", time.Now().UnixNano()))
	contents := fmt.Sprintf("Suggested change to %s:\n\n%s\n\nReasoning: %s", file, change, firstNonEmpty(proposal.Reasoning, "no reasoning provided"))

	if err := writeStateFile(patchPath, contents); err != nil {
		return "", false, err.Error()
	}

	return fmt.Sprintf("config change suggestion saved to %s\nthis requires manual review and application", patchPath), true, ""
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
