// Package executor implements §4.5: gate proposals by autonomy level and
// risk, dispatch approved ones through a handler table, archive outcomes,
// and offer a file-based approval queue when human consent is required.
// Grounded on original_source/executor.py.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/metrics"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

// Learner is the meta layer's post-success reflection entry point
// (§4.5 "Post-success learning hook"). Declared locally, mirroring the
// forward-declared Executor interface in pkg/review, so this package has
// no import-time dependency on pkg/meta's tool-calling internals.
type Learner interface {
	ReflectAndLearn(ctx context.Context, situation, actionTaken, outcome string, success bool)
}

// CommandRunner abstracts shell execution so handlers are testable
// without forking real processes.
type CommandRunner interface {
	Run(ctx context.Context, command string, timeout time.Duration) CommandResult
}

// Executor gates, dispatches, and archives Proposals per the autonomy
// ladder. It satisfies pkg/review.Executor via ExecuteAction.
type Executor struct {
	mu sync.Mutex

	stateDir string
	cfg      config.ExecutorConfig
	runner   CommandRunner
	learner  Learner

	protected map[string]bool
	allowlist []string
}

// Option customises an Executor at construction time.
type Option func(*Executor)

// WithRunner overrides the CommandRunner (tests inject a fake).
func WithRunner(r CommandRunner) Option { return func(e *Executor) { e.runner = r } }

// WithLearner wires the post-success reflection hook.
func WithLearner(l Learner) Option { return func(e *Executor) { e.learner = l } }

// New builds an Executor rooted at stateDir, configured per cfg.
func New(cfg config.ExecutorConfig, stateDir string, opts ...Option) *Executor {
	protected := make(map[string]bool, len(cfg.ProtectedServices))
	for _, svc := range cfg.ProtectedServices {
		protected[svc] = true
	}

	e := &Executor{
		stateDir:  stateDir,
		cfg:       cfg,
		runner:    execRunner{},
		protected: protected,
		allowlist: cfg.InvestigationAllowlist,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecuteAction runs the autonomy gate, then dispatches or queues the
// Proposal. The returned error is reserved for failures in the executor's
// own bookkeeping (e.g. the execution log could not be written); an
// action that ran and failed is reported via a non-nil ExecutionResult
// with Success=false, not a Go error.
func (e *Executor) ExecuteAction(ctx context.Context, proposal models.Proposal) (result models.ExecutionResult, err error) {
	defer func() {
		metrics.RecordActionExecuted(string(proposal.ActionType), string(result.Status))
	}()

	allow, reason := shouldExecute(e.cfg.AutonomyLevel, proposal.ActionType, proposal.RiskLevel)

	if !allow {
		if allowsQueueing(e.cfg.AutonomyLevel) {
			if err := e.queueForApproval(proposal); err != nil {
				return models.ExecutionResult{}, fmt.Errorf("executor: queue for approval: %w", err)
			}
			return models.ExecutionResult{
				Executed:  false,
				Status:    models.ExecutionQueued,
				Output:    reason,
				Timestamp: time.Now(),
			}, nil
		}
		return models.ExecutionResult{
			Executed:  false,
			Status:    models.ExecutionBlocked,
			Output:    reason,
			Timestamp: time.Now(),
		}, nil
	}

	if e.cfg.DryRun {
		return models.ExecutionResult{
			Executed:  false,
			Status:    models.ExecutionDryRun,
			Output:    "dry run mode - no actual changes made",
			Timestamp: time.Now(),
		}, nil
	}

	result = e.dispatch(ctx, proposal)

	if logErr := e.logExecution(result); logErr != nil {
		return result, fmt.Errorf("executor: log execution: %w", logErr)
	}

	if result.Succeeded() && e.learner != nil {
		e.learner.ReflectAndLearn(ctx, proposal.Diagnosis, proposal.ProposedAction, result.Output, true)
	}

	return result, nil
}

// allowsQueueing reports whether an action that failed the auto-execute
// gate should be queued for human approval (vs. hard-blocked) under the
// given autonomy level. Every level except observe queues; observe
// blocks outright (§4.5 table: the "observe" row is "blocked" in every
// column, never "queued").
func allowsQueueing(level config.AutonomyLevel) bool {
	return level != config.AutonomyObserve
}

// shouldExecute implements the §4.5 autonomy ladder table.
func shouldExecute(level config.AutonomyLevel, actionType config.ActionType, risk config.RiskLevel) (bool, string) {
	if risk == config.RiskHigh {
		return false, "high risk actions always require approval"
	}
	if level == config.AutonomyObserve {
		return false, "autonomy level set to observe-only"
	}
	if actionType == config.ActionInvestigation && risk == config.RiskLow {
		return true, "auto-approved: low-risk information gathering"
	}

	switch level {
	case config.AutonomySuggest:
		return false, "autonomy level requires manual approval"
	case config.AutonomyAutoSafe:
		if risk == config.RiskLow {
			return true, "auto-executing safe action"
		}
		return false, "action requires higher autonomy level"
	case config.AutonomyAutoFull:
		return true, "auto-executing approved action"
	default:
		return false, "unknown autonomy level"
	}
}
