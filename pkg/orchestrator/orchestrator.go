// Package orchestrator composes the trigger, context, review, and meta
// layers into the running core (§2, §5): it owns the two scheduling
// tickers, folds trigger events into the context window, feeds review
// findings to the issue tracker, and decides when a review's escalation
// recommendation actually invokes the meta layer. Grounded on
// original_source/orchestrator_new.py's NewOrchestrator/run_cycle, with
// the scheduling loop restructured after pkg/cleanup/service.go's
// Start/Stop/run idiom.
package orchestrator

import (
	"context"
	"os"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/contextwindow"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/executor"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/meta"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/notify"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/review"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/tracker"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/trigger"
)

// defaultEscalationDebounce matches §9's "implementations should add a
// per-escalation-reason debounce (>=5 min)" resolution.
const defaultEscalationDebounce = 5 * time.Minute

// reviewErrorEscalationThreshold is §4.3's "the orchestrator additionally
// escalates if the review layer itself errored twice in a row".
const reviewErrorEscalationThreshold = 2

// CycleResult summarises what one RunTriggerCycle/RunReviewCycle pair
// did, for logging and for tests asserting on scenario outcomes.
type CycleResult struct {
	ReviewRan          bool
	IssuesTracked      int
	IssuesAutoResolved int
	Escalated          bool
	EscalationReason   string
}

// Orchestrator is the single per-host composition root (§5 "exactly one
// orchestrator instance per host").
type Orchestrator struct {
	host string

	triggerMonitor *trigger.Monitor
	ctxWindow      *contextwindow.Window
	reviewModel    *review.Model
	metaModel      *meta.Model
	exec           *executor.Executor
	issueTracker   *tracker.Tracker
	notifier       notify.Sink

	triggerInterval time.Duration
	reviewInterval  time.Duration

	escalation        *debouncer
	escalationWindow  time.Duration
	reviewInFlight    chan struct{} // 1-buffered mutex (§5 "exactly one review in flight")
	reviewErrorStreak int           // consecutive review.Run failures; guarded by reviewInFlight (§4.3)

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds an Orchestrator from already-constructed layer components.
// Used directly by tests that wire fakes; Build (in build.go) wires the
// concrete production components from a *config.Config.
func New(
	triggerMonitor *trigger.Monitor,
	ctxWindow *contextwindow.Window,
	reviewModel *review.Model,
	metaModel *meta.Model,
	exec *executor.Executor,
	issueTracker *tracker.Tracker,
	notifier notify.Sink,
	triggerInterval, reviewInterval, escalationWindow time.Duration,
) *Orchestrator {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}
	if escalationWindow <= 0 {
		escalationWindow = defaultEscalationDebounce
	}
	return &Orchestrator{
		host:             hostname,
		triggerMonitor:   triggerMonitor,
		ctxWindow:        ctxWindow,
		reviewModel:      reviewModel,
		metaModel:        metaModel,
		exec:             exec,
		issueTracker:     issueTracker,
		notifier:         notifier,
		triggerInterval:  triggerInterval,
		reviewInterval:   reviewInterval,
		escalation:       newDebouncer(),
		escalationWindow: escalationWindow,
		reviewInFlight:   make(chan struct{}, 1),
	}
}

// Host returns the hostname this instance reports events and issues under.
func (o *Orchestrator) Host() string { return o.host }

// TriggerMonitor exposes the Layer 1 monitor, for status/test inspection.
func (o *Orchestrator) TriggerMonitor() *trigger.Monitor { return o.triggerMonitor }

// ContextWindow exposes the Layer 2 buffer, for status/test inspection.
func (o *Orchestrator) ContextWindow() *contextwindow.Window { return o.ctxWindow }

// Tracker exposes the issue tracker, for the queue/approve/reject CLI
// surface and for scenario tests.
func (o *Orchestrator) Tracker() *tracker.Tracker { return o.issueTracker }

// Executor exposes the executor, for the queue/approve/reject CLI surface.
func (o *Orchestrator) Executor() *executor.Executor { return o.exec }

// SubmitProposal dispatches proposal through the executor unchanged
// (§4.5): the orchestrator adds no policy of its own here, it is a thin
// pass-through so callers (the meta layer's recommended actions, the
// CLI) share one entry point.
func (o *Orchestrator) SubmitProposal(ctx context.Context, proposal models.Proposal) (models.ExecutionResult, error) {
	return o.exec.ExecuteAction(ctx, proposal)
}
