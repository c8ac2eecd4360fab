package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/events"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/notify"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/review"
)

// RunTriggerCycle runs one Layer 1 pass (§4.1): checks metrics, services,
// and the journal, folds every emitted event into the context window
// (§4.2's dual-store write-through happens inside AddEvent), and
// returns whether the batch was review-worthy; the caller keeps that flag
// to label the next RunReviewCycle.
func (o *Orchestrator) RunTriggerCycle(ctx context.Context) ([]events.Event, bool, error) {
	evts, shouldReview, err := o.triggerMonitor.Check(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("orchestrator: trigger check: %w", err)
	}

	for _, evt := range evts {
		o.ctxWindow.AddEvent(ctx, evt)
		if evt.Severity == events.SeverityCritical {
			o.notify(ctx, "Critical trigger event", evt.PayloadString("message"))
		}
	}

	return evts, shouldReview, nil
}

// RunReviewCycle runs one Layer 3 pass (§4.3), tracks its issues (§4.6),
// auto-resolves issues that are no longer detected, and — debounced per
// reason (§9) — escalates to the meta layer when the review recommends
// it. Only one review may be in flight at a time (§5); a concurrent call
// returns immediately with a zero Result and no error.
func (o *Orchestrator) RunReviewCycle(ctx context.Context, triggeredBy string) (CycleResult, error) {
	select {
	case o.reviewInFlight <- struct{}{}:
		defer func() { <-o.reviewInFlight }()
	default:
		return CycleResult{}, nil
	}

	result, err := o.reviewModel.Run(ctx, triggeredBy)
	if err != nil {
		o.reviewErrorStreak++
		if o.reviewErrorStreak >= reviewErrorEscalationThreshold {
			reason := fmt.Sprintf("review layer failed %d consecutive times: %s", o.reviewErrorStreak, err)
			if _, escErr := o.metaModel.AnalyzeEscalation(ctx, reason); escErr != nil {
				slog.Warn("orchestrator: forced escalation after repeated review failures also failed", "reason", reason, "error", escErr)
			}
			o.reviewErrorStreak = 0
		}
		return CycleResult{}, fmt.Errorf("orchestrator: review run: %w", err)
	}
	o.reviewErrorStreak = 0

	cycle := CycleResult{ReviewRan: true}

	detected := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		detected = append(detected, issue.Description)
		o.trackIssue(ctx, issue)
		cycle.IssuesTracked++
	}

	resolved, err := o.issueTracker.AutoResolveIfFixed(o.host, detected)
	if err != nil {
		slog.Warn("orchestrator: auto-resolve pass failed", "error", err)
	}
	cycle.IssuesAutoResolved = resolved

	if result.ShouldEscalate {
		cycle.EscalationReason = result.EscalationReason
		if o.escalation.allow(escalationKey(result.EscalationReason), o.escalationWindow) {
			if _, err := o.metaModel.AnalyzeEscalation(ctx, result.EscalationReason); err != nil {
				slog.Warn("orchestrator: meta escalation failed", "reason", result.EscalationReason, "error", err)
			} else {
				cycle.Escalated = true
			}
		} else {
			slog.Info("orchestrator: escalation suppressed by debounce", "reason", result.EscalationReason)
		}
	}

	return cycle, nil
}

func escalationKey(reason string) string {
	if reason == "" {
		return "unspecified"
	}
	return reason
}

// trackIssue is the §4.6 "find-or-create" integration between a review
// pass's findings and the tracker: an issue whose title overlaps an
// existing open issue by more than half its tokens is treated as an
// update to that issue rather than a new one.
func (o *Orchestrator) trackIssue(ctx context.Context, issue review.Issue) {
	if existing, ok := o.issueTracker.FindSimilar(o.host, issue.Description); ok {
		note := issue.Description
		if err := o.issueTracker.Update(existing.ID, nil, &note, nil); err != nil {
			slog.Warn("orchestrator: failed to update tracked issue", "issue_id", existing.ID, "error", err)
		}
		return
	}

	if _, err := o.issueTracker.Create(o.host, issue.Description, issue.Description, issue.Severity, "review"); err != nil {
		slog.Warn("orchestrator: failed to create tracked issue", "error", err)
		return
	}
	if issue.Severity == "critical" || issue.Severity == "high" {
		o.notify(ctx, "New issue: "+issue.Description, issue.Description)
	}
}

func (o *Orchestrator) notify(ctx context.Context, title, message string) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Send(ctx, title, message, notify.PriorityHigh); err != nil {
		slog.Warn("orchestrator: notification failed", "error", err)
	}
}
