package review

import (
	"context"
	"fmt"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/events"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

// safeActionTypes are the only action types the review layer may execute
// directly, without operator approval (§4.3 "Safe-action filtering").
// Anything else proposed here is discarded at this layer; it escalates
// to the meta layer if it matters.
var safeActionTypes = map[config.ActionType]bool{
	config.ActionInvestigation:  true,
	config.ActionSystemdRestart: true,
	config.ActionCleanup:        true,
}

func isSafeAction(a SafeAction) bool {
	return a.Risk == config.RiskLow && safeActionTypes[a.ActionType]
}

// executeSafeAction converts a SafeAction into a Proposal and hands it to
// the configured Executor, folding the outcome back into the context
// window as an action_executed event. Executor errors are logged via the
// returned event's payload rather than propagated — a single safe
// action's failure must not abort the review pass.
func (m *Model) executeSafeAction(ctx context.Context, action SafeAction) {
	proposal := models.Proposal{
		Diagnosis:      action.Description,
		ProposedAction: action.Description,
		ActionType:     action.ActionType,
		RiskLevel:      config.RiskLow,
		Commands:       commandsForAction(action),
	}

	result, err := m.executor.ExecuteAction(ctx, proposal)

	m.mu.Lock()
	m.stats.ActionsExecuted++
	m.mu.Unlock()

	payload := map[string]any{
		"action_type": string(action.ActionType),
		"target":      action.Target,
	}
	if err != nil {
		payload["success"] = false
		payload["error"] = err.Error()
	} else {
		payload["success"] = result.Succeeded()
		payload["status"] = string(result.Status)
	}

	m.ctxWindow.AddEvent(ctx, events.Event{
		Kind:    events.KindActionExecuted,
		Source:  events.SourceReview,
		Payload: payload,
	})
}

// commandsForAction renders the concrete command line(s) for a safe
// action, matching original_source/review_model.py's _generate_commands.
func commandsForAction(a SafeAction) []string {
	switch a.ActionType {
	case config.ActionSystemdRestart:
		return []string{fmt.Sprintf("systemctl restart %s", a.Target)}
	case config.ActionInvestigation:
		return []string{
			fmt.Sprintf("systemctl status %s", a.Target),
			fmt.Sprintf("journalctl -u %s -n 50", a.Target),
		}
	case config.ActionCleanup:
		return []string{"journalctl --vacuum-time=7d"}
	default:
		return nil
	}
}
