// Package review implements the Layer 3 small-model periodic analyzer
// (§4.3): it turns the current context window into a structured
// analysis, executes any safe actions directly, and decides whether to
// escalate to the meta layer. Grounded on original_source/review_model.py.
package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/contextwindow"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/events"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/metrics"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

const reviewTemperature = 0.3
const reviewMaxTokens = 1000

// Issue is one problem surfaced by the model's analysis.
type Issue struct {
	Severity           string   `json:"severity"`
	Category           string   `json:"category"`
	Description        string   `json:"description"`
	AffectedComponents []string `json:"affected_components,omitempty"`
}

// SafeAction is an action the review layer may execute directly, without
// approval, because it passed the §4.3 safe-action filter.
type SafeAction struct {
	ActionType  config.ActionType `json:"action_type"`
	Description string            `json:"description"`
	Target      string            `json:"target"`
	Risk        config.RiskLevel  `json:"risk"`
}

// Result is a single review pass's structured output.
type Result struct {
	Status           string       `json:"status"`
	Summary          string       `json:"summary"`
	Issues           []Issue      `json:"issues,omitempty"`
	Patterns         []string     `json:"patterns,omitempty"`
	SafeActions      []SafeAction `json:"safe_actions,omitempty"`
	ShouldEscalate   bool         `json:"should_escalate"`
	EscalationReason string       `json:"escalation_reason,omitempty"`
	RawResponse      string       `json:"raw_response,omitempty"`
	TriggeredBy      string       `json:"triggered_by"`
	Timestamp        time.Time    `json:"timestamp"`
}

// Stats mirrors the original's per-review counters (§4.3 "State").
type Stats struct {
	ReviewsPerformed  int `json:"reviews_performed"`
	EscalationsToMeta int `json:"escalations_to_meta"`
	ActionsProposed   int `json:"actions_proposed"`
	ActionsExecuted   int `json:"actions_executed"`
}

// ContextProvider is the subset of *contextwindow.Window the review layer
// needs: a rendered window and the ability to fold its own completion
// back in as an event.
type ContextProvider interface {
	GetWindow(ctx context.Context, opts contextwindow.WindowOptions) string
	AddEvent(ctx context.Context, evt events.Event)
}

// Executor runs a Proposal. pkg/executor satisfies this once built; it is
// declared here (rather than imported) so pkg/review has no dependency on
// the executor's autonomy-ladder internals — it only needs to hand off a
// SafeAction-derived Proposal and learn what happened.
type Executor interface {
	ExecuteAction(ctx context.Context, proposal models.Proposal) (models.ExecutionResult, error)
}

// Model runs periodic or triggered reviews against a context window.
type Model struct {
	backend   inference.Backend
	model     string
	ctxWindow ContextProvider
	executor  Executor
	statePath string

	mu    sync.Mutex
	stats Stats
}

// New builds a review Model. executor may be nil: safe actions are then
// proposed in the Result but never executed (useful before pkg/executor
// is wired, or when running read-only).
func New(backend inference.Backend, model string, ctxWindow ContextProvider, executor Executor, stateDir string) *Model {
	m := &Model{
		backend:   backend,
		model:     model,
		ctxWindow: ctxWindow,
		executor:  executor,
		statePath: statePath(stateDir),
	}
	m.loadState()
	return m
}

// Stats returns a snapshot of the running counters.
func (m *Model) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Run performs one full review pass (§4.3): render the context window,
// query the model, parse its structured response, execute any safe
// actions, fold the outcome back into the context, and persist stats.
func (m *Model) Run(ctx context.Context, triggeredBy string) (Result, error) {
	m.mu.Lock()
	m.stats.ReviewsPerformed++
	m.mu.Unlock()
	metrics.RecordReviewPerformed()

	if m.ctxWindow == nil {
		return Result{}, fmt.Errorf("review: no context provider configured")
	}

	contextText := m.ctxWindow.GetWindow(ctx, contextwindow.WindowOptions{IncludeSAR: true, IncludeMetrics: true})
	prompt := buildPrompt(contextText, triggeredBy)

	text, err := m.backend.Generate(ctx, prompt, m.model, "", reviewTemperature, reviewMaxTokens)
	if err != nil {
		return Result{}, fmt.Errorf("review: query model: %w", err)
	}

	result := parseAnalysis(text)
	result.TriggeredBy = triggeredBy
	result.Timestamp = time.Now().UTC()

	m.ctxWindow.AddEvent(ctx, events.Event{
		Timestamp: result.Timestamp,
		Kind:      events.KindReviewCompleted,
		Severity:  severityFromStatus(result.Status),
		Source:    events.SourceReview,
		Payload: map[string]any{
			"summary":      result.Summary,
			"status":       result.Status,
			"issues_found": len(result.Issues),
		},
	})

	if result.ShouldEscalate {
		m.mu.Lock()
		m.stats.EscalationsToMeta++
		m.mu.Unlock()
		metrics.RecordEscalation(result.EscalationReason)
	}

	m.mu.Lock()
	m.stats.ActionsProposed += len(result.SafeActions)
	m.mu.Unlock()

	if m.executor != nil {
		for _, action := range result.SafeActions {
			if !isSafeAction(action) {
				continue
			}
			m.executeSafeAction(ctx, action)
		}
	}

	m.saveState()
	return result, nil
}

func severityFromStatus(status string) events.Severity {
	switch status {
	case "critical":
		return events.SeverityCritical
	case "degraded":
		return events.SeverityMedium
	default:
		return events.SeverityLow
	}
}
