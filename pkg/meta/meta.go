// Package meta implements the Layer 4 on-demand deep-analysis model
// (§4.4): a tool-calling loop over the full context window, invoked
// either when the review layer escalates or when an operator drives a
// chat session. Grounded on original_source/meta_model.py.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/contextwindow"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/events"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/vectorstore"
)

const (
	defaultMaxIterations = 30
	defaultTemperature   = 0.3
	analysisMaxTokens    = 2000
)

// Issue is one problem surfaced by an analysis pass.
type Issue struct {
	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	RequiresAction bool   `json:"requires_action"`
}

// AnalysisResult is the outcome of AnalyzeEscalation.
type AnalysisResult struct {
	Status             string    `json:"status"`
	Issues             []Issue   `json:"issues,omitempty"`
	OverallAssessment  string    `json:"overall_assessment"`
	RecommendedActions []string  `json:"recommended_actions,omitempty"`
	RawResponse        string    `json:"raw_response,omitempty"`
	EscalationReason   string    `json:"escalation_reason"`
	Timestamp          time.Time `json:"timestamp"`
}

// Stats mirrors the original's lightweight usage counters.
type Stats struct {
	Escalations int `json:"escalations"`
	ChatTurns   int `json:"chat_turns"`
	ToolCalls   int `json:"tool_calls"`
	Reflections int `json:"reflections"`
}

// ToolResult is a tool invocation's structured outcome (§4.10: every
// tool returns {success, ...}).
type ToolResult struct {
	Success bool
	Content string
}

// Toolset is the subset of pkg/toolset the meta layer needs: enumerate
// the catalogue and dispatch a call by name. Declared locally, like
// pkg/review.Executor, so this package carries no import-time
// dependency on the tool surface's implementation.
type Toolset interface {
	ListTools() []inference.Tool
	Execute(ctx context.Context, name string, arguments json.RawMessage) (ToolResult, error)
}

// Dispatcher is the subset of inference.Backend the meta layer needs.
// inference.Backend satisfies this directly; pkg/llmqueue.Client
// satisfies it too (§4.4 "dispatch... via the LLM queue"),
// without this package depending on the queue's implementation.
type Dispatcher interface {
	Generate(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error)
	ChatWithTools(ctx context.Context, messages []inference.Message, tools []inference.Tool, model string, temperature float64) (inference.ChatResult, error)
}

// ContextProvider is the subset of *contextwindow.Window the meta layer
// needs to render context and fold its own completion back in.
type ContextProvider interface {
	GetWindow(ctx context.Context, opts contextwindow.WindowOptions) string
	AddEvent(ctx context.Context, evt events.Event)
}

// KnowledgeStore is the subset of *vectorstore.Store the meta layer
// needs for knowledge injection and reflection (§4.4 "Knowledge
// injection" / "Knowledge reflection").
type KnowledgeStore interface {
	QuerySimilar(ctx context.Context, description string, k int) ([]contextwindow.SimilarEvent, error)
	Upsert(ctx context.Context, collection vectorstore.Collection, rec vectorstore.Record) error
}

// Model is the Layer 4 deep-analysis model.
type Model struct {
	backend   Dispatcher
	model     string
	aiName    string
	ctxWindow ContextProvider
	toolset   Toolset
	knowledge KnowledgeStore
	stateDir  string

	maxIterations int
	cacheDir      string

	mu    sync.Mutex
	stats Stats
}

// New builds a meta Model. toolset and knowledge may both be nil: the
// tool-calling loop then offers the model no tools, and knowledge
// injection/reflection become no-ops.
func New(backend Dispatcher, model, aiName string, ctxWindow ContextProvider, toolset Toolset, knowledge KnowledgeStore, stateDir string) *Model {
	if aiName == "" {
		aiName = "ai-sysadmin"
	}
	m := &Model{
		backend:       backend,
		model:         model,
		aiName:        aiName,
		ctxWindow:     ctxWindow,
		toolset:       toolset,
		knowledge:     knowledge,
		stateDir:      stateDir,
		maxIterations: defaultMaxIterations,
		cacheDir:      resolveCacheDir(stateDir),
	}
	return m
}

// Stats returns a snapshot of the running counters.
func (m *Model) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// systemPrompt renders the fixed template with the configured name
// substituted, matching the original's {AI_NAME} placeholder.
func (m *Model) systemPrompt() string {
	return fmt.Sprintf(systemPromptTemplate, m.aiName)
}

// AnalyzeEscalation runs a deep analysis pass in response to a review
// escalation (§4.4 invocation mode 1). The full context window is
// rendered into the prompt; reason is the review layer's escalation reason.
func (m *Model) AnalyzeEscalation(ctx context.Context, reason string) (AnalysisResult, error) {
	m.mu.Lock()
	m.stats.Escalations++
	m.mu.Unlock()

	contextText := ""
	if m.ctxWindow != nil {
		contextText = m.ctxWindow.GetWindow(ctx, contextwindow.WindowOptions{IncludeSAR: true, IncludeMetrics: true})
	}

	knowledgeText := m.queryRelevantKnowledge(ctx, reason, 3)
	prompt := buildAnalysisPrompt(m.systemPrompt(), contextText, knowledgeText)

	text, err := m.backend.Generate(ctx, prompt, m.model, "", defaultTemperature, analysisMaxTokens)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("meta: analyze escalation: %w", err)
	}

	result := parseAnalysisResponse(text)
	result.EscalationReason = reason
	result.Timestamp = time.Now().UTC()

	m.logDecision(result)

	if m.ctxWindow != nil {
		m.ctxWindow.AddEvent(ctx, events.Event{
			Timestamp: result.Timestamp,
			Kind:      events.KindMetaAnalysis,
			Severity:  severityFromAnalysisStatus(result.Status),
			Source:    events.SourceMeta,
			Payload: map[string]any{
				"status":            result.Status,
				"assessment":        result.OverallAssessment,
				"escalation_reason": reason,
			},
		})
	}

	return result, nil
}

// ChatWithTools drives an operator-facing conversation through the
// tool-calling loop (§4.4 invocation mode 2) and returns the final
// assistant text.
func (m *Model) ChatWithTools(ctx context.Context, messages []inference.Message) (string, error) {
	m.mu.Lock()
	m.stats.ChatTurns++
	m.mu.Unlock()

	hasSystem := false
	for _, msg := range messages {
		if msg.Role == inference.RoleSystem {
			hasSystem = true
			break
		}
	}
	if !hasSystem {
		messages = append([]inference.Message{{Role: inference.RoleSystem, Content: m.systemPrompt()}}, messages...)
	}

	return m.runToolLoop(ctx, messages)
}

func severityFromAnalysisStatus(status string) events.Severity {
	switch status {
	case "intervention_required":
		return events.SeverityCritical
	case "attention_needed":
		return events.SeverityMedium
	default:
		return events.SeverityLow
	}
}
