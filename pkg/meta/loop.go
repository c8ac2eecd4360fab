package meta

import (
	"context"
	"log/slog"
	"strings"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
)

// contextTooLongMarkers are substrings looked for in a backend error to
// recognise a "context window exceeded" failure (§4.4: "On HTTP 'context
// too long' errors, reset the history..."). Backends surface this as
// plain HTTP-error text rather than a structured code, so this is a
// best-effort heuristic rather than an exact status check.
var contextTooLongMarkers = []string{"context_length_exceeded", "context length", "too long", "context window"}

func isContextTooLongError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range contextTooLongMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// runToolLoop drives the §4.4 tool-calling loop: prune, dispatch,
// execute any tool calls through the toolset (summarising large
// results), append as tool-role messages, and repeat until the model
// returns plain text or the iteration bound is reached. Tool failures
// become observations and the iteration bound yields a fixed text reply;
// a backend error, including a second context overflow after the one
// reset-and-retry, is returned to the caller as an error rather than as
// a structured text response.
func (m *Model) runToolLoop(ctx context.Context, messages []inference.Message) (string, error) {
	var tools []inference.Tool
	if m.toolset != nil {
		tools = m.toolset.ListTools()
	}

	retriedContextOverflow := false

	for iteration := 0; iteration < m.maxIterations; iteration++ {
		messages = pruneMessages(messages, defaultPruneBudgetTokens)

		result, err := m.backend.ChatWithTools(ctx, messages, tools, m.model, defaultTemperature)
		if err != nil {
			if isContextTooLongError(err) && !retriedContextOverflow {
				retriedContextOverflow = true
				messages = resetToSystemAndLastUser(messages)
				slog.Warn("meta: context window exceeded, retrying with reset history")
				continue
			}
			return "", err
		}

		if len(result.ToolCalls) == 0 {
			return result.Content, nil
		}

		messages = append(messages, inference.Message{Role: inference.RoleAssistant, Content: result.Content, ToolCalls: result.ToolCalls})

		for _, call := range result.ToolCalls {
			m.mu.Lock()
			m.stats.ToolCalls++
			m.mu.Unlock()

			observation := m.executeTool(ctx, call)
			messages = append(messages, inference.Message{Role: inference.RoleTool, ToolCallID: call.ID, Content: observation})
		}
	}

	return "Maximum tool calling iterations reached. Unable to complete request.", nil
}

// executeTool dispatches one tool call and returns the (possibly
// summarised) text to feed back as the tool-role observation. Toolset
// errors become the observation itself rather than aborting the loop —
// the model should see and react to a failed tool call.
func (m *Model) executeTool(ctx context.Context, call inference.ToolCall) string {
	if m.toolset == nil {
		return "tool execution is not available"
	}

	result, err := m.toolset.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		return "tool error: " + err.Error()
	}

	return m.summarizeToolResult(ctx, call.Name, result.Content)
}

func resetToSystemAndLastUser(messages []inference.Message) []inference.Message {
	var systemMsg *inference.Message
	var lastUser *inference.Message
	for i := range messages {
		switch messages[i].Role {
		case inference.RoleSystem:
			if systemMsg == nil {
				msg := messages[i]
				systemMsg = &msg
			}
		case inference.RoleUser:
			msg := messages[i]
			lastUser = &msg
		}
	}

	out := make([]inference.Message, 0, 2)
	if systemMsg != nil {
		out = append(out, *systemMsg)
	}
	if lastUser != nil {
		out = append(out, *lastUser)
	}
	return out
}
