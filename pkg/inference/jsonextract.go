package inference

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON returns the outermost balanced `{...}` object found in text.
// Model responses routinely wrap structured output in prose or markdown
// fences (` ```json ... ``` `); this scans past that noise by bracket
// depth rather than requiring the response to be pure JSON. Used by the
// review and meta layers (§4.3, §4.4) to parse structured output, and by
// OllamaBackend's prompt-based tool-calling fallback.
func ExtractJSON(text string) (json.RawMessage, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, ErrNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// inside a string literal, braces don't count
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if !json.Valid([]byte(candidate)) {
					return nil, fmt.Errorf("%w: malformed braces", ErrNoJSONObject)
				}
				return json.RawMessage(candidate), nil
			}
		}
	}
	return nil, ErrNoJSONObject
}

// toolCallRequest is the JSON shape Ollama's prompt-based fallback asks the
// model to emit, one call per requested tool invocation.
type toolCallRequest struct {
	ToolCalls []struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"tool_calls"`
	Content string `json:"content"`
}

func renderToolPrompt(tools []Tool) string {
	var sb strings.Builder
	sb.WriteString("You may call the following tools. To call one or more tools, respond with ONLY a JSON object of the form ")
	sb.WriteString(`{"tool_calls":[{"name":"<tool>","arguments":{...}}]}`)
	sb.WriteString(". Otherwise respond normally. Available tools:\n")
	for _, t := range tools {
		params, _ := json.Marshal(t.Parameters)
		fmt.Fprintf(&sb, "- %s: %s params=%s\n", t.Name, t.Description, params)
	}
	return sb.String()
}

func parseToolCallsFromText(text string) ChatResult {
	raw, err := ExtractJSON(text)
	if err != nil {
		return ChatResult{Content: text}
	}

	var parsed toolCallRequest
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.ToolCalls) == 0 {
		return ChatResult{Content: text}
	}

	result := ChatResult{Content: parsed.Content}
	for i, tc := range parsed.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        fmt.Sprintf("ollama-%d", i),
			Name:      tc.Name,
			Arguments: tc.Arguments,
		})
	}
	return result
}
