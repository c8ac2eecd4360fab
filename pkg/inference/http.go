package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// HTTPBackend talks to an OpenAI-compatible chat-completions server
// (llama.cpp's `/v1` surface being the reference deployment). Unlike the
// original's `LlamaCppBackend`, which drove requests through the `openai`
// Python SDK, tool calls are sent and received as native `tools`/
// `tool_calls` request/response fields rather than embedded in prompt
// text — the original's own `meta_model.py` calls its prompt-based
// tool-calling scheme "a temporary solution until we implement proper
// function calling"; llama.cpp's OpenAI-compatible endpoint supports the
// native fields, so there is no reason to keep the workaround here.
type HTTPBackend struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewHTTPBackend builds a backend against baseURL (e.g.
// "http://127.0.0.1:40082/v1"). No API key is sent; llama.cpp does not
// require one.
func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     slog.Default().With("backend", "http"),
	}
}

type chatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []chatMessageWire `json:"messages"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Tools       []toolWire        `json:"tools,omitempty"`
}

type chatMessageWire struct {
	Role       Role           `json:"role"`
	Content    string         `json:"content"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []toolCallWire `json:"tool_calls,omitempty"`
}

type toolWire struct {
	Type     string       `json:"type"`
	Function toolFuncWire `json:"function"`
}

type toolFuncWire struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type toolCallWire struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function toolCallFuncWire `json:"function"`
}

type toolCallFuncWire struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content   string         `json:"content"`
			ToolCalls []toolCallWire `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate issues a single chat-completions request with no tools bound.
func (b *HTTPBackend) Generate(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
	var messages []Message
	if system != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: system})
	}
	messages = append(messages, Message{Role: RoleUser, Content: prompt})

	result, err := b.chat(ctx, messages, nil, model, temperature, maxTokens)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// ChatWithTools issues one chat-completions request, offering tools when any
// are given.
func (b *HTTPBackend) ChatWithTools(ctx context.Context, messages []Message, tools []Tool, model string, temperature float64) (ChatResult, error) {
	return b.chat(ctx, messages, tools, model, temperature, 0)
}

func (b *HTTPBackend) chat(ctx context.Context, messages []Message, tools []Tool, model string, temperature float64, maxTokens int) (ChatResult, error) {
	if model == "" {
		model = "local-model"
	}

	req := chatCompletionRequest{
		Model:       model,
		Messages:    make([]chatMessageWire, len(messages)),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Tools:       make([]toolWire, len(tools)),
	}
	for i, m := range messages {
		req.Messages[i] = toWireMessage(m)
	}
	for i, t := range tools {
		req.Tools[i] = toolWire{Type: "function", Function: toolFuncWire{Name: t.Name, Description: t.Description, Parameters: t.Parameters}}
	}
	if len(tools) == 0 {
		req.Tools = nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return ChatResult{}, &BackendError{Backend: "http", Model: model, Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return ChatResult{}, &BackendError{Backend: "http", Model: model, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return ChatResult{}, &BackendError{Backend: "http", Model: model, Err: fmt.Errorf("%w: %v", ErrBackendUnavailable, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return ChatResult{}, &BackendError{Backend: "http", Model: model, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(data))}
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ChatResult{}, &BackendError{Backend: "http", Model: model, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return ChatResult{}, &BackendError{Backend: "http", Model: model, Err: fmt.Errorf("response carried no choices")}
	}

	choice := parsed.Choices[0].Message
	result := ChatResult{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments})
	}
	return result, nil
}

// Available checks the server's /models endpoint, mirroring the original's
// LlamaCppBackend.is_available.
func (b *HTTPBackend) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/models", nil)
	if err != nil {
		return false
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.logger.Warn("availability probe failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func toWireMessage(m Message) chatMessageWire {
	wire := chatMessageWire{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
	for _, tc := range m.ToolCalls {
		wire.ToolCalls = append(wire.ToolCalls, toolCallWire{
			ID:       tc.ID,
			Type:     "function",
			Function: toolCallFuncWire{Name: tc.Name, Arguments: tc.Arguments},
		})
	}
	return wire
}
