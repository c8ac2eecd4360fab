package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OllamaBackend talks to Ollama's native HTTP API (`/api/generate`,
// `/api/chat`), which uses a different payload shape than the
// OpenAI-compatible surface HTTPBackend speaks. Grounded directly on
// original_source/llm_backend.py's OllamaBackend.
//
// Ollama's native API has no tool-calling fields, so ChatWithTools falls
// back to the original's prompt-based scheme for this backend only: the
// tool catalogue is rendered into the system prompt as JSON and the
// response is scanned for a balanced JSON tool-call object via
// ExtractJSON. Callers that need native tool calling should configure
// HTTPBackend instead.
type OllamaBackend struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewOllamaBackend builds a backend against baseURL (e.g.
// "http://localhost:11434").
func NewOllamaBackend(baseURL string) *OllamaBackend {
	return &OllamaBackend{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     slog.Default().With("backend", "ollama"),
	}
}

const defaultOllamaModel = "qwen3:14b"

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Generate issues a single /api/generate request.
func (b *OllamaBackend) Generate(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
	if model == "" {
		model = defaultOllamaModel
	}
	req := ollamaGenerateRequest{
		Model:   model,
		Prompt:  prompt,
		System:  system,
		Stream:  false,
		Options: ollamaOptions{Temperature: temperature, NumPredict: maxTokens},
	}

	var parsed ollamaGenerateResponse
	if err := b.post(ctx, "/api/generate", req, &parsed); err != nil {
		return "", &BackendError{Backend: "ollama", Model: model, Err: err}
	}
	return parsed.Response, nil
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

// ChatWithTools renders tools into the system prompt (Ollama has no native
// tool-calling fields) and scans the reply for a balanced JSON tool-call
// object of the shape {"tool_calls":[{"name":...,"arguments":{...}}]}. A
// reply with no such object is returned as plain assistant content.
func (b *OllamaBackend) ChatWithTools(ctx context.Context, messages []Message, tools []Tool, model string, temperature float64) (ChatResult, error) {
	if model == "" {
		model = defaultOllamaModel
	}

	wire := make([]ollamaMessage, 0, len(messages)+1)
	if len(tools) > 0 {
		wire = append(wire, ollamaMessage{Role: RoleSystem, Content: renderToolPrompt(tools)})
	}
	for _, m := range messages {
		wire = append(wire, ollamaMessage{Role: m.Role, Content: m.Content})
	}

	req := ollamaChatRequest{Model: model, Messages: wire, Stream: false, Options: ollamaOptions{Temperature: temperature}}

	var parsed ollamaChatResponse
	if err := b.post(ctx, "/api/chat", req, &parsed); err != nil {
		return ChatResult{}, &BackendError{Backend: "ollama", Model: model, Err: err}
	}

	if len(tools) == 0 {
		return ChatResult{Content: parsed.Message.Content}, nil
	}
	return parseToolCallsFromText(parsed.Message.Content), nil
}

// Available checks the /api/tags endpoint.
func (b *OllamaBackend) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/tags", nil)
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

func (b *OllamaBackend) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
