package llmqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
)

const defaultWaitTimeout = 5 * time.Minute

// Client submits requests through a Queue and blocks for their result,
// satisfying pkg/meta's Dispatcher interface (and inference.Backend minus
// Available) without callers knowing a queue sits underneath. When queue
// is nil, or a submission fails, Client falls back to calling backend
// directly — §4.9 "Graceful degradation": callers that cannot write to
// the queue directory must fall back to direct backend calls, silently.
// The one exception is the autonomous dedup: ErrAlreadyInProgress from
// Submit is returned to the caller without a direct call.
type Client struct {
	queue    *Queue
	fallback inference.Backend
	priority config.Priority

	waitTimeout  time.Duration
	pollInterval time.Duration
}

// ClientOption customises a Client at construction time.
type ClientOption func(*Client)

// WithPriority overrides the default PriorityInteractive submission
// priority (e.g. PriorityAutonomous for background reviewers).
func WithPriority(p config.Priority) ClientOption {
	return func(c *Client) { c.priority = p }
}

// WithWaitTimeout overrides the default 5-minute result wait timeout.
func WithWaitTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.waitTimeout = d }
}

// NewClient builds a Client. queue may be nil to always use fallback
// directly (e.g. a component explicitly opted out of queueing).
func NewClient(queue *Queue, fallback inference.Backend, opts ...ClientOption) *Client {
	c := &Client{
		queue:        queue,
		fallback:     fallback,
		priority:     config.PriorityInteractive,
		waitTimeout:  defaultWaitTimeout,
		pollInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate implements the Dispatcher/Backend Generate method via the
// queue, falling back to a direct call on submission failure.
func (c *Client) Generate(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
	if c.queue == nil {
		return c.directGenerate(ctx, prompt, model, system, temperature, maxTokens)
	}

	payload := GeneratePayload{Prompt: prompt, Model: model, System: system, Temperature: temperature, MaxTokens: maxTokens}
	id, err := c.queue.Submit(config.RequestGenerate, payload, c.priority)
	if err != nil {
		if errors.Is(err, ErrAlreadyInProgress) {
			return "", err
		}
		slog.Warn("llmqueue: submit failed, falling back to direct dispatch", "error", err)
		return c.directGenerate(ctx, prompt, model, system, temperature, maxTokens)
	}

	raw, err := c.queue.WaitForResult(ctx, id, c.waitTimeout, c.pollInterval, nil)
	if err != nil {
		return "", err
	}
	var result GenerateResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("llmqueue: unmarshal generate result: %w", err)
	}
	return result.Text, nil
}

func (c *Client) directGenerate(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
	if c.fallback == nil {
		return "", errors.New("llmqueue: no queue and no fallback backend configured")
	}
	return c.fallback.Generate(ctx, prompt, model, system, temperature, maxTokens)
}

// ChatWithTools implements the Dispatcher/Backend method via the queue,
// falling back to a direct call on submission failure.
func (c *Client) ChatWithTools(ctx context.Context, messages []inference.Message, tools []inference.Tool, model string, temperature float64) (inference.ChatResult, error) {
	if c.queue == nil {
		return c.directChat(ctx, messages, tools, model, temperature)
	}

	kind := config.RequestChat
	if len(tools) > 0 {
		kind = config.RequestChatWithTools
	}

	payload := ChatPayload{Messages: messages, Tools: tools, Model: model, Temperature: temperature}
	id, err := c.queue.Submit(kind, payload, c.priority)
	if err != nil {
		if errors.Is(err, ErrAlreadyInProgress) {
			return inference.ChatResult{}, err
		}
		slog.Warn("llmqueue: submit failed, falling back to direct dispatch", "error", err)
		return c.directChat(ctx, messages, tools, model, temperature)
	}

	raw, err := c.queue.WaitForResult(ctx, id, c.waitTimeout, c.pollInterval, nil)
	if err != nil {
		return inference.ChatResult{}, err
	}
	var result inference.ChatResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return inference.ChatResult{}, fmt.Errorf("llmqueue: unmarshal chat result: %w", err)
	}
	return result, nil
}

func (c *Client) directChat(ctx context.Context, messages []inference.Message, tools []inference.Tool, model string, temperature float64) (inference.ChatResult, error) {
	if c.fallback == nil {
		return inference.ChatResult{}, errors.New("llmqueue: no queue and no fallback backend configured")
	}
	return c.fallback.ChatWithTools(ctx, messages, tools, model, temperature)
}
