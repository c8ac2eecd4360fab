package inference

import "context"

// FakeBackend is an in-memory Backend for tests in this and other packages
// (pkg/trigger, pkg/review, pkg/meta) that need a Backend without a real
// HTTP server. GenerateFn/ChatFn default to returning empty, successful
// results when nil.
type FakeBackend struct {
	GenerateFn   func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error)
	ChatFn       func(ctx context.Context, messages []Message, tools []Tool, model string, temperature float64) (ChatResult, error)
	AvailableVal bool

	// Calls records every ChatWithTools invocation's messages, for tests
	// that need to assert on what was sent without instrumenting ChatFn.
	Calls [][]Message
}

// NewFakeBackend returns a FakeBackend reporting itself available.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{AvailableVal: true}
}

// Generate implements Backend.
func (f *FakeBackend) Generate(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
	if f.GenerateFn != nil {
		return f.GenerateFn(ctx, prompt, model, system, temperature, maxTokens)
	}
	return "", nil
}

// ChatWithTools implements Backend.
func (f *FakeBackend) ChatWithTools(ctx context.Context, messages []Message, tools []Tool, model string, temperature float64) (ChatResult, error) {
	f.Calls = append(f.Calls, messages)
	if f.ChatFn != nil {
		return f.ChatFn(ctx, messages, tools, model, temperature)
	}
	return ChatResult{}, nil
}

// Available implements Backend.
func (f *FakeBackend) Available(ctx context.Context) bool {
	return f.AvailableVal
}
