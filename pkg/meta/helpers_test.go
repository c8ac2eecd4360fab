package meta

import (
	"context"
	"testing"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
)

// fakeBackendWithGenerate returns a FakeBackend whose Generate always
// returns text, ignoring the prompt.
func fakeBackendWithGenerate(t *testing.T, text string) *inference.FakeBackend {
	t.Helper()
	backend := inference.NewFakeBackend()
	backend.GenerateFn = func(ctx context.Context, prompt, model, system string, temperature float64, maxTokens int) (string, error) {
		return text, nil
	}
	return backend
}
