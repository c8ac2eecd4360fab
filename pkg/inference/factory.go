package inference

import (
	"fmt"
	"strings"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
)

// New builds the configured Backend. cfg.BackendURL's scheme/path decides
// which concrete backend to use: a URL ending in "/v1" (or with no
// distinguishing suffix) is treated as the OpenAI-compatible surface
// (HTTPBackend); a URL pointing at Ollama's default port or containing
// "ollama" selects OllamaBackend. This mirrors the original's
// create_backend(backend_type, **config) factory, just inferring the type
// from the URL instead of a separate config field, since the spec's
// InferenceConfig carries only backend_url.
func New(cfg config.InferenceConfig) (Backend, error) {
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("inference: backend_url is required")
	}

	if strings.Contains(cfg.BackendURL, "ollama") || strings.Contains(cfg.BackendURL, ":11434") {
		return NewOllamaBackend(cfg.BackendURL), nil
	}
	return NewHTTPBackend(cfg.BackendURL), nil
}
