package inference

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable indicates the backend did not respond to an
	// availability probe or a request within its timeout.
	ErrBackendUnavailable = errors.New("inference backend unavailable")

	// ErrNoJSONObject indicates ExtractJSON found no balanced JSON object
	// in a model response that was expected to carry one.
	ErrNoJSONObject = errors.New("no JSON object found in response")
)

// BackendError wraps a failure from a concrete backend with the backend's
// name and the request model, so logs can tell llama.cpp and Ollama
// failures apart without parsing the message text.
type BackendError struct {
	Backend string
	Model   string
	Err     error
}

// Error returns the formatted error message.
func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend (model %s): %v", e.Backend, e.Model, e.Err)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Err
}
