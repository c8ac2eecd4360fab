package inference

import (
	"context"
	"encoding/json"
	"fmt"
)

const classificationMaxTokens = 200

const classificationSystemPrompt = `You classify a single host log line. Respond with ONLY a JSON object: ` +
	`{"severity":"critical|high|medium|low","category":"<short tag>","summary":"<one sentence>","recommended_action":"<one sentence or empty>"}.`

// LogClassifier adapts a Backend to pkg/trigger.Classifier (§4.1 step 4,
// "Optional AI classification"): a small-model, budget-capped call that
// attaches ai_classification to a log_pattern event. Failures are returned
// to the caller, which swallows them per spec — this type itself never
// hides an error.
type LogClassifier struct {
	backend Backend
	model   string
}

// NewLogClassifier builds a classifier that dispatches to backend using
// model (typically InferenceConfig.TriggerModel — the small per-layer
// model, not the main Model).
func NewLogClassifier(backend Backend, model string) *LogClassifier {
	return &LogClassifier{backend: backend, model: model}
}

// ClassifyLog implements pkg/trigger.Classifier.
func (c *LogClassifier) ClassifyLog(ctx context.Context, unit, message string) (map[string]any, error) {
	prompt := fmt.Sprintf("unit=%s message=%s", unit, message)

	text, err := c.backend.Generate(ctx, prompt, c.model, classificationSystemPrompt, 0.2, classificationMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("classify log: %w", err)
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		// Parse failure (spec §7): wrap the raw text rather than fail the caller.
		return map[string]any{
			"severity":     "unknown",
			"summary":      text,
			"raw_response": text,
		}, nil
	}

	var classification map[string]any
	if jsonErr := json.Unmarshal(raw, &classification); jsonErr != nil {
		return map[string]any{
			"severity":     "unknown",
			"summary":      text,
			"raw_response": text,
		}, nil
	}
	return classification, nil
}
