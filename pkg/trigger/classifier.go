package trigger

import "context"

// Classifier attaches an AI-derived severity/category/summary to a
// log_pattern event (§4.1 step 4). Implemented by pkg/inference against
// the small per-layer model; failures are swallowed by the caller so a
// classifier outage never blocks the base event.
type Classifier interface {
	ClassifyLog(ctx context.Context, unit, message string) (map[string]any, error)
}
