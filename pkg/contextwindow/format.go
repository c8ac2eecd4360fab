package contextwindow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WindowOptions controls which optional sections GetWindow renders.
type WindowOptions struct {
	IncludeSAR     bool
	IncludeMetrics bool
	MaxTokens      int // 0 means "use the configured budget"
}

// GetWindow renders the current buffer as the ordered text block §4.2
// specifies: header, metrics summary, SAR snapshot, recent-events tail
// (newest first), statistics footer. Sections are added in that order
// and each is skipped once it would push the running total past
// maxTokens, so no later section can blow the overall budget.
func (w *Window) GetWindow(ctx context.Context, opts WindowOptions) string {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = w.budget
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	var sections []string
	used := 0

	header := w.header()
	sections = append(sections, header)
	used += estimateTokens(header)

	if opts.IncludeMetrics && w.store != nil {
		metrics := w.metricsSummary(ctx)
		if t := estimateTokens(metrics); used+t < maxTokens {
			sections = append(sections, metrics)
			used += t
		}
	}

	if opts.IncludeSAR && w.sar != nil && w.sar.Available() {
		sar := w.sar.Snapshot(1)
		if t := estimateTokens(sar); used+t < maxTokens {
			sections = append(sections, sar)
			used += t
		}
	}

	sections = append(sections, w.recentEntriesSection(maxTokens-used))
	sections = append(sections, w.footer())

	return strings.Join(sections, "\n\n")
}

func (w *Window) header() string {
	return fmt.Sprintf(
		"=== AI System Administrator Context ===\nHostname: %s\nTimestamp: %s\nContext Window: %d/%d tokens\nActive Entries: %d",
		w.hostname, time.Now().UTC().Format(time.RFC3339), w.tokenCount, w.budget, len(w.entries))
}

func (w *Window) metricsSummary(ctx context.Context) string {
	latest, err := w.store.LatestMetrics(ctx, w.hostname)
	if err != nil {
		return fmt.Sprintf("Recent Metrics: error retrieving data - %v", err)
	}
	if len(latest) == 0 {
		return "Recent Metrics: No data available"
	}

	lines := []string{"Recent System Metrics:"}
	for name, reading := range latest {
		lines = append(lines, fmt.Sprintf("  %s: %.1f%s (%s)", name, reading.Value, reading.Unit, reading.Age))
	}
	return strings.Join(lines, "\n")
}

func (w *Window) recentEntriesSection(remainingTokens int) string {
	lines := []string{"Recent Events:", ""}

	for i := len(w.entries) - 1; i >= 0; i-- {
		e := w.entries[i]
		if e.TokenCount > remainingTokens {
			break
		}

		var body string
		if e.Compressed {
			body = e.PayloadString("summary")
			if body == "" {
				body = "Compressed event"
			}
		} else {
			b, _ := json.MarshalIndent(e, "", "  ")
			body = string(b)
		}

		lines = append(lines, fmt.Sprintf("[%s] [%s] %s", e.Timestamp.Format(time.RFC3339), e.Source, body), "")
		remainingTokens -= e.TokenCount
	}

	return strings.Join(lines, "\n")
}

func (w *Window) footer() string {
	utilization := 0.0
	if w.budget > 0 {
		utilization = float64(w.tokenCount) / float64(w.budget) * 100
	}
	return fmt.Sprintf(
		"=== Context Statistics ===\nTotal entries: %d\nCurrent tokens: %d\nMax tokens: %d\nUtilization: %.1f%%\nCompressions performed: %d\nTokens saved: %d",
		len(w.entries), w.tokenCount, w.budget, utilization, w.stats.TotalCompressions, w.stats.TokensSaved)
}
