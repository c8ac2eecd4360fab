package contextwindow

import (
	"fmt"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/events"
)

// compressLocked compresses old, eligible entries until the buffer's
// token total is at or below target (or there is nothing left to
// compress). Caller must hold w.mu for writing.
func (w *Window) compressLocked(target int) {
	tokensToFree := w.tokenCount - target
	if tokensToFree <= 0 {
		return
	}

	cutoff := time.Now().Add(-compressionEligibilityAge)
	var freed, compressedCount int

	for i := range w.entries {
		if freed >= tokensToFree {
			break
		}
		e := &w.entries[i]
		if e.Compressed || e.Severity == events.SeverityCritical || e.Timestamp.After(cutoff) {
			continue
		}

		original := e.TokenCount
		e.Payload = map[string]any{"summary": summarize(*e)}
		e.Compressed = true
		e.TokenCount = measureTokens(*e)

		saved := original - e.TokenCount
		freed += saved
		compressedCount++
	}

	if compressedCount == 0 {
		return
	}

	w.tokenCount -= freed
	w.stats.TotalCompressions++
	w.stats.TokensSaved += freed
	w.stats.EntriesCompressed += compressedCount
}

// summarize produces a rule-based one-line summary of evt, keyed by
// Kind, matching §4.2's compression table.
func summarize(evt events.Event) string {
	switch evt.Kind {
	case events.KindMetricThreshold:
		return fmt.Sprintf("%s: %.1f", evt.PayloadString("trigger_type"), evt.PayloadFloat("value"))
	case events.KindLogPattern:
		return fmt.Sprintf("Log: %s - %s", evt.Severity, evt.PayloadString("description"))
	case events.KindServiceFailure:
		return fmt.Sprintf("Service %s: %s", evt.PayloadString("service"), evt.PayloadString("status"))
	default:
		if msg := evt.PayloadString("message"); msg != "" {
			return truncate(msg, 100)
		}
		return fmt.Sprintf("%s event", evt.Kind)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
