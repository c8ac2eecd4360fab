// Package trigger implements the always-on Layer 1 monitor (§4.1):
// converts raw host signals into typed events, debounces repeats, and
// decides whether the resulting batch warrants a review-layer pass.
package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/events"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/metrics"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/signal"
	"golang.org/x/sync/errgroup"
)

const (
	defaultDebounceWindow    = 300 * time.Second
	defaultLogDebounceWindow = 60 * time.Second
	initialJournalLookback   = "5 minutes ago"
)

// Stats mirrors the original monitor's running counters, exposed for the
// orchestrator's status endpoint.
type Stats struct {
	ChecksPerformed      int
	TriggersFired        int
	PatternsMatched      int
	ModelClassifications int
}

// Monitor runs one check pass per call to Check. It is safe for use by a
// single caller at a time; concurrent Check calls race on the journal
// cursor and are not supported.
type Monitor struct {
	source     signal.Source
	cfg        config.TriggerConfig
	classifier Classifier
	debounce   *debouncer
	patterns   []compiledPattern

	mu           sync.Mutex
	cursor       string
	cursorWarned bool
	firstRun     bool
	stats        Stats
}

type compiledPattern struct {
	re          *regexp.Regexp
	severity    events.Severity
	description string
	raw         string
}

// NewMonitor builds a Monitor from a signal source and the §4.1 config
// section. Malformed regexes in cfg.LogPatterns are skipped with a
// warning rather than rejected — config validation already enforces
// non-empty patterns, but a bad regex should degrade, not crash startup.
func NewMonitor(source signal.Source, cfg config.TriggerConfig, classifier Classifier) *Monitor {
	patterns := make([]compiledPattern, 0, len(cfg.LogPatterns))
	for _, p := range cfg.LogPatterns {
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			slog.Warn("trigger: skipping invalid log pattern", "pattern", p.Pattern, "error", err)
			continue
		}
		sev := events.Severity(strings.ToLower(p.Severity))
		if sev == "" {
			sev = events.SeverityMedium
		}
		patterns = append(patterns, compiledPattern{re: re, severity: sev, description: p.Description, raw: p.Pattern})
	}

	return &Monitor{
		source:     source,
		cfg:        cfg,
		classifier: classifier,
		debounce:   newDebouncer(),
		patterns:   patterns,
		firstRun:   true,
	}
}

// Stats returns a snapshot of the running counters.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	return s
}

func (m *Monitor) debounceWindow() time.Duration {
	if m.cfg.DebounceSeconds > 0 {
		return time.Duration(m.cfg.DebounceSeconds) * time.Second
	}
	return defaultDebounceWindow
}

func (m *Monitor) logDebounceWindow() time.Duration {
	if m.cfg.LogDebounceSeconds > 0 {
		return time.Duration(m.cfg.LogDebounceSeconds) * time.Second
	}
	return defaultLogDebounceWindow
}

// Check runs one full pass: metrics, services, and journal checks run
// concurrently and in isolation from one another (§4.1 failure
// semantics), then the combined batch is scored for review-worthiness.
func (m *Monitor) Check(ctx context.Context) ([]events.Event, bool, error) {
	m.mu.Lock()
	m.stats.ChecksPerformed++
	m.mu.Unlock()

	var metricEvts, serviceEvts, journalEvts []events.Event

	g := new(errgroup.Group)
	g.Go(func() error {
		metricEvts = m.runIsolated(ctx, "metrics", m.checkMetrics)
		return nil
	})
	g.Go(func() error {
		serviceEvts = m.runIsolated(ctx, "services", m.checkServices)
		return nil
	})
	g.Go(func() error {
		journalEvts = m.runIsolated(ctx, "journal", m.checkJournal)
		return nil
	})
	_ = g.Wait() // each goroutine isolates its own error; Wait never fails

	all := make([]events.Event, 0, len(metricEvts)+len(serviceEvts)+len(journalEvts))
	all = append(all, metricEvts...)
	all = append(all, serviceEvts...)
	all = append(all, journalEvts...)

	m.mu.Lock()
	m.stats.TriggersFired += len(all)
	m.mu.Unlock()

	return all, shouldTriggerReview(all), nil
}

// runIsolated runs one probe check and converts a hard failure (error or
// panic) into a single debounced probe_failure event rather than letting
// it abort the pass or take down the caller.
func (m *Monitor) runIsolated(ctx context.Context, name string, fn func(context.Context) ([]events.Event, error)) []events.Event {
	evts, err := m.safeRun(ctx, fn)
	if err != nil {
		metrics.RecordTriggerCheck("failed")
		slog.Warn("trigger check failed", "check", name, "error", err)
		if m.debounce.allow("probe_failure_"+name, m.debounceWindow()) {
			evts = append(evts, events.Event{
				Timestamp: time.Now().UTC(),
				Kind:      events.KindProbeFailure,
				Severity:  events.SeverityHigh,
				Source:    events.SourceTrigger,
				Payload: map[string]any{
					"check":   name,
					"message": fmt.Sprintf("%s check failed: %v", name, err),
				},
			})
		}
		return evts
	}
	metrics.RecordTriggerCheck("ok")
	return evts
}

func (m *Monitor) safeRun(ctx context.Context, fn func(context.Context) ([]events.Event, error)) (evts []events.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

func newMetricEvent(triggerType string, severity events.Severity, value, threshold float64, message string) events.Event {
	return events.Event{
		Timestamp: time.Now().UTC(),
		Kind:      events.KindMetricThreshold,
		Severity:  severity,
		Source:    events.SourceTrigger,
		Payload: map[string]any{
			"trigger_type": triggerType,
			"value":        value,
			"threshold":    threshold,
			"message":      message,
		},
	}
}

func (m *Monitor) checkMetrics(ctx context.Context) ([]events.Event, error) {
	sample, err := m.source.Resources(ctx)
	if err != nil {
		return nil, err
	}

	th := m.cfg.Thresholds
	var evts []events.Event
	window := m.debounceWindow()

	if sample.CPUPercent > th.CPUPercent && m.debounce.allow("cpu_high", window) {
		evts = append(evts, newMetricEvent("cpu_high", events.SeverityMedium, sample.CPUPercent, th.CPUPercent,
			fmt.Sprintf("CPU usage %.1f%% exceeds threshold %.1f%%", sample.CPUPercent, th.CPUPercent)))
	}
	if sample.MemoryPercent > th.MemoryPercent && m.debounce.allow("memory_high", window) {
		evts = append(evts, newMetricEvent("memory_high", events.SeverityMedium, sample.MemoryPercent, th.MemoryPercent,
			fmt.Sprintf("Memory usage %.1f%% exceeds threshold %.1f%%", sample.MemoryPercent, th.MemoryPercent)))
	}
	if sample.DiskPercent > th.DiskPercent && m.debounce.allow("disk_high", window) {
		evts = append(evts, newMetricEvent("disk_high", events.SeverityHigh, sample.DiskPercent, th.DiskPercent,
			fmt.Sprintf("Disk usage %.1f%% exceeds threshold %.1f%%", sample.DiskPercent, th.DiskPercent)))
	}
	if sample.LoadPerCPU > th.LoadPerCPU && m.debounce.allow("load_high", window) {
		evts = append(evts, newMetricEvent("load_high", events.SeverityMedium, sample.LoadPerCPU, th.LoadPerCPU,
			fmt.Sprintf("Load average per CPU %.2f exceeds threshold %.2f", sample.LoadPerCPU, th.LoadPerCPU)))
	}

	return evts, nil
}

func (m *Monitor) checkServices(ctx context.Context) ([]events.Event, error) {
	if len(m.cfg.CriticalServices) == 0 {
		return nil, nil
	}

	statuses, err := m.source.Services(ctx, m.cfg.CriticalServices)
	if err != nil {
		return nil, err
	}

	window := m.debounceWindow()
	var evts []events.Event
	for _, st := range statuses {
		if st.State == "active" || st.State == "activating" || st.State == "unknown" {
			continue
		}
		if !m.debounce.allow("service_"+st.Name+"_failed", window) {
			continue
		}
		evts = append(evts, events.Event{
			Timestamp: time.Now().UTC(),
			Kind:      events.KindServiceFailure,
			Severity:  events.SeverityCritical,
			Source:    events.SourceTrigger,
			Payload: map[string]any{
				"trigger_type": "service_failed",
				"service":      st.Name,
				"status":       st.State,
				"message":      fmt.Sprintf("Critical service %s is %s", st.Name, st.State),
			},
		})
	}
	return evts, nil
}

func (m *Monitor) checkJournal(ctx context.Context) ([]events.Event, error) {
	m.mu.Lock()
	cursor := m.cursor
	first := m.firstRun
	m.mu.Unlock()

	lines, newCursor, err := m.source.LogsSince(ctx, cursor)
	if err != nil {
		if cursor != "" {
			// Cursor rejected by the journal (log rotation, reboot):
			// restart from the lookback window and warn once.
			m.mu.Lock()
			warn := !m.cursorWarned
			m.cursorWarned = true
			m.cursor = ""
			m.mu.Unlock()
			if warn {
				slog.Warn("trigger: journal cursor lost, restarting from lookback window", "lookback", initialJournalLookback, "error", err)
			}
			return nil, nil
		}
		return nil, err
	}

	m.mu.Lock()
	m.cursor = newCursor
	m.firstRun = false
	m.mu.Unlock()
	_ = first

	if len(lines) == 0 {
		return nil, nil
	}

	window := m.logDebounceWindow()
	var evts []events.Event
	errorCount := 0

	for _, line := range lines {
		if line.Priority >= 0 && line.Priority <= 3 {
			errorCount++
		}

		pat, matched := m.matchPattern(line.Message)
		if !matched {
			continue
		}

		m.mu.Lock()
		m.stats.PatternsMatched++
		m.mu.Unlock()

		key := "pattern_" + pat.raw
		if len(key) > 28 {
			key = key[:28]
		}
		if !m.debounce.allow(key, window) {
			continue
		}

		evt := events.Event{
			Timestamp: time.Now().UTC(),
			Kind:      events.KindLogPattern,
			Severity:  pat.severity,
			Source:    events.SourceTrigger,
			Payload: map[string]any{
				"trigger_type": "pattern_match",
				"pattern":      pat.raw,
				"description":  pat.description,
				"message":      truncate(line.Message, 200),
				"unit":         line.Unit,
			},
		}

		if m.cfg.UseAIClassification && m.classifier != nil {
			m.mu.Lock()
			m.stats.ModelClassifications++
			m.mu.Unlock()
			if classification, err := m.classifier.ClassifyLog(ctx, line.Unit, line.Message); err == nil {
				evt.Payload["ai_classification"] = classification
			}
			// Classification failures are swallowed; the base event stands.
		}

		evts = append(evts, evt)
	}

	th := m.cfg.Thresholds
	if float64(errorCount) > th.ErrorLogRate && m.debounce.allow("error_rate_high", window) {
		evts = append(evts, events.Event{
			Timestamp: time.Now().UTC(),
			Kind:      events.KindErrorRate,
			Severity:  events.SeverityMedium,
			Source:    events.SourceTrigger,
			Payload: map[string]any{
				"trigger_type": "high_error_rate",
				"error_count":  errorCount,
				"threshold":    th.ErrorLogRate,
				"message":      fmt.Sprintf("High error rate: %d errors in recent logs", errorCount),
			},
		})
	}

	return evts, nil
}

func (m *Monitor) matchPattern(message string) (compiledPattern, bool) {
	for _, p := range m.patterns {
		if p.re.MatchString(message) {
			return p, true
		}
	}
	return compiledPattern{}, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// shouldTriggerReview implements §4.1 step 5: any critical event, or
// two-plus high, or three-plus medium, warrants a review pass.
func shouldTriggerReview(evts []events.Event) bool {
	if len(evts) == 0 {
		return false
	}

	var critical, high, medium int
	for _, e := range evts {
		switch e.Severity {
		case events.SeverityCritical:
			critical++
		case events.SeverityHigh:
			high++
		case events.SeverityMedium:
			medium++
		}
	}

	return critical > 0 || high >= 2 || medium >= 3
}
