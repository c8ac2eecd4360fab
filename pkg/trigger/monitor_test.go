package trigger

import (
	"context"
	"errors"
	"testing"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/events"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.TriggerConfig {
	return config.TriggerConfig{
		Thresholds: config.ThresholdsConfig{
			CPUPercent:    90,
			MemoryPercent: 85,
			DiskPercent:   90,
			LoadPerCPU:    2,
			ErrorLogRate:  10,
		},
		DebounceSeconds:    300,
		LogDebounceSeconds: 60,
		CriticalServices:   []string{"sshd", "dbus"},
		LogPatterns: []config.LogPattern{
			{Pattern: `kernel:.*panic`, Severity: "critical", Description: "Kernel panic detected"},
			{Pattern: `segfault`, Severity: "high", Description: "Segmentation fault detected"},
		},
	}
}

func TestCheckMetricsEmitsEventOnBreach(t *testing.T) {
	fake := &signal.Fake{Sample: signal.ResourceSample{CPUPercent: 95, MemoryPercent: 40, DiskPercent: 10, LoadPerCPU: 0.1}}
	m := NewMonitor(fake, testConfig(), nil)

	evts, reviewWorthy, err := m.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, events.KindMetricThreshold, evts[0].Kind)
	assert.Equal(t, events.SeverityMedium, evts[0].Severity)
	assert.False(t, reviewWorthy) // a single medium event doesn't warrant review
}

func TestCheckMetricsDebouncesRepeatedBreach(t *testing.T) {
	fake := &signal.Fake{Sample: signal.ResourceSample{CPUPercent: 95}}
	m := NewMonitor(fake, testConfig(), nil)

	evts1, _, err := m.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, evts1, 1)

	evts2, _, err := m.Check(context.Background())
	require.NoError(t, err)
	assert.Empty(t, evts2, "second breach within the debounce window must not re-fire")
}

func TestCheckServicesEmitsCriticalOnFailure(t *testing.T) {
	fake := &signal.Fake{
		Services_: []signal.ServiceStatus{
			{Name: "sshd", Active: false, State: "failed"},
			{Name: "dbus", Active: true, State: "active"},
		},
	}
	m := NewMonitor(fake, testConfig(), nil)

	evts, reviewWorthy, err := m.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, events.KindServiceFailure, evts[0].Kind)
	assert.Equal(t, events.SeverityCritical, evts[0].Severity)
	assert.Equal(t, "sshd", evts[0].PayloadString("service"))
	assert.True(t, reviewWorthy, "any critical event alone must trigger review")
}

func TestCheckJournalMatchesFirstPatternOnly(t *testing.T) {
	fake := &signal.Fake{
		Logs: []signal.LogLine{
			{Unit: "kernel", Message: "kernel: panic - segfault nearby", Priority: 2},
		},
		NextCursor: "c1",
	}
	m := NewMonitor(fake, testConfig(), nil)

	evts, _, err := m.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, events.SeverityCritical, evts[0].Severity, "first matching pattern (kernel panic) wins over segfault")
}

func TestCheckJournalAdvancesCursorEvenWithoutMatch(t *testing.T) {
	fake := &signal.Fake{
		Logs:       []signal.LogLine{{Unit: "sshd", Message: "nothing interesting here"}},
		NextCursor: "c2",
	}
	m := NewMonitor(fake, testConfig(), nil)

	_, _, err := m.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c2", m.cursor)
}

func TestCheckJournalErrorRateExceedsThreshold(t *testing.T) {
	lines := make([]signal.LogLine, 0, 11)
	for i := 0; i < 11; i++ {
		lines = append(lines, signal.LogLine{Unit: "app", Message: "boom", Priority: 3})
	}
	fake := &signal.Fake{Logs: lines, NextCursor: "c3"}
	m := NewMonitor(fake, testConfig(), nil)

	evts, _, err := m.Check(context.Background())
	require.NoError(t, err)

	var sawErrorRate bool
	for _, e := range evts {
		if e.Kind == events.KindErrorRate {
			sawErrorRate = true
		}
	}
	assert.True(t, sawErrorRate)
}

func TestCheckIsolatesFailingProbes(t *testing.T) {
	fake := &signal.Fake{
		ResourcesErr: errors.New("boom"),
		Services_:    []signal.ServiceStatus{{Name: "sshd", Active: false, State: "failed"}},
	}
	m := NewMonitor(fake, testConfig(), nil)

	evts, _, err := m.Check(context.Background())
	require.NoError(t, err)

	var sawProbeFailure, sawServiceFailure bool
	for _, e := range evts {
		switch e.Kind {
		case events.KindProbeFailure:
			sawProbeFailure = true
		case events.KindServiceFailure:
			sawServiceFailure = true
		}
	}
	assert.True(t, sawProbeFailure, "failing metrics probe must surface as its own event")
	assert.True(t, sawServiceFailure, "a failing probe must not block the independent service check")
}

func TestCheckAppliesAIClassificationToLogPatternEvents(t *testing.T) {
	fake := &signal.Fake{
		Logs:       []signal.LogLine{{Unit: "kernel", Message: "segfault in worker"}},
		NextCursor: "c4",
	}
	cfg := testConfig()
	cfg.UseAIClassification = true
	classifier := &stubClassifier{result: map[string]any{"severity": "high", "category": "system"}}
	m := NewMonitor(fake, cfg, classifier)

	evts, _, err := m.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, classifier.result, evts[0].Payload["ai_classification"])
}

func TestCheckClassificationFailureLeavesBaseEventIntact(t *testing.T) {
	fake := &signal.Fake{
		Logs:       []signal.LogLine{{Unit: "kernel", Message: "segfault in worker"}},
		NextCursor: "c5",
	}
	cfg := testConfig()
	cfg.UseAIClassification = true
	classifier := &stubClassifier{err: errors.New("backend unavailable")}
	m := NewMonitor(fake, cfg, classifier)

	evts, _, err := m.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, evts, 1)
	_, ok := evts[0].Payload["ai_classification"]
	assert.False(t, ok)
}

func TestShouldTriggerReview(t *testing.T) {
	mk := func(sev events.Severity) events.Event { return events.Event{Severity: sev} }

	assert.False(t, shouldTriggerReview(nil))
	assert.True(t, shouldTriggerReview([]events.Event{mk(events.SeverityCritical)}))
	assert.False(t, shouldTriggerReview([]events.Event{mk(events.SeverityHigh)}))
	assert.True(t, shouldTriggerReview([]events.Event{mk(events.SeverityHigh), mk(events.SeverityHigh)}))
	assert.False(t, shouldTriggerReview([]events.Event{mk(events.SeverityMedium), mk(events.SeverityMedium)}))
	assert.True(t, shouldTriggerReview([]events.Event{mk(events.SeverityMedium), mk(events.SeverityMedium), mk(events.SeverityMedium)}))
}

func TestDebouncerAllowsAfterWindowElapses(t *testing.T) {
	d := newDebouncer()
	assert.True(t, d.allow("k", 0))
	assert.True(t, d.allow("k", 0), "zero window never blocks")
}

type stubClassifier struct {
	result map[string]any
	err    error
}

func (s *stubClassifier) ClassifyLog(_ context.Context, _ string, _ string) (map[string]any, error) {
	return s.result, s.err
}
