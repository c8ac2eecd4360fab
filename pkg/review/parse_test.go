package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAnalysis_ValidJSON(t *testing.T) {
	text := `Here is my analysis:
{"status": "normal", "summary": "all good", "should_escalate": false}
Thanks.`
	result := parseAnalysis(text)
	assert.Equal(t, "normal", result.Status)
	assert.Equal(t, "all good", result.Summary)
	assert.Empty(t, result.RawResponse)
}

func TestParseAnalysis_NoJSONFallsBack(t *testing.T) {
	text := "the system looks fine, nothing to report"
	result := parseAnalysis(text)
	assert.Equal(t, "unknown", result.Status)
	assert.Equal(t, text, result.Summary)
	assert.Equal(t, text, result.RawResponse)
}

func TestParseAnalysis_MalformedJSONFallsBack(t *testing.T) {
	text := `{"status": "normal", "summary": unquoted}`
	result := parseAnalysis(text)
	assert.Equal(t, "unknown", result.Status)
	assert.Equal(t, text, result.RawResponse)
}

func TestParseAnalysis_TruncatesLongFallback(t *testing.T) {
	long := make([]byte, rawResponseTruncateLen+100)
	for i := range long {
		long[i] = 'x'
	}
	result := parseAnalysis(string(long))
	assert.Len(t, result.Summary, rawResponseTruncateLen)
	assert.Len(t, result.RawResponse, rawResponseTruncateLen+100)
}

func TestParseAnalysis_WithIssuesAndSafeActions(t *testing.T) {
	text := `{
		"status": "degraded",
		"summary": "nginx down",
		"issues": [{"severity": "high", "category": "service", "description": "nginx crashed", "affected_components": ["nginx"]}],
		"safe_actions": [{"action_type": "systemd_restart", "description": "restart", "target": "nginx", "risk": "low"}],
		"should_escalate": true,
		"escalation_reason": "service outage"
	}`
	result := parseAnalysis(text)
	assert.Equal(t, "degraded", result.Status)
	assert.Len(t, result.Issues, 1)
	assert.Equal(t, "nginx crashed", result.Issues[0].Description)
	assert.Len(t, result.SafeActions, 1)
	assert.True(t, result.ShouldEscalate)
	assert.Equal(t, "service outage", result.EscalationReason)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "", truncate("", 5))
}
