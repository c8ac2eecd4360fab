package notify

import (
	"regexp"
	"strings"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// normalizeText collapses whitespace and case for fingerprint comparison,
// the same normalization pkg/slack applies before matching fingerprints.
func normalizeText(s string) string {
	s = strings.ToLower(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var severityRank = map[string]int{
	"low":      0,
	"medium":   1,
	"high":     2,
	"critical": 3,
}

// ShouldNotify reports whether severity meets or exceeds cfg's configured
// MinSeverity (default "high" per §4.12). It is a standalone helper: the
// tracker does not call it, and the orchestrator gates Sink.Send with its
// own check (critical trigger events, new critical/high issues).
func ShouldNotify(severity string, cfg config.NotifyConfig) bool {
	min := cfg.MinSeverity
	if min == "" {
		min = "high"
	}
	minRank, ok := severityRank[min]
	if !ok {
		minRank = severityRank["high"]
	}
	rank, ok := severityRank[severity]
	if !ok {
		return false
	}
	return rank >= minRank
}
