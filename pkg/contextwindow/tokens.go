// Package contextwindow implements the §4.2 rolling context buffer: a
// token-budgeted, compressing window over recent events with write-through
// to the time-series store and read-through to the vector store. Named to
// avoid colliding with the stdlib "context" package.
package contextwindow

// charsPerToken approximates one token per 4 characters of English text,
// following pkg/mcp/tokens.go's EstimateTokens heuristic — no tokenizer
// library is wired in since the estimate is a soft budget, not a hard
// boundary shared with an actual model call.
const charsPerToken = 4

// estimateTokens counts tokens in text, rounding down (unlike the
// ceiling round used for storage-truncation thresholds elsewhere in the
// teacher's codebase) to match §4.2's "len(text)/4 rounded down" rule.
func estimateTokens(text string) int {
	return len(text) / charsPerToken
}
