package review

import (
	"encoding/json"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
)

const rawResponseTruncateLen = 500

// parseAnalysis extracts the model's structured response (§4.3
// "Parsing"). A response with no balanced JSON object, or one that fails
// to unmarshal into Result, produces the fallback record the spec names:
// status "unknown" with the truncated raw text as the summary.
func parseAnalysis(text string) Result {
	raw, err := inference.ExtractJSON(text)
	if err == nil {
		var result Result
		if jsonErr := json.Unmarshal(raw, &result); jsonErr == nil {
			return result
		}
	}

	return Result{
		Status:      "unknown",
		Summary:     truncate(text, rawResponseTruncateLen),
		RawResponse: text,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
