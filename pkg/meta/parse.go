package meta

import (
	"encoding/json"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
)

// parseAnalysisResponse extracts the model's structured analysis. A
// response with no balanced JSON object, or one that fails to unmarshal,
// falls back to a "healthy, nothing parsed" record with the raw text
// preserved for diagnosis — the original returns the same shape rather
// than failing the escalation outright.
func parseAnalysisResponse(text string) AnalysisResult {
	raw, err := inference.ExtractJSON(text)
	if err == nil {
		var result AnalysisResult
		if jsonErr := json.Unmarshal(raw, &result); jsonErr == nil {
			return result
		}
	}

	return AnalysisResult{
		Status:            "healthy",
		OverallAssessment: "Unable to parse AI response",
		RawResponse:       text,
	}
}
