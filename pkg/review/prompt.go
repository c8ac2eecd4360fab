package review

import "fmt"

const responseSchema = `{
  "status": "normal|degraded|critical",
  "summary": "brief summary",
  "issues": [
    {"severity": "low|medium|high|critical", "category": "service|resource|security|performance|other", "description": "what's wrong", "affected_components": ["list"]}
  ],
  "patterns": ["pattern 1", "pattern 2"],
  "safe_actions": [
    {"action_type": "systemd_restart|cleanup|investigation", "description": "what to do", "target": "service name or component", "risk": "low"}
  ],
  "should_escalate": false,
  "escalation_reason": "explanation if true"
}`

// buildPrompt renders the fixed §4.3 template: trigger reason, context
// window, and the enumerated JSON response schema.
func buildPrompt(contextText, triggeredBy string) string {
	return fmt.Sprintf(`You are a system administrator AI conducting a routine system review.

Triggered by: %s

Current System Context:
%s

Analyze the system state and respond in JSON format with this structure:
%s

Focus on service health and failures, resource usage trends, error patterns in logs, security concerns, and performance anomalies.`,
		triggeredBy, contextText, responseSchema)
}
