package meta

import "fmt"

// systemPromptTemplate mirrors original_source/system_prompt.txt's
// {AI_NAME} placeholder convention, condensed to this package's scope.
const systemPromptTemplate = `You are %s, an autonomous AI system maintenance agent.

You monitor and maintain this host. You can investigate problems, propose
fixes, and explain your reasoning clearly. Be thorough but not alarmist:
only recommend action when it is truly warranted, and always explain the
risk and rollback plan for anything you propose.`

const analysisResponseSchema = `{
  "status": "one of: healthy, attention_needed, intervention_required",
  "issues": [
    {"severity": "one of: info, warning, critical", "category": "one of: resources, services, disk, network, logs", "description": "brief description", "requires_action": true/false}
  ],
  "overall_assessment": "brief summary of system health",
  "recommended_actions": ["list of recommended actions, if any"]
}`

func buildAnalysisPrompt(systemPrompt, contextText, knowledgeText string) string {
	return fmt.Sprintf(`%s

TASK: ANALYZE SYSTEM HEALTH
================================================================================

OBJECTIVE:
Analyze the current system state and determine if any action is needed.
Be thorough but not alarmist. Only recommend action if truly necessary.

CURRENT SYSTEM STATE:
%s
%s

YOUR RESPONSE MUST BE VALID JSON:
%s

RESPOND WITH ONLY THE JSON, NO OTHER TEXT.`,
		systemPrompt, contextText, knowledgeText, analysisResponseSchema)
}

const proposeFixResponseSchema = `{
  "diagnosis": "brief description of what you think is wrong",
  "proposed_action": "specific action to take",
  "action_type": "one of: systemd_restart, nix_rebuild, config_change, cleanup, investigation",
  "risk_level": "one of: low, medium, high",
  "commands": ["list", "of", "shell", "commands"],
  "config_changes": {"file": "path/to/config", "change": "description of change needed"},
  "reasoning": "why this fix should work",
  "rollback_plan": "how to undo if it doesn't work"
}`

func buildProposeFixPrompt(systemPrompt, issueDescription, contextText, knowledgeText, previousInvestigations string) string {
	return fmt.Sprintf(`%s

TASK: PROPOSE FIX
================================================================================

ISSUE TO ADDRESS:
%s

SYSTEM CONTEXT:
%s
%s
%s

YOUR RESPONSE MUST BE VALID JSON:
%s

RESPOND WITH ONLY THE JSON, NO OTHER TEXT.`,
		systemPrompt, issueDescription, contextText, knowledgeText, previousInvestigations, proposeFixResponseSchema)
}
