package meta

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/contextwindow"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

// ProposeFix asks the model for a concrete fix for a described issue,
// inlining relevant knowledge and any prior investigations so the model
// is steered toward an actual fix rather than repeating investigation
// (§4.4 propose_fix).
func (m *Model) ProposeFix(ctx context.Context, issueDescription string, previousInvestigations []string) (models.Proposal, error) {
	contextText := ""
	if m.ctxWindow != nil {
		contextText = m.ctxWindow.GetWindow(ctx, contextwindow.WindowOptions{IncludeSAR: true, IncludeMetrics: true})
	}

	knowledgeText := m.queryRelevantKnowledge(ctx, issueDescription, 3)
	prevText := formatPreviousInvestigations(previousInvestigations)

	prompt := buildProposeFixPrompt(m.systemPrompt(), issueDescription, contextText, knowledgeText, prevText)

	text, err := m.backend.Generate(ctx, prompt, m.model, "", defaultTemperature, analysisMaxTokens)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("meta: propose fix: %w", err)
	}

	return parseProposalResponse(text), nil
}

func formatPreviousInvestigations(investigations []string) string {
	if len(investigations) == 0 {
		return ""
	}
	limit := investigations
	if len(limit) > 3 {
		limit = limit[:3]
	}
	out := "\n\nPREVIOUS INVESTIGATIONS (DO NOT REPEAT THESE):\n"
	for i, inv := range limit {
		out += fmt.Sprintf("\nInvestigation #%d:\n%s\n", i+1, inv)
	}
	out += "\nYou have already run these investigations. Based on their results, propose an ACTUAL FIX, not more investigation.\n"
	return out
}

func parseProposalResponse(text string) models.Proposal {
	raw, err := inference.ExtractJSON(text)
	if err != nil {
		return models.Proposal{
			Diagnosis:      "Failed to parse AI response",
			ProposedAction: "manual investigation required",
			ActionType:     config.ActionInvestigation,
			RiskLevel:      config.RiskHigh,
			Reasoning:      "AI response was not in expected format",
		}
	}

	var proposal models.Proposal
	if err := json.Unmarshal(raw, &proposal); err != nil {
		return models.Proposal{
			Diagnosis:      "Failed to parse AI response",
			ProposedAction: "manual investigation required",
			ActionType:     config.ActionInvestigation,
			RiskLevel:      config.RiskHigh,
			Reasoning:      fmt.Sprintf("raw response: %s", truncateText(text, 500)),
		}
	}
	return proposal
}
