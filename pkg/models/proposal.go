// Package models holds the data-model types shared across the review,
// meta, executor, and tracker layers (spec §3): Proposal, ExecutionResult,
// ApprovalQueueEntry, Issue, KnowledgeItem, LLMRequest. None of these
// types owns behaviour beyond small invariant-preserving helpers — the
// owning component (pkg/executor, pkg/tracker, pkg/llmqueue) holds the
// logic.
package models

import "github.com/codeready-toolchain/ai-sysadmin/pkg/config"

// Proposal is a remediation recommendation produced by the review or meta
// layer and consumed by the executor.
type Proposal struct {
	Diagnosis      string            `json:"diagnosis"`
	ProposedAction string            `json:"proposed_action"`
	ActionType     config.ActionType `json:"action_type"`
	RiskLevel      config.RiskLevel  `json:"risk_level"`
	Commands       []string          `json:"commands,omitempty"`
	ConfigChanges  map[string]any    `json:"config_changes,omitempty"`
	Reasoning      string            `json:"reasoning,omitempty"`
	RollbackPlan   string            `json:"rollback_plan,omitempty"`
}
