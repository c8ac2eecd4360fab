package models

import "time"

// ApprovalDecision is the human-in-the-loop outcome of an ApprovalQueueEntry.
type ApprovalDecision string

// Recognised decisions.
const (
	DecisionPending  ApprovalDecision = "pending"
	DecisionApproved ApprovalDecision = "approved"
	DecisionRejected ApprovalDecision = "rejected"
)

// ApprovalQueueEntry is a Proposal awaiting human consent (§4.5).
type ApprovalQueueEntry struct {
	EnqueuedAt      time.Time        `json:"enqueued_at"`
	Proposal        Proposal         `json:"proposal"`
	ContextSnapshot string           `json:"context_snapshot"`
	Decision        ApprovalDecision `json:"decision"`
}
