package models

import "time"

// IssueStatus is an Issue's lifecycle stage. Transitions are monotonic
// except resolved -> open, which is forbidden (§3); closed is terminal.
type IssueStatus string

// Recognised statuses, in their normal forward order.
const (
	IssueOpen          IssueStatus = "open"
	IssueInvestigating IssueStatus = "investigating"
	IssueFixing        IssueStatus = "fixing"
	IssueResolved      IssueStatus = "resolved"
	IssueClosed        IssueStatus = "closed"
)

// Investigation is one timestamped note appended to an Issue's history.
type Investigation struct {
	At   time.Time `json:"at"`
	Note string    `json:"note"`
}

// Action is one timestamped remediation record appended to an Issue.
type Action struct {
	At          time.Time `json:"at"`
	Description string    `json:"description"`
}

// Issue is the tracker's aggregate root (§4.6).
type Issue struct {
	ID             string          `json:"id"`
	Host           string          `json:"host"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Severity       string          `json:"severity"`
	Status         IssueStatus     `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Source         string          `json:"source"`
	Investigations []Investigation `json:"investigations,omitempty"`
	Actions        []Action        `json:"actions,omitempty"`
	Resolution     *string         `json:"resolution,omitempty"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty"`
}
