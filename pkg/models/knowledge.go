package models

import "time"

// Confidence is how strongly a KnowledgeItem is believed to hold.
type Confidence string

// Recognised confidence levels.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// KnowledgeItem is a durable, vector-indexed fact derived from a past
// situation/action/outcome (§4.4 "Knowledge reflection").
type KnowledgeItem struct {
	ID             string     `json:"id"`
	Topic          string     `json:"topic"`
	Body           string     `json:"body"`
	Category       string     `json:"category"`
	Source         string     `json:"source"`
	Confidence     Confidence `json:"confidence"`
	Tags           []string   `json:"tags,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastVerifiedAt time.Time  `json:"last_verified_at"`
	ReferenceCount int        `json:"reference_count"`
}
