package models

import (
	"encoding/json"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
)

// RequestStatus is an LLMRequest's position in the §4.9 queue's lifecycle.
type RequestStatus string

// Recognised statuses.
const (
	RequestPending    RequestStatus = "pending"
	RequestProcessing RequestStatus = "processing"
	RequestCompleted  RequestStatus = "completed"
	RequestFailed     RequestStatus = "failed"
)

// LLMRequest is one unit of work moved between the LLM queue's four
// directories. Once Status is completed or failed it is immutable until
// retention eviction.
type LLMRequest struct {
	ID          string             `json:"id"`
	Kind        config.RequestKind `json:"kind"`
	Payload     json.RawMessage    `json:"payload"`
	Priority    config.Priority    `json:"priority"`
	SubmittedAt time.Time          `json:"submitted_at"`
	Status      RequestStatus      `json:"status"`
	Result      json.RawMessage    `json:"result,omitempty"`
	Error       string             `json:"error,omitempty"`
}
