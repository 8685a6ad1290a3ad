package domain

import (
	"encoding/json"
	"time"
)

// ApprovalStatus represents the state of a human approval request.
// pending is the only non-terminal state.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
	ApprovalStatusExpired  ApprovalStatus = "expired"
)

// Terminal reports whether the status admits no further transitions.
func (s ApprovalStatus) Terminal() bool {
	return s != ApprovalStatusPending
}

// Approval is a pending or decided human sign-off request, owned by the
// agent that created it.
type Approval struct {
	ApprovalID    string          `json:"approval_id"`
	TransactionID string          `json:"transaction_id"`
	AgentID       string          `json:"agent_id"`
	Summary       string          `json:"summary"`
	Details       json.RawMessage `json:"details,omitempty"`
	Alternatives  json.RawMessage `json:"alternatives,omitempty"`
	Status        ApprovalStatus  `json:"status"`

	// Filled when a human responds.
	ApprovedBy          string     `json:"approved_by,omitempty"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	SelectedAlternative *int       `json:"selected_alternative,omitempty"`
	Comments            string     `json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ApprovalCreateRequest is the request body for opening an approval.
type ApprovalCreateRequest struct {
	TransactionID  string          `json:"transaction_id"`
	Summary        string          `json:"summary"`
	Details        json.RawMessage `json:"details,omitempty"`
	Alternatives   json.RawMessage `json:"alternatives,omitempty"`
	TimeoutSeconds int             `json:"timeout_seconds,omitempty"`
}

// ApprovalDecisionRequest is the request body for submitting a human decision.
type ApprovalDecisionRequest struct {
	Decision            string `json:"decision"` // approve | reject
	ApprovedBy          string `json:"approved_by,omitempty"`
	SelectedAlternative *int   `json:"selected_alternative,omitempty"`
	Comments            string `json:"comments,omitempty"`
}
