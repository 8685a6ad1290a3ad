package domain

import (
	"encoding/json"
	"time"
)

// TransactionStatus is the terminal outcome of a transaction attempt.
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// TransactionRequest is the signed wire envelope of a transaction. The
// signature covers the canonical form of the exact bytes received, so this
// struct is only a decoded view; verification always runs over the raw body.
type TransactionRequest struct {
	TransactionID   string                 `json:"transaction_id"`
	ServiceID       string                 `json:"service_id"`
	ConsumerAgentID string                 `json:"consumer_agent_id"`
	Timestamp       string                 `json:"timestamp,omitempty"`
	Payload         map[string]interface{} `json:"payload"`
}

// Validate checks the structural requirements of the envelope.
func (r *TransactionRequest) Validate() *Error {
	if r.TransactionID == "" {
		return NewError(ErrCodeBadRequest, "missing required field: transaction_id")
	}
	if r.ServiceID == "" {
		return NewError(ErrCodeBadRequest, "missing required field: service_id")
	}
	if r.ConsumerAgentID == "" {
		return NewError(ErrCodeBadRequest, "missing required field: consumer_agent_id")
	}
	if r.Payload == nil {
		return NewError(ErrCodeBadRequest, "payload must be a JSON object")
	}
	return nil
}

// Intent returns the declared intent of the payload, if any.
func (r *TransactionRequest) Intent() string {
	intent, _ := r.Payload["intent"].(string)
	return intent
}

// ApprovalToken returns the human approval token carried in the payload.
func (r *TransactionRequest) ApprovalToken() string {
	token, _ := r.Payload["human_approval_token"].(string)
	return token
}

// TransactionResult is the success envelope returned to the consumer.
type TransactionResult struct {
	TransactionID string            `json:"transaction_id"`
	Status        TransactionStatus `json:"status"`
	Timestamp     string            `json:"timestamp"`
	Result        json.RawMessage   `json:"result"`
}

// LedgerEntry is one append-only audit record per completed transaction
// attempt. The store does not deduplicate retries of the same transaction_id.
type LedgerEntry struct {
	TransactionID   string            `json:"transaction_id"`
	ConsumerAgentID string            `json:"consumer_agent_id"`
	ServiceID       string            `json:"service_id"`
	Status          TransactionStatus `json:"status"`
	Timestamp       time.Time         `json:"timestamp"`
	Result          json.RawMessage   `json:"result,omitempty"`
	Settlement      *Settlement       `json:"settlement,omitempty"`
}
