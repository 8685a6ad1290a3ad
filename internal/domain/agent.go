// Package domain defines the core domain models for the orchestrator.
package domain

import "encoding/json"

// AgentStatus represents the lifecycle status of an agent identity record.
type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusInactive AgentStatus = "inactive"
	AgentStatusRevoked  AgentStatus = "revoked"
)

// AgentMetadata carries the directory-owned descriptive fields of an agent.
type AgentMetadata struct {
	Name        string `json:"name,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`
}

// AgentIdentityRecord is the trust directory's record for a single agent.
// The orchestrator only reads these; the directory owns them.
type AgentIdentityRecord struct {
	AgentID   string        `json:"agent_id"`
	PublicKey string        `json:"public_key"` // PEM-encoded Ed25519 public key
	Status    AgentStatus   `json:"status"`
	Metadata  AgentMetadata `json:"metadata"`
}

// Active reports whether the agent may participate in transactions.
// A record with any other status never passes verification, even when the
// signature itself is valid.
func (r *AgentIdentityRecord) Active() bool {
	return r.Status == AgentStatusActive
}

// ServiceMetadata carries routing information for a service contract.
// ServicePathTemplate contains {field} placeholders resolved against the
// top-level keys of the transaction payload.
type ServiceMetadata struct {
	Name                string `json:"name,omitempty"`
	ServicePathTemplate string `json:"service_path_template"`
}

// ServiceContract is the published description of a callable capability.
type ServiceContract struct {
	ServiceID       string          `json:"service_id"`
	ProviderAgentID string          `json:"provider_agent_id"`
	ServiceType     string          `json:"service_type,omitempty"`
	Pricing         json.RawMessage `json:"pricing,omitempty"`
	InputSchema     json.RawMessage `json:"input_schema,omitempty"`
	OutputSchema    json.RawMessage `json:"output_schema,omitempty"`
	Metadata        ServiceMetadata `json:"metadata"`
}
