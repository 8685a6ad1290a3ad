package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/agentmesh/orchestrator/internal/domain"
)

// FileRegistry serves agents and services from a JSON document on disk.
// This is the standalone-mode registry: the file is read once at startup and
// never re-read, so record updates require a restart.
type FileRegistry struct {
	agents   map[string]domain.AgentIdentityRecord
	services map[string]domain.ServiceContract
}

type registryFile struct {
	Agents   []domain.AgentIdentityRecord `json:"agents"`
	Services []domain.ServiceContract     `json:"services"`
}

// NewFileRegistry loads a registry document from path.
func NewFileRegistry(path string) (*FileRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var doc registryFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse registry file %s: %w", path, err)
	}

	r := &FileRegistry{
		agents:   make(map[string]domain.AgentIdentityRecord, len(doc.Agents)),
		services: make(map[string]domain.ServiceContract, len(doc.Services)),
	}
	for _, a := range doc.Agents {
		r.agents[a.AgentID] = a
	}
	for _, s := range doc.Services {
		r.services[s.ServiceID] = s
	}
	return r, nil
}

func (r *FileRegistry) FindAgent(ctx context.Context, agentID string) (*domain.AgentIdentityRecord, error) {
	rec, ok := r.agents[agentID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (r *FileRegistry) FindService(ctx context.Context, serviceID string) (*domain.ServiceContract, error) {
	contract, ok := r.services[serviceID]
	if !ok {
		return nil, ErrNotFound
	}
	return &contract, nil
}
