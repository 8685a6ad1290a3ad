// Package directory resolves agent identity records and service contracts,
// independent of whether the registry is local files or a remote trust
// directory.
package directory

import (
	"context"
	"errors"

	"github.com/agentmesh/orchestrator/internal/domain"
)

// ErrNotFound is returned when a record cannot be resolved. Directory fetch
// failures (network errors, non-200 responses) collapse into it as well:
// a registry that cannot answer is treated the same as a registry that has
// no record, never as permission to serve stale data.
var ErrNotFound = errors.New("not found in directory")

// Directory is the read-only view of the trust registry. Records are
// returned regardless of status; callers must re-check status on every use.
type Directory interface {
	FindAgent(ctx context.Context, agentID string) (*domain.AgentIdentityRecord, error)
	FindService(ctx context.Context, serviceID string) (*domain.ServiceContract, error)
}
