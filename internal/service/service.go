// Package service implements the transaction router and the human approval
// workflow.
package service

import (
	"time"

	"github.com/agentmesh/orchestrator/internal/adapter/provider"
	"github.com/agentmesh/orchestrator/internal/config"
	"github.com/agentmesh/orchestrator/internal/directory"
	"github.com/agentmesh/orchestrator/internal/ratelimit"
	store "github.com/agentmesh/orchestrator/internal/repository"
	"github.com/agentmesh/orchestrator/policy"
)

// Service orchestrates transactions: authenticate, rate-limit, gate on human
// approval, resolve, execute, record. All shared mutable state (the
// directory cache, limiter counters) lives in the injected collaborators;
// Service itself is safe for concurrent use.
type Service struct {
	store     store.Store
	directory directory.Directory
	limiter   ratelimit.Limiter
	provider  *provider.Client
	policy    *policy.Engine
	cfg       *config.Config

	now func() time.Time
}

// New creates a new service.
func New(st store.Store, dir directory.Directory, limiter ratelimit.Limiter, providerClient *provider.Client, policyEngine *policy.Engine, cfg *config.Config) *Service {
	return &Service{
		store:     st,
		directory: dir,
		limiter:   limiter,
		provider:  providerClient,
		policy:    policyEngine,
		cfg:       cfg,
		now:       time.Now,
	}
}
