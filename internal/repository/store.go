// Package store defines the storage interface and implementations.
package store

import (
	"context"
	"time"

	"github.com/agentmesh/orchestrator/internal/domain"
)

// Store defines the interface for data persistence. The approval workflow
// and the transaction ledger sit behind it so that the backing technology
// stays a deployment choice.
type Store interface {
	// Approval operations
	CreateApproval(ctx context.Context, approval *domain.Approval) error
	GetApproval(ctx context.Context, approvalID string) (*domain.Approval, error)
	// UpdateApprovalDecision applies a decision to a still-pending approval.
	// Returns false when the row was not pending anymore, so a decided or
	// expired approval is never overwritten.
	UpdateApprovalDecision(ctx context.Context, approvalID string, status domain.ApprovalStatus, approvedBy string, approvedAt time.Time, selectedAlternative *int, comments string) (bool, error)
	MarkApprovalExpired(ctx context.Context, approvalID string) error

	// Ledger operations. The ledger is append-only; AppendLedgerEntry never
	// deduplicates transaction IDs, retries are the caller's concern.
	AppendLedgerEntry(ctx context.Context, entry *domain.LedgerEntry) error
	GetLedgerEntry(ctx context.Context, transactionID string) (*domain.LedgerEntry, error)

	// Lifecycle
	Close() error
}
