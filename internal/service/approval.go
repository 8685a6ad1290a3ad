package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/agentmesh/orchestrator/internal/domain"
)

// CreateApproval opens a pending approval owned by agentID. The expiry
// defaults to the configured approval timeout when the request does not
// carry one.
func (s *Service) CreateApproval(ctx context.Context, agentID string, req domain.ApprovalCreateRequest) (*domain.Approval, *domain.Error) {
	if req.TransactionID == "" || req.Summary == "" {
		return nil, domain.NewError(domain.ErrCodeBadRequest, "missing required fields: transaction_id, summary")
	}

	timeout := s.cfg.ApprovalTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}

	now := s.now().UTC()
	approval := &domain.Approval{
		ApprovalID:    "apr_" + uuid.New().String(),
		TransactionID: req.TransactionID,
		AgentID:       agentID,
		Summary:       req.Summary,
		Details:       req.Details,
		Alternatives:  req.Alternatives,
		Status:        domain.ApprovalStatusPending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(timeout),
	}

	if err := s.store.CreateApproval(ctx, approval); err != nil {
		log.Printf("ERROR: failed to create approval for agent %s: %v", agentID, err)
		return nil, domain.NewError(domain.ErrCodeInternal, "failed to create approval")
	}
	return approval, nil
}

// GetApproval returns the approval after the ownership check, lazily
// transitioning it to expired when its deadline has passed. Ownership
// mismatches are reported as forbidden rather than not-found; the existence
// of an approval ID is not considered secret here.
func (s *Service) GetApproval(ctx context.Context, approvalID, agentID string) (*domain.Approval, *domain.Error) {
	approval, err := s.store.GetApproval(ctx, approvalID)
	if err != nil {
		log.Printf("ERROR: failed to get approval %s: %v", approvalID, err)
		return nil, domain.NewError(domain.ErrCodeInternal, "failed to get approval")
	}
	if approval == nil {
		return nil, domain.NewErrorf(domain.ErrCodeNotFound, "approval %s not found", approvalID)
	}
	if approval.AgentID != agentID {
		return nil, domain.NewError(domain.ErrCodeForbidden, "approval belongs to another agent")
	}

	if approval.Status == domain.ApprovalStatusPending && s.now().After(approval.ExpiresAt) {
		if err := s.store.MarkApprovalExpired(ctx, approval.ApprovalID); err != nil {
			// The approval is still reported expired; only the persisted
			// transition is retried on the next read.
			log.Printf("WARN: failed to persist expiry of approval %s: %v", approval.ApprovalID, err)
		}
		approval.Status = domain.ApprovalStatusExpired
	}
	return approval, nil
}

// SubmitApproval applies a human decision to a pending approval. A terminal
// approval refuses further decisions: expiry as a bad request, an existing
// decision as a conflict.
func (s *Service) SubmitApproval(ctx context.Context, approvalID, agentID string, req domain.ApprovalDecisionRequest) (*domain.Approval, *domain.Error) {
	if req.Decision != "approve" && req.Decision != "reject" {
		return nil, domain.NewError(domain.ErrCodeBadRequest, "decision must be 'approve' or 'reject'")
	}

	approval, derr := s.GetApproval(ctx, approvalID, agentID)
	if derr != nil {
		return nil, derr
	}

	switch {
	case approval.Status == domain.ApprovalStatusExpired:
		return nil, domain.NewError(domain.ErrCodeBadRequest, "approval has expired")
	case approval.Status.Terminal():
		return nil, domain.NewErrorf(domain.ErrCodeConflict, "approval already %s", approval.Status)
	}

	status := domain.ApprovalStatusApproved
	if req.Decision == "reject" {
		status = domain.ApprovalStatusRejected
	}

	approvedBy := req.ApprovedBy
	if approvedBy == "" {
		approvedBy = "unknown"
	}
	decidedAt := s.now().UTC()

	applied, err := s.store.UpdateApprovalDecision(ctx, approvalID, status, approvedBy, decidedAt, req.SelectedAlternative, req.Comments)
	if err != nil {
		log.Printf("ERROR: failed to update approval %s: %v", approvalID, err)
		return nil, domain.NewError(domain.ErrCodeInternal, "failed to update approval")
	}
	if !applied {
		// The approval left pending between the read above and the update,
		// via a concurrent decision or expiry.
		return nil, domain.NewError(domain.ErrCodeConflict, "approval already decided")
	}

	approval.Status = status
	approval.ApprovedBy = approvedBy
	approval.ApprovedAt = &decidedAt
	approval.SelectedAlternative = req.SelectedAlternative
	approval.Comments = req.Comments
	return approval, nil
}
