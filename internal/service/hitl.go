package service

import (
	"context"
	"log"

	"github.com/agentmesh/orchestrator/internal/domain"
	"github.com/agentmesh/orchestrator/policy"
)

// checkApprovalGate enforces human sign-off for sensitive intents. A payload
// with no declared intent passes through untouched; declared intents go to
// the policy engine. When approval is required, a missing token is reported
// as REQUIRES_HITL while an invalid, foreign or undecided token is
// FORBIDDEN, so clients can tell "go get an approval" apart from "this
// approval is no good".
func (s *Service) checkApprovalGate(ctx context.Context, req *domain.TransactionRequest) *domain.Error {
	intent := req.Intent()
	if intent == "" {
		return nil
	}

	decision, err := s.policy.Evaluate(ctx, map[string]interface{}{
		"intent":            intent,
		"consumer_agent_id": req.ConsumerAgentID,
		"service_id":        req.ServiceID,
		"payload":           req.Payload,
	})
	if err != nil {
		// Fail closed: an unevaluable policy never waves a sensitive intent
		// through.
		log.Printf("ERROR: intent policy evaluation failed for %s: %v", intent, err)
		return domain.NewError(domain.ErrCodeInternal, "intent policy evaluation failed")
	}

	switch decision {
	case policy.DecisionAllow:
		return nil
	case policy.DecisionBlock:
		return domain.NewErrorf(domain.ErrCodeForbidden, "intent %q is not permitted", intent)
	}

	// require_approval from here on.
	token := req.ApprovalToken()
	if token == "" {
		return domain.NewErrorf(domain.ErrCodeRequiresHITL, "intent %q requires human approval", intent)
	}

	approval, derr := s.GetApproval(ctx, token, req.ConsumerAgentID)
	if derr != nil {
		// Backend failures stay internal errors; only a token that resolved
		// and was rejected is an authorization verdict.
		if derr.Code == domain.ErrCodeInternal {
			return derr
		}
		log.Printf("WARN: approval token rejected for agent %s: %s", req.ConsumerAgentID, derr.Message)
		return domain.NewError(domain.ErrCodeForbidden, "approval token is not valid for this agent")
	}
	if approval.Status != domain.ApprovalStatusApproved {
		return domain.NewErrorf(domain.ErrCodeForbidden, "approval %s is %s, not approved", approval.ApprovalID, approval.Status)
	}
	return nil
}
