package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/agentmesh/orchestrator/internal/domain"
	"github.com/agentmesh/orchestrator/internal/identity"
)

// ledgerWriteTimeout bounds the detached ledger write.
const ledgerWriteTimeout = 5 * time.Second

// Transact routes a signed transaction envelope to its provider. The
// pipeline order is a fixed contract: structural validation, rate limit,
// identity + signature, approval gate, service/provider resolution, path
// construction, provider call, ledger write. Verification runs over the raw
// body bytes, never over a re-serialized struct.
func (s *Service) Transact(ctx context.Context, rawBody []byte, signatureB64 string) (*domain.TransactionResult, *domain.Error) {
	// 1. Structural validation.
	var req domain.TransactionRequest
	if err := json.Unmarshal(rawBody, &req); err != nil {
		return nil, domain.NewError(domain.ErrCodeBadRequest, "request body is not a valid transaction envelope")
	}
	if derr := req.Validate(); derr != nil {
		return nil, derr
	}
	if signatureB64 == "" {
		// The HTTP layer rejects a missing header before reaching here; this
		// keeps the same verdict for embedded callers.
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "missing request signature")
	}

	// 2. Rate limit. The limiter fails open if its backend is down.
	if !s.limiter.Allow(ctx, req.ConsumerAgentID, s.cfg.RateLimit, s.cfg.RateLimitWindow) {
		return nil, domain.NewErrorf(domain.ErrCodeRateLimited,
			"rate limit exceeded (%d req/%s)", s.cfg.RateLimit, s.cfg.RateLimitWindow)
	}

	// 3. Identity resolution + signature verification.
	consumer, err := s.findAgent(ctx, req.ConsumerAgentID)
	if err != nil {
		return nil, domain.NewErrorf(domain.ErrCodeForbidden, "agent %s not found or inactive", req.ConsumerAgentID)
	}
	if !consumer.Active() {
		log.Printf("WARN: agent %s is not active (status: %s)", consumer.AgentID, consumer.Status)
		return nil, domain.NewErrorf(domain.ErrCodeForbidden, "agent %s not found or inactive", req.ConsumerAgentID)
	}
	if consumer.PublicKey == "" {
		return nil, domain.NewError(domain.ErrCodeForbidden, "agent public key not available")
	}
	if !identity.Verify(rawBody, signatureB64, consumer.PublicKey) {
		log.Printf("WARN: invalid signature for agent %s", req.ConsumerAgentID)
		return nil, domain.NewError(domain.ErrCodeInvalidSignature, "signature verification failed")
	}

	// 4. Human approval gate for sensitive intents.
	if derr := s.checkApprovalGate(ctx, &req); derr != nil {
		return nil, derr
	}

	// 5. Service resolution.
	contract, err := s.findService(ctx, req.ServiceID)
	if err != nil {
		return nil, domain.NewErrorf(domain.ErrCodeNotFound, "service %s not found", req.ServiceID)
	}

	// 6. Provider resolution.
	prov, err := s.findAgent(ctx, contract.ProviderAgentID)
	if err != nil {
		return nil, domain.NewErrorf(domain.ErrCodeNotFound, "provider agent %s not found", contract.ProviderAgentID)
	}
	if !prov.Active() {
		log.Printf("WARN: provider %s is not active (status: %s)", prov.AgentID, prov.Status)
		return nil, domain.NewErrorf(domain.ErrCodeNotFound, "provider agent %s is not available", contract.ProviderAgentID)
	}
	endpoint := prov.Metadata.APIEndpoint
	if endpoint == "" {
		return nil, domain.NewErrorf(domain.ErrCodeNotFound, "provider agent %s has no api_endpoint", contract.ProviderAgentID)
	}

	// 7. Path construction.
	path, derr := ExpandPathTemplate(contract.Metadata.ServicePathTemplate, req.Payload)
	if derr != nil {
		return nil, derr
	}

	// 8. Execute. The call is detached from the caller's cancellation so a
	// dropped connection does not abort a provider call already in flight.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ProviderTimeout)
	defer cancel()

	log.Printf("routing %s to provider %s%s", req.TransactionID, endpoint, path)
	resp, err := s.provider.Call(callCtx, endpoint, path, req.Payload)
	if err != nil {
		log.Printf("ERROR: provider call failed for %s: %v", req.TransactionID, err)
		return nil, domain.NewError(domain.ErrCodeProviderUnreachable, "failed to reach provider")
	}

	status := domain.TransactionStatusSuccess
	if !resp.OK() {
		status = domain.TransactionStatusFailed
	}

	// 9. Ledger write, best-effort: a ledger failure never fails the
	// transaction for the caller.
	s.appendLedger(&domain.LedgerEntry{
		TransactionID:   req.TransactionID,
		ConsumerAgentID: req.ConsumerAgentID,
		ServiceID:       req.ServiceID,
		Status:          status,
		Timestamp:       s.now().UTC(),
		Result:          resp.Body,
	})

	// 10. Response.
	if !resp.OK() {
		return nil, &domain.Error{
			Code:    domain.ErrCodeProviderError,
			Message: "provider returned an error",
			Details: resp.Body,
		}
	}

	return &domain.TransactionResult{
		TransactionID: req.TransactionID,
		Status:        domain.TransactionStatusSuccess,
		Timestamp:     s.now().UTC().Format(time.RFC3339),
		Result:        resp.Body,
	}, nil
}

// GetTransaction reads a transaction back from the ledger.
func (s *Service) GetTransaction(ctx context.Context, transactionID string) (*domain.LedgerEntry, *domain.Error) {
	entry, err := s.store.GetLedgerEntry(ctx, transactionID)
	if err != nil {
		log.Printf("ERROR: ledger read failed for %s: %v", transactionID, err)
		return nil, domain.NewError(domain.ErrCodeInternal, "failed to read transaction")
	}
	if entry == nil {
		return nil, domain.NewErrorf(domain.ErrCodeNotFound, "transaction %s not found", transactionID)
	}
	return entry, nil
}

// findAgent is a directory lookup with the metadata timeout applied. The
// directory cache sits behind s.directory, so hits never touch the network.
func (s *Service) findAgent(ctx context.Context, agentID string) (*domain.AgentIdentityRecord, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.cfg.DirectoryTimeout)
	defer cancel()
	return s.directory.FindAgent(lookupCtx, agentID)
}

func (s *Service) findService(ctx context.Context, serviceID string) (*domain.ServiceContract, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.cfg.DirectoryTimeout)
	defer cancel()
	return s.directory.FindService(lookupCtx, serviceID)
}

// appendLedger writes one audit record, detached from the request context.
// Failures are logged and swallowed.
func (s *Service) appendLedger(entry *domain.LedgerEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), ledgerWriteTimeout)
	defer cancel()

	if err := s.store.AppendLedgerEntry(ctx, entry); err != nil {
		log.Printf("ERROR: ledger write failed for %s: %v", entry.TransactionID, err)
	}
}
