package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agentmesh/orchestrator/internal/domain"
)

// agentID extracts the calling agent's identity header, required on every
// approval endpoint.
func agentID(c echo.Context) (string, *domain.Error) {
	id := c.Request().Header.Get(HeaderAgentID)
	if id == "" {
		return "", domain.NewErrorf(domain.ErrCodeBadRequest, "missing %s header", HeaderAgentID)
	}
	return id, nil
}

// CreateApproval opens a new human approval request.
func (h *Handler) CreateApproval(c echo.Context) error {
	id, derr := agentID(c)
	if derr != nil {
		return errorJSON(c, derr)
	}

	var req domain.ApprovalCreateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, domain.NewError(domain.ErrCodeBadRequest, "invalid request body"))
	}

	approval, derr := h.service.CreateApproval(c.Request().Context(), id, req)
	if derr != nil {
		return errorJSON(c, derr)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"status":      "created",
		"approval_id": approval.ApprovalID,
		"expires_at":  approval.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// GetApproval returns the current state of an approval owned by the caller.
func (h *Handler) GetApproval(c echo.Context) error {
	id, derr := agentID(c)
	if derr != nil {
		return errorJSON(c, derr)
	}

	approval, derr := h.service.GetApproval(c.Request().Context(), c.Param("approval_id"), id)
	if derr != nil {
		return errorJSON(c, derr)
	}
	return c.JSON(http.StatusOK, approval)
}

// SubmitApproval records a human decision on a pending approval.
func (h *Handler) SubmitApproval(c echo.Context) error {
	id, derr := agentID(c)
	if derr != nil {
		return errorJSON(c, derr)
	}

	var req domain.ApprovalDecisionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, domain.NewError(domain.ErrCodeBadRequest, "invalid request body"))
	}

	approval, derr := h.service.SubmitApproval(c.Request().Context(), c.Param("approval_id"), id, req)
	if derr != nil {
		return errorJSON(c, derr)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "success",
		"decision": string(approval.Status),
	})
}
