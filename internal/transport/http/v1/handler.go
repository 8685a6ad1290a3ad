// Package v1 provides the versioned HTTP handlers for the orchestrator.
package v1

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agentmesh/orchestrator/internal/config"
	"github.com/agentmesh/orchestrator/internal/domain"
	"github.com/agentmesh/orchestrator/internal/service"
)

// Headers of the wire protocol.
const (
	HeaderSignature = "X-Agent-Signature"
	HeaderAgentID   = "X-Agent-ID"
	HeaderAPIKey    = "X-API-Key"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	cfg     *config.Config
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service, cfg *config.Config) *Handler {
	return &Handler{
		service: svc,
		cfg:     cfg,
	}
}

// RegisterRoutes registers routes with the echo server. The admission key
// check guards the transaction endpoint only; the approval sub-API
// authenticates via agent identity.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/transact", h.Transact, h.requireAPIKey)
	e.GET("/v1/transactions/:transaction_id", h.GetTransaction)

	e.POST("/v1/approvals", h.CreateApproval)
	e.GET("/v1/approvals/:approval_id", h.GetApproval)
	e.POST("/v1/approvals/:approval_id/submit", h.SubmitApproval)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"mode":    h.cfg.Mode,
		"version": "0.1.0",
	})
}

// requireAPIKey performs the coarse admission check. With no key configured
// (standalone mode) the check is skipped entirely. The comparison is
// constant-time.
func (h *Handler) requireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.cfg.APIKey == "" {
			return next(c)
		}
		key := c.Request().Header.Get(HeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(key), []byte(h.cfg.APIKey)) != 1 {
			return errorJSON(c, domain.NewError(domain.ErrCodeUnauthorized, "invalid or missing API key"))
		}
		return next(c)
	}
}

// errorJSON writes the protocol error envelope with its mapped HTTP status.
func errorJSON(c echo.Context, derr *domain.Error) error {
	return c.JSON(derr.Code.HTTPStatus(), domain.NewErrorResponse(derr))
}
