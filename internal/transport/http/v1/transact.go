package v1

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/agentmesh/orchestrator/internal/domain"
)

// maxBodyBytes bounds the size of a transaction envelope.
const maxBodyBytes = 1 << 20

// Transact verifies and routes a signed transaction envelope.
func (h *Handler) Transact(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		return errorJSON(c, domain.NewError(domain.ErrCodeBadRequest, "failed to read request body"))
	}
	if len(body) > maxBodyBytes {
		return errorJSON(c, domain.NewError(domain.ErrCodeBadRequest, "request body too large"))
	}

	signature := c.Request().Header.Get(HeaderSignature)
	if signature == "" {
		return errorJSON(c, domain.NewErrorf(domain.ErrCodeUnauthorized, "missing %s header", HeaderSignature))
	}

	result, derr := h.service.Transact(c.Request().Context(), body, signature)
	if derr != nil {
		if derr.Code == domain.ErrCodeRateLimited {
			c.Response().Header().Set("Retry-After", strconv.Itoa(int(h.cfg.RateLimitWindow.Seconds())))
		}
		return errorJSON(c, derr)
	}
	return c.JSON(http.StatusOK, result)
}

// GetTransaction returns the ledger record for a completed transaction.
func (h *Handler) GetTransaction(c echo.Context) error {
	transactionID := c.Param("transaction_id")
	entry, derr := h.service.GetTransaction(c.Request().Context(), transactionID)
	if derr != nil {
		return errorJSON(c, derr)
	}
	return c.JSON(http.StatusOK, entry)
}
