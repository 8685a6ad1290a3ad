// Package http provides the HTTP server implementation for the orchestrator.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agentmesh/orchestrator/internal/config"
	"github.com/agentmesh/orchestrator/internal/service"
	v1 "github.com/agentmesh/orchestrator/internal/transport/http/v1"
)

// NewServer creates and configures the orchestrator's HTTP server. It
// handles transaction routing, the approval sub-API and ledger reads.
func NewServer(svc *service.Service, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc, cfg)
	v1Handler.RegisterRoutes(e)

	return e
}
