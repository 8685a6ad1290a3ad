package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentmesh/orchestrator/internal/adapter/provider"
	"github.com/agentmesh/orchestrator/internal/config"
	"github.com/agentmesh/orchestrator/internal/directory"
	"github.com/agentmesh/orchestrator/internal/ratelimit"
	store "github.com/agentmesh/orchestrator/internal/repository"
	"github.com/agentmesh/orchestrator/internal/service"
	transport "github.com/agentmesh/orchestrator/internal/transport/http"
	"github.com/agentmesh/orchestrator/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting orchestrator...")
	log.Printf("Mode: %s", cfg.Mode)
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize trust directory and rate limiter per mode
	var dir directory.Directory
	var limiter ratelimit.Limiter
	switch cfg.Mode {
	case config.ModeCloud:
		if cfg.DirectoryURL == "" {
			log.Fatalf("DIRECTORY_URL is required in cloud mode")
		}
		dir = directory.NewClient(cfg.DirectoryURL, cfg.DirectoryTimeout)
		redisLimiter := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer redisLimiter.Close()
		limiter = redisLimiter
		log.Printf("Trust directory: %s", cfg.DirectoryURL)
		log.Printf("Redis: %s", cfg.RedisAddr)
	case config.ModeStandalone:
		registry, err := directory.NewFileRegistry(cfg.RegistryPath)
		if err != nil {
			log.Fatalf("Failed to load agent registry: %v", err)
		}
		dir = registry
		limiter = ratelimit.NewMemoryLimiter()
		log.Printf("Agent registry: %s", cfg.RegistryPath)
	default:
		log.Fatalf("Unknown mode: %s", cfg.Mode)
	}
	dir = directory.NewCache(dir, cfg.CacheTTL)

	// Initialize policy engine
	policyContent := policy.DefaultPolicy
	if cfg.PolicyPath != "" {
		data, err := os.ReadFile(cfg.PolicyPath)
		if err != nil {
			log.Fatalf("Failed to read policy file: %v", err)
		}
		policyContent = string(data)
	}
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policyContent)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize provider client
	providerClient := provider.NewClient(cfg.ProviderTimeout)

	// Initialize service
	svc := service.New(db, dir, limiter, providerClient, policyEngine, cfg)

	// Create HTTP server
	server := transport.NewServer(svc, cfg)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Orchestrator API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down orchestrator...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Orchestrator stopped")
}
