package v1_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/agentmesh/orchestrator/internal/adapter/provider"
	"github.com/agentmesh/orchestrator/internal/config"
	"github.com/agentmesh/orchestrator/internal/directory"
	"github.com/agentmesh/orchestrator/internal/domain"
	"github.com/agentmesh/orchestrator/internal/identity"
	"github.com/agentmesh/orchestrator/internal/ratelimit"
	"github.com/agentmesh/orchestrator/internal/service"
	v1 "github.com/agentmesh/orchestrator/internal/transport/http/v1"
	"github.com/agentmesh/orchestrator/policy"
	"github.com/agentmesh/orchestrator/tests/helpers"
)

type stubDirectory struct {
	agents   map[string]domain.AgentIdentityRecord
	services map[string]domain.ServiceContract
}

func (d *stubDirectory) FindAgent(ctx context.Context, agentID string) (*domain.AgentIdentityRecord, error) {
	rec, ok := d.agents[agentID]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return &rec, nil
}

func (d *stubDirectory) FindService(ctx context.Context, serviceID string) (*domain.ServiceContract, error) {
	contract, ok := d.services[serviceID]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return &contract, nil
}

type apiFixture struct {
	e    *echo.Echo
	cfg  *config.Config
	priv ed25519.PrivateKey
}

func newAPIFixture(t *testing.T, apiKey string) *apiFixture {
	t.Helper()

	providerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title": "Widget"}`))
	}))
	t.Cleanup(providerSrv.Close)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	pubPEM, err := identity.EncodePublicKey(pub)
	if err != nil {
		t.Fatalf("failed to encode public key: %v", err)
	}

	dir := &stubDirectory{
		agents: map[string]domain.AgentIdentityRecord{
			"agent_alpha": {AgentID: "agent_alpha", PublicKey: pubPEM, Status: domain.AgentStatusActive},
			"agent_shop": {
				AgentID:  "agent_shop",
				Status:   domain.AgentStatusActive,
				Metadata: domain.AgentMetadata{APIEndpoint: providerSrv.URL},
			},
		},
		services: map[string]domain.ServiceContract{
			"svc1": {
				ServiceID:       "svc1",
				ProviderAgentID: "agent_shop",
				Metadata:        domain.ServiceMetadata{ServicePathTemplate: "/products/{product_id}"},
			},
		},
	}

	cfg := &config.Config{
		Mode:             config.ModeStandalone,
		APIKey:           apiKey,
		RateLimit:        100,
		RateLimitWindow:  time.Minute,
		DirectoryTimeout: 2 * time.Second,
		ProviderTimeout:  2 * time.Second,
		ApprovalTimeout:  time.Hour,
	}

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create policy engine: %v", err)
	}

	svc := service.New(helpers.NewTestSQLiteStore(t), dir, ratelimit.NewMemoryLimiter(),
		provider.NewClient(2*time.Second), engine, cfg)

	e := echo.New()
	v1.NewHandler(svc, cfg).RegisterRoutes(e)
	return &apiFixture{e: e, cfg: cfg, priv: priv}
}

func (f *apiFixture) signedRequest(t *testing.T, payload map[string]interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"transaction_id":    "tx1",
		"service_id":        "svc1",
		"consumer_agent_id": "agent_alpha",
		"payload":           payload,
	})
	if err != nil {
		t.Fatalf("failed to marshal envelope: %v", err)
	}
	sig, err := identity.Sign(body, f.priv)
	if err != nil {
		t.Fatalf("failed to sign envelope: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/transact", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(v1.HeaderSignature, sig)
	return req
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, config.ModeStandalone, resp["mode"])
}

func TestTransactEndpoint(t *testing.T) {
	f := newAPIFixture(t, "")

	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, f.signedRequest(t, map[string]interface{}{"product_id": "1"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	var result domain.TransactionResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	assert.Equal(t, "tx1", result.TransactionID)
	assert.Equal(t, domain.TransactionStatusSuccess, result.Status)
	assert.JSONEq(t, `{"title": "Widget"}`, string(result.Result))
}

func TestTransactEndpointMissingSignature(t *testing.T) {
	f := newAPIFixture(t, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/transact", bytes.NewReader([]byte(`{}`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp domain.ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Equal(t, domain.ErrCodeUnauthorized, resp.Err.Code)
}

func TestTransactEndpointAPIKey(t *testing.T) {
	f := newAPIFixture(t, "secret")

	// Missing key.
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, f.signedRequest(t, map[string]interface{}{"product_id": "1"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong key.
	req := f.signedRequest(t, map[string]interface{}{"product_id": "1"})
	req.Header.Set(v1.HeaderAPIKey, "wrong")
	rec = httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Right key.
	req = f.signedRequest(t, map[string]interface{}{"product_id": "1"})
	req.Header.Set(v1.HeaderAPIKey, "secret")
	rec = httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTransactEndpointErrorMapping(t *testing.T) {
	f := newAPIFixture(t, "")

	// Unknown service maps to 404 with the protocol envelope.
	body, _ := json.Marshal(map[string]interface{}{
		"transaction_id":    "tx1",
		"service_id":        "svc_ghost",
		"consumer_agent_id": "agent_alpha",
		"payload":           map[string]interface{}{"product_id": "1"},
	})
	sig, err := identity.Sign(body, f.priv)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/transact", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(v1.HeaderSignature, sig)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp domain.ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Equal(t, domain.ErrCodeNotFound, resp.Err.Code)
	assert.NotEmpty(t, resp.Err.Timestamp)
}

func TestTransactEndpointRateLimited(t *testing.T) {
	f := newAPIFixture(t, "")
	f.cfg.RateLimit = 1

	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, f.signedRequest(t, map[string]interface{}{"product_id": "1"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	f.e.ServeHTTP(rec, f.signedRequest(t, map[string]interface{}{"product_id": "1"}))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestGetTransactionEndpoint(t *testing.T) {
	f := newAPIFixture(t, "")

	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, f.signedRequest(t, map[string]interface{}{"product_id": "1"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/transactions/tx1", nil)
	rec = httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var entry domain.LedgerEntry
	json.Unmarshal(rec.Body.Bytes(), &entry)
	assert.Equal(t, "tx1", entry.TransactionID)
	assert.Equal(t, domain.TransactionStatusSuccess, entry.Status)

	req = httptest.NewRequest(http.MethodGet, "/v1/transactions/absent", nil)
	rec = httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
