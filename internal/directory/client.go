package directory

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentmesh/orchestrator/internal/domain"
)

// Client queries a remote trust directory over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a directory client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FindAgent fetches an agent identity record.
// GET {baseURL}/api/v1/agents/{agent_id}
func (c *Client) FindAgent(ctx context.Context, agentID string) (*domain.AgentIdentityRecord, error) {
	var rec domain.AgentIdentityRecord
	if err := c.getJSON(ctx, "/api/v1/agents/"+url.PathEscape(agentID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindService fetches a service contract.
// GET {baseURL}/api/v1/services/{service_id}
func (c *Client) FindService(ctx context.Context, serviceID string) (*domain.ServiceContract, error) {
	var contract domain.ServiceContract
	if err := c.getJSON(ctx, "/api/v1/services/"+url.PathEscape(serviceID), &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

// getJSON performs the lookup. Any failure collapses into ErrNotFound; the
// cause is preserved in the log for diagnosis.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return ErrNotFound
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("WARN: directory request failed for %s: %v", path, err)
		return ErrNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("WARN: directory returned status %d for %s", resp.StatusCode, path)
		return ErrNotFound
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Printf("WARN: directory response decode failed for %s: %v", path, err)
		return ErrNotFound
	}
	return nil
}
