package directory

import (
	"context"
	"sync"
	"time"

	"github.com/agentmesh/orchestrator/internal/domain"
)

// Cache is a read-through TTL cache over a Directory. It caches records,
// never verification outcomes: an agent's status is re-checked by the caller
// on every hit, so a record that turns inactive is honored as soon as its
// cache entry expires. Expired entries are never served, even when the
// backing directory is down.
//
// Updates replace whole entries under the write lock; readers never observe
// a partially written record.
type Cache struct {
	inner Directory
	ttl   time.Duration

	mu       sync.RWMutex
	agents   map[string]cachedEntry[domain.AgentIdentityRecord]
	services map[string]cachedEntry[domain.ServiceContract]

	now func() time.Time
}

type cachedEntry[T any] struct {
	value     T
	fetchedAt time.Time
}

// NewCache wraps inner with a TTL cache.
func NewCache(inner Directory, ttl time.Duration) *Cache {
	return &Cache{
		inner:    inner,
		ttl:      ttl,
		agents:   make(map[string]cachedEntry[domain.AgentIdentityRecord]),
		services: make(map[string]cachedEntry[domain.ServiceContract]),
		now:      time.Now,
	}
}

func (c *Cache) FindAgent(ctx context.Context, agentID string) (*domain.AgentIdentityRecord, error) {
	c.mu.RLock()
	entry, ok := c.agents[agentID]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		rec := entry.value
		return &rec, nil
	}

	rec, err := c.inner.FindAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.agents[agentID] = cachedEntry[domain.AgentIdentityRecord]{value: *rec, fetchedAt: c.now()}
	c.mu.Unlock()
	return rec, nil
}

func (c *Cache) FindService(ctx context.Context, serviceID string) (*domain.ServiceContract, error) {
	c.mu.RLock()
	entry, ok := c.services[serviceID]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		contract := entry.value
		return &contract, nil
	}

	contract, err := c.inner.FindService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.services[serviceID] = cachedEntry[domain.ServiceContract]{value: *contract, fetchedAt: c.now()}
	c.mu.Unlock()
	return contract, nil
}
