package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentmesh/orchestrator/internal/domain"
)

// fakeDirectory counts lookups and can be flipped to failing.
type fakeDirectory struct {
	agentCalls   int
	serviceCalls int
	failing      bool
}

func (f *fakeDirectory) FindAgent(ctx context.Context, agentID string) (*domain.AgentIdentityRecord, error) {
	f.agentCalls++
	if f.failing {
		return nil, ErrNotFound
	}
	return &domain.AgentIdentityRecord{AgentID: agentID, Status: domain.AgentStatusActive}, nil
}

func (f *fakeDirectory) FindService(ctx context.Context, serviceID string) (*domain.ServiceContract, error) {
	f.serviceCalls++
	if f.failing {
		return nil, ErrNotFound
	}
	return &domain.ServiceContract{ServiceID: serviceID, ProviderAgentID: "p1"}, nil
}

func TestCacheServesFreshEntries(t *testing.T) {
	ctx := context.Background()
	inner := &fakeDirectory{}
	cache := NewCache(inner, 5*time.Minute)

	rec, err := cache.FindAgent(ctx, "a1")
	assert.NoError(t, err)
	assert.Equal(t, "a1", rec.AgentID)

	_, err = cache.FindAgent(ctx, "a1")
	assert.NoError(t, err)
	assert.Equal(t, 1, inner.agentCalls)

	_, err = cache.FindService(ctx, "svc1")
	assert.NoError(t, err)
	_, err = cache.FindService(ctx, "svc1")
	assert.NoError(t, err)
	assert.Equal(t, 1, inner.serviceCalls)
}

func TestCacheExpiresEntries(t *testing.T) {
	ctx := context.Background()
	inner := &fakeDirectory{}
	cache := NewCache(inner, 5*time.Minute)

	base := time.Now()
	cache.now = func() time.Time { return base }

	_, err := cache.FindAgent(ctx, "a1")
	assert.NoError(t, err)

	cache.now = func() time.Time { return base.Add(5*time.Minute + time.Second) }

	_, err = cache.FindAgent(ctx, "a1")
	assert.NoError(t, err)
	assert.Equal(t, 2, inner.agentCalls)
}

func TestCacheNeverServesExpiredWhenBackendDown(t *testing.T) {
	ctx := context.Background()
	inner := &fakeDirectory{}
	cache := NewCache(inner, 5*time.Minute)

	base := time.Now()
	cache.now = func() time.Time { return base }

	_, err := cache.FindAgent(ctx, "a1")
	assert.NoError(t, err)

	inner.failing = true
	cache.now = func() time.Time { return base.Add(10 * time.Minute) }

	_, err = cache.FindAgent(ctx, "a1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	inner := &fakeDirectory{failing: true}
	cache := NewCache(inner, 5*time.Minute)

	_, err := cache.FindAgent(ctx, "a1")
	assert.ErrorIs(t, err, ErrNotFound)

	inner.failing = false
	rec, err := cache.FindAgent(ctx, "a1")
	assert.NoError(t, err)
	assert.Equal(t, "a1", rec.AgentID)
	assert.Equal(t, 2, inner.agentCalls)
}

func TestCacheReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(&fakeDirectory{}, 5*time.Minute)

	first, err := cache.FindAgent(ctx, "a1")
	assert.NoError(t, err)
	first.Status = domain.AgentStatusRevoked

	second, err := cache.FindAgent(ctx, "a1")
	assert.NoError(t, err)
	assert.Equal(t, domain.AgentStatusActive, second.Status)
}
