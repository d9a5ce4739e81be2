package cache

import (
	"context"
	"sync"
	"time"

	appresale "github.com/diecast/backoffice/internal/application/presale"
)

// InMemorySummaryCache is a process-local summary cache for single-instance
// deployments and tests. Entries expire after the configured TTL.
type InMemorySummaryCache struct {
	mu        sync.RWMutex
	summary   *appresale.ActiveSummaryResponse
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewInMemorySummaryCache creates a new in-memory summary cache
func NewInMemorySummaryCache(ttl time.Duration) *InMemorySummaryCache {
	return &InMemorySummaryCache{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached summary, or nil when the entry is absent or expired
func (c *InMemorySummaryCache) Get(_ context.Context) (*appresale.ActiveSummaryResponse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.summary == nil || c.now().After(c.expiresAt) {
		return nil, nil
	}
	return c.summary, nil
}

// Set stores the summary and resets its expiry
func (c *InMemorySummaryCache) Set(_ context.Context, summary *appresale.ActiveSummaryResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summary = summary
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

// Invalidate drops the cached summary
func (c *InMemorySummaryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summary = nil
	c.expiresAt = time.Time{}
	return nil
}

// Ensure InMemorySummaryCache implements SummaryCache
var _ appresale.SummaryCache = (*InMemorySummaryCache)(nil)
