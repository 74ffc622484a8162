package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Claudio1052/Limpeza/internal/domain"
	"github.com/Claudio1052/Limpeza/internal/models"
)

// MemoryResultCache keeps the single most recent list result in memory.
// A Put replaces whatever was cached, so at most one filter/page combination
// is ever held at a time.
type MemoryResultCache struct {
	mu       sync.Mutex
	key      string
	result   *models.ListResult
	storedAt time.Time
	ttl      time.Duration
	clock    domain.Clock
}

func NewMemoryResultCache(ttl time.Duration, clock domain.Clock) *MemoryResultCache {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &MemoryResultCache{ttl: ttl, clock: clock}
}

func (c *MemoryResultCache) Get(ctx context.Context, key string) (*models.ListResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.result == nil || c.key != key {
		return nil, false, nil
	}
	if c.clock.Now().Sub(c.storedAt) >= c.ttl {
		c.result = nil
		c.key = ""
		return nil, false, nil
	}

	// Copy so callers cannot mutate the cached entry
	out := *c.result
	return &out, true, nil
}

func (c *MemoryResultCache) Put(ctx context.Context, key string, result *models.ListResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := *result
	c.key = key
	c.result = &stored
	c.storedAt = c.clock.Now()
	return nil
}

func (c *MemoryResultCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.key = ""
	c.result = nil
	return nil
}
