package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Claudio1052/Limpeza/internal/domain"
	"github.com/Claudio1052/Limpeza/internal/models"

	"github.com/rs/zerolog"
)

// FailoverResultCache prefers the primary (Redis) cache and switches to the
// fallback (memory) cache when the primary fails, retrying the primary after
// a cooldown.
type FailoverResultCache struct {
	primary   domain.ResultCache
	fallback  domain.ResultCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	downSince atomic.Int64 // unix nanos of the last failure
}

const failoverCooldown = time.Minute

func NewFailoverResultCache(primary, fallback domain.ResultCache, logger *zerolog.Logger) *FailoverResultCache {
	return &FailoverResultCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverResultCache) primaryUsable() bool {
	if !c.isDown.Load() {
		return true
	}
	return time.Since(time.Unix(0, c.downSince.Load())) > failoverCooldown
}

func (c *FailoverResultCache) markDown(err error, op string) {
	c.logger.Error().Err(err).Str("op", op).Msg("Primary result cache failed, falling back to memory")
	c.isDown.Store(true)
	c.downSince.Store(time.Now().UnixNano())
}

func (c *FailoverResultCache) Get(ctx context.Context, key string) (*models.ListResult, bool, error) {
	if c.primaryUsable() {
		result, ok, err := c.primary.Get(ctx, key)
		if err == nil {
			c.isDown.Store(false)
			return result, ok, nil
		}
		c.markDown(err, "get")
	}
	return c.fallback.Get(ctx, key)
}

func (c *FailoverResultCache) Put(ctx context.Context, key string, result *models.ListResult) error {
	if c.primaryUsable() {
		err := c.primary.Put(ctx, key, result)
		if err == nil {
			c.isDown.Store(false)
			return nil
		}
		c.markDown(err, "put")
	}
	return c.fallback.Put(ctx, key, result)
}

func (c *FailoverResultCache) Invalidate(ctx context.Context) error {
	// Both sides are cleared so a recovered primary cannot revive a result
	// that was invalidated while it was down.
	var primaryErr error
	if c.primaryUsable() {
		if primaryErr = c.primary.Invalidate(ctx); primaryErr != nil {
			c.markDown(primaryErr, "invalidate")
		}
	}
	if err := c.fallback.Invalidate(ctx); err != nil {
		return err
	}
	return nil
}
