package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Claudio1052/Limpeza/internal/domain"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "limpeza:session:"

// RedisSessionRepository stores admin session tokens in Redis with expiry.
type RedisSessionRepository struct {
	client *redis.Client
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func (r *RedisSessionRepository) CreateSession(ctx context.Context, token string, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) SessionExists(ctx context.Context, token string) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	n, err := r.client.Exists(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return n > 0, nil
}

func (r *RedisSessionRepository) DeleteSession(ctx context.Context, token string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// MemorySessionRepository keeps sessions in-process for single-node
// deployments and tests.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]time.Time // token -> expiry
	clock    domain.Clock
}

func NewMemorySessionRepository(clock domain.Clock) *MemorySessionRepository {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &MemorySessionRepository{
		sessions: make(map[string]time.Time),
		clock:    clock,
	}
}

func (r *MemorySessionRepository) CreateSession(ctx context.Context, token string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = r.clock.Now().Add(ttl)
	return nil
}

func (r *MemorySessionRepository) SessionExists(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiry, ok := r.sessions[token]
	if !ok {
		return false, nil
	}
	if r.clock.Now().After(expiry) {
		delete(r.sessions, token)
		return false, nil
	}
	return true, nil
}

func (r *MemorySessionRepository) DeleteSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

// PruneExpired drops expired sessions and returns how many were removed.
func (r *MemorySessionRepository) PruneExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	removed := 0
	for token, expiry := range r.sessions {
		if now.After(expiry) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed
}
