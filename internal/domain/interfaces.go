package domain

import (
	"context"
	"time"

	"github.com/Claudio1052/Limpeza/internal/models"
)

// Store is the persistence boundary for service requests. The SQLite store
// implements it; tests may substitute their own.
type Store interface {
	CreateRequest(ctx context.Context, req *models.ServiceRequest) error
	GetRequest(ctx context.Context, id string) (*models.ServiceRequest, error)
	ListRequests(ctx context.Context, q models.ListQuery) ([]*models.ServiceRequest, int, error)
	UpdateRequest(ctx context.Context, id string, columns map[string]any, updatedAt time.Time) error
	DeleteRequest(ctx context.Context, id string) error
	GetStats(ctx context.Context, monthStart, today, weekEnd time.Time) (*models.DashboardStats, error)
}

// ResultCache holds at most one list result at a time. Put replaces whatever
// was cached before; Get only hits when the key matches and the entry is
// younger than the TTL.
type ResultCache interface {
	Get(ctx context.Context, key string) (*models.ListResult, bool, error)
	Put(ctx context.Context, key string, result *models.ListResult) error
	Invalidate(ctx context.Context) error
}

// SessionRepository stores admin session tokens with a TTL.
type SessionRepository interface {
	CreateSession(ctx context.Context, token string, ttl time.Duration) error
	SessionExists(ctx context.Context, token string) (bool, error)
	DeleteSession(ctx context.Context, token string) error
}

// EventPublisher notifies subscribers of request lifecycle changes.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Clock supplies wall-clock time so date-range shorthands and cache TTLs
// stay testable.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
