package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Claudio1052/Limpeza/internal/models"

	"github.com/rs/zerolog"
)

// ErrSuperseded marks a fetch whose response arrived after a newer fetch was
// issued; its result was discarded instead of overwriting fresher state.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// Fetcher is the slice of RequestService the controller needs.
type Fetcher interface {
	List(ctx context.Context, filters models.ListFilters, page, pageSize int) (*models.ListResult, error)
}

// Controller owns the admin table state: the active filter set, the current
// page and the last successfully fetched window. State is only replaced
// after a fetch succeeds, so a failed or out-of-date response never clobbers
// what the operator is looking at.
type Controller struct {
	fetcher  fetcherFunc
	logger   *zerolog.Logger
	pageSize int
	debounce time.Duration

	mu         sync.Mutex
	filters    models.ListFilters
	page       int
	requests   []*models.ServiceRequest
	totalCount int
	totalPages int
	fromCache  bool
	loaded     bool

	seq         uint64 // latest issued fetch; older responses are dropped
	searchTimer *time.Timer
}

type fetcherFunc func(ctx context.Context, filters models.ListFilters, page, pageSize int) (*models.ListResult, error)

func NewController(fetcher Fetcher, pageSize int, debounce time.Duration, logger *zerolog.Logger) *Controller {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &Controller{
		fetcher:  fetcher.List,
		logger:   logger,
		pageSize: pageSize,
		debounce: debounce,
		filters:  models.ListFilters{Status: models.DateRangeAll, Date: models.DateRangeAll},
		page:     1,
	}
}

// Refresh refetches the current page with the current filters.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	filters, page := c.filters, c.page
	c.mu.Unlock()
	return c.fetch(ctx, filters, page)
}

// SetStatusFilter applies a status filter, resets to page 1 and refetches.
func (c *Controller) SetStatusFilter(ctx context.Context, status string) error {
	c.mu.Lock()
	c.filters.Status = status
	c.page = 1
	filters := c.filters
	c.mu.Unlock()
	return c.fetch(ctx, filters, 1)
}

// SetDateFilter applies a date shorthand, resets to page 1 and refetches.
func (c *Controller) SetDateFilter(ctx context.Context, date string) error {
	c.mu.Lock()
	c.filters.Date = date
	c.page = 1
	filters := c.filters
	c.mu.Unlock()
	return c.fetch(ctx, filters, 1)
}

// SetSearch schedules a search-text change. The refetch only fires once the
// input has been idle for the debounce window, so typing does not produce a
// request per keystroke. With a zero debounce the change applies
// immediately.
func (c *Controller) SetSearch(ctx context.Context, text string) {
	if c.debounce <= 0 {
		c.applySearch(ctx, text)
		return
	}

	// The debounced fetch outlives the triggering call, so detach it from
	// the caller's cancellation
	fetchCtx := context.WithoutCancel(ctx)

	c.mu.Lock()
	if c.searchTimer != nil {
		c.searchTimer.Stop()
	}
	c.searchTimer = time.AfterFunc(c.debounce, func() {
		c.applySearch(fetchCtx, text)
	})
	c.mu.Unlock()
}

func (c *Controller) applySearch(ctx context.Context, text string) {
	c.mu.Lock()
	c.filters.Search = text
	c.page = 1
	filters := c.filters
	c.mu.Unlock()

	if err := c.fetch(ctx, filters, 1); err != nil && !errors.Is(err, ErrSuperseded) {
		c.logger.Error().Err(err).Str("search", text).Msg("Search refetch failed")
	}
}

// GoToPage fetches page n. Asking for the page already shown is a no-op.
func (c *Controller) GoToPage(ctx context.Context, n int) error {
	c.mu.Lock()
	if n == c.page && c.loaded {
		c.mu.Unlock()
		return nil
	}
	filters := c.filters
	c.mu.Unlock()
	return c.fetch(ctx, filters, n)
}

// fetch runs one list call under a sequence number. By the time the response
// arrives a newer fetch may have been issued; such stale responses are
// discarded so rapid page or filter changes cannot finish out of order and
// overwrite newer state.
func (c *Controller) fetch(ctx context.Context, filters models.ListFilters, page int) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	pageSize := c.pageSize
	c.mu.Unlock()

	result, err := c.fetcher(ctx, filters, page, pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		return ErrSuperseded
	}
	if err != nil {
		// Prior state stays visible; the caller surfaces the error
		return err
	}

	c.page = result.Page
	c.requests = result.Requests
	c.totalCount = result.TotalCount
	c.totalPages = result.TotalPages
	c.fromCache = result.FromCache
	c.loaded = true
	return nil
}

// Stop cancels any pending debounced search.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
}

// State is a point-in-time copy of what the table renders.
type State struct {
	Filters    models.ListFilters
	Page       int
	PageSize   int
	Requests   []*models.ServiceRequest
	TotalCount int
	TotalPages int
	FromCache  bool
	Loaded     bool
}

// Snapshot returns a copy of the current table state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	requests := make([]*models.ServiceRequest, len(c.requests))
	copy(requests, c.requests)

	return State{
		Filters:    c.filters,
		Page:       c.page,
		PageSize:   c.pageSize,
		Requests:   requests,
		TotalCount: c.totalCount,
		TotalPages: c.totalPages,
		FromCache:  c.fromCache,
		Loaded:     c.loaded,
	}
}
