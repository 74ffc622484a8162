package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Claudio1052/Limpeza/internal/database"
	"github.com/Claudio1052/Limpeza/internal/domain"
	"github.com/Claudio1052/Limpeza/internal/events"
	"github.com/Claudio1052/Limpeza/internal/metrics"
	"github.com/Claudio1052/Limpeza/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestService is the single choke point between the HTTP surface and
// storage: it owns input validation, filter resolution, the list result
// cache and its invalidation rules.
type RequestService struct {
	store    domain.Store
	cache    domain.ResultCache
	eventBus domain.EventPublisher
	clock    domain.Clock
	validate *validator.Validate
	logger   *zerolog.Logger
}

func NewRequestService(store domain.Store, cache domain.ResultCache, eventBus domain.EventPublisher, clock domain.Clock, logger *zerolog.Logger) *RequestService {
	if clock == nil {
		clock = domain.RealClock{}
	}

	validate := validator.New()
	// Report errors under the JSON field name the client actually sent
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestService{
		store:    store,
		cache:    cache,
		eventBus: eventBus,
		clock:    clock,
		validate: validate,
		logger:   logger,
	}
}

// RequestInput is what the booking form and the admin edit form submit.
type RequestInput struct {
	FullName     string `json:"fullName" validate:"required"`
	Phone        string `json:"phone" validate:"required,min=8"`
	Email        string `json:"email" validate:"required,email"`
	Address      string `json:"address" validate:"required"`
	ServiceType  string `json:"serviceType" validate:"required,oneof=house church upholstery commercial other"`
	Bedrooms     int    `json:"bedrooms" validate:"gte=0"`
	CleaningDate string `json:"cleaningDate" validate:"required,datetime=2006-01-02"`
	CleaningTime string `json:"cleaningTime" validate:"required"`
	Description  string `json:"description" validate:"required"`
}

// Create validates the booking input and stores a new pending request.
func (s *RequestService) Create(ctx context.Context, input RequestInput) (*models.ServiceRequest, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, asValidationError(err)
	}

	now := s.clock.Now().UTC()
	req := &models.ServiceRequest{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        strings.TrimSpace(input.Phone),
		Email:        strings.TrimSpace(input.Email),
		Address:      strings.TrimSpace(input.Address),
		ServiceType:  input.ServiceType,
		Bedrooms:     input.Bedrooms,
		CleaningDate: input.CleaningDate,
		CleaningTime: input.CleaningTime,
		Description:  strings.TrimSpace(input.Description),
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, &BackendError{Op: "create request", Err: err}
	}

	s.invalidateCache(ctx)
	s.publish(events.EventRequestCreated, req)

	s.logger.Info().Str("request_id", req.ID).Str("service_type", req.ServiceType).Msg("Service request created")
	return req, nil
}

// List returns one page of the filtered table. An identical call within the
// cache TTL is served from cache without touching storage.
func (s *RequestService) List(ctx context.Context, filters models.ListFilters, page, pageSize int) (*models.ListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}

	key := cacheKey(filters, page, pageSize)
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn().Err(err).Msg("List cache lookup failed")
	} else if ok {
		metrics.IncCacheHit()
		cached.FromCache = true
		return cached, nil
	}
	metrics.IncCacheMiss()

	q := s.buildQuery(filters)
	q.Limit = pageSize
	q.Offset = (page - 1) * pageSize

	requests, count, err := s.store.ListRequests(ctx, q)
	if err != nil {
		return nil, &BackendError{Op: "list requests", Err: err}
	}

	totalPages := 0
	if count > 0 {
		totalPages = (count + pageSize - 1) / pageSize
	}

	result := &models.ListResult{
		Requests:   requests,
		TotalCount: count,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   pageSize,
	}

	if err := s.cache.Put(ctx, key, result); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache list result")
	}

	return result, nil
}

// GetByID loads a single request.
func (s *RequestService) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	req, err := s.store.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, &BackendError{Op: "get request", Err: err}
	}
	return req, nil
}

// requiredFields are the API field names that may not be cleared by an
// update.
var requiredFields = map[string]bool{
	"fullName":     true,
	"phone":        true,
	"email":        true,
	"address":      true,
	"serviceType":  true,
	"cleaningDate": true,
	"cleaningTime": true,
	"status":       true,
}

// Update translates the given API field names through the static mapping
// table, stamps updated_at and applies the change. The updated record is
// returned.
func (s *RequestService) Update(ctx context.Context, id string, fields map[string]any) (*models.ServiceRequest, error) {
	if len(fields) == 0 {
		return nil, &ValidationError{Field: "fields", Reason: "no fields to update"}
	}

	columns := make(map[string]any, len(fields))
	for name, value := range fields {
		column, ok := models.Columns[name]
		if !ok {
			return nil, &ValidationError{Field: name, Reason: "unknown field"}
		}
		value, err := normalizeFieldValue(name, value)
		if err != nil {
			return nil, err
		}
		columns[column] = value
	}

	err := s.store.UpdateRequest(ctx, id, columns, s.clock.Now().UTC())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, &BackendError{Op: "update request", Err: err}
	}

	s.invalidateCache(ctx)

	req, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(events.EventRequestUpdated, req)

	s.logger.Info().Str("request_id", id).Msg("Service request updated")
	return req, nil
}

// Delete removes a request permanently.
func (s *RequestService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteRequest(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &NotFoundError{ID: id}
		}
		return &BackendError{Op: "delete request", Err: err}
	}

	s.invalidateCache(ctx)
	s.publish(events.EventRequestDeleted, &models.ServiceRequest{ID: id})

	s.logger.Info().Str("request_id", id).Msg("Service request deleted")
	return nil
}

// Stats summarizes the current month plus upcoming confirmed cleanings.
func (s *RequestService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	now := s.clock.Now()
	today := midnight(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats, err := s.store.GetStats(ctx, monthStart, today, today.AddDate(0, 0, 7))
	if err != nil {
		return nil, &BackendError{Op: "get stats", Err: err}
	}
	return stats, nil
}

// buildQuery resolves the filter set against the clock: the date shorthand
// becomes a concrete lower bound on the cleaning date.
func (s *RequestService) buildQuery(filters models.ListFilters) models.ListQuery {
	q := models.ListQuery{
		Search: strings.TrimSpace(filters.Search),
	}
	if filters.Status != "" && filters.Status != models.DateRangeAll {
		q.Status = filters.Status
	}

	now := s.clock.Now()
	switch filters.Date {
	case models.DateRangeToday:
		q.DateFrom = midnight(now).Format(models.DateLayout)
	case models.DateRangeWeek:
		q.DateFrom = mostRecentMonday(now).Format(models.DateLayout)
	case models.DateRangeMonth:
		q.DateFrom = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(models.DateLayout)
	}
	return q
}

func (s *RequestService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate list cache")
	}
}

func (s *RequestService) publish(eventType string, req *models.ServiceRequest) {
	err := s.eventBus.PublishJSON(eventType, events.RequestEventPayload{
		RequestID:    req.ID,
		FullName:     req.FullName,
		ServiceType:  req.ServiceType,
		CleaningDate: req.CleaningDate,
		Status:       req.Status,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}

func cacheKey(filters models.ListFilters, page, pageSize int) string {
	raw, _ := json.Marshal(struct {
		Filters  models.ListFilters `json:"filters"`
		Page     int                `json:"page"`
		PageSize int                `json:"pageSize"`
	}{filters, page, pageSize})
	return string(raw)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mostRecentMonday returns the Monday of t's week; for a Monday that is the
// day itself.
func mostRecentMonday(t time.Time) time.Time {
	day := midnight(t)
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday belongs to the week that started six days ago
	}
	return day.AddDate(0, 0, -offset)
}

func normalizeFieldValue(name string, value any) (any, error) {
	switch name {
	case "status":
		str, ok := value.(string)
		if !ok || !models.ValidStatus(str) {
			return nil, &ValidationError{Field: name, Reason: "unknown status"}
		}
		return str, nil
	case "serviceType":
		str, ok := value.(string)
		if !ok || !models.ValidServiceType(str) {
			return nil, &ValidationError{Field: name, Reason: "unknown service type"}
		}
		return str, nil
	case "cleaningDate":
		str, ok := value.(string)
		if !ok {
			return nil, &ValidationError{Field: name, Reason: "expected a date string"}
		}
		if _, err := time.Parse(models.DateLayout, str); err != nil {
			return nil, &ValidationError{Field: name, Reason: "expected YYYY-MM-DD"}
		}
		return str, nil
	case "bedrooms":
		switch v := value.(type) {
		case int:
			if v < 0 {
				return nil, &ValidationError{Field: name, Reason: "must not be negative"}
			}
			return v, nil
		case float64: // JSON numbers decode as float64
			if v < 0 || v != float64(int(v)) {
				return nil, &ValidationError{Field: name, Reason: "must be a non-negative integer"}
			}
			return int(v), nil
		default:
			return nil, &ValidationError{Field: name, Reason: "must be a non-negative integer"}
		}
	case "description":
		str, ok := value.(string)
		if !ok {
			return nil, &ValidationError{Field: name, Reason: "expected a string"}
		}
		return str, nil
	default:
		str, ok := value.(string)
		if !ok {
			return nil, &ValidationError{Field: name, Reason: "expected a string"}
		}
		if requiredFields[name] && strings.TrimSpace(str) == "" {
			return nil, &ValidationError{Field: name}
		}
		return strings.TrimSpace(str), nil
	}
}

func asValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		if first.Tag() == "required" {
			return &ValidationError{Field: first.Field()}
		}
		return &ValidationError{Field: first.Field(), Reason: fmt.Sprintf("failed %q validation", first.Tag())}
	}
	return &ValidationError{Field: "input", Reason: err.Error()}
}
