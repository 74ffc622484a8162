package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Claudio1052/Limpeza/internal/config"
	"github.com/Claudio1052/Limpeza/internal/dashboard"
	"github.com/Claudio1052/Limpeza/internal/domain"
	"github.com/Claudio1052/Limpeza/internal/metrics"
	"github.com/Claudio1052/Limpeza/internal/models"
	"github.com/Claudio1052/Limpeza/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the public booking endpoint and the session-gated
// admin API.
type HTTPServer struct {
	cfg        *config.Config
	service    *service.RequestService
	controller *dashboard.Controller
	auth       *SessionAuth
	limiter    *rateLimiter
	logger     *zerolog.Logger
	server     *http.Server
}

func NewHTTPServer(cfg *config.Config, svc *service.RequestService, sessions domain.SessionRepository, logger *zerolog.Logger) *HTTPServer {
	debounce := time.Duration(cfg.Dashboard.SearchDebounce) * time.Millisecond
	srv := &HTTPServer{
		cfg:        cfg,
		service:    svc,
		controller: dashboard.NewController(svc, cfg.Dashboard.PageSize, debounce, logger),
		auth:       NewSessionAuth(cfg.Admin, sessions, logger),
		limiter:    newRateLimiter(cfg.Server.RateLimit),
		logger:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealthz)
	mux.HandleFunc("/api/v1/requests", srv.handleCreateRequest)
	mux.HandleFunc("/api/v1/admin/login", srv.auth.HandleLogin)
	mux.HandleFunc("/api/v1/admin/logout", srv.auth.Require(srv.auth.HandleLogout))
	mux.HandleFunc("/api/v1/admin/dashboard", srv.auth.Require(srv.handleDashboard))
	mux.HandleFunc("/api/v1/admin/requests", srv.auth.Require(srv.handleRequests))
	mux.HandleFunc("/api/v1/admin/requests/", srv.auth.Require(srv.handleRequestByID))
	mux.HandleFunc("/api/v1/admin/stats", srv.auth.Require(srv.handleStats))
	mux.HandleFunc("/api/v1/admin/export.csv", srv.auth.Require(srv.handleExportCSV))
	mux.HandleFunc("/api/v1/admin/export.xlsx", srv.auth.Require(srv.handleExportExcel))

	handler := srv.loggingMiddleware(srv.limiter.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.controller.Stop()
	return s.server.Shutdown(ctx)
}

// Handler returns the full middleware chain, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(routeLabel(r.URL.Path), strconv.Itoa(recorder.status))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// routeLabel collapses per-record paths onto their route pattern so metric
// label cardinality stays bounded.
func routeLabel(path string) string {
	const requestsPrefix = "/api/v1/admin/requests/"
	if strings.HasPrefix(path, requestsPrefix) && len(path) > len(requestsPrefix) {
		return requestsPrefix + ":id"
	}
	return path
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// apiResponse is the uniform envelope every JSON endpoint returns.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, apiResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, apiResponse{Success: false, Error: message})
}

// writeServiceError maps service-layer errors onto HTTP statuses. Backend
// details stay in the log; clients get a generic message.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *service.ValidationError
		notFoundErr   *service.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, notFoundErr.Error())
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseListFilters(r *http.Request) models.ListFilters {
	q := r.URL.Query()
	filters := models.ListFilters{
		Status: q.Get("status"),
		Date:   q.Get("date"),
		Search: q.Get("search"),
	}
	if filters.Status == "" {
		filters.Status = models.DateRangeAll
	}
	if filters.Date == "" {
		filters.Date = models.DateRangeAll
	}
	return filters
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
