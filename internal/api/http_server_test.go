package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Claudio1052/Limpeza/internal/config"
	"github.com/Claudio1052/Limpeza/internal/database"
	"github.com/Claudio1052/Limpeza/internal/domain"
	"github.com/Claudio1052/Limpeza/internal/events"
	"github.com/Claudio1052/Limpeza/internal/models"
	"github.com/Claudio1052/Limpeza/internal/repository"
	"github.com/Claudio1052/Limpeza/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminSecret = "test-secret"

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()

	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := domain.RealClock{}
	cache := repository.NewMemoryResultCache(30*time.Second, clock)
	svc := service.NewRequestService(db, cache, events.NewEventBus(), clock, &logger)
	sessions := repository.NewMemorySessionRepository(clock)

	cfg := &config.Config{
		Admin: config.AdminConfig{
			Secret:     testAdminSecret,
			SessionTTL: 3600,
		},
		Dashboard: config.DashboardConfig{PageSize: models.DefaultPageSize},
		Exports:   config.ExportConfig{Path: t.TempDir(), RetentionDays: 7},
	}

	return NewHTTPServer(cfg, svc, sessions, &logger)
}

func validBookingBody() map[string]any {
	return map[string]any{
		"fullName":     "Maria Silva",
		"phone":        "555-0100-200",
		"email":        "maria@example.com",
		"address":      "1 Main St",
		"serviceType":  models.ServiceHouse,
		"bedrooms":     3,
		"cleaningDate": "2026-09-15",
		"cleaningTime": "morning",
		"description":  "Deep clean before moving in",
	}
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any, headers map[string]string) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) apiResponse {
	t.Helper()
	defer resp.Body.Close()

	var envelope apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

// login returns a live session token for admin calls.
func login(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	resp := postJSON(t, ts, "/api/v1/admin/login", map[string]string{"secret": testAdminSecret}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func adminGet(t *testing.T, ts *httptest.Server, path, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("x-admin-token", token)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestCreateRequest(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	resp := postJSON(t, ts, "/api/v1/requests", validBookingBody(), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	assert.True(t, envelope.Success)
	assert.Empty(t, envelope.Error)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, models.StatusPending, data["status"])
	assert.Equal(t, "Maria Silva", data["fullName"])
}

func TestCreateRequestRejectsInvalidInput(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	body := validBookingBody()
	body["email"] = "not-an-email"

	resp := postJSON(t, ts, "/api/v1/requests", body, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Error, "email")
}

func TestCreateRequestRejectsUnknownFields(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	body := validBookingBody()
	body["isAdmin"] = true

	resp := postJSON(t, ts, "/api/v1/requests", body, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminEndpointsRequireSession(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	paths := []string{
		"/api/v1/admin/requests",
		"/api/v1/admin/stats",
		"/api/v1/admin/export.csv",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			resp, err := ts.Client().Get(ts.URL + path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}

	// A made-up token is just as dead as no token
	resp := adminGet(t, ts, "/api/v1/admin/requests", "not-a-real-token")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	resp := postJSON(t, ts, "/api/v1/admin/login", map[string]string{"secret": "wrong"}, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	token := login(t, ts)

	resp := postJSON(t, ts, "/api/v1/admin/logout", nil, map[string]string{"x-admin-token": token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = adminGet(t, ts, "/api/v1/admin/requests", token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListRequests(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	for i := 0; i < 12; i++ {
		body := validBookingBody()
		body["email"] = fmt.Sprintf("client%d@example.com", i)
		resp := postJSON(t, ts, "/api/v1/requests", body, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	token := login(t, ts)
	resp := adminGet(t, ts, "/api/v1/admin/requests?page=2", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 12, data["totalCount"])
	assert.EqualValues(t, 2, data["totalPages"])
	assert.EqualValues(t, 2, data["page"])

	rows, ok := data["requests"].([]any)
	require.True(t, ok)
	assert.Len(t, rows, 2)
}

func TestGetUpdateDeleteRequest(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	resp := postJSON(t, ts, "/api/v1/requests", validBookingBody(), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeEnvelope(t, resp)
	id := created.Data.(map[string]any)["id"].(string)

	token := login(t, ts)
	headers := map[string]string{"x-admin-token": token}

	resp = adminGet(t, ts, "/api/v1/admin/requests/"+id, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Confirm it
	raw, err := json.Marshal(map[string]any{"status": models.StatusConfirmed})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPatch, ts.URL+"/api/v1/admin/requests/"+id, bytes.NewReader(raw))
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	patchResp, err := ts.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, patchResp.StatusCode)
	updated := decodeEnvelope(t, patchResp)
	assert.Equal(t, models.StatusConfirmed, updated.Data.(map[string]any)["status"])

	// Delete it
	req, err = http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/admin/requests/"+id, nil)
	require.NoError(t, err)
	req.Header.Set("x-admin-token", token)
	delResp, err := ts.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, delResp.StatusCode)
	delResp.Body.Close()

	resp = adminGet(t, ts, "/api/v1/admin/requests/"+id, token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStats(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	resp := postJSON(t, ts, "/api/v1/requests", validBookingBody(), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	token := login(t, ts)
	resp = adminGet(t, ts, "/api/v1/admin/stats", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.True(t, envelope.Success)
	data := envelope.Data.(map[string]any)
	assert.EqualValues(t, 1, data["pending"])
	assert.EqualValues(t, 1, data["total"])
}

func TestExportCSV(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	resp := postJSON(t, ts, "/api/v1/requests", validBookingBody(), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	token := login(t, ts)
	resp = adminGet(t, ts, "/api/v1/admin/export.csv", token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Maria Silva")

	// The artifact lands on disk for the retention janitor
	files, err := os.ReadDir(server.cfg.Exports.Path)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Name(), ".csv")

	persisted, err := os.ReadFile(filepath.Join(server.cfg.Exports.Path, files[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, body, persisted)
}

func decodeDashboard(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	envelope := decodeEnvelope(t, resp)
	require.True(t, envelope.Success)
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	return data
}

func TestDashboard(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	for i := 0; i < 15; i++ {
		body := validBookingBody()
		body["email"] = fmt.Sprintf("client%d@example.com", i)
		resp := postJSON(t, ts, "/api/v1/requests", body, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	token := login(t, ts)

	// First page with paging metadata
	data := decodeDashboard(t, adminGet(t, ts, "/api/v1/admin/dashboard", token))
	assert.EqualValues(t, 1, data["page"])
	assert.EqualValues(t, 15, data["totalCount"])
	assert.EqualValues(t, 2, data["totalPages"])
	assert.Len(t, data["requests"], 10)
	assert.Equal(t, []any{float64(1), float64(2)}, data["pageWindow"])
	assert.Equal(t, "Showing 1-10 of 15 requests", data["rangeLabel"])
	assert.Empty(t, data["emptyMessage"])

	// Second page
	data = decodeDashboard(t, adminGet(t, ts, "/api/v1/admin/dashboard?page=2", token))
	assert.EqualValues(t, 2, data["page"])
	assert.Len(t, data["requests"], 5)
	assert.Equal(t, "Showing 11-15 of 15 requests", data["rangeLabel"])

	// A status filter resets to page 1; nothing is confirmed yet
	data = decodeDashboard(t, adminGet(t, ts, "/api/v1/admin/dashboard?status=confirmed", token))
	assert.EqualValues(t, 1, data["page"])
	assert.EqualValues(t, 0, data["totalCount"])
	assert.Len(t, data["requests"], 0)
	assert.Equal(t, "No requests match the current filters", data["emptyMessage"])

	// Back to all; zero debounce applies search immediately
	data = decodeDashboard(t, adminGet(t, ts, "/api/v1/admin/dashboard?status=all", token))
	assert.EqualValues(t, 15, data["totalCount"])

	data = decodeDashboard(t, adminGet(t, ts, "/api/v1/admin/dashboard?search=client3", token))
	assert.EqualValues(t, 1, data["totalCount"])
}

func TestDashboardRequiresSession(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	resp, err := ts.Client().Get(ts.URL + "/api/v1/admin/dashboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/requests", "/api/v1/requests"},
		{"/api/v1/admin/requests", "/api/v1/admin/requests"},
		{"/api/v1/admin/requests/", "/api/v1/admin/requests/"},
		{"/api/v1/admin/requests/9e3a6f", "/api/v1/admin/requests/:id"},
		{"/api/v1/admin/dashboard", "/api/v1/admin/dashboard"},
		{"/healthz", "/healthz"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, routeLabel(tt.path))
		})
	}
}

func TestRateLimit(t *testing.T) {
	server := newTestServer(t)
	server.cfg.Server.RateLimit = config.RateLimitConfig{RPS: 1, Burst: 2}
	server = NewHTTPServer(server.cfg, server.service, repository.NewMemorySessionRepository(domain.RealClock{}), server.logger)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	var limited bool
	for i := 0; i < 5; i++ {
		resp, err := ts.Client().Get(ts.URL + "/healthz")
		require.NoError(t, err)
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
		}
		resp.Body.Close()
	}
	assert.True(t, limited, "burst of 5 must trip a 1 rps / burst 2 limiter")
}
