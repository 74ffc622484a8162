package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Claudio1052/Limpeza/internal/dashboard"
	"github.com/Claudio1052/Limpeza/internal/models"
	"github.com/Claudio1052/Limpeza/internal/service"
)

// handleCreateRequest is the public booking form endpoint.
func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var input service.RequestInput
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req, err := s.service.Create(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, req)
}

// dashboardView is the admin table state plus the rendering metadata the
// dashboard needs: page-number controls, the visible-range label and the
// empty-state text.
type dashboardView struct {
	Requests     []*models.ServiceRequest `json:"requests"`
	Filters      models.ListFilters       `json:"filters"`
	Page         int                      `json:"page"`
	PageSize     int                      `json:"pageSize"`
	TotalCount   int                      `json:"totalCount"`
	TotalPages   int                      `json:"totalPages"`
	FromCache    bool                     `json:"fromCache"`
	PageWindow   []int                    `json:"pageWindow"`
	RangeLabel   string                   `json:"rangeLabel"`
	EmptyMessage string                   `json:"emptyMessage"`
}

func newDashboardView(state dashboard.State) dashboardView {
	requests := state.Requests
	if requests == nil {
		requests = []*models.ServiceRequest{}
	}
	return dashboardView{
		Requests:     requests,
		Filters:      state.Filters,
		Page:         state.Page,
		PageSize:     state.PageSize,
		TotalCount:   state.TotalCount,
		TotalPages:   state.TotalPages,
		FromCache:    state.FromCache,
		PageWindow:   state.PageWindow(),
		RangeLabel:   state.RangeLabel(),
		EmptyMessage: state.EmptyMessage(),
	}
}

// handleDashboard drives the admin table through the list controller: a
// changed filter resets to page 1, search text is debounced, and a response
// that lost the race to a newer fetch never overwrites the visible state.
// The reply always reflects the controller's current snapshot, so a
// debounced search returns the pre-search state until the window elapses.
func (s *HTTPServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	snap := s.controller.Snapshot()
	q := r.URL.Query()

	status := q.Get("status")
	date := q.Get("date")
	search := q.Get("search")
	page := parsePositiveInt(q.Get("page"), snap.Page)

	var err error
	switch {
	case status != "" && status != snap.Filters.Status:
		err = s.controller.SetStatusFilter(ctx, status)
	case date != "" && date != snap.Filters.Date:
		err = s.controller.SetDateFilter(ctx, date)
	case search != snap.Filters.Search:
		s.controller.SetSearch(ctx, search)
	case page != snap.Page || !snap.Loaded:
		err = s.controller.GoToPage(ctx, page)
	default:
		err = s.controller.Refresh(ctx)
	}
	if err != nil && !errors.Is(err, dashboard.ErrSuperseded) {
		s.writeServiceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, newDashboardView(s.controller.Snapshot()))
}

func (s *HTTPServer) handleRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filters := parseListFilters(r)
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	pageSize := parsePositiveInt(r.URL.Query().Get("pageSize"), s.cfg.Dashboard.PageSize)

	result, err := s.service.List(r.Context(), filters, page, pageSize)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

func (s *HTTPServer) handleRequestByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/admin/requests/"
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		req, err := s.service.GetByID(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, req)

	case http.MethodPatch:
		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if len(fields) == 0 {
			writeError(w, http.StatusBadRequest, "no fields to update")
			return
		}

		req, err := s.service.Update(r.Context(), id, fields)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, req)

	case http.MethodDelete:
		if err := s.service.Delete(r.Context(), id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, map[string]string{"id": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (s *HTTPServer) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	data, err := s.service.ExportCSV(r.Context(), parseListFilters(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	filename := s.service.ExportFileName("csv")
	s.saveExport(filename, data)
	serveAttachment(w, filename, "text/csv", data)
}

func (s *HTTPServer) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	data, err := s.service.ExportExcel(r.Context(), parseListFilters(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	filename := s.service.ExportFileName("xlsx")
	s.saveExport(filename, data)
	serveAttachment(w, filename,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// saveExport keeps a copy of the generated artifact on disk, where the
// janitor applies the retention window. Failure to persist never blocks the
// download itself.
func (s *HTTPServer) saveExport(filename string, data []byte) {
	dir := s.cfg.Exports.Path
	if dir == "" {
		return
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Warn().Err(err).Str("file", path).Msg("Failed to persist export artifact")
		return
	}
	s.logger.Info().Str("file", path).Msg("Export artifact persisted")
}

func serveAttachment(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
