package dashboard

import (
	"fmt"

	"github.com/Claudio1052/Limpeza/internal/models"
)

const (
	emptyNoRequests = "No service requests yet"
	emptyNoMatches  = "No requests match the current filters"
)

// PageWindow returns the page-number controls to render: up to
// models.PageWindowSize numbers centered on current, clamped to
// [1, totalPages], sliding near the boundaries so the window stays full
// whenever enough pages exist.
func PageWindow(current, totalPages int) []int {
	return pageWindow(current, totalPages, models.PageWindowSize)
}

func pageWindow(current, totalPages, size int) []int {
	if totalPages <= 0 {
		return nil
	}

	start := current - size/2
	if start < 1 {
		start = 1
	}
	end := start + size - 1
	if end > totalPages {
		end = totalPages
		if start = end - size + 1; start < 1 {
			start = 1
		}
	}

	window := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		window = append(window, p)
	}
	return window
}

// PageWindow returns the page controls for this snapshot.
func (s State) PageWindow() []int {
	return PageWindow(s.Page, s.TotalPages)
}

// EmptyMessage returns the empty-state text, distinguishing a genuinely
// empty table from one whose filters matched nothing. Empty when the table
// has rows.
func (s State) EmptyMessage() string {
	if len(s.Requests) > 0 {
		return ""
	}
	if s.Filters.Active() {
		return emptyNoMatches
	}
	return emptyNoRequests
}

// RangeLabel describes the visible slice, e.g. "Showing 11-15 of 15 requests".
func (s State) RangeLabel() string {
	if s.TotalCount == 0 {
		return "Showing 0 of 0 requests"
	}

	start := (s.Page-1)*s.PageSize + 1
	end := start + s.PageSize - 1
	if end > s.TotalCount {
		end = s.TotalCount
	}
	return fmt.Sprintf("Showing %d-%d of %d requests", start, end, s.TotalCount)
}
