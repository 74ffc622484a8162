package models

import "time"

// ServiceRequest is one cleaning appointment booked through the public form
// and managed from the admin dashboard.
type ServiceRequest struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	ServiceType  string    `json:"serviceType"` // house, church, upholstery, commercial, other
	Bedrooms     int       `json:"bedrooms"`
	CleaningDate string    `json:"cleaningDate"` // YYYY-MM-DD
	CleaningTime string    `json:"cleaningTime"` // morning, afternoon, evening or free text
	Description  string    `json:"description"`
	Status       string    `json:"status"` // pending, confirmed, completed, cancelled
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListFilters is the filter set applied to the admin table.
type ListFilters struct {
	Status string `json:"status"` // status value or "all"
	Date   string `json:"date"`   // today, week, month or "all"
	Search string `json:"search"` // substring matched against name, email, address, phone
}

// Active reports whether any non-default filter is applied.
func (f ListFilters) Active() bool {
	return (f.Status != "" && f.Status != DateRangeAll) ||
		(f.Date != "" && f.Date != DateRangeAll) ||
		f.Search != ""
}

// ListQuery is a filter set resolved against the clock: the date shorthand
// has already been turned into a concrete lower bound. Limit <= 0 means no
// pagination window.
type ListQuery struct {
	Status   string
	DateFrom string // inclusive lower bound on cleaning date, empty = unbounded
	Search   string
	Limit    int
	Offset   int
}

// ListResult is one page of the filtered table together with the totals
// computed over the whole filtered set.
type ListResult struct {
	Requests   []*ServiceRequest `json:"requests"`
	TotalCount int               `json:"totalCount"`
	TotalPages int               `json:"totalPages"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	FromCache  bool              `json:"fromCache"`
}

// DashboardStats summarizes requests created since the first day of the
// current month, plus confirmed cleanings coming up.
type DashboardStats struct {
	Pending        int `json:"pending"`
	Confirmed      int `json:"confirmed"`
	Completed      int `json:"completed"`
	Cancelled      int `json:"cancelled"`
	Total          int `json:"total"`
	ConfirmedToday int `json:"confirmedToday"`
	ConfirmedWeek  int `json:"confirmedWeek"`
}
