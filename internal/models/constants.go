package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	ServiceHouse      = "house"
	ServiceChurch     = "church"
	ServiceUpholstery = "upholstery"
	ServiceCommercial = "commercial"
	ServiceOther      = "other"
)

const (
	TimeMorning   = "morning"
	TimeAfternoon = "afternoon"
	TimeEvening   = "evening"
)

const (
	DateRangeAll   = "all"
	DateRangeToday = "today"
	DateRangeWeek  = "week"
	DateRangeMonth = "month"
)

const (
	// DateLayout is the storage format for calendar dates.
	DateLayout = "2006-01-02"

	// DefaultPageSize is the admin table page size.
	DefaultPageSize = 10

	// PageWindowSize is the number of page controls shown at once.
	PageWindowSize = 5

	// ListCacheTTL is how long one list result stays valid, in seconds.
	ListCacheTTL = 30

	// SearchDebounce is how long search input must be idle before a
	// refetch, in milliseconds.
	SearchDebounce = 500

	// SessionTTL is the admin session lifetime in seconds.
	SessionTTL = 12 * 60 * 60
)

// Statuses lists every status value in display order.
var Statuses = []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// ServiceTypes lists every service type accepted by the booking form.
var ServiceTypes = []string{ServiceHouse, ServiceChurch, ServiceUpholstery, ServiceCommercial, ServiceOther}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidServiceType reports whether s is a known service type.
func ValidServiceType(s string) bool {
	for _, v := range ServiceTypes {
		if v == s {
			return true
		}
	}
	return false
}
