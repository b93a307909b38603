package models

const (
	StatusPending       = "Pending"
	StatusApproved      = "Approved"
	StatusRejected      = "Rejected"
	StatusQuoteSelected = "Quote Selected"
	StatusConfirmed     = "Confirmed"
)

const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

const (
	// DateLayout is the wire format for booking dates.
	DateLayout = "2006-01-02"

	// TimeLayout is the wire format for booking times (24-hour).
	TimeLayout = "15:04"
)

const (
	// WorkerQueueSize bounds the notification worker queue.
	WorkerQueueSize = 1000

	// DefaultStatusCacheTTL is how long a cached booking status lives, in seconds.
	DefaultStatusCacheTTL = 5 * 60

	// RateLimitRequests is the per-user request budget per window.
	RateLimitRequests = 30

	// RateLimitWindow is the rate limit window in seconds.
	RateLimitWindow = 60
)
