package domain

import (
	"context"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/models"
)

type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error
	GetInventoryForUser(ctx context.Context, userID int64) ([]*models.InventoryItem, error)

	CreateQuote(ctx context.Context, quote *models.Quote) error
	GetQuoteForUser(ctx context.Context, id, userID int64) (*models.Quote, error)
	UpdateQuote(ctx context.Context, quote *models.Quote) error
	DeleteQuoteForUser(ctx context.Context, id, userID int64) error
	GetQuotesForUser(ctx context.Context, userID int64) ([]*models.Quote, error)
	GetAllQuotes(ctx context.Context) ([]*models.Quote, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetLatestBookingForUser(ctx context.Context, userID int64) (*models.Booking, error)
	GetApprovedBookingForUser(ctx context.Context, userID int64) (*models.Booking, error)
	UpdateApprovalWithVersion(ctx context.Context, id, fromVersion int64, approved bool, status string) error
	BindQuoteWithVersion(ctx context.Context, id, fromVersion, quoteID int64, status string) error
	ScheduleWithVersion(ctx context.Context, id, fromVersion int64, date time.Time, timeStr, status string) error
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	GetAllBookings(ctx context.Context) ([]*models.Booking, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// StatusCache keeps the hot booking-status lookup and per-user rate
// limit state out of sqlite.
type StatusCache interface {
	GetStatus(ctx context.Context, userID int64) (string, bool, error)
	SetStatus(ctx context.Context, userID int64, status string) error
	Invalidate(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// Notifier delivers one notification. Implementations must treat
// delivery as best-effort; callers never block a state transition on it.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Recipient string    `json:"recipient"`
	Event     string    `json:"event"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
