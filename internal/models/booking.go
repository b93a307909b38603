package models

import "time"

// Booking tracks a user's move request from location sharing to a
// confirmed schedule. Date and Time are only meaningful once the
// booking reaches StatusConfirmed.
type Booking struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	CurrentLocation string     `json:"current_location"`
	NewLocation     string     `json:"new_location"`
	Date            *time.Time `json:"date,omitempty"`
	Time            string     `json:"time,omitempty"` // HH:MM, 24-hour
	Approved        bool       `json:"approved"`
	Status          string     `json:"status"`
	QuoteID         *int64     `json:"quote_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Version         int64      `json:"version"`
}

// IsTerminal reports whether no further guarded transition is defined
// for the booking's current status.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusRejected || b.Status == StatusConfirmed
}
