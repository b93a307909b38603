package service

import "errors"

var (
	// ErrInvalidInput marks missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoApprovedBooking is returned when scheduling is attempted
	// without a prior approved booking.
	ErrNoApprovedBooking = errors.New("no approved booking found")

	// ErrInvalidCredentials is returned on failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden is returned when the caller lacks the required role.
	ErrForbidden = errors.New("forbidden")
)
