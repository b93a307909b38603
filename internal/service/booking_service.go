package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/database"
	"github.com/roxannesyombua/Movers-App-Server/internal/domain"
	"github.com/roxannesyombua/Movers-App-Server/internal/events"
	"github.com/roxannesyombua/Movers-App-Server/internal/metrics"
	"github.com/roxannesyombua/Movers-App-Server/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns the booking lifecycle:
// Pending -> Approved|Rejected, Pending -> Quote Selected,
// Approved -> Confirmed. Rejected and Confirmed are terminal.
type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	cache    domain.StatusCache
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, cache domain.StatusCache, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		cache:    cache,
		logger:   logger,
	}
}

// ShareLocation creates a Pending booking from the user's current and
// destination locations. A user holds at most one open booking.
func (s *BookingService) ShareLocation(ctx context.Context, userID int64, currentLocation, newLocation string) (*models.Booking, error) {
	if strings.TrimSpace(currentLocation) == "" || strings.TrimSpace(newLocation) == "" {
		return nil, fmt.Errorf("%w: current_location and new_location are required", ErrInvalidInput)
	}

	booking := &models.Booking{
		UserID:          userID,
		CurrentLocation: currentLocation,
		NewLocation:     newLocation,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingTransition(booking.Status)
	s.publishEvent(events.EventBookingCreated, booking)
	s.cacheStatus(ctx, userID, booking.Status)

	return booking, nil
}

// ApproveQuote records the approval decision on the user's booking.
// Repeated calls are idempotent; the final status always matches the
// last call's boolean.
func (s *BookingService) ApproveQuote(ctx context.Context, userID int64, approve bool) (*models.Booking, error) {
	booking, err := s.repo.GetLatestBookingForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approve {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	if booking.Approved == approve && booking.Status == status {
		return booking, nil
	}

	if err := s.repo.UpdateApprovalWithVersion(ctx, booking.ID, booking.Version, approve, status); err != nil {
		return nil, err
	}

	booking.Approved = approve
	booking.Status = status
	booking.Version++

	metrics.IncBookingTransition(status)
	s.publishEvent(eventType, booking)
	s.cacheStatus(ctx, userID, status)

	return booking, nil
}

// SelectQuote binds an owned quote to the user's booking.
func (s *BookingService) SelectQuote(ctx context.Context, userID, quoteID int64) (*models.Booking, *models.Quote, error) {
	quote, err := s.repo.GetQuoteForUser(ctx, quoteID, userID)
	if err != nil {
		return nil, nil, err
	}

	booking, err := s.repo.GetLatestBookingForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.BindQuoteWithVersion(ctx, booking.ID, booking.Version, quote.ID, models.StatusQuoteSelected); err != nil {
		return nil, nil, err
	}

	booking.QuoteID = &quote.ID
	booking.Status = models.StatusQuoteSelected
	booking.Version++

	metrics.IncBookingTransition(models.StatusQuoteSelected)
	s.publishEvent(events.EventQuoteSelected, booking)
	s.cacheStatus(ctx, userID, booking.Status)

	return booking, quote, nil
}

// Schedule confirms the booking with a date and time. The booking must
// have been approved first; parse failures carry the parser's detail.
func (s *BookingService) Schedule(ctx context.Context, userID int64, dateStr, timeStr string) (*models.Booking, error) {
	date, err := time.Parse(models.DateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	parsedTime, err := time.Parse(models.TimeLayout, timeStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	booking, err := s.repo.GetApprovedBookingForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoApprovedBooking
		}
		return nil, err
	}

	normalized := parsedTime.Format(models.TimeLayout)
	if err := s.repo.ScheduleWithVersion(ctx, booking.ID, booking.Version, date, normalized, models.StatusConfirmed); err != nil {
		return nil, err
	}

	booking.Date = &date
	booking.Time = normalized
	booking.Status = models.StatusConfirmed
	booking.Version++

	metrics.IncBookingTransition(models.StatusConfirmed)
	s.publishEvent(events.EventBookingConfirmed, booking)
	s.cacheStatus(ctx, userID, booking.Status)

	return booking, nil
}

// OverrideStatus unconditionally rewrites a booking's status. It
// bypasses every transition guard, so it is restricted to admins.
func (s *BookingService) OverrideStatus(ctx context.Context, actor *models.User, targetUserID int64, status string) (*models.Booking, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(status) == "" {
		return nil, fmt.Errorf("%w: status is required", ErrInvalidInput)
	}
	if targetUserID == 0 {
		targetUserID = actor.ID
	}

	booking, err := s.repo.GetLatestBookingForUser(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBookingStatus(ctx, booking.ID, status); err != nil {
		return nil, err
	}

	s.logger.Warn().
		Int64("booking_id", booking.ID).
		Int64("admin_id", actor.ID).
		Str("from", booking.Status).
		Str("to", status).
		Msg("booking status overridden")

	booking.Status = status
	booking.Version++

	metrics.IncBookingTransition(status)
	s.publishEvent(events.EventStatusOverridden, booking)
	s.cacheStatus(ctx, targetUserID, status)

	return booking, nil
}

// Notify republishes the user's latest booking so the notification
// worker delivers its current status again.
func (s *BookingService) Notify(ctx context.Context, userID int64) error {
	booking, err := s.repo.GetLatestBookingForUser(ctx, userID)
	if err != nil {
		return err
	}
	s.publishEvent(events.EventNotifyRequested, booking)
	return nil
}

// GetStatus returns the current status of the user's booking, serving
// from the cache when possible.
func (s *BookingService) GetStatus(ctx context.Context, userID int64) (string, error) {
	if s.cache != nil {
		if status, ok, err := s.cache.GetStatus(ctx, userID); err == nil && ok {
			return status, nil
		}
	}

	booking, err := s.repo.GetLatestBookingForUser(ctx, userID)
	if err != nil {
		return "", err
	}

	s.cacheStatus(ctx, userID, booking.Status)
	return booking.Status, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:       booking.ID,
		UserID:          booking.UserID,
		CurrentLocation: booking.CurrentLocation,
		NewLocation:     booking.NewLocation,
		Status:          booking.Status,
		Approved:        booking.Approved,
		Time:            booking.Time,
	}
	if booking.QuoteID != nil {
		payload.QuoteID = *booking.QuoteID
	}
	if booking.Date != nil {
		payload.Date = booking.Date.Format(models.DateLayout)
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) cacheStatus(ctx context.Context, userID int64, status string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetStatus(ctx, userID, status); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("status cache update failed")
	}
}
