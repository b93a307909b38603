package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/domain"
	"github.com/roxannesyombua/Movers-App-Server/internal/events"
	"github.com/roxannesyombua/Movers-App-Server/internal/metrics"
	"github.com/roxannesyombua/Movers-App-Server/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const deadLetterKey = "notifications:deadletter"

// NotifyWorker turns domain events into user notifications and delivers
// them off the request path. Delivery is best-effort: a failed send is
// retried with backoff, then dropped to the dead-letter list; it never
// fails the transition that produced the event.
type NotifyWorker struct {
	repo        domain.Repository
	notifier    domain.Notifier
	redis       *redis.Client
	retryPolicy RetryPolicy
	queue       chan domain.Notification
	logger      zerolog.Logger
}

func NewNotifyWorker(repo domain.Repository, notifier domain.Notifier, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *NotifyWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "notify-worker").Logger()
	}

	return &NotifyWorker{
		repo:        repo,
		notifier:    notifier,
		redis:       redisClient,
		retryPolicy: retry,
		queue:       make(chan domain.Notification, models.WorkerQueueSize),
		logger:      log,
	}
}

// Subscribe attaches the worker to every booking and quote event.
func (w *NotifyWorker) Subscribe(bus *events.EventBus) {
	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingApproved,
		events.EventBookingRejected,
		events.EventQuoteSelected,
		events.EventBookingConfirmed,
		events.EventStatusOverridden,
		events.EventQuoteCalculated,
		events.EventNotifyRequested,
	} {
		bus.Subscribe(eventType, w.handleEvent)
	}
}

func (w *NotifyWorker) handleEvent(event *events.Event) error {
	userID, subject, body := renderNotification(event)
	if userID == 0 {
		return nil
	}

	notification := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Event:     event.Type,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	}

	select {
	case w.queue <- notification:
	default:
		w.logger.Warn().Str("event", event.Type).Msg("notification queue full, dropping")
		metrics.IncNotification("dropped")
	}
	return nil
}

// Start consumes the queue until ctx is done.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("notify worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("notify worker stopped")
			return
		case notification := <-w.queue:
			w.deliver(ctx, notification)
		}
	}
}

func (w *NotifyWorker) deliver(ctx context.Context, notification domain.Notification) {
	if notification.Recipient == "" {
		user, err := w.repo.GetUserByID(ctx, notification.UserID)
		if err != nil {
			w.logger.Warn().Err(err).Int64("user_id", notification.UserID).Msg("recipient lookup failed, dropping notification")
			metrics.IncNotification("dropped")
			return
		}
		notification.Recipient = user.Email
	}

	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		lastErr = w.notifier.Send(ctx, notification)
		if lastErr == nil {
			metrics.IncNotification("sent")
			return
		}

		w.logger.Warn().Err(lastErr).
			Str("notification_id", notification.ID).
			Int("attempt", attempt).
			Msg("notification send failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}

	metrics.IncNotification("failed")
	w.deadLetter(ctx, notification, lastErr)
}

func (w *NotifyWorker) deadLetter(ctx context.Context, notification domain.Notification, cause error) {
	w.logger.Error().Err(cause).
		Str("notification_id", notification.ID).
		Int64("user_id", notification.UserID).
		Msg("notification retries exhausted")

	if w.redis == nil {
		return
	}
	raw, err := json.Marshal(notification)
	if err != nil {
		return
	}
	if err := w.redis.LPush(ctx, deadLetterKey, raw).Err(); err != nil {
		w.logger.Warn().Err(err).Msg("dead letter push failed")
	}
}

func renderNotification(event *events.Event) (int64, string, string) {
	switch event.Type {
	case events.EventQuoteCalculated:
		var p events.QuoteEventPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return 0, "", ""
		}
		return p.UserID, "Your moving quote is ready",
			fmt.Sprintf("%s quoted %.2f for a %s move over %.1f km.",
				p.CompanyName, p.Amount, p.HouseType, p.Distance)
	default:
		var p events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return 0, "", ""
		}
		return p.UserID, bookingSubject(event.Type, p), bookingBody(event.Type, p)
	}
}

func bookingSubject(eventType string, p events.BookingEventPayload) string {
	switch eventType {
	case events.EventBookingCreated:
		return "Move request received"
	case events.EventBookingApproved:
		return "Your quote was approved"
	case events.EventBookingRejected:
		return "Your quote was rejected"
	case events.EventQuoteSelected:
		return "Quote selected for your move"
	case events.EventBookingConfirmed:
		return "Your move is booked"
	case events.EventStatusOverridden:
		return "Your booking status was updated"
	case events.EventNotifyRequested:
		return "Booking status update"
	default:
		return "Booking update"
	}
}

func bookingBody(eventType string, p events.BookingEventPayload) string {
	switch eventType {
	case events.EventBookingCreated:
		return fmt.Sprintf("We received your move request from %s to %s.", p.CurrentLocation, p.NewLocation)
	case events.EventBookingConfirmed:
		return fmt.Sprintf("Your move is confirmed for %s at %s.", p.Date, p.Time)
	default:
		return fmt.Sprintf("Booking #%d is now %q.", p.BookingID, p.Status)
	}
}
