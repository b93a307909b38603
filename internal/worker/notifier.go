package worker

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/roxannesyombua/Movers-App-Server/internal/config"
	"github.com/roxannesyombua/Movers-App-Server/internal/domain"

	"github.com/rs/zerolog"
)

// SMTPNotifier delivers notifications as plain-text email.
type SMTPNotifier struct {
	cfg config.NotificationsConfig
}

func NewSMTPNotifier(cfg config.NotificationsConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) Send(ctx context.Context, notification domain.Notification) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.SMTPHost)
	}

	if notification.Recipient == "" {
		return fmt.Errorf("notification %s has no recipient", notification.ID)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		n.cfg.From, notification.Recipient, notification.Subject, notification.Body)

	return smtp.SendMail(addr, auth, n.cfg.From, []string{notification.Recipient}, []byte(msg))
}

// LogNotifier only logs deliveries. Used when notifications are
// disabled or no SMTP host is configured.
type LogNotifier struct {
	logger *zerolog.Logger
}

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, notification domain.Notification) error {
	n.logger.Info().
		Str("notification_id", notification.ID).
		Int64("user_id", notification.UserID).
		Str("event", notification.Event).
		Str("subject", notification.Subject).
		Msg("notification delivered (log only)")
	return nil
}
