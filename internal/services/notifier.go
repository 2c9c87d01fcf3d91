package services

import (
	"context"
	"log/slog"
	"time"

	"navexpo/internal/domain"
)

type emailNotifier struct {
	emailService domain.EmailService
	logger       *slog.Logger
	timeout      time.Duration
}

// NewEmailNotifier sends confirmations straight through the email service in the
// background. It is used when no job queue is configured.
func NewEmailNotifier(emailService domain.EmailService, logger *slog.Logger, timeout time.Duration) domain.RegistrationNotifier {
	return &emailNotifier{emailService: emailService, logger: logger, timeout: timeout}
}

func (n *emailNotifier) NotifyRegistration(ctx context.Context, event *domain.Event, attendee *domain.Attendee) error {
	data := domain.NewRegistrationConfirmationEmailData(event, attendee)
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()
		err := n.emailService.SendRegistrationConfirmation(ctx, data)
		if err != nil {
			n.logger.WarnContext(ctx, "registration confirmation failed", "event_id", data.EventID, "attendee_id", data.AttendeeID, "err", err)
		}
	}()
	return nil
}
