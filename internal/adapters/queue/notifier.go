package queue

import (
	"context"
	"fmt"

	"navexpo/internal/domain"
)

type notifier struct {
	queue *Queue
}

// NewNotifier returns a RegistrationNotifier that hands confirmations to the worker.
func NewNotifier(q *Queue) domain.RegistrationNotifier {
	return &notifier{queue: q}
}

func (n *notifier) NotifyRegistration(ctx context.Context, event *domain.Event, attendee *domain.Attendee) error {
	data := domain.NewRegistrationConfirmationEmailData(event, attendee)
	if _, err := n.queue.Enqueue(ctx, JobTypeRegistrationConfirmation, data); err != nil {
		return fmt.Errorf("enqueue registration confirmation: %w", err)
	}
	return nil
}
