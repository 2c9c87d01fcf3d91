package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"navexpo/internal/domain"
)

type attendeeService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	admission      domain.AdmissionService
	notifier       domain.RegistrationNotifier
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAttendeeService creates an AttendeeService. notifier may be nil.
func NewAttendeeService(
	eventRepo domain.EventRepository,
	attendeeRepo domain.AttendeeRepository,
	admission domain.AdmissionService,
	notifier domain.RegistrationNotifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AttendeeService {
	return &attendeeService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		admission:      admission,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *attendeeService) Register(ctx context.Context, eventID string, details domain.AttendeeDetails) (*domain.AdmissionResult, error) {
	result, err := s.admission.AdmitAttendee(ctx, eventID, details)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "attendee admitted",
		"event_id", eventID, "attendee_id", result.Attendee.ID, "attendee_count", result.AttendeeCount)

	if s.notifier != nil {
		s.notifyRegistration(ctx, result.Attendee)
	}
	return result, nil
}

// notifyRegistration never fails the admission that triggered it.
func (s *attendeeService) notifyRegistration(ctx context.Context, attendee *domain.Attendee) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, attendee.EventID)
	if err == nil {
		err = s.notifier.NotifyRegistration(ctx, event, attendee)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "registration notification failed",
			"event_id", attendee.EventID, "attendee_id", attendee.ID, "err", err)
	}
}

func (s *attendeeService) ListAttendees(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	attendees, err := s.attendeeRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return attendees, nil
}

func (s *attendeeService) Withdraw(ctx context.Context, eventID, attendeeID string, caller domain.Identity) (*domain.WithdrawalResult, error) {
	if err := s.authorize(ctx, eventID, caller); err != nil {
		return nil, err
	}
	result, err := s.admission.WithdrawAttendee(ctx, eventID, attendeeID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "attendee withdrawn",
		"event_id", eventID, "attendee_id", attendeeID, "attendee_count", result.AttendeeCount, "by", caller.UserID)
	return result, nil
}

func (s *attendeeService) CheckConsistency(ctx context.Context, eventID string, caller domain.Identity) (*domain.CounterReport, error) {
	if err := s.authorize(ctx, eventID, caller); err != nil {
		return nil, err
	}
	return s.admission.VerifyCounter(ctx, eventID)
}

// authorize lets the event's organizer and admins manage its roster.
func (s *attendeeService) authorize(ctx context.Context, eventID string, caller domain.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !domain.Authorize(domain.ActionUpdate, event, caller.UserID, caller.Role) {
		return domain.ErrForbidden
	}
	return nil
}
