package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"navexpo/internal/domain"
)

// MaxAdmissionAttempts bounds how often one registration re-evaluates the event
// after losing the capacity race to a concurrent admission.
const MaxAdmissionAttempts = 3

// errLostRace means the attendee was written but the guarded increment failed.
// The attendee has already been removed again when it is returned.
var errLostRace = errors.New("lost admission race")

type admissionService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	tx             domain.Transactor
	logger         *slog.Logger
	contextTimeout time.Duration
	retry          RetryPolicy
	now            func() time.Time
}

// NewAdmissionService returns the AdmissionService that keeps attendee_count equal to
// the number of attendee records and never above capacity.
func NewAdmissionService(
	eventRepo domain.EventRepository,
	attendeeRepo domain.AttendeeRepository,
	tx domain.Transactor,
	logger *slog.Logger,
	timeout time.Duration,
	retry RetryPolicy,
) domain.AdmissionService {
	return &admissionService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		tx:             tx,
		logger:         logger,
		contextTimeout: timeout,
		retry:          retry,
		now:            time.Now,
	}
}

func (s *admissionService) AdmitAttendee(ctx context.Context, eventID string, details domain.AttendeeDetails) (*domain.AdmissionResult, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, fmt.Errorf("%w: event id is required", domain.ErrInvalidInput)
	}
	if domain.NormalizeEmail(details.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	var result *domain.AdmissionResult
	attempt := 0
	err := s.retry.Do(ctx, func() error {
		attempt++
		var err error
		result, err = s.admit(ctx, eventID, details)
		if attempt > 1 && errors.Is(err, domain.ErrDuplicateRegistration) {
			// an earlier attempt may have committed before its error reached us
			result, err = s.existingAdmission(ctx, eventID, details.Email)
		}
		return err
	})
	if err != nil {
		if domain.IsTransient(err) {
			s.logger.WarnContext(ctx, "admission gave up on transient store errors", "event_id", eventID, "err", err)
		}
		return nil, err
	}
	return result, nil
}

// existingAdmission reports an attendee that is already on the roster as admitted.
func (s *admissionService) existingAdmission(ctx context.Context, eventID, email string) (*domain.AdmissionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	attendee, err := s.attendeeRepo.GetByEventAndEmail(ctx, eventID, domain.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("find admitted attendee: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	s.logger.InfoContext(ctx, "registration committed on an earlier attempt",
		"event_id", eventID, "attendee_id", attendee.ID)
	return &domain.AdmissionResult{Attendee: attendee, AttendeeCount: event.AttendeeCount}, nil
}

// admit re-evaluates the event each time a concurrent admission takes the last seat
// between our read and our increment.
func (s *admissionService) admit(ctx context.Context, eventID string, details domain.AttendeeDetails) (*domain.AdmissionResult, error) {
	for attempt := 1; ; attempt++ {
		result, err := s.admitOnce(ctx, eventID, details)
		if !errors.Is(err, errLostRace) {
			return result, err
		}
		s.logger.DebugContext(ctx, "admission lost capacity race", "event_id", eventID, "attempt", attempt)
		if attempt >= MaxAdmissionAttempts {
			return nil, domain.ErrEventFull
		}
	}
}

func (s *admissionService) admitOnce(ctx context.Context, eventID string, details domain.AttendeeDetails) (*domain.AdmissionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var result *domain.AdmissionResult
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		if event.AttendeeCount >= event.Capacity {
			return domain.ErrEventFull
		}

		attendee := domain.NewAttendee(eventID, details, s.now().UTC())
		_, err = s.attendeeRepo.GetByEventAndEmail(ctx, eventID, attendee.Email)
		switch {
		case err == nil:
			return domain.ErrDuplicateRegistration
		case !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("find attendee by email: %w", err)
		}

		if err := s.attendeeRepo.Create(ctx, attendee); err != nil {
			if errors.Is(err, domain.ErrDuplicateRegistration) || errors.Is(err, domain.ErrNotFound) {
				return err
			}
			return fmt.Errorf("create attendee: %w", err)
		}

		count, err := s.eventRepo.TryIncrementIfBelowCapacity(ctx, eventID)
		if err != nil {
			s.removeAttendee(ctx, attendee)
			switch {
			case errors.Is(err, domain.ErrEventFull):
				return errLostRace
			case errors.Is(err, domain.ErrNotFound):
				return domain.ErrNotFound
			}
			return fmt.Errorf("increment attendee count: %w", err)
		}

		result = &domain.AdmissionResult{Attendee: attendee, AttendeeCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// removeAttendee undoes an insert whose increment failed. It must run even when the
// caller has gone away, otherwise the roster would hold an uncounted attendee.
func (s *admissionService) removeAttendee(ctx context.Context, attendee *domain.Attendee) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.contextTimeout)
	defer cancel()

	err := s.attendeeRepo.Delete(cctx, attendee.EventID, attendee.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.ErrorContext(ctx, "compensating attendee delete failed",
			"event_id", attendee.EventID, "attendee_id", attendee.ID, "err", err)
	}
}

func (s *admissionService) WithdrawAttendee(ctx context.Context, eventID, attendeeID string) (*domain.WithdrawalResult, error) {
	if strings.TrimSpace(eventID) == "" || strings.TrimSpace(attendeeID) == "" {
		return nil, fmt.Errorf("%w: event id and attendee id are required", domain.ErrInvalidInput)
	}

	var result *domain.WithdrawalResult
	err := s.retry.Do(ctx, func() error {
		var err error
		result, err = s.withdrawOnce(ctx, eventID, attendeeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *admissionService) withdrawOnce(ctx context.Context, eventID, attendeeID string) (*domain.WithdrawalResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var result *domain.WithdrawalResult
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		attendee, err := s.attendeeRepo.GetByID(ctx, attendeeID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get attendee: %w", err)
		}
		if attendee.EventID != eventID {
			return domain.ErrNotFound
		}

		if err := s.attendeeRepo.Delete(ctx, eventID, attendeeID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("delete attendee: %w", err)
		}

		count, err := s.eventRepo.DecrementFloorZero(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrCounterUnderflow) {
				s.logger.ErrorContext(ctx, "attendee count already zero while the roster held an attendee",
					"event_id", eventID, "attendee_id", attendeeID)
				s.restoreAttendee(ctx, attendee)
				return fmt.Errorf("%w: event %s has attendee %s but attendee_count is 0", domain.ErrInvariantViolation, eventID, attendeeID)
			}
			s.restoreAttendee(ctx, attendee)
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("decrement attendee count: %w", err)
		}

		result = &domain.WithdrawalResult{AttendeeID: attendeeID, AttendeeCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// restoreAttendee puts a deleted attendee back when the decrement did not land.
// Transactional stores roll the delete back anyway.
func (s *admissionService) restoreAttendee(ctx context.Context, attendee *domain.Attendee) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.contextTimeout)
	defer cancel()

	restored := *attendee
	err := s.attendeeRepo.Create(cctx, &restored)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.ErrorContext(ctx, "restoring attendee after failed withdrawal failed",
			"event_id", attendee.EventID, "attendee_id", attendee.ID, "err", err)
	}
}

func (s *admissionService) VerifyCounter(ctx context.Context, eventID string) (*domain.CounterReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	counter, roster, err := s.eventRepo.CounterSnapshot(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read counter snapshot: %w", err)
	}

	report := &domain.CounterReport{
		EventID:       eventID,
		AttendeeCount: counter,
		RosterSize:    roster,
		Consistent:    counter == roster,
	}
	if !report.Consistent {
		s.logger.ErrorContext(ctx, "attendee count diverged from roster",
			"event_id", eventID, "attendee_count", counter, "roster_size", roster)
		return report, fmt.Errorf("%w: event %s has attendee_count %d but %d attendees", domain.ErrInvariantViolation, eventID, counter, roster)
	}
	return report, nil
}
