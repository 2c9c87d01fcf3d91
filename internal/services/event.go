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

type eventService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	userRepo       domain.UserRepository
	tx             domain.Transactor
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	attendeeRepo domain.AttendeeRepository,
	userRepo domain.UserRepository,
	tx domain.Transactor,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		userRepo:       userRepo,
		tx:             tx,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func validateEventFields(title string, date time.Time, capacity int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	if capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, caller domain.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if caller.Anonymous() || !caller.Role.CanOrganize() {
		return domain.ErrForbidden
	}
	if err := validateEventFields(event.Title, event.Date, event.Capacity); err != nil {
		return err
	}

	organizer, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		return fmt.Errorf("get organizer: %w", err)
	}

	now := time.Now().UTC()
	event.Title = strings.TrimSpace(event.Title)
	event.Organizer = organizer.Name
	event.OrganizerID = organizer.ID
	event.AttendeeCount = 0
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "organizer_id", event.OrganizerID, "capacity", event.Capacity)
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) SearchEvents(ctx context.Context, term string) ([]*domain.Event, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return events, nil
}

func (s *eventService) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list events by organizer: %w", err)
	}
	return events, nil
}

// UpdateEvent replaces the editable fields. Lowering capacity below the current
// attendee count is allowed; nobody is evicted and admission stays closed until seats free up.
func (s *eventService) UpdateEvent(ctx context.Context, eventID string, changes domain.EventChanges, caller domain.Identity) (*domain.Event, error) {
	if err := validateEventFields(changes.Title, changes.Date, changes.Capacity); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !domain.Authorize(domain.ActionUpdate, event, caller.UserID, caller.Role) {
		return nil, domain.ErrForbidden
	}

	event.Title = strings.TrimSpace(changes.Title)
	event.Description = changes.Description
	event.Date = changes.Date
	event.Time = changes.Time
	event.Location = changes.Location
	event.Capacity = changes.Capacity
	event.UpdatedAt = time.Now().UTC()

	if err := s.eventRepo.Replace(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("replace event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes the event together with its attendees.
func (s *eventService) DeleteEvent(ctx context.Context, eventID string, caller domain.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		if !domain.Authorize(domain.ActionDelete, event, caller.UserID, caller.Role) {
			return domain.ErrForbidden
		}

		removed, err := s.attendeeRepo.DeleteByEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("delete attendees: %w", err)
		}
		if err := s.eventRepo.Delete(ctx, eventID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("delete event: %w", err)
		}
		s.logger.InfoContext(ctx, "event deleted", "event_id", eventID, "attendees_removed", removed, "by", caller.UserID)
		return nil
	})
}
