// Package memory is an in-process store honouring the same contracts as the
// Postgres repositories. Every method is atomic with respect to the others.
package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"navexpo/internal/domain"
)

// Store holds all collections. Repositories created from the same Store share state.
type Store struct {
	mu        sync.RWMutex
	events    map[string]*domain.Event
	attendees map[string]*domain.Attendee
	// event id -> normalized email -> attendee id
	emailIndex map[string]map[string]string
	users      map[string]*domain.User
}

func NewStore() *Store {
	return &Store{
		events:     make(map[string]*domain.Event),
		attendees:  make(map[string]*domain.Attendee),
		emailIndex: make(map[string]map[string]string),
		users:      make(map[string]*domain.User),
	}
}

// checkCtx turns an expired or cancelled context into the error a real store would return.
func checkCtx(ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return err
}

type transactor struct{}

// NewTransactor returns a Transactor that runs fn directly. The memory store has no
// multi-statement transactions; callers compensate on failure instead.
func NewTransactor() domain.Transactor {
	return transactor{}
}

func (transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type eventRepository struct {
	store *Store
}

func NewEventRepository(store *Store) domain.EventRepository {
	return &eventRepository{store: store}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.NewString()
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	all, err := r.filter(ctx, func(*domain.Event) bool { return true })
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(all, func(a, b *domain.Event) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	start, end := params.Window(len(all))
	return all[start:end], len(all), nil
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	out, err := r.filter(ctx, func(e *domain.Event) bool { return e.OrganizerID == organizerID })
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b *domain.Event) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *eventRepository) Search(ctx context.Context, term string) ([]*domain.Event, error) {
	needle := strings.ToLower(term)
	out, err := r.filter(ctx, func(e *domain.Event) bool {
		return strings.Contains(strings.ToLower(e.Title), needle) ||
			strings.Contains(strings.ToLower(e.Description), needle) ||
			strings.Contains(strings.ToLower(e.Location), needle)
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b *domain.Event) int { return a.Date.Compare(b.Date) })
	return out, nil
}

func (r *eventRepository) filter(ctx context.Context, keep func(*domain.Event) bool) ([]*domain.Event, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Event, 0)
	for _, e := range s.events {
		if keep(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *eventRepository) Replace(ctx context.Context, e *domain.Event) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.events[e.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Title = e.Title
	cur.Description = e.Description
	cur.Date = e.Date
	cur.Time = e.Time
	cur.Location = e.Location
	cur.Capacity = e.Capacity
	cur.UpdatedAt = e.UpdatedAt
	e.AttendeeCount = cur.AttendeeCount
	return nil
}

// Delete removes the event and, like the foreign key in Postgres, its attendees.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.events, id)
	for _, attendeeID := range s.emailIndex[id] {
		delete(s.attendees, attendeeID)
	}
	delete(s.emailIndex, id)
	return nil
}

func (r *eventRepository) TryIncrementIfBelowCapacity(ctx context.Context, id string) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if e.AttendeeCount >= e.Capacity {
		return 0, domain.ErrEventFull
	}
	e.AttendeeCount++
	return e.AttendeeCount, nil
}

func (r *eventRepository) DecrementFloorZero(ctx context.Context, id string) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if e.AttendeeCount <= 0 {
		return 0, domain.ErrCounterUnderflow
	}
	e.AttendeeCount--
	return e.AttendeeCount, nil
}

// CounterSnapshot reads both numbers under one lock. Admissions in flight may have
// written the attendee but not yet the counter, so the result is exact only between requests.
func (r *eventRepository) CounterSnapshot(ctx context.Context, id string) (int, int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, 0, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return 0, 0, domain.ErrNotFound
	}
	return e.AttendeeCount, len(s.emailIndex[id]), nil
}

type attendeeRepository struct {
	store *Store
}

func NewAttendeeRepository(store *Store) domain.AttendeeRepository {
	return &attendeeRepository{store: store}
}

func (r *attendeeRepository) Create(ctx context.Context, a *domain.Attendee) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[a.EventID]; !ok {
		return domain.ErrNotFound
	}
	email := domain.NormalizeEmail(a.Email)
	idx := s.emailIndex[a.EventID]
	if idx == nil {
		idx = make(map[string]string)
		s.emailIndex[a.EventID] = idx
	}
	if _, taken := idx[email]; taken {
		return domain.ErrDuplicateRegistration
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	} else if _, exists := s.attendees[a.ID]; exists {
		return fmt.Errorf("attendee %s already exists", a.ID)
	}
	a.Email = email
	cp := *a
	s.attendees[a.ID] = &cp
	idx[email] = a.ID
	return nil
}

func (r *attendeeRepository) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attendees[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *attendeeRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Attendee, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[eventID][domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s.attendees[id]
	return &cp, nil
}

func (r *attendeeRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Attendee, 0, len(s.emailIndex[eventID]))
	for _, id := range s.emailIndex[eventID] {
		cp := *s.attendees[id]
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *domain.Attendee) int {
		if c := a.RegisteredAt.Compare(b.RegisteredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *attendeeRepository) Delete(ctx context.Context, eventID, attendeeID string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attendees[attendeeID]
	if !ok || a.EventID != eventID {
		return domain.ErrNotFound
	}
	delete(s.attendees, attendeeID)
	delete(s.emailIndex[eventID], a.Email)
	return nil
}

func (r *attendeeRepository) DeleteByEvent(ctx context.Context, eventID string) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.emailIndex[eventID]
	for _, id := range idx {
		delete(s.attendees, id)
	}
	delete(s.emailIndex, eventID)
	return len(idx), nil
}
