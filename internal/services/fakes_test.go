package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"navexpo/internal/domain"
	"navexpo/internal/repository/memory"
)

const testTimeout = time.Second

// fakeEmailService records every email it is asked to send.
type fakeEmailService struct {
	mu            sync.Mutex
	welcomes      []*domain.WelcomeMessageEmailData
	confirmations []*domain.RegistrationConfirmationEmailData
	err           error
}

func (f *fakeEmailService) SendWelcomeMessage(_ context.Context, data *domain.WelcomeMessageEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes = append(f.welcomes, data)
	return f.err
}

func (f *fakeEmailService) SendRegistrationConfirmation(_ context.Context, data *domain.RegistrationConfirmationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, data)
	return f.err
}

type notification struct {
	event    *domain.Event
	attendee *domain.Attendee
}

type fakeNotifier struct {
	sent []notification
	err  error
}

func (f *fakeNotifier) NotifyRegistration(_ context.Context, event *domain.Event, attendee *domain.Attendee) error {
	f.sent = append(f.sent, notification{event: event, attendee: attendee})
	return f.err
}

// fakeHasher keeps tests fast; the bcrypt hasher has its own tests.
type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error)               { return "salt", nil }
func (fakeHasher) Hash(salt, password string) (string, error) { return salt + ":" + password, nil }
func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeIssuer struct {
	err error
}

func (f fakeIssuer) Issue(userID, _ string, role domain.Role, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID + "-" + string(role), nil
}

// world wires every service against one memory store.
type world struct {
	store     *memory.Store
	events    domain.EventRepository
	attendees domain.AttendeeRepository
	users     domain.UserRepository
	admission domain.AdmissionService
	notifier  *fakeNotifier
	eventSvc  domain.EventService
	attendee  domain.AttendeeService
}

func newWorld() *world {
	store := memory.NewStore()
	w := &world{
		store:     store,
		events:    memory.NewEventRepository(store),
		attendees: memory.NewAttendeeRepository(store),
		users:     memory.NewUserRepository(store),
		notifier:  &fakeNotifier{},
	}
	tx := memory.NewTransactor()
	w.admission = NewAdmissionService(w.events, w.attendees, tx, discardLogger(), testTimeout, fastRetry)
	w.eventSvc = NewEventService(w.events, w.attendees, w.users, tx, discardLogger(), testTimeout)
	w.attendee = NewAttendeeService(w.events, w.attendees, w.admission, w.notifier, discardLogger(), testTimeout)
	return w
}

func (w *world) user(name string, role domain.Role) domain.Identity {
	now := time.Now()
	u := domain.NewUser(name, name+"@example.com", 30, role, now, now)
	if err := w.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return domain.Identity{UserID: u.ID, Role: role}
}

func (w *world) event(owner domain.Identity, capacity int) *domain.Event {
	e := &domain.Event{Title: "Harbour Expo", Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), Time: "10:00", Location: "Pier 9", Capacity: capacity}
	if err := w.eventSvc.CreateEvent(context.Background(), e, owner); err != nil {
		panic(err)
	}
	return e
}
