package domain

import (
	"context"
	"time"
)

// Event represents an expo event with finite seating.
// AttendeeCount always equals the number of attendee records for the event.
// swagger:model Event
type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	Time          string    `json:"time"`
	Location      string    `json:"location"`
	Organizer     string    `json:"organizer"`
	OrganizerID   string    `json:"organizer_id"`
	Capacity      int       `json:"capacity"`
	AttendeeCount int       `json:"attendee_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, description string, date time.Time, startTime, location string, capacity int, organizer, organizerID string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Date:        date,
		Time:        startTime,
		Location:    location,
		Organizer:   organizer,
		OrganizerID: organizerID,
		Capacity:    capacity,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// SeatsLeft returns how many attendees can still be admitted; never negative.
func (e *Event) SeatsLeft() int {
	if e.AttendeeCount >= e.Capacity {
		return 0
	}
	return e.Capacity - e.AttendeeCount
}

// EventChanges holds the editable fields of an event for a full replace.
type EventChanges struct {
	Title       string
	Description string
	Date        time.Time
	Time        string
	Location    string
	Capacity    int
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	// Search matches term case-insensitively as a substring of title, description or location.
	Search(ctx context.Context, term string) ([]*Event, error)
	// Replace writes every editable field. It never touches attendee_count, organizer or created_at.
	Replace(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error

	// TryIncrementIfBelowCapacity adds one to attendee_count only while it is below capacity
	// at write time. It returns the new count, ErrEventFull when the guard fails, or ErrNotFound.
	TryIncrementIfBelowCapacity(ctx context.Context, id string) (int, error)
	// DecrementFloorZero subtracts one from attendee_count only while it is above zero.
	// It returns the new count, ErrCounterUnderflow when already zero, or ErrNotFound.
	DecrementFloorZero(ctx context.Context, id string) (int, error)
	// CounterSnapshot reads attendee_count and the number of attendee records from one snapshot.
	CounterSnapshot(ctx context.Context, id string) (counter, roster int, err error)
}

// EventService defines event management operations exposed to the delivery layer.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event, caller Identity) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	SearchEvents(ctx context.Context, term string) ([]*Event, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID string, changes EventChanges, caller Identity) (*Event, error)
	DeleteEvent(ctx context.Context, eventID string, caller Identity) error
}
