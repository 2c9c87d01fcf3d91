package domain

import (
	"context"
	"strings"
	"time"
)

// Attendee is a person admitted to an event. Email is unique per event.
// swagger:model Attendee
type Attendee struct {
	ID                  string    `json:"id"`
	EventID             string    `json:"event_id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	DietaryRestrictions *string   `json:"dietary_restrictions,omitempty"`
	SpecialRequests     *string   `json:"special_requests,omitempty"`
	RegisteredAt        time.Time `json:"registered_at"`
}

// AttendeeDetails is the caller-supplied part of an admission request.
type AttendeeDetails struct {
	Name                string
	Email               string
	Phone               string
	DietaryRestrictions *string
	SpecialRequests     *string
}

// NewAttendee builds an attendee for eventID from details. Email is normalized.
func NewAttendee(eventID string, details AttendeeDetails, registeredAt time.Time) *Attendee {
	return &Attendee{
		EventID:             eventID,
		Name:                strings.TrimSpace(details.Name),
		Email:               NormalizeEmail(details.Email),
		Phone:               strings.TrimSpace(details.Phone),
		DietaryRestrictions: details.DietaryRestrictions,
		SpecialRequests:     details.SpecialRequests,
		RegisteredAt:        registeredAt,
	}
}

// NormalizeEmail trims and lowercases an email so that deduplication is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AdmissionResult is returned by a successful admission.
// swagger:model AdmissionResult
type AdmissionResult struct {
	Attendee      *Attendee `json:"attendee"`
	AttendeeCount int       `json:"attendee_count"`
}

// WithdrawalResult is returned by a successful withdrawal.
// swagger:model WithdrawalResult
type WithdrawalResult struct {
	AttendeeID    string `json:"attendee_id"`
	AttendeeCount int    `json:"attendee_count"`
}

// CounterReport compares the stored counter with the roster size.
// swagger:model CounterReport
type CounterReport struct {
	EventID       string `json:"event_id"`
	AttendeeCount int    `json:"attendee_count"`
	RosterSize    int    `json:"roster_size"`
	Consistent    bool   `json:"consistent"`
}

// AttendeeRepository defines storage operations for attendees.
type AttendeeRepository interface {
	// Create inserts the attendee and sets its ID. A second record for the same
	// (event_id, email) pair fails with ErrDuplicateRegistration.
	// An attendee with a preset ID keeps it where the store allows.
	Create(ctx context.Context, attendee *Attendee) error
	GetByID(ctx context.Context, id string) (*Attendee, error)
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*Attendee, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Attendee, error)
	// Delete removes the attendee only if it belongs to eventID; otherwise ErrNotFound.
	Delete(ctx context.Context, eventID, attendeeID string) error
	DeleteByEvent(ctx context.Context, eventID string) (int, error)
}

// AdmissionService is the registration admission core.
type AdmissionService interface {
	AdmitAttendee(ctx context.Context, eventID string, details AttendeeDetails) (*AdmissionResult, error)
	WithdrawAttendee(ctx context.Context, eventID, attendeeID string) (*WithdrawalResult, error)
	VerifyCounter(ctx context.Context, eventID string) (*CounterReport, error)
}

// AttendeeService defines attendee-facing operations around the admission core.
type AttendeeService interface {
	Register(ctx context.Context, eventID string, details AttendeeDetails) (*AdmissionResult, error)
	ListAttendees(ctx context.Context, eventID string) ([]*Attendee, error)
	Withdraw(ctx context.Context, eventID, attendeeID string, caller Identity) (*WithdrawalResult, error)
	CheckConsistency(ctx context.Context, eventID string, caller Identity) (*CounterReport, error)
}

// RegistrationNotifier is told about every successful admission.
type RegistrationNotifier interface {
	NotifyRegistration(ctx context.Context, event *Event, attendee *Attendee) error
}
