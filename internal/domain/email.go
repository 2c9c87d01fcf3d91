package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeMessageEmailData holds data for the welcome email.
type WelcomeMessageEmailData struct {
	Email string
	Name  string
	Role  string
}

// RegistrationConfirmationEmailData holds data for the registration confirmation email.
type RegistrationConfirmationEmailData struct {
	Email         string `json:"email"`
	AttendeeName  string `json:"attendee_name"`
	AttendeeID    string `json:"attendee_id"`
	EventID       string `json:"event_id"`
	EventTitle    string `json:"event_title"`
	EventDate     string `json:"event_date"`
	EventTime     string `json:"event_time"`
	EventLocation string `json:"event_location"`
}

// NewRegistrationConfirmationEmailData builds the confirmation mail for an admitted attendee.
func NewRegistrationConfirmationEmailData(event *Event, attendee *Attendee) *RegistrationConfirmationEmailData {
	return &RegistrationConfirmationEmailData{
		Email:         attendee.Email,
		AttendeeName:  attendee.Name,
		AttendeeID:    attendee.ID,
		EventID:       event.ID,
		EventTitle:    event.Title,
		EventDate:     event.Date.Format("Monday, 2 January 2006"),
		EventTime:     event.Time,
		EventLocation: event.Location,
	}
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationConfirmationEmailData) error
}
