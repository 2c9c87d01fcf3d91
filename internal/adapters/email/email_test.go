package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navexpo/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTemplateRenderer_RegistrationConfirmed(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	subject, html, text, err := r.Render("registration_confirmed", &domain.RegistrationConfirmationEmailData{
		Email:         "ada@example.com",
		AttendeeName:  "Ada <script>",
		AttendeeID:    "att-1",
		EventTitle:    "Harbour Expo",
		EventDate:     "Friday, 1 May 2026",
		EventTime:     "10:00",
		EventLocation: "Pier 9",
	})
	require.NoError(t, err)
	assert.Equal(t, "You're registered for Harbour Expo", subject)
	assert.Contains(t, text, "Friday, 1 May 2026 at 10:00")
	assert.Contains(t, text, "Ada <script>")
	assert.Contains(t, html, "Ada &lt;script&gt;")
	assert.Contains(t, html, "<code>att-1</code>")
}

func TestTemplateRenderer_Welcome(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	subject, _, text, err := r.Render("welcome", &domain.WelcomeMessageEmailData{Email: "o@example.com", Name: "Olga", Role: "Organizer"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to NavExpo, Olga", subject)
	assert.Contains(t, text, "create events")

	_, _, _, err = r.Render("missing", nil)
	assert.Error(t, err)
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, "noreply@navexpo.dev", "NavExpo", discardLogger())

	require.NoError(t, m.Send(context.Background(), "ada@example.com", "Hi", "<p>hi</p>", ""))
	assert.Equal(t, "NavExpo <noreply@navexpo.dev>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"ada@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "<p>hi</p>", aws.ToString(client.input.Message.Body.Html.Data))
	assert.Nil(t, client.input.Message.Body.Text)

	client.err = errors.New("throttled")
	assert.ErrorIs(t, m.Send(context.Background(), "ada@example.com", "Hi", "", "hi"), client.err)
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, discardLogger())
	require.NoError(t, err)
	require.NoError(t, m.Send(context.Background(), "a@x.com", "s", "h", "t"))

	_, err = NewMailer(MailerConfig{Provider: "ses", SES: SESConfig{Region: "eu-west-1"}}, discardLogger())
	assert.Error(t, err)

	m, err = NewMailer(MailerConfig{Provider: "ses", FromAddress: "noreply@navexpo.dev", SES: SESConfig{Region: "eu-west-1"}}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &sesMailer{}, m)
}
