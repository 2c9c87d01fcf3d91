package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"navexpo/internal/delivery/http/helpers"
	"navexpo/internal/domain"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	eventID    = "0b5c6c1e-7f0a-4a57-9a3c-3f4f2a7b1e01"
	attendeeID = "4d7e2f10-0c55-4b6e-8f1a-9a2b3c4d5e6f"
	userID     = "9f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) SignUp(ctx context.Context, input domain.SignUpInput) (string, *domain.User, error) {
	args := m.Called(ctx, input)
	user, _ := args.Get(1).(*domain.User)
	return args.String(0), user, args.Error(2)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(1).(*domain.User)
	return args.String(0), user, args.Error(2)
}

func (m *mockAuthService) Verify(ctx context.Context, caller domain.Identity) (*domain.User, error) {
	args := m.Called(ctx, caller)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) List(ctx context.Context, params domain.PaginationParams, caller domain.Identity) ([]*domain.User, int, error) {
	args := m.Called(ctx, params, caller)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Int(1), args.Error(2)
}

func (m *mockUserService) Update(ctx context.Context, id string, changes domain.UserChanges, caller domain.Identity) (*domain.User, error) {
	args := m.Called(ctx, id, changes, caller)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) Delete(ctx context.Context, id string, caller domain.Identity) error {
	return m.Called(ctx, id, caller).Error(0)
}

type mockEventService struct{ mock.Mock }

func (m *mockEventService) CreateEvent(ctx context.Context, event *domain.Event, caller domain.Identity) error {
	return m.Called(ctx, event, caller).Error(0)
}

func (m *mockEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	event, _ := args.Get(0).(*domain.Event)
	return event, args.Error(1)
}

func (m *mockEventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	args := m.Called(ctx, params)
	events, _ := args.Get(0).([]*domain.Event)
	return events, args.Int(1), args.Error(2)
}

func (m *mockEventService) SearchEvents(ctx context.Context, term string) ([]*domain.Event, error) {
	args := m.Called(ctx, term)
	events, _ := args.Get(0).([]*domain.Event)
	return events, args.Error(1)
}

func (m *mockEventService) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	args := m.Called(ctx, organizerID)
	events, _ := args.Get(0).([]*domain.Event)
	return events, args.Error(1)
}

func (m *mockEventService) UpdateEvent(ctx context.Context, id string, changes domain.EventChanges, caller domain.Identity) (*domain.Event, error) {
	args := m.Called(ctx, id, changes, caller)
	event, _ := args.Get(0).(*domain.Event)
	return event, args.Error(1)
}

func (m *mockEventService) DeleteEvent(ctx context.Context, id string, caller domain.Identity) error {
	return m.Called(ctx, id, caller).Error(0)
}

type mockAttendeeService struct{ mock.Mock }

func (m *mockAttendeeService) Register(ctx context.Context, eventID string, details domain.AttendeeDetails) (*domain.AdmissionResult, error) {
	args := m.Called(ctx, eventID, details)
	result, _ := args.Get(0).(*domain.AdmissionResult)
	return result, args.Error(1)
}

func (m *mockAttendeeService) ListAttendees(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	args := m.Called(ctx, eventID)
	attendees, _ := args.Get(0).([]*domain.Attendee)
	return attendees, args.Error(1)
}

func (m *mockAttendeeService) Withdraw(ctx context.Context, eventID, attendeeID string, caller domain.Identity) (*domain.WithdrawalResult, error) {
	args := m.Called(ctx, eventID, attendeeID, caller)
	result, _ := args.Get(0).(*domain.WithdrawalResult)
	return result, args.Error(1)
}

func (m *mockAttendeeService) CheckConsistency(ctx context.Context, eventID string, caller domain.Identity) (*domain.CounterReport, error) {
	args := m.Called(ctx, eventID, caller)
	report, _ := args.Get(0).(*domain.CounterReport)
	return report, args.Error(1)
}

// decodeEnvelope decodes the response body; data is unmarshalled into dataOut when non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dataOut any) *helpers.APIError {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	if dataOut != nil && raw.Error == nil {
		require.NoError(t, json.Unmarshal(raw.Data, dataOut))
	}
	return raw.Error
}
