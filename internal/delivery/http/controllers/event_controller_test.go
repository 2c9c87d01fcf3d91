package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"navexpo/internal/delivery/http/helpers"
	"navexpo/internal/delivery/http/middleware"
	"navexpo/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEventRequest_Validate(t *testing.T) {
	zero, negative := 0, -1
	tests := []struct {
		name string
		req  EventRequest
		want []string
	}{
		{name: "valid date only", req: EventRequest{Title: "Expo", Date: "2026-05-01", Capacity: &zero}},
		{name: "valid rfc3339", req: EventRequest{Title: "Expo", Date: "2026-05-01T09:00:00Z", Capacity: &zero}},
		{name: "missing everything", req: EventRequest{}, want: []string{"title is required", "date is required", "capacity is required"}},
		{name: "bad date", req: EventRequest{Title: "Expo", Date: "01/05/2026", Capacity: &zero}, want: []string{"date must be YYYY-MM-DD or RFC 3339"}},
		{name: "negative capacity", req: EventRequest{Title: "Expo", Date: "2026-05-01", Capacity: &negative}, want: []string{"capacity must not be negative"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Validate())
		})
	}
}

func TestEventController_CreateEvent(t *testing.T) {
	organizer := domain.Identity{UserID: userID, Role: domain.RoleOrganizer}

	t.Run("created", func(t *testing.T) {
		svc := new(mockEventService)
		svc.On("CreateEvent", mock.Anything, mock.MatchedBy(func(e *domain.Event) bool {
			return e.Title == "Expo" && e.Capacity == 50 && e.Location == "Hall A" &&
				e.Date.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
		}), organizer).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Event).ID = eventID
		}).Return(nil).Once()
		ctrl := NewEventController(testLogger, svc)

		body := `{"title":"Expo","date":"2026-05-01","time":"09:00","location":" Hall A ","capacity":50}`
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
		req = req.WithContext(middleware.SetIdentity(req.Context(), organizer))
		rr := httptest.NewRecorder()
		ctrl.CreateEvent(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		var event domain.Event
		require.Nil(t, decodeEnvelope(t, rr, &event))
		assert.Equal(t, eventID, event.ID)
		assert.Equal(t, 0, event.AttendeeCount)
		svc.AssertExpectations(t)
	})

	t.Run("guest forbidden", func(t *testing.T) {
		guest := domain.Identity{UserID: userID, Role: domain.RoleGuest}
		svc := new(mockEventService)
		svc.On("CreateEvent", mock.Anything, mock.Anything, guest).Return(domain.ErrForbidden).Once()
		ctrl := NewEventController(testLogger, svc)

		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"title":"Expo","date":"2026-05-01","capacity":5}`))
		req = req.WithContext(middleware.SetIdentity(req.Context(), guest))
		rr := httptest.NewRecorder()
		ctrl.CreateEvent(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)
		apiErr := decodeEnvelope(t, rr, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, helpers.ErrCodeForbidden, apiErr.Code)
	})

	t.Run("invalid body never reaches service", func(t *testing.T) {
		svc := new(mockEventService)
		ctrl := NewEventController(testLogger, svc)

		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"title":"Expo","date":"2026-05-01","capacity":-3}`))
		rr := httptest.NewRecorder()
		ctrl.CreateEvent(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEventController_ListEvents(t *testing.T) {
	svc := new(mockEventService)
	events := []*domain.Event{{ID: eventID, Title: "Expo", Capacity: 10}}
	svc.On("ListEvents", mock.Anything, domain.PaginationParams{Page: 2, PageSize: 1}).Return(events, 3, nil).Once()
	ctrl := NewEventController(testLogger, svc)

	req := httptest.NewRequest(http.MethodGet, "/events?page=2&page_size=1", nil)
	rr := httptest.NewRecorder()
	ctrl.ListEvents(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got ListEventsResponse
	require.Nil(t, decodeEnvelope(t, rr, &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, helpers.PaginationMeta{Page: 2, PageSize: 1, Total: 3, TotalPages: 3}, got.Pagination)
}

func TestEventController_SearchEvents(t *testing.T) {
	t.Run("empty term", func(t *testing.T) {
		svc := new(mockEventService)
		svc.On("SearchEvents", mock.Anything, "").Return(nil, domain.ErrInvalidInput).Once()
		ctrl := NewEventController(testLogger, svc)

		rr := httptest.NewRecorder()
		ctrl.SearchEvents(rr, httptest.NewRequest(http.MethodGet, "/events/search", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("no matches is an empty list", func(t *testing.T) {
		svc := new(mockEventService)
		svc.On("SearchEvents", mock.Anything, "robotics").Return(nil, nil).Once()
		ctrl := NewEventController(testLogger, svc)

		rr := httptest.NewRecorder()
		ctrl.SearchEvents(rr, httptest.NewRequest(http.MethodGet, "/events/search?q=robotics", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":[],"error":null}`, rr.Body.String())
	})
}

func TestEventController_GetEvent(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		event      *domain.Event
		err        error
		wantStatus int
	}{
		{name: "found", id: eventID, event: &domain.Event{ID: eventID, Title: "Expo"}, wantStatus: http.StatusOK},
		{name: "missing", id: eventID, err: domain.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "service error", id: eventID, err: assert.AnError, wantStatus: http.StatusInternalServerError},
		{name: "bad id", id: "123", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockEventService)
			svc.On("GetEvent", mock.Anything, tt.id).Return(tt.event, tt.err).Maybe()
			ctrl := NewEventController(testLogger, svc)

			req := httptest.NewRequest(http.MethodGet, "/events/"+tt.id, nil)
			req.SetPathValue("eventID", tt.id)
			rr := httptest.NewRecorder()
			ctrl.GetEvent(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, rr.Body.String(), assert.AnError.Error())
			}
		})
	}
}

func TestEventController_ListOrganizerEvents(t *testing.T) {
	svc := new(mockEventService)
	svc.On("ListEventsByOrganizer", mock.Anything, userID).Return([]*domain.Event{{ID: eventID, OrganizerID: userID}}, nil).Once()
	ctrl := NewEventController(testLogger, svc)

	req := httptest.NewRequest(http.MethodGet, "/organizers/"+userID+"/events", nil)
	req.SetPathValue("userID", userID)
	rr := httptest.NewRecorder()
	ctrl.ListOrganizerEvents(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []*domain.Event
	require.Nil(t, decodeEnvelope(t, rr, &got))
	require.Len(t, got, 1)
	assert.Equal(t, userID, got[0].OrganizerID)
}

func TestEventController_UpdateEvent(t *testing.T) {
	owner := domain.Identity{UserID: userID, Role: domain.RoleOrganizer}
	svc := new(mockEventService)
	svc.On("UpdateEvent", mock.Anything, eventID, mock.MatchedBy(func(c domain.EventChanges) bool {
		return c.Title == "Expo 2" && c.Capacity == 1
	}), owner).Return(&domain.Event{ID: eventID, Title: "Expo 2", Capacity: 1, AttendeeCount: 4}, nil).Once()
	ctrl := NewEventController(testLogger, svc)

	req := httptest.NewRequest(http.MethodPut, "/events/"+eventID, strings.NewReader(`{"title":"Expo 2","date":"2026-05-02","capacity":1}`))
	req.SetPathValue("eventID", eventID)
	req = req.WithContext(middleware.SetIdentity(req.Context(), owner))
	rr := httptest.NewRecorder()
	ctrl.UpdateEvent(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var event domain.Event
	require.Nil(t, decodeEnvelope(t, rr, &event))
	assert.Equal(t, 4, event.AttendeeCount)
	svc.AssertExpectations(t)
}

func TestEventController_DeleteEvent(t *testing.T) {
	stranger := domain.Identity{UserID: userID, Role: domain.RoleOrganizer}

	for name, tc := range map[string]struct {
		err        error
		wantStatus int
	}{
		"deleted":   {wantStatus: http.StatusOK},
		"forbidden": {err: domain.ErrForbidden, wantStatus: http.StatusForbidden},
		"not found": {err: domain.ErrNotFound, wantStatus: http.StatusNotFound},
	} {
		t.Run(name, func(t *testing.T) {
			svc := new(mockEventService)
			svc.On("DeleteEvent", mock.Anything, eventID, stranger).Return(tc.err).Once()
			ctrl := NewEventController(testLogger, svc)

			req := httptest.NewRequest(http.MethodDelete, "/events/"+eventID, nil)
			req.SetPathValue("eventID", eventID)
			req = req.WithContext(middleware.SetIdentity(req.Context(), stranger))
			rr := httptest.NewRecorder()
			ctrl.DeleteEvent(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}
