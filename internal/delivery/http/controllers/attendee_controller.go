package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"navexpo/internal/delivery/http/helpers"
	"navexpo/internal/delivery/http/middleware"
	"navexpo/internal/domain"
)

// RegisterRequest is the request body for POST /events/{eventID}/register.
type RegisterRequest struct {
	Name                string  `json:"name"`
	Email               string  `json:"email"`
	Phone               string  `json:"phone"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
	SpecialRequests     *string `json:"special_requests"`
}

// Validate implements Validator.
func (req RegisterRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, "email is required")
	} else if !strings.Contains(req.Email, "@") {
		errs = append(errs, "invalid email format")
	}
	return errs
}

// RegisterSuccessResponse is the success response envelope for POST /events/{eventID}/register (201).
type RegisterSuccessResponse struct {
	Data  *domain.AdmissionResult `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ListAttendeesSuccessResponse is the success response envelope for GET /events/{eventID}/attendees (200).
type ListAttendeesSuccessResponse struct {
	Data  []*domain.Attendee `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// WithdrawSuccessResponse is the success response envelope for DELETE /events/{eventID}/attendees/{attendeeID} (200).
type WithdrawSuccessResponse struct {
	Data  *domain.WithdrawalResult `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// ConsistencySuccessResponse is the success response envelope for GET /events/{eventID}/attendees/consistency (200).
type ConsistencySuccessResponse struct {
	Data  *domain.CounterReport `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type AttendeeController struct {
	Logger  *slog.Logger
	Service domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register for an event
// @Description Admits one attendee if the event has a free seat and the email is not yet registered for it. No account is required.
// @Tags attendees
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RegisterRequest true "Attendee details"
// @Success 201 {object} controllers.RegisterSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_full or duplicate_registration"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/register [post]
func (c *AttendeeController) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.Register(r.Context(), eventID, domain.AttendeeDetails{
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		DietaryRestrictions: req.DietaryRestrictions,
		SpecialRequests:     req.SpecialRequests,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// ListAttendees godoc
// @Summary List an event's attendees
// @Tags attendees
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListAttendeesSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendees [get]
func (c *AttendeeController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	attendees, err := c.Service.ListAttendees(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if attendees == nil {
		attendees = []*domain.Attendee{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendees)
}

// Withdraw godoc
// @Summary Withdraw an attendee
// @Description Removes the attendee and frees its seat. Only the organizer or an admin may withdraw.
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Success 200 {object} controllers.WithdrawSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error or invariant_violation"
// @Router /events/{eventID}/attendees/{attendeeID} [delete]
func (c *AttendeeController) Withdraw(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	attendeeID, ok := pathID(w, r, "attendeeID")
	if !ok {
		return
	}
	result, err := c.Service.Withdraw(r.Context(), eventID, attendeeID, middleware.IdentityFromContext(r.Context()))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// CheckConsistency godoc
// @Summary Audit an event's attendee counter
// @Description Compares attendee_count with the number of attendee records. Only the organizer or an admin may audit.
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ConsistencySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: invariant_violation"
// @Router /events/{eventID}/attendees/consistency [get]
func (c *AttendeeController) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	report, err := c.Service.CheckConsistency(r.Context(), eventID, middleware.IdentityFromContext(r.Context()))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}
