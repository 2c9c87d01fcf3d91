package http

import (
	"log/slog"
	"net/http"

	"navexpo/internal/delivery/http/controllers"
	"navexpo/internal/delivery/http/middleware"
	"navexpo/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Event    *controllers.EventController
	Attendee *controllers.AttendeeController
	Health   *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)
	optional := middleware.OptionalAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/register", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /auth/verify", auth(c.Auth.Verify))

	// Users
	mux.HandleFunc("GET /users", auth(c.User.ListUsers))
	mux.HandleFunc("GET /users/{userID}", auth(c.User.GetUser))
	mux.HandleFunc("PUT /users/{userID}", auth(c.User.UpdateUser))
	mux.HandleFunc("DELETE /users/{userID}", auth(c.User.DeleteUser))

	// Events
	mux.HandleFunc("GET /events", c.Event.ListEvents)
	mux.HandleFunc("GET /events/search", c.Event.SearchEvents)
	mux.HandleFunc("GET /events/{eventID}", c.Event.GetEvent)
	mux.HandleFunc("GET /organizers/{userID}/events", c.Event.ListOrganizerEvents)
	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("PUT /events/{eventID}", auth(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Event.DeleteEvent))

	// Attendees
	mux.HandleFunc("POST /events/{eventID}/register", optional(c.Attendee.Register))
	mux.HandleFunc("GET /events/{eventID}/attendees", c.Attendee.ListAttendees)
	mux.HandleFunc("GET /events/{eventID}/attendees/consistency", auth(c.Attendee.CheckConsistency))
	mux.HandleFunc("DELETE /events/{eventID}/attendees/{attendeeID}", auth(c.Attendee.Withdraw))

	mux.HandleFunc("GET /healthz", c.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// Handler wraps the router with panic recovery, request logging and CORS.
func Handler(mux http.Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	return middleware.Recover(logger, middleware.LoggingMiddleware(logger, middleware.CORS(allowedOrigins, mux)))
}
