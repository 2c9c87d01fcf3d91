package domain

// Action is an operation a caller wants to perform on an event.
type Action string

const (
	ActionRead     Action = "read"
	ActionRegister Action = "register"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

// Authorize decides whether the caller may perform action on event.
// Admins may do anything. Update and delete are limited to the event's organizer;
// read and register are open to everyone.
func Authorize(action Action, event *Event, callerID string, callerRole Role) bool {
	if callerRole == RoleAdmin {
		return true
	}
	switch action {
	case ActionUpdate, ActionDelete:
		return event != nil && callerID != "" && event.OrganizerID == callerID
	default:
		return true
	}
}
