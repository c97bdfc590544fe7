package events

import "time"

// EventType enumerates session lifecycle event identifiers.
type EventType string

const (
	EventLogin          EventType = "session_login"
	EventLoginFailed    EventType = "session_login_failed"
	EventLogout         EventType = "session_logout"
	EventRefreshed      EventType = "session_refreshed"
	EventRefreshFailed  EventType = "session_refresh_failed"
	EventProfileUpdated EventType = "session_profile_updated"
)

// Event represents a session lifecycle event emitted by the controller.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail,omitempty"`
}
