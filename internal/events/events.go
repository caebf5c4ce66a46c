// Package events implements the notification fan-out: workflows publish
// structured events and every connected observer receives them on a
// best-effort basis.
package events

// Type identifies the kind of a broadcast event.
type Type string

const (
	// TypeConnected is the acknowledgment sent to an observer on join.
	TypeConnected Type = "connected"
	// TypeTrigger signals an accepted capture trigger.
	TypeTrigger Type = "trigger"
	// TypeUserRegistered signals a completed registration.
	TypeUserRegistered Type = "user_registered"
	// TypeUserDeleted signals a removed user.
	TypeUserDeleted Type = "user_deleted"
	// TypeAccessAttempt signals a verification outcome, granted or denied.
	TypeAccessAttempt Type = "access_attempt"
)

// UserInfo is the observer-visible part of a user record. Descriptors are
// never broadcast.
type UserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Event is a single broadcast message.
type Event struct {
	Type Type `json:"type"`
	Data any  `json:"data,omitempty"`
}

// TriggerPayload carries the accepted trigger timestamp in Unix millis.
type TriggerPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// UserPayload carries the subject of a registration or deletion.
type UserPayload struct {
	User UserInfo `json:"user"`
}

// AccessPayload carries a verification outcome.
type AccessPayload struct {
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	User       *UserInfo `json:"user,omitempty"`
	Confidence float64   `json:"confidence"`
}
