package types

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleNone      Role = ""
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ActivityPhase describes whether the session is currently processing.
type ActivityPhase string

// Activity phases.
const (
	PhaseIdle ActivityPhase = "idle"
	PhaseBusy ActivityPhase = "busy"
)

// SessionSnapshot is a read-only view of session state, taken at a single
// instant and used solely for availability gating. The engine never mutates
// it; all session mutation goes through the dispatcher's collaborators.
type SessionSnapshot struct {
	SessionID        string        `json:"sessionID"`
	MessageCount     int           `json:"messageCount"`
	LastMessageRole  Role          `json:"lastMessageRole"`
	HasPendingRevert bool          `json:"hasPendingRevert"`
	ActivityPhase    ActivityPhase `json:"activityPhase"`
}

// Message is the reduced message shape the engine needs for resolving
// revert and edit targets.
type Message struct {
	ID        string      `json:"id"`
	SessionID string      `json:"sessionID"`
	Role      Role        `json:"role"`
	Time      MessageTime `json:"time"`
}

// MessageTime contains timestamps for a message.
type MessageTime struct {
	Created int64 `json:"created"`
}
