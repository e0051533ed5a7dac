package request

import "time"

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HeartbeatClient is one connected client in a heartbeat snapshot
type HeartbeatClient struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Ping        int      `json:"ping"`
	Identifiers []string `json:"identifiers"`
}

// HeartbeatRequest is the request body for posting a heartbeat snapshot
type HeartbeatRequest struct {
	Clients []HeartbeatClient `json:"clients"`
}

// JoinCheckRequest is the request body for a join check
type JoinCheckRequest struct {
	Name        string   `json:"name"`
	Identifiers []string `json:"identifiers"`
}

// CreateActionRequest is the request body for appending a moderation
// action. The target is either an explicit identifier list or the
// client id of a connected player.
type CreateActionRequest struct {
	Kind        string     `json:"kind"`
	Identifiers []string   `json:"identifiers,omitempty"`
	ClientID    *int       `json:"client_id,omitempty"`
	Reason      string     `json:"reason"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// SetNoteRequest is the request body for editing a player note
type SetNoteRequest struct {
	Text string `json:"text"`
}
