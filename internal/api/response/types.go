package response

import (
	"time"

	"github.com/pdenton/rosterd/internal/model"
	"github.com/pdenton/rosterd/internal/services/adminauth"
	"github.com/pdenton/rosterd/internal/services/gate"
	"github.com/pdenton/rosterd/internal/services/roster"
)

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Username     string    `json:"username"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *adminauth.Session) AuthResponse {
	return AuthResponse{
		Username:     s.Username,
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Session represents a connected player in API responses
type Session struct {
	ClientID      int       `json:"client_id"`
	License       string    `json:"license"`
	Name          string    `json:"name"`
	Ping          int       `json:"ping"`
	ConnectedAt   time.Time `json:"connected_at"`
	Provisional   bool      `json:"provisional"`
	OnlineMinutes int       `json:"online_minutes"`
}

// SessionFromModel converts a model.Session to a response Session
func SessionFromModel(s *model.Session) Session {
	return Session{
		ClientID:      s.ClientID,
		License:       string(s.License),
		Name:          s.Name,
		Ping:          s.Ping,
		ConnectedAt:   s.ConnectedAt,
		Provisional:   s.Provisional,
		OnlineMinutes: s.OnlineMinutes,
	}
}

// SessionList is the response for listing connected players
type SessionList struct {
	Sessions []Session `json:"sessions"`
}

// Note represents a player note in API responses
type Note struct {
	Text     string     `json:"text"`
	Author   string     `json:"author,omitempty"`
	EditedAt *time.Time `json:"edited_at,omitempty"`
}

// Player is the merged authoritative view of a player
type Player struct {
	License       string     `json:"license"`
	Name          string     `json:"name"`
	Online        bool       `json:"online"`
	Provisional   bool       `json:"provisional,omitempty"`
	ClientID      *int       `json:"client_id,omitempty"`
	Ping          *int       `json:"ping,omitempty"`
	Identifiers   []string   `json:"identifiers,omitempty"`
	JoinedAt      time.Time  `json:"joined_at"`
	LastSeenAt    time.Time  `json:"last_seen_at"`
	OnlineMinutes int        `json:"online_minutes"`
	Note          Note       `json:"note"`
}

// PlayerFromView converts a roster.PlayerView to a response Player
func PlayerFromView(v *roster.PlayerView) Player {
	p := Player{
		License:       string(v.Player.License),
		Name:          v.Player.Name,
		Online:        v.Online,
		Provisional:   v.Provisional,
		JoinedAt:      v.Player.JoinedAt,
		LastSeenAt:    v.Player.LastSeenAt,
		OnlineMinutes: v.Player.OnlineMinutes,
		Note: Note{
			Text:     v.Player.Note.Text,
			Author:   v.Player.Note.Author,
			EditedAt: v.Player.Note.EditedAt,
		},
	}
	if v.Online {
		clientID, ping := v.ClientID, v.Ping
		p.ClientID = &clientID
		p.Ping = &ping
		p.Identifiers = v.Identifiers
	}
	return p
}

// Revocation represents a revocation in API responses
type Revocation struct {
	At     *time.Time `json:"at,omitempty"`
	Author string     `json:"author,omitempty"`
}

// Action represents a moderation action in API responses
type Action struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Identifiers []string   `json:"identifiers"`
	Author      string     `json:"author"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Revocation  Revocation `json:"revocation"`
}

// ActionFromModel converts a model.Action to a response Action
func ActionFromModel(a *model.Action) Action {
	return Action{
		ID:          a.ID,
		Kind:        string(a.Kind),
		Identifiers: a.Identifiers,
		Author:      a.Author,
		Reason:      a.Reason,
		CreatedAt:   a.CreatedAt,
		ExpiresAt:   a.ExpiresAt,
		Revocation: Revocation{
			At:     a.Revocation.At,
			Author: a.Revocation.Author,
		},
	}
}

// ActionList is the response for action queries
type ActionList struct {
	Actions []Action `json:"actions"`
}

// CreateActionResponse is the response for appending an action
type CreateActionResponse struct {
	ID string `json:"id"`
}

// Decision is the response for a join check
type Decision struct {
	Allow  bool   `json:"allow"`
	Reason string `json:"reason,omitempty"`
}

// DecisionFromModel converts a gate.Decision to a response Decision
func DecisionFromModel(d gate.Decision) Decision {
	return Decision{Allow: d.Allow, Reason: d.Reason}
}

// PendingRequest represents a pending whitelist request
type PendingRequest struct {
	ID            string    `json:"id"`
	License       string    `json:"license"`
	Name          string    `json:"name"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}

// PendingRequestFromModel converts a model.PendingRequest
func PendingRequestFromModel(p *model.PendingRequest) PendingRequest {
	return PendingRequest{
		ID:            p.ID,
		License:       string(p.License),
		Name:          p.Name,
		LastAttemptAt: p.LastAttemptAt,
	}
}

// PendingRequestList is the response for listing pending requests
type PendingRequestList struct {
	Requests []PendingRequest `json:"requests"`
}
