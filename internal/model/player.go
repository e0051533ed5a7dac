package model

import (
	"slices"
	"time"
)

// PlayerID is the stable license identifier value (without the
// "license:" prefix) that keys a player across sessions.
type PlayerID string

// Note is a free-form admin note attached to a player record.
type Note struct {
	Text     string     `json:"text"`
	Author   string     `json:"author,omitempty"`
	EditedAt *time.Time `json:"edited_at,omitempty"`
}

// Player is the durable record for a player that has crossed the
// minimum session dwell time at least once.
type Player struct {
	License       PlayerID  `json:"license"`
	Name          string    `json:"name"` // overwritten on every save
	JoinedAt      time.Time `json:"joined_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
	OnlineMinutes int       `json:"online_minutes"`
	Note          Note      `json:"note"`
}

// Session is the in-memory record of a currently connected player.
// At most one Session exists per license at any time.
type Session struct {
	License     PlayerID
	ClientID    int // transient server slot id, not stable across reconnects
	Name        string
	Identifiers []string
	Ping        int
	ConnectedAt time.Time
	JoinedAt    time.Time

	// Provisional is true until the session has lived long enough to
	// earn a durable Player record.
	Provisional   bool
	OnlineMinutes int
	Note          Note

	// LastCreditAt is when OnlineMinutes was last incremented.
	LastCreditAt time.Time
}

// Clone returns an independent copy of the session.
func (s *Session) Clone() Session {
	c := *s
	c.Identifiers = slices.Clone(s.Identifiers)
	return c
}
