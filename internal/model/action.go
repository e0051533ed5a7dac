package model

import (
	"slices"
	"time"
)

// ActionKind is the type of a moderation action.
type ActionKind string

const (
	ActionBan       ActionKind = "ban"
	ActionWarn      ActionKind = "warn"
	ActionWhitelist ActionKind = "whitelist"
)

// Valid reports whether the kind is one of the known action kinds.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionBan, ActionWarn, ActionWhitelist:
		return true
	}
	return false
}

// Revocation records who revoked an action and when. Both fields are
// unset until the action is revoked.
type Revocation struct {
	At     *time.Time `json:"at"`
	Author string     `json:"author,omitempty"`
}

// Action is a moderation ledger entry. Immutable once written, except
// for the revocation field.
type Action struct {
	ID          string     `json:"id"`
	Kind        ActionKind `json:"kind"`
	Identifiers []string   `json:"identifiers"` // snapshot at creation time
	Author      string     `json:"author"`
	Reason      string     `json:"reason"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at"` // nil = never expires
	Revocation  Revocation `json:"revocation"`
}

// ActiveAt reports whether the action is in force at the given time:
// not revoked and not expired.
func (a *Action) ActiveAt(t time.Time) bool {
	if a.Revocation.At != nil {
		return false
	}
	if a.ExpiresAt != nil && !a.ExpiresAt.After(t) {
		return false
	}
	return true
}

// Clone returns an independent copy of the action.
func (a *Action) Clone() Action {
	c := *a
	c.Identifiers = slices.Clone(a.Identifiers)
	if a.ExpiresAt != nil {
		t := *a.ExpiresAt
		c.ExpiresAt = &t
	}
	if a.Revocation.At != nil {
		t := *a.Revocation.At
		c.Revocation.At = &t
	}
	return c
}

// PendingRequest is a durable placeholder created when an
// unwhitelisted player attempts to join. One per license.
type PendingRequest struct {
	ID            string    `json:"id"`
	License       PlayerID  `json:"license"`
	Name          string    `json:"name"` // refreshed on repeat attempts
	LastAttemptAt time.Time `json:"last_attempt_at"`
}
