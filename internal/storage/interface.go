package storage

import (
	"context"
	"slices"
	"time"

	"github.com/pdenton/rosterd/internal/model"
)

// ActionQuery selects moderation actions by a closed set of structured
// parameters rather than an open-ended predicate.
type ActionQuery struct {
	// Identifiers restricts results to actions whose target
	// identifiers intersect this set. Empty means no restriction.
	Identifiers []string

	// Kind restricts results to one action kind. Empty means any.
	Kind model.ActionKind

	// ActiveOnly restricts results to actions that are not revoked
	// and not expired as of ActiveAt.
	ActiveOnly bool
	ActiveAt   time.Time

	// Author restricts results to actions issued by one admin.
	// Empty means any.
	Author string
}

// Matches reports whether the action satisfies the query.
func (q ActionQuery) Matches(a *model.Action) bool {
	if q.Kind != "" && a.Kind != q.Kind {
		return false
	}
	if q.Author != "" && a.Author != q.Author {
		return false
	}
	if q.ActiveOnly && !a.ActiveAt(q.ActiveAt) {
		return false
	}
	if len(q.Identifiers) > 0 {
		intersects := false
		for _, id := range q.Identifiers {
			if slices.Contains(a.Identifiers, id) {
				intersects = true
				break
			}
		}
		if !intersects {
			return false
		}
	}
	return true
}

// Store defines the interface for data persistence
type Store interface {
	// Player record operations
	GetPlayer(ctx context.Context, license model.PlayerID) (*model.Player, error)
	SavePlayer(ctx context.Context, player *model.Player) error
	UpdatePlayerNote(ctx context.Context, license model.PlayerID, note model.Note) error

	// Moderation action operations. ListActions returns independent
	// copies; callers may mutate results freely.
	InsertAction(ctx context.Context, action *model.Action) error
	ListActions(ctx context.Context, q ActionQuery) ([]model.Action, error)

	// Pending whitelist request operations
	GetPendingRequest(ctx context.Context, license model.PlayerID) (*model.PendingRequest, error)
	SavePendingRequest(ctx context.Context, req *model.PendingRequest) error
	ListPendingRequests(ctx context.Context) ([]model.PendingRequest, error)
	WipePendingRequests(ctx context.Context) error

	// Persist flushes buffered state to durable media. It may fail;
	// callers are expected to retry on the next flush interval.
	Persist(ctx context.Context) error
}
