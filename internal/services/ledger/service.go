// Package ledger maintains the durable record of moderation actions
// (bans, warns, whitelist grants) and pending whitelist requests.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pdenton/rosterd/internal/dependencies/clock"
	"github.com/pdenton/rosterd/internal/dependencies/random"
	"github.com/pdenton/rosterd/internal/identity"
	"github.com/pdenton/rosterd/internal/model"
	"github.com/pdenton/rosterd/internal/storage"
)

const (
	// CodeAlphabet excludes visually ambiguous characters (0/O, 1/I/5/S).
	CodeAlphabet = "2346789ABCDEFGHJKLMNPQRTUVWXYZ"

	actionCodeLength   = 3
	actionSuffixLength = 4
	pendingCodeLength  = 4
	pendingPrefix      = "R"
)

// DirtyMarker is notified whenever the ledger mutates state that must
// reach durable storage on the next flush.
type DirtyMarker interface {
	MarkDirty()
}

// Service owns action records and pending whitelist requests
type Service struct {
	store  storage.Store
	clock  clock.Clock
	random random.Random
	dirty  DirtyMarker
	logger *slog.Logger
}

// New creates a new ledger service
func New(store storage.Store, clk clock.Clock, rnd random.Random, dirty DirtyMarker, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		clock:  clk,
		random: rnd,
		dirty:  dirty,
		logger: logger,
	}
}

// Append registers a moderation action against a set of identifiers
// and returns the minted action id. All identifiers must classify
// under a recognized namespace; expiresAt nil means the action never
// expires.
func (s *Service) Append(ctx context.Context, kind model.ActionKind, identifiers []string, author, reason string, expiresAt *time.Time) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidActionKind, kind)
	}
	if len(identifiers) == 0 {
		return "", fmt.Errorf("%w: at least one identifier is required", model.ErrInvalidIdentifiers)
	}
	if invalid := identity.Invalid(identifiers); len(invalid) > 0 {
		return "", fmt.Errorf("%w: %s", model.ErrInvalidIdentifiers, strings.Join(invalid, ", "))
	}

	action := &model.Action{
		ID:          s.mintActionID(kind),
		Kind:        kind,
		Identifiers: identifiers,
		Author:      author,
		Reason:      reason,
		CreatedAt:   s.clock.Now(),
		ExpiresAt:   expiresAt,
	}

	if err := s.store.InsertAction(ctx, action); err != nil {
		return "", fmt.Errorf("failed to register action: %w", err)
	}
	s.dirty.MarkDirty()

	s.logger.Info("action registered",
		slog.String("id", action.ID),
		slog.String("kind", string(kind)),
		slog.String("author", author),
	)
	return action.ID, nil
}

// Query returns copies of the actions matching the query. When
// ActiveOnly is set without an evaluation instant, the current time
// is used.
func (s *Service) Query(ctx context.Context, q storage.ActionQuery) ([]model.Action, error) {
	if q.ActiveOnly && q.ActiveAt.IsZero() {
		q.ActiveAt = s.clock.Now()
	}
	actions, err := s.store.ListActions(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search registered actions: %w", err)
	}
	return actions, nil
}

// Revoke is not implemented. The record format already carries the
// revocation field and queries honor it; only the mutation is missing.
func (s *Service) Revoke(ctx context.Context, actionID, author string) error {
	return model.ErrNotImplemented
}

// TouchPendingRequest finds or creates the pending whitelist request
// for a license, refreshing its name and last-attempt timestamp, and
// returns the request id. At most one request exists per license.
func (s *Service) TouchPendingRequest(ctx context.Context, license model.PlayerID, name string) (string, error) {
	now := s.clock.Now()

	req, err := s.store.GetPendingRequest(ctx, license)
	switch {
	case err == nil:
		req.Name = name
		req.LastAttemptAt = now
	case errors.Is(err, model.ErrPendingNotFound):
		req = &model.PendingRequest{
			ID:            pendingPrefix + s.random.String(pendingCodeLength, CodeAlphabet),
			License:       license,
			Name:          name,
			LastAttemptAt: now,
		}
	default:
		return "", fmt.Errorf("failed to look up pending whitelist request: %w", err)
	}

	if err := s.store.SavePendingRequest(ctx, req); err != nil {
		return "", fmt.Errorf("failed to save pending whitelist request: %w", err)
	}
	s.dirty.MarkDirty()
	return req.ID, nil
}

// PendingRequests returns all pending whitelist requests
func (s *Service) PendingRequests(ctx context.Context) ([]model.PendingRequest, error) {
	return s.store.ListPendingRequests(ctx)
}

// WipePending removes all pending whitelist requests
func (s *Service) WipePending(ctx context.Context) error {
	if err := s.store.WipePendingRequests(ctx); err != nil {
		return err
	}
	s.dirty.MarkDirty()
	return nil
}

// mintActionID builds an id like B7NK-Q2MT: a kind tag, a short code,
// and a random suffix segment.
func (s *Service) mintActionID(kind model.ActionKind) string {
	return kindTag(kind) +
		s.random.String(actionCodeLength, CodeAlphabet) +
		"-" +
		s.random.String(actionSuffixLength, CodeAlphabet)
}

// kindTag returns the single-letter id prefix for an action kind.
// Warns use A to keep W free for whitelists.
func kindTag(kind model.ActionKind) string {
	if kind == model.ActionWarn {
		return "A"
	}
	return strings.ToUpper(string(kind[0]))
}
