// Package roster maintains the canonical in-memory table of active
// sessions, reconciling it against periodic heartbeat snapshots and
// accumulating online time into durable player records.
package roster

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/pdenton/rosterd/internal/dependencies/clock"
	"github.com/pdenton/rosterd/internal/identity"
	"github.com/pdenton/rosterd/internal/model"
	"github.com/pdenton/rosterd/internal/storage"
)

// NoSaveLicense marks test/debug traffic that must never earn a
// durable player record.
const NoSaveLicense model.PlayerID = "3333333333333333333333deadbeef0000nosave"

// DefaultMinSessionDwell is how long a session must live before it is
// promoted to a durable player record.
const DefaultMinSessionDwell = 60 * time.Second

// Config holds the reconciler configuration
type Config struct {
	MinSessionDwell time.Duration
}

// DirtyMarker receives a mark whenever durable state changed and the
// next flush should persist.
type DirtyMarker interface {
	MarkDirty()
}

// RawClient is one entry of an externally supplied heartbeat
// snapshot. It is untrusted: entries are validated and deduplicated
// before they reach the session table.
type RawClient struct {
	ClientID    int
	Name        string
	Ping        int
	Identifiers []string
}

// PlayerView is the merged authoritative view of a player, sourced
// from the live session when connected and from the durable record
// otherwise.
type PlayerView struct {
	Player      model.Player
	Online      bool
	Provisional bool
	ClientID    int
	Ping        int
	Identifiers []string
}

// Service owns the session table. At most one session exists per
// license at any time; Reconcile enforces this for every snapshot.
type Service struct {
	store  storage.Store
	clock  clock.Clock
	dirty  DirtyMarker
	cfg    Config
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[model.PlayerID]*model.Session
}

// New creates a new roster service
func New(store storage.Store, clk clock.Clock, dirty DirtyMarker, cfg Config, logger *slog.Logger) *Service {
	if cfg.MinSessionDwell <= 0 {
		cfg.MinSessionDwell = DefaultMinSessionDwell
	}
	return &Service{
		store:    store,
		clock:    clk,
		dirty:    dirty,
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[model.PlayerID]*model.Session),
	}
}

// Reconcile replaces the session table with the given heartbeat
// snapshot. Entries that fail shape validation or carry no license
// identifier are dropped; duplicate licenses within one snapshot keep
// the first occurrence. Departed non-provisional sessions flush their
// note to the durable player record. Reconcile must not be called
// concurrently with itself.
func (s *Service) Reconcile(ctx context.Context, snapshot []RawClient) {
	now := s.clock.Now()

	incoming := make(map[model.PlayerID]RawClient, len(snapshot))
	order := make([]model.PlayerID, 0, len(snapshot))
	var invalid, duplicates int
	for _, rc := range snapshot {
		if rc.Name == "" || rc.ClientID < 0 || len(rc.Identifiers) == 0 {
			invalid++
			continue
		}
		license, ok := identity.PrimaryID(rc.Identifiers)
		if !ok {
			invalid++
			continue
		}
		if _, seen := incoming[license]; seen {
			duplicates++
			continue
		}
		incoming[license] = rc
		order = append(order, license)
	}

	s.mu.RLock()
	existing := make(map[model.PlayerID]bool, len(s.sessions))
	for license := range s.sessions {
		existing[license] = true
	}
	s.mu.RUnlock()

	// Durable lookups for new arrivals happen outside the lock so a
	// slow store never stalls readers. A read failure seeds the
	// session as if no record existed.
	seeds := make(map[model.PlayerID]*model.Player)
	for _, license := range order {
		if existing[license] {
			continue
		}
		player, err := s.store.GetPlayer(ctx, license)
		if err != nil {
			if !errors.Is(err, model.ErrPlayerNotFound) {
				s.logger.Warn("player lookup failed during reconcile", "license", license, "error", err)
			}
			continue
		}
		seeds[license] = player
	}

	var joined, departed int
	var noteFlushes []model.Session
	s.mu.Lock()
	next := make(map[model.PlayerID]*model.Session, len(order))
	for _, license := range order {
		rc := incoming[license]
		if cur, ok := s.sessions[license]; ok {
			cur.ClientID = rc.ClientID
			cur.Ping = rc.Ping
			next[license] = cur
			continue
		}
		joined++
		sess := &model.Session{
			License:     license,
			ClientID:    rc.ClientID,
			Name:        rc.Name,
			Identifiers: identity.Filter(rc.Identifiers),
			Ping:        rc.Ping,
			ConnectedAt: now,
			JoinedAt:    now,
			Provisional: true,
		}
		if seed := seeds[license]; seed != nil {
			sess.Provisional = false
			sess.JoinedAt = seed.JoinedAt
			sess.OnlineMinutes = seed.OnlineMinutes
			sess.Note = seed.Note
			sess.LastCreditAt = now
		}
		next[license] = sess
	}
	for license, cur := range s.sessions {
		if _, ok := next[license]; ok {
			continue
		}
		departed++
		if !cur.Provisional && cur.License != NoSaveLicense {
			noteFlushes = append(noteFlushes, cur.Clone())
		}
	}
	s.sessions = next
	s.mu.Unlock()

	for _, sess := range noteFlushes {
		if err := s.store.UpdatePlayerNote(ctx, sess.License, sess.Note); err != nil {
			s.logger.Warn("note flush failed for departed session", "license", sess.License, "error", err)
		}
	}
	if departed > 0 {
		s.dirty.MarkDirty()
	}
	if invalid > 0 || duplicates > 0 {
		s.logger.Warn("dropped heartbeat entries", "invalid", invalid, "duplicates", duplicates)
	}
	if joined > 0 || departed > 0 {
		s.logger.Info("reconciled sessions", "active", len(next), "joined", joined, "departed", departed)
	}
}

// Accumulate promotes provisional sessions that crossed the minimum
// dwell time and credits one online minute to non-provisional
// sessions at most once per minute. Store write failures are logged
// and retried implicitly on the next pass.
func (s *Service) Accumulate(ctx context.Context) {
	now := s.clock.Now()

	var updates []model.Player
	s.mu.Lock()
	for _, sess := range s.sessions {
		if sess.License == NoSaveLicense {
			continue
		}
		if sess.Provisional {
			dwell := now.Sub(sess.ConnectedAt)
			if dwell < s.cfg.MinSessionDwell {
				continue
			}
			sess.Provisional = false
			sess.OnlineMinutes = int(dwell / time.Minute)
			sess.LastCreditAt = now
			updates = append(updates, playerOf(sess, now))
			continue
		}
		if now.Sub(sess.LastCreditAt) >= time.Minute {
			sess.OnlineMinutes++
			sess.LastCreditAt = now
			updates = append(updates, playerOf(sess, now))
		}
	}
	s.mu.Unlock()

	saved := 0
	for i := range updates {
		if err := s.store.SavePlayer(ctx, &updates[i]); err != nil {
			s.logger.Warn("player save failed during accumulation", "license", updates[i].License, "error", err)
			continue
		}
		saved++
	}
	if saved > 0 {
		s.dirty.MarkDirty()
	}
}

func playerOf(sess *model.Session, now time.Time) model.Player {
	return model.Player{
		License:       sess.License,
		Name:          sess.Name,
		JoinedAt:      sess.JoinedAt,
		LastSeenAt:    now,
		OnlineMinutes: sess.OnlineMinutes,
		Note:          sess.Note,
	}
}

// SetNote updates a player's note through the single authoritative
// accessor: the live session when connected, the durable record
// otherwise.
func (s *Service) SetNote(ctx context.Context, license model.PlayerID, text, author string) error {
	now := s.clock.Now()
	note := model.Note{Text: text, Author: author, EditedAt: &now}

	s.mu.Lock()
	sess, online := s.sessions[license]
	if online {
		sess.Note = note
	}
	s.mu.Unlock()

	if !online {
		if err := s.store.UpdatePlayerNote(ctx, license, note); err != nil {
			return err
		}
	}
	s.dirty.MarkDirty()
	return nil
}

// Lookup resolves the authoritative view of a player by license.
// Returns model.ErrPlayerNotFound when the player is neither
// connected nor on record.
func (s *Service) Lookup(ctx context.Context, license model.PlayerID) (*PlayerView, error) {
	s.mu.RLock()
	sess, online := s.sessions[license]
	var view *PlayerView
	if online {
		c := sess.Clone()
		view = &PlayerView{
			Player:      playerOf(&c, s.clock.Now()),
			Online:      true,
			Provisional: c.Provisional,
			ClientID:    c.ClientID,
			Ping:        c.Ping,
			Identifiers: c.Identifiers,
		}
	}
	s.mu.RUnlock()

	if view != nil {
		return view, nil
	}
	player, err := s.store.GetPlayer(ctx, license)
	if err != nil {
		return nil, err
	}
	return &PlayerView{Player: *player}, nil
}

// IdentifiersForClient resolves a live session by its transient
// client id and returns its identifier list, for ledger appends that
// target a connected player rather than explicit identifiers.
func (s *Service) IdentifiersForClient(clientID int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.ClientID == clientID {
			if len(sess.Identifiers) == 0 {
				return nil, model.ErrNoIdentifiers
			}
			return slices.Clone(sess.Identifiers), nil
		}
	}
	return nil, model.ErrSessionNotFound
}

// Sessions returns an independent snapshot of the active session
// table, ordered by client id.
func (s *Service) Sessions() []model.Session {
	s.mu.RLock()
	out := make([]model.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.Session) int {
		return a.ClientID - b.ClientID
	})
	return out
}
