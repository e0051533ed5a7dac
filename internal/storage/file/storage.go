// Package file implements the storage interface as a single JSON
// document file. All reads and writes hit an in-memory copy; Persist
// serializes a snapshot and writes it to disk atomically.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pdenton/rosterd/internal/model"
	"github.com/pdenton/rosterd/internal/storage"
)

const schemaVersion = 1

// schema is the on-disk document layout.
type schema struct {
	Version          int                    `json:"version"`
	Players          []model.Player         `json:"players"`
	Actions          []model.Action         `json:"actions"`
	PendingWhitelist []model.PendingRequest `json:"pending_whitelist"`
}

// Storage is a JSON-file-backed implementation of the storage interface
type Storage struct {
	mu   sync.RWMutex
	path string

	players map[model.PlayerID]*model.Player
	actions []model.Action
	pending map[model.PlayerID]*model.PendingRequest
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Open loads the document file at path, initializing it with empty
// collections and a version marker if it does not exist yet.
func Open(path string) (*Storage, error) {
	s := &Storage{
		path:    path,
		players: make(map[model.PlayerID]*model.Player),
		pending: make(map[model.PlayerID]*model.PendingRequest),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to load database file %q: %w", path, err)
	}

	var doc schema
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse database file %q: %w", path, err)
	}

	for i := range doc.Players {
		p := doc.Players[i]
		s.players[p.License] = &p
	}
	s.actions = doc.Actions
	for i := range doc.PendingWhitelist {
		r := doc.PendingWhitelist[i]
		s.pending[r.License] = &r
	}

	return s, nil
}

// Path returns the file the store persists to.
func (s *Storage) Path() string {
	return s.path
}

// Player record operations

func (s *Storage) GetPlayer(ctx context.Context, license model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[license]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[player.License] = &p
	return nil
}

func (s *Storage) UpdatePlayerNote(ctx context.Context, license model.PlayerID, note model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[license]
	if !ok {
		return model.ErrPlayerNotFound
	}
	player.Note = note
	return nil
}

// Moderation action operations

func (s *Storage) InsertAction(ctx context.Context, action *model.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action.Clone())
	return nil
}

func (s *Storage) ListActions(ctx context.Context, q storage.ActionQuery) ([]model.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Action
	for i := range s.actions {
		if q.Matches(&s.actions[i]) {
			out = append(out, s.actions[i].Clone())
		}
	}
	return out, nil
}

// Pending whitelist request operations

func (s *Storage) GetPendingRequest(ctx context.Context, license model.PlayerID) (*model.PendingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.pending[license]
	if !ok {
		return nil, model.ErrPendingNotFound
	}
	r := *req
	return &r, nil
}

func (s *Storage) SavePendingRequest(ctx context.Context, req *model.PendingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *req
	s.pending[req.License] = &r
	return nil
}

func (s *Storage) ListPendingRequests(ctx context.Context) ([]model.PendingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PendingRequest, 0, len(s.pending))
	for _, req := range s.pending {
		out = append(out, *req)
	}
	return out, nil
}

func (s *Storage) WipePendingRequests(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[model.PlayerID]*model.PendingRequest)
	return nil
}

// Persist serializes a snapshot of the store and writes it to disk.
// The snapshot is taken under the read lock and the (potentially slow)
// disk write happens after the lock is released, so heartbeat
// processing is never stalled by I/O.
func (s *Storage) Persist(ctx context.Context) error {
	s.mu.RLock()
	doc := s.snapshot()
	s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize database: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Write-then-rename so a crash mid-write never corrupts the file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write database file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace database file: %w", err)
	}
	return nil
}

// snapshot builds the on-disk document from current state.
// Caller must hold at least the read lock.
func (s *Storage) snapshot() schema {
	doc := schema{
		Version:          schemaVersion,
		Players:          make([]model.Player, 0, len(s.players)),
		Actions:          make([]model.Action, 0, len(s.actions)),
		PendingWhitelist: make([]model.PendingRequest, 0, len(s.pending)),
	}
	for _, p := range s.players {
		doc.Players = append(doc.Players, *p)
	}
	sort.Slice(doc.Players, func(i, j int) bool {
		return doc.Players[i].License < doc.Players[j].License
	})
	for i := range s.actions {
		doc.Actions = append(doc.Actions, s.actions[i].Clone())
	}
	for _, r := range s.pending {
		doc.PendingWhitelist = append(doc.PendingWhitelist, *r)
	}
	sort.Slice(doc.PendingWhitelist, func(i, j int) bool {
		return doc.PendingWhitelist[i].License < doc.PendingWhitelist[j].License
	})
	return doc
}
