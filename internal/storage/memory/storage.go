package memory

import (
	"context"
	"sync"

	"github.com/pdenton/rosterd/internal/model"
	"github.com/pdenton/rosterd/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Persist is a no-op; use it for tests and ephemeral runs.
type Storage struct {
	mu sync.RWMutex

	players map[model.PlayerID]*model.Player
	actions []model.Action
	pending map[model.PlayerID]*model.PendingRequest
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerID]*model.Player),
		pending: make(map[model.PlayerID]*model.PendingRequest),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

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

// Persist is a no-op for the in-memory store
func (s *Storage) Persist(ctx context.Context) error {
	return nil
}
