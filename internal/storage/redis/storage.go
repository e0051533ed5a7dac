package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pdenton/rosterd/internal/model"
	"github.com/pdenton/rosterd/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Player record operations

func (s *Storage) GetPlayer(ctx context.Context, license model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(license)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerKey(player.License), data, 0).Err()
}

func (s *Storage) UpdatePlayerNote(ctx context.Context, license model.PlayerID, note model.Note) error {
	player, err := s.GetPlayer(ctx, license)
	if err != nil {
		return err
	}
	player.Note = note
	return s.SavePlayer(ctx, player)
}

// Moderation action operations

func (s *Storage) InsertAction(ctx context.Context, action *model.Action) error {
	data, err := json.Marshal(action)
	if err != nil {
		return err
	}

	// Pipeline the record write with its index updates
	pipe := s.client.Pipeline()
	pipe.Set(ctx, actionKey(action.ID), data, 0)
	pipe.SAdd(ctx, actionsIndexKey(), action.ID)
	for _, identifier := range action.Identifiers {
		pipe.SAdd(ctx, actionsByIdentifierKey(identifier), action.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListActions(ctx context.Context, q storage.ActionQuery) ([]model.Action, error) {
	ids, err := s.candidateActionIDs(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = actionKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var out []model.Action
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a record; skip.
			continue
		}
		var action model.Action
		if err := json.Unmarshal([]byte(raw), &action); err != nil {
			return nil, err
		}
		if q.Matches(&action) {
			out = append(out, action)
		}
	}
	return out, nil
}

// candidateActionIDs narrows the scan using the identifier index sets
// when the query carries an identifier set.
func (s *Storage) candidateActionIDs(ctx context.Context, q storage.ActionQuery) ([]string, error) {
	if len(q.Identifiers) == 0 {
		return s.client.SMembers(ctx, actionsIndexKey()).Result()
	}
	keys := make([]string, len(q.Identifiers))
	for i, identifier := range q.Identifiers {
		keys[i] = actionsByIdentifierKey(identifier)
	}
	return s.client.SUnion(ctx, keys...).Result()
}

// Pending whitelist request operations

func (s *Storage) GetPendingRequest(ctx context.Context, license model.PlayerID) (*model.PendingRequest, error) {
	data, err := s.client.Get(ctx, pendingKey(license)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPendingNotFound
		}
		return nil, err
	}

	var req model.PendingRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Storage) SavePendingRequest(ctx context.Context, req *model.PendingRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, pendingKey(req.License), data, 0)
	pipe.SAdd(ctx, pendingIndexKey(), string(req.License))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListPendingRequests(ctx context.Context) ([]model.PendingRequest, error) {
	licenses, err := s.client.SMembers(ctx, pendingIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	out := make([]model.PendingRequest, 0, len(licenses))
	for _, license := range licenses {
		req, err := s.GetPendingRequest(ctx, model.PlayerID(license))
		if err != nil {
			if errors.Is(err, model.ErrPendingNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, *req)
	}
	return out, nil
}

func (s *Storage) WipePendingRequests(ctx context.Context) error {
	licenses, err := s.client.SMembers(ctx, pendingIndexKey()).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	for _, license := range licenses {
		pipe.Del(ctx, pendingKey(model.PlayerID(license)))
	}
	pipe.Del(ctx, pendingIndexKey())
	_, err = pipe.Exec(ctx)
	return err
}

// Persist asks Redis for a background save. Individual writes are
// already durable per the server's persistence configuration, so this
// is best-effort and can be disabled.
func (s *Storage) Persist(ctx context.Context) error {
	if !s.cfg.SaveOnPersist {
		return nil
	}
	return s.client.BgSave(ctx).Err()
}
