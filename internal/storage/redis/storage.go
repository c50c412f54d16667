package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/storage"
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
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
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
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreateLobby(ctx context.Context, lobby *model.Lobby) error {
	data, err := json.Marshal(lobby)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, lobbyKey(lobby.ID), data, s.cfg.LobbyTTL).Result()
	if err != nil {
		return err
	}
	if !created {
		return storage.ErrLobbyExists
	}
	return s.client.SAdd(ctx, lobbyIndexKey(), string(lobby.ID)).Err()
}

func (s *Storage) SaveLobby(ctx context.Context, lobby *model.Lobby) error {
	data, err := json.Marshal(lobby)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, lobbyKey(lobby.ID), data, s.cfg.LobbyTTL)
		pipe.SAdd(ctx, lobbyIndexKey(), string(lobby.ID))
		return nil
	})
	return err
}

func (s *Storage) GetLobby(ctx context.Context, id model.LobbyID) (*model.Lobby, error) {
	data, err := s.client.Get(ctx, lobbyKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrLobbyNotFound
		}
		return nil, err
	}

	var lobby model.Lobby
	if err := json.Unmarshal(data, &lobby); err != nil {
		return nil, fmt.Errorf("decode lobby %s: %w", id, err)
	}
	return &lobby, nil
}

func (s *Storage) DeleteLobby(ctx context.Context, id model.LobbyID) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, lobbyKey(id))
		pipe.SRem(ctx, lobbyIndexKey(), string(id))
		return nil
	})
	return err
}

// ListLobbies returns the IDs in the index whose lobby key has not expired,
// pruning expired entries from the index as it goes
func (s *Storage) ListLobbies(ctx context.Context) ([]model.LobbyID, error) {
	members, err := s.client.SMembers(ctx, lobbyIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []model.LobbyID{}, nil
	}

	pipe := s.client.Pipeline()
	checks := make([]*redis.IntCmd, len(members))
	for i, member := range members {
		checks[i] = pipe.Exists(ctx, lobbyKey(model.LobbyID(member)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	ids := make([]model.LobbyID, 0, len(members))
	var stale []any
	for i, member := range members {
		if checks[i].Val() > 0 {
			ids = append(ids, model.LobbyID(member))
		} else {
			stale = append(stale, member)
		}
	}
	if len(stale) > 0 {
		if err := s.client.SRem(ctx, lobbyIndexKey(), stale...).Err(); err != nil {
			return nil, err
		}
	}

	slices.Sort(ids)
	return ids, nil
}
