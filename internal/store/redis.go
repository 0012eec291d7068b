package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"partyroom-backend/config"
	"partyroom-backend/internal/game"
)

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// redisStateStore keeps each game document under <prefix>:users:<userID>.
type redisStateStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStateStore creates a redis-backed game document store.
func NewRedisStateStore(client *redis.Client, prefix string) StateStore {
	return &redisStateStore{client: client, prefix: prefix}
}

func (s *redisStateStore) key(userID string) string {
	return fmt.Sprintf("%s:users:%s", s.prefix, userID)
}

// LoadState returns the saved game of a user, or ErrNotFound.
func (s *redisStateStore) LoadState(ctx context.Context, userID string) (*game.State, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game of user %s: %w", userID, err)
	}

	var state game.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode game of user %s: %w", userID, err)
	}
	return &state, nil
}

// SaveState overwrites the whole document of a user. Documents never expire.
func (s *redisStateStore) SaveState(ctx context.Context, userID string, state game.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode game of user %s: %w", userID, err)
	}
	if err := s.client.Set(ctx, s.key(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save game of user %s: %w", userID, err)
	}
	return nil
}
