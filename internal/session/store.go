// Package session provides the redis-backed store for in-progress games.
// At most one active session exists per (username, game); Save enforces the
// invariant with SETNX, and Update only replaces an existing session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session store errors.
var (
	ErrSessionExists = errors.New("an active session already exists for this game")
	ErrNoSession     = errors.New("no active session")
)

// sessionTTL bounds how long an abandoned game lingers before the stake is
// forfeit. Each write refreshes it.
const sessionTTL = 24 * time.Hour

// Store persists one active session per (username, game) as JSON.
type Store struct {
	client *redis.Client
}

// NewStore creates a session store on an existing redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Connect opens a redis client and verifies the connection.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func key(game, username string) string {
	return fmt.Sprintf("session:%s:%s", game, username)
}

// Get loads the active session for (username, game) into dest.
// Returns false with no error when there is none.
func (s *Store) Get(ctx context.Context, game, username string, dest any) (bool, error) {
	data, err := s.client.Get(ctx, key(game, username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get session: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return true, nil
}

// Save stores a new session. Returns ErrSessionExists if one is already
// active; callers must Get first and reject the command in that case.
func (s *Store) Save(ctx context.Context, game, username string, sess any) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ok, err := s.client.SetNX(ctx, key(game, username), data, sessionTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if !ok {
		return ErrSessionExists
	}

	return nil
}

// Update replaces the active session. Returns ErrNoSession if the session
// was already settled or expired.
func (s *Store) Update(ctx context.Context, game, username string, sess any) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ok, err := s.client.SetXX(ctx, key(game, username), data, sessionTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if !ok {
		return ErrNoSession
	}

	return nil
}

// Delete removes the active session on terminal settlement.
func (s *Store) Delete(ctx context.Context, game, username string) error {
	if err := s.client.Del(ctx, key(game, username)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
