package redis

// Package redis provides the Redis-backed session store adapter.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/open-rp/zitadel-rp/internal/domain/auth"
	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = 24 * time.Hour

// SessionStore is a Redis-based session store for production use.
//
// Records live for a fixed TTL independent of access-token expiry: an
// expired token must stay reachable so the guard can refresh it. Every
// Save resets the TTL, so active sessions slide forward.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewSessionStore creates a Redis session store with the default TTL.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client, prefix: "session:", ttl: defaultSessionTTL}
}

// NewSessionStoreWithTTL creates a Redis session store with a custom key
// prefix and record TTL.
func NewSessionStoreWithTTL(client redis.UniversalClient, prefix string, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.client.Set(ctx, s.prefix+sess.ID, data, s.ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ErrNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal([]byte(data), &sess); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil // Nothing to delete
	}

	return s.client.Del(ctx, s.prefix+id).Err()
}

// ErrNotFound is returned when a session is not found.
type notFoundError struct{}

func (notFoundError) Error() string { return "session not found" }

var ErrNotFound error = notFoundError{}
