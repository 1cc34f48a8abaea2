package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/open-rp/zitadel-rp/internal/domain/auth"
	"github.com/open-rp/zitadel-rp/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	session := domainauth.Session{
		ID: "test-session-1",
		Identity: map[string]any{
			"sub":   "user-123",
			"email": "user@example.com",
		},
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		IDToken:      "id-token",
		ExpiresAt:    time.Now().Add(30 * time.Minute).Unix(),
	}

	err := store.Save(ctx, session)
	require.NoError(t, err)

	retrieved, err := store.Get(ctx, "test-session-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.Equal(t, session.AccessToken, retrieved.AccessToken)
	assert.Equal(t, session.RefreshToken, retrieved.RefreshToken)
	assert.Equal(t, session.IDToken, retrieved.IDToken)
	assert.Equal(t, session.ExpiresAt, retrieved.ExpiresAt)
	assert.Equal(t, "user-123", retrieved.Identity["sub"])
	assert.True(t, retrieved.IsAuthenticated())
}

func TestSessionStore_SavePreservesHandshakeValues(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	session := domainauth.Session{
		ID:           "test-session-2",
		PKCEVerifier: "verifier",
		SignInState:  "state-123",
	}

	require.NoError(t, store.Save(ctx, session))

	retrieved, err := store.Get(ctx, "test-session-2")
	require.NoError(t, err)
	assert.Equal(t, "verifier", retrieved.PKCEVerifier)
	assert.Equal(t, "state-123", retrieved.SignInState)
	assert.False(t, retrieved.IsAuthenticated())
}

func TestSessionStore_GetNonExistent(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	_, err := store.Get(ctx, "non-existent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_SaveEmptyID(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	err := store.Save(ctx, domainauth.Session{})
	assert.Error(t, err)
}

func TestSessionStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	session := domainauth.Session{ID: "test-session-3", AccessToken: "access"}
	require.NoError(t, store.Save(ctx, session))

	require.NoError(t, store.Delete(ctx, "test-session-3"))

	_, err := store.Get(ctx, "test-session-3")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing or empty ID is a no-op.
	assert.NoError(t, store.Delete(ctx, "test-session-3"))
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestSessionStore_RecordOutlivesTokenExpiry(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStoreWithTTL(client, "session:", time.Hour)
	ctx := context.Background()

	// A session whose access token already expired must stay readable so
	// the refresh path can run.
	session := domainauth.Session{
		ID:           "test-session-4",
		Identity:     map[string]any{"sub": "user-123"},
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
	}
	require.NoError(t, store.Save(ctx, session))

	retrieved, err := store.Get(ctx, "test-session-4")
	require.NoError(t, err)
	assert.Equal(t, "refresh", retrieved.RefreshToken)

	ttl, err := client.TTL(ctx, "session:test-session-4").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 55*time.Minute)
}
