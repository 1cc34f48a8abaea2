package auth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAuthenticated(t *testing.T) {
	assert.False(t, Session{}.IsAuthenticated())
	assert.False(t, Session{AccessToken: "access", IDToken: "id"}.IsAuthenticated())
	assert.False(t, Session{Identity: map[string]any{}}.IsAuthenticated())
	assert.True(t, Session{Identity: map[string]any{"sub": "user-1"}}.IsAuthenticated())
}

func TestSessionRoundTripsHandshakeValues(t *testing.T) {
	sess := Session{
		ID:           "sess-1",
		PKCEVerifier: "verifier",
		SignInState:  "state",
		LogoutState:  "logout",
	}

	data, err := json.Marshal(sess)
	require.NoError(t, err)

	var decoded Session
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sess, decoded)
}

func TestIdentityJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Identity{
		Subject:   "user-1",
		AvatarURL: "https://example.com/a.png",
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "user-1", raw["id"])
	assert.Equal(t, "https://example.com/a.png", raw["avatar"])
}
