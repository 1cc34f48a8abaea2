package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mocks "github.com/open-rp/zitadel-rp/internal/mocks/auth"
	"github.com/open-rp/zitadel-rp/internal/ports"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTokenService(TokenServiceOptions{
		Provider: mocks.NewMockProvider(),
		Now:      fixedClock(now),
	})

	tests := []struct {
		name      string
		expiresAt int64
		want      bool
	}{
		{name: "unknown expiry counts as expired", expiresAt: 0, want: true},
		{name: "past expiry", expiresAt: now.Add(-time.Second).Unix(), want: true},
		{name: "exact boundary is expired", expiresAt: now.Unix(), want: true},
		{name: "future expiry", expiresAt: now.Add(time.Hour).Unix(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.IsExpired(tt.expiresAt))
		})
	}
}

func TestAbsoluteExpiryAppliesDefaultTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTokenService(TokenServiceOptions{
		Provider:        mocks.NewMockProvider(),
		DefaultTokenTTL: 30 * time.Minute,
		Now:             fixedClock(now),
	})

	assert.Equal(t, now.Add(30*time.Minute).Unix(), svc.AbsoluteExpiry(time.Time{}))

	expiry := now.Add(5 * time.Minute)
	assert.Equal(t, expiry.Unix(), svc.AbsoluteExpiry(expiry))
}

func TestRefreshSuccess(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	provider := mocks.NewMockProvider()
	provider.RefreshFunc = func(_ context.Context, refreshToken string) (ports.TokenResult, error) {
		require.Equal(t, "old-refresh", refreshToken)
		return ports.TokenResult{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			Expiry:       now.Add(time.Hour),
		}, nil
	}

	svc := NewTokenService(TokenServiceOptions{Provider: provider, Now: fixedClock(now)})

	res := svc.Refresh(context.Background(), "old-refresh")
	require.NotNil(t, res)
	assert.Equal(t, "new-access", res.AccessToken)
	assert.Equal(t, "new-refresh", res.RefreshToken)
	assert.Equal(t, now.Add(time.Hour).Unix(), res.ExpiresAt)
}

func TestRefreshPreservesPriorRefreshToken(t *testing.T) {
	provider := mocks.NewMockProvider()
	provider.RefreshFunc = func(_ context.Context, _ string) (ports.TokenResult, error) {
		// ZITADEL does not always rotate the refresh token.
		return ports.TokenResult{AccessToken: "new-access"}, nil
	}

	svc := NewTokenService(TokenServiceOptions{Provider: provider})

	res := svc.Refresh(context.Background(), "old-refresh")
	require.NotNil(t, res)
	assert.Equal(t, "old-refresh", res.RefreshToken)
}

func TestRefreshFailureReturnsNil(t *testing.T) {
	provider := mocks.NewMockProvider()
	provider.RefreshFunc = func(_ context.Context, _ string) (ports.TokenResult, error) {
		return ports.TokenResult{}, &ports.ProviderRejectionError{Status: 400, Body: "invalid_grant"}
	}

	svc := NewTokenService(TokenServiceOptions{Provider: provider})

	assert.Nil(t, svc.Refresh(context.Background(), "revoked-refresh"))
}

func TestRefreshEmptyTokenReturnsNil(t *testing.T) {
	provider := mocks.NewMockProvider()
	provider.RefreshFunc = func(_ context.Context, _ string) (ports.TokenResult, error) {
		return ports.TokenResult{}, errors.New("should not be called")
	}

	svc := NewTokenService(TokenServiceOptions{Provider: provider})

	assert.Nil(t, svc.Refresh(context.Background(), ""))
}

func TestBuildLogoutURL(t *testing.T) {
	svc := NewTokenService(TokenServiceOptions{Provider: mocks.NewMockProvider()})

	first, err := svc.BuildLogoutURL("id-token")
	require.NoError(t, err)
	assert.Len(t, first.State, 2*logoutStateBytes)
	assert.Contains(t, first.URL, "state="+first.State)
	assert.Contains(t, first.URL, "id_token_hint=id-token")

	second, err := svc.BuildLogoutURL("id-token")
	require.NoError(t, err)
	assert.NotEqual(t, first.State, second.State)
}
