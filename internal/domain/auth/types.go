package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

// Identity is the mapped view of provider claims. Adapters translate
// provider-specific claim names into this shape; missing claims stay empty.
type Identity struct {
	Subject   string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar"`
}

// Session is the server-side record we persist for one browser session.
// ID is an opaque session identifier carried in the session cookie.
//
// Identity holds the raw UserInfo claims and is the authentication signal:
// a session counts as authenticated iff Identity is non-empty. Token expiry
// alone never deauthenticates; it only triggers a refresh.
type Session struct {
	ID           string         `json:"id"`
	Identity     map[string]any `json:"identity,omitempty"`
	AccessToken  string         `json:"access_token,omitempty"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	IDToken      string         `json:"id_token,omitempty"`

	// ExpiresAt is the absolute access-token expiry in unix seconds.
	// Zero means unknown and is treated as expired.
	ExpiresAt int64 `json:"expires_at,omitempty"`

	// Transient handshake values. Each is single-use: written when the
	// corresponding flow starts and cleared the first time it is read back,
	// whatever the outcome.
	PKCEVerifier string `json:"pkce_verifier,omitempty"`
	SignInState  string `json:"sign_in_state,omitempty"`
	LogoutState  string `json:"logout_state,omitempty"`
}

// IsAuthenticated reports whether the session carries an identity.
func (s Session) IsAuthenticated() bool { return len(s.Identity) > 0 }
