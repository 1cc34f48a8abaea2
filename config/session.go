package config

import "time"

// SessionConfig contains browser session configuration.
//
// TTL is deliberately independent of access-token expiry: an expired access
// token only triggers a silent refresh, it does not end the session.
type SessionConfig struct {
	// TTL is the lifetime of the server-side session record and cookie.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = 24 * time.Hour
	}
}
