// Package session holds the client's authentication state: the current
// user snapshot, their bearer tokens, and the expiry lifecycle. The
// Store is the single source of truth; everything else in the
// application reads from it.
package session

import (
	"time"

	"github.com/dinekit/dinekit/users"
)

// Durable storage keys. The user record is stored as serialized JSON,
// the tokens as raw opaque strings.
const (
	KeyAccessToken  = "auth.access_token"
	KeyRefreshToken = "auth.refresh_token"
	KeyUser         = "auth.user"
)

// DefaultTokenType is assumed for rehydrated tokens, whose declared
// type is not persisted.
const DefaultTokenType = "bearer"

// Tokens carries the bearer credentials issued by the backend. Both
// token strings are opaque blobs: the client never decodes or
// validates them, the backend is the authority on their validity.
type Tokens struct {
	Access    string    // Access token presented on API requests
	Refresh   string    // Refresh token, carried but never exercised by this client
	Type      string    // Declared token type, normally "bearer"
	ExpiresAt time.Time // Local assumption of access token expiry, zero if unknown
}

// Session is a point-in-time copy of the store's state.
type Session struct {
	User          *users.User
	Tokens        *Tokens
	Authenticated bool   // true iff both User and Tokens are present
	Loading       bool   // UI-facing busy flag
	Err           string // UI-facing error message, empty when clear
}

// clone returns a deep copy so callers can never mutate store state
// through a snapshot.
func (s Session) clone() Session {
	out := s
	if s.User != nil {
		user := *s.User
		out.User = &user
	}
	if s.Tokens != nil {
		tokens := *s.Tokens
		out.Tokens = &tokens
	}
	return out
}
