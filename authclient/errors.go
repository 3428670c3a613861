package authclient

import "github.com/pkg/errors"

var (
	// ErrInvalidCredentials means the backend rejected the email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized means the presented access token was rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAccountInactive means the account exists but may not log in.
	ErrAccountInactive = errors.New("account inactive")

	// ErrRateLimited means the client-side login limiter refused the attempt.
	ErrRateLimited = errors.New("too many login attempts")

	// ErrNotAuthenticated means no session tokens are available for the request.
	ErrNotAuthenticated = errors.New("not authenticated")
)
