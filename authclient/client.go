// Package authclient talks to the restaurant platform's authentication
// endpoints. It exchanges credentials for bearer tokens and fetches the
// user profile; it never decodes or validates the tokens it carries.
// Automatic token refresh is deliberately not implemented.
package authclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dinekit/dinekit/session"
	"github.com/dinekit/dinekit/users"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	loginPath  = "/api/auth/login"
	logoutPath = "/api/auth/logout"
	mePath     = "/api/auth/me"

	defaultTimeout       = 15 * time.Second
	defaultRetryAttempts = 3
	defaultRetryDelay    = 250 * time.Millisecond

	// Login attempts allowed per minute before the client refuses locally.
	defaultLoginRate  = rate.Limit(1.0 / 6.0) // one attempt per 6s sustained
	defaultLoginBurst = 5
)

// TokenResponse is the backend's credential-exchange payload.
type TokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	User         *users.User `json:"user,omitempty"`
}

// Tokens converts the wire payload into the session's token record.
// ExpiresAt is a local assumption derived from expires_in; the backend
// remains the authority on actual validity.
func (tr *TokenResponse) Tokens(now time.Time) *session.Tokens {
	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = session.DefaultTokenType
	}
	tokens := &session.Tokens{
		Access:  tr.AccessToken,
		Refresh: tr.RefreshToken,
		Type:    tokenType,
	}
	if tr.ExpiresIn > 0 {
		tokens.ExpiresAt = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tokens
}

// apiError is the backend's FastAPI-style error envelope.
type apiError struct {
	Detail string `json:"detail"`
}

// Client is the HTTP collaborator for the auth endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	limiter    *rate.Limiter
	attempts   uint
	retryDelay time.Duration
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client's logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLoginRateLimit overrides the client-side login attempt limiter.
func WithLoginRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithRetry overrides the transport retry policy.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.retryDelay = delay
	}
}

// New creates an auth client for the backend at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[authclient.New] base URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zerolog.Nop(),
		limiter:    rate.NewLimiter(defaultLoginRate, defaultLoginBurst),
		attempts:   defaultRetryAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Login exchanges credentials for tokens. The backend accepts OAuth2
// password-form fields (username carries the email address). Attempts
// beyond the local rate limit fail immediately with ErrRateLimited.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	if !c.limiter.Allow() {
		return nil, errors.Wrap(ErrRateLimited, "[Client.Login]")
	}

	form := url.Values{
		"username": {email},
		"password": {password},
	}

	var tr TokenResponse
	err := c.doWithRetry(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, strings.NewReader(form.Encode()))
		if err != nil {
			return retry.Unrecoverable(errors.Wrap(err, "build request"))
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return c.send(req, &tr)
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login]")
	}

	c.logger.Info().Str("email", email).Msg("login succeeded")
	return &tr, nil
}

// Me fetches the profile of the user the access token belongs to.
func (c *Client) Me(ctx context.Context, accessToken string) (*users.User, error) {
	if accessToken == "" {
		return nil, errors.Wrap(ErrNotAuthenticated, "[Client.Me]")
	}

	var user users.User
	err := c.doWithRetry(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+mePath, nil)
		if err != nil {
			return retry.Unrecoverable(errors.Wrap(err, "build request"))
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)
		return c.send(req, &user)
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Me]")
	}
	return &user, nil
}

// Logout asks the backend to invalidate the session server-side. It is
// best-effort: the caller clears local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+logoutPath, nil)
	if err != nil {
		return errors.Wrap(err, "[Client.Logout] build request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	if err := c.send(req, nil); err != nil {
		return errors.Wrap(err, "[Client.Logout]")
	}
	return nil
}

// doWithRetry runs fn with bounded retries. Only transport errors and
// 5xx responses are retried; anything marked unrecoverable fails fast.
func (c *Client) doWithRetry(ctx context.Context, fn func(context.Context) error) error {
	return retry.Do(
		func() error { return fn(ctx) },
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug().Uint("attempt", n+1).Err(err).Msg("retrying auth request")
		}),
	)
}

// send executes the request and decodes a JSON body into out when the
// response is successful. Non-2xx statuses map onto the package's
// sentinel errors; only 5xx is considered retryable.
func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("X-Request-ID", uuid.New().String())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "do")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "read body")
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return retry.Unrecoverable(errors.Wrap(err, "decode response"))
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		if req.URL.Path == loginPath {
			return retry.Unrecoverable(errors.Wrap(ErrInvalidCredentials, apiDetail(body)))
		}
		return retry.Unrecoverable(errors.Wrap(ErrUnauthorized, apiDetail(body)))
	case resp.StatusCode == http.StatusBadRequest && req.URL.Path == loginPath:
		return retry.Unrecoverable(errors.Wrap(ErrAccountInactive, apiDetail(body)))
	case resp.StatusCode >= 500:
		return errors.Errorf("server error: %d %s", resp.StatusCode, apiDetail(body))
	default:
		return retry.Unrecoverable(errors.Errorf("unexpected status %d: %s", resp.StatusCode, apiDetail(body)))
	}
}

func apiDetail(body []byte) string {
	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Detail != "" {
		return ae.Detail
	}
	return strings.TrimSpace(string(body))
}
