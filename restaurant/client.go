package restaurant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dinekit/dinekit/authclient"
	"github.com/dinekit/dinekit/session"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout       = 15 * time.Second
	defaultRetryAttempts = 3
	defaultRetryDelay    = 250 * time.Millisecond
)

// envelope is the backend's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Detail  string          `json:"detail,omitempty"`
}

// Client reads restaurant resources on behalf of the authenticated
// session. The bearer token is attached per request through an oauth2
// transport reading live from the session store, so a logout takes
// effect immediately.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	attempts   uint
	retryDelay time.Duration
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithLogger sets the client's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRetry overrides the transport retry policy.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.retryDelay = delay
	}
}

// WithBaseTransport sets the transport beneath the oauth2 layer
// (primarily for testing).
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		transport := c.httpClient.Transport.(*oauth2.Transport)
		transport.Base = rt
	}
}

// New creates a resource client bound to the session store.
func New(baseURL string, store *session.Store, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[restaurant.New] base URL is required")
	}
	if store == nil {
		return nil, errors.New("[restaurant.New] session store is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			// Deliberately not ReuseTokenSource: every request reads the
			// store so revoked sessions stop sending credentials.
			Transport: &oauth2.Transport{Source: authclient.StoreTokenSource(store)},
		},
		logger:     zerolog.Nop(),
		attempts:   defaultRetryAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Get fetches the restaurant record.
func (c *Client) Get(ctx context.Context, restaurantID string) (*Restaurant, error) {
	var payload struct {
		Restaurant *Restaurant `json:"restaurant"`
	}
	path := fmt.Sprintf("/api/restaurants/%s", restaurantID)
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return nil, errors.Wrap(err, "[Client.Get]")
	}
	return payload.Restaurant, nil
}

// MenuCategories lists the restaurant's menu categories.
func (c *Client) MenuCategories(ctx context.Context, restaurantID string, activeOnly bool) ([]MenuCategory, error) {
	var payload struct {
		Categories []MenuCategory `json:"categories"`
	}
	query := url.Values{"active_only": {strconv.FormatBool(activeOnly)}}
	path := fmt.Sprintf("/api/restaurants/%s/menu/categories", restaurantID)
	if err := c.getJSON(ctx, path, query, &payload); err != nil {
		return nil, errors.Wrap(err, "[Client.MenuCategories]")
	}
	return payload.Categories, nil
}

// MenuItems lists a page of menu items.
func (c *Client) MenuItems(ctx context.Context, restaurantID string, page PageRequest) ([]MenuItem, *Pagination, error) {
	var payload struct {
		Items      []MenuItem  `json:"items"`
		Pagination *Pagination `json:"pagination"`
	}
	query := url.Values{}
	if page.Page > 0 {
		query.Set("page", strconv.Itoa(page.Page))
	}
	if page.Size > 0 {
		query.Set("size", strconv.Itoa(page.Size))
	}
	path := fmt.Sprintf("/api/restaurants/%s/menu/items", restaurantID)
	if err := c.getJSON(ctx, path, query, &payload); err != nil {
		return nil, nil, errors.Wrap(err, "[Client.MenuItems]")
	}
	return payload.Items, payload.Pagination, nil
}

// Specials lists the restaurant's active specials.
func (c *Client) Specials(ctx context.Context, restaurantID string) ([]Special, error) {
	var payload struct {
		Specials []Special `json:"specials"`
	}
	path := fmt.Sprintf("/api/restaurants/%s/specials", restaurantID)
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return nil, errors.Wrap(err, "[Client.Specials]")
	}
	return payload.Specials, nil
}

// Tables lists the restaurant's tables.
func (c *Client) Tables(ctx context.Context, restaurantID string) ([]Table, error) {
	var payload struct {
		Tables []Table `json:"tables"`
	}
	path := fmt.Sprintf("/api/restaurants/%s/tables", restaurantID)
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return nil, errors.Wrap(err, "[Client.Tables]")
	}
	return payload.Tables, nil
}

// Orders lists a page of orders, optionally filtered by status.
func (c *Client) Orders(ctx context.Context, restaurantID string, status OrderStatus, page PageRequest) ([]Order, *Pagination, error) {
	var payload struct {
		Orders     []Order     `json:"orders"`
		Pagination *Pagination `json:"pagination"`
	}
	query := url.Values{}
	if status != "" {
		query.Set("status", string(status))
	}
	if page.Page > 0 {
		query.Set("page", strconv.Itoa(page.Page))
	}
	if page.Size > 0 {
		query.Set("size", strconv.Itoa(page.Size))
	}
	path := fmt.Sprintf("/api/restaurants/%s/orders", restaurantID)
	if err := c.getJSON(ctx, path, query, &payload); err != nil {
		return nil, nil, errors.Wrap(err, "[Client.Orders]")
	}
	return payload.Orders, payload.Pagination, nil
}

// getJSON performs a GET with retries and unwraps the response envelope
// into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return retry.Unrecoverable(errors.Wrap(err, "build request"))
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("X-Request-ID", uuid.New().String())

			resp, err := c.httpClient.Do(req)
			if err != nil {
				// An unauthenticated session can never succeed on retry.
				if errors.Is(err, authclient.ErrNotAuthenticated) {
					return retry.Unrecoverable(err)
				}
				return errors.Wrap(err, "do")
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			if err != nil {
				return errors.Wrap(err, "read body")
			}

			switch {
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				if err := decodeEnvelope(body, out); err != nil {
					return retry.Unrecoverable(err)
				}
				return nil
			case resp.StatusCode == http.StatusUnauthorized:
				return retry.Unrecoverable(errors.Wrap(authclient.ErrUnauthorized, apiDetail(body)))
			case resp.StatusCode >= 500:
				return errors.Errorf("server error: %d", resp.StatusCode)
			default:
				return retry.Unrecoverable(errors.Errorf("unexpected status %d: %s", resp.StatusCode, apiDetail(body)))
			}
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug().Uint("attempt", n+1).Err(err).Str("path", path).Msg("retrying resource request")
		}),
	)
}

func decodeEnvelope(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return errors.Wrap(err, "decode envelope")
	}
	if len(env.Data) == 0 {
		return errors.New("response envelope has no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrap(err, "decode data")
	}
	return nil
}

func apiDetail(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Detail != "" {
			return env.Detail
		}
		if env.Message != "" {
			return env.Message
		}
	}
	return strings.TrimSpace(string(body))
}
