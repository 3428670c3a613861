package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/dinekit/dinekit/session/storage"
	"github.com/dinekit/dinekit/users"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Store is the single source of truth for authentication state. All
// mutations are serialized through one mutex, every credential-bearing
// mutation writes through to durable storage, and storage is read
// exactly once, at construction, to rehydrate a previous session.
//
// Storage failures never cross the store boundary: they are logged and
// the in-memory state still updates, so the application degrades to
// "not authenticated" rather than crashing.
type Store struct {
	lock    sync.Mutex
	current Session

	storage storage.Storage
	logger  zerolog.Logger
	clock   clockwork.Clock

	timeout     time.Duration
	warningLead time.Duration
	onWarning   func(remaining time.Duration)
	expiry      *expiryManager
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithLogger sets the store's logger. The default discards everything.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock sets the clock used for expiry timers (primarily for testing).
func WithClock(clock clockwork.Clock) StoreOption {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithExpiry enables the session expiry lifecycle: a warning fires
// warningLead before timeout, and at timeout the session is forcibly
// logged out. timeout must be strictly greater than warningLead.
func WithExpiry(timeout, warningLead time.Duration) StoreOption {
	return func(s *Store) {
		s.timeout = timeout
		s.warningLead = warningLead
	}
}

// WithWarningFunc sets the handler invoked when the expiry warning
// fires. There is no guaranteed consumer; the default logs the event.
func WithWarningFunc(fn func(remaining time.Duration)) StoreOption {
	return func(s *Store) {
		s.onWarning = fn
	}
}

// New constructs a Store over the given durable storage and rehydrates
// any persisted session. A rehydrated session needs both a user record
// and an access token; anything less yields a clean unauthenticated
// state with no error surfaced.
func New(st storage.Storage, options ...StoreOption) (*Store, error) {
	if st == nil {
		return nil, errors.New("[session.New] storage is required")
	}

	s := &Store{
		storage: st,
		logger:  zerolog.Nop(),
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.timeout != 0 || s.warningLead != 0 {
		if s.timeout <= 0 {
			return nil, errors.New("[session.New] session timeout must be positive")
		}
		if s.warningLead < 0 {
			return nil, errors.New("[session.New] warning lead must not be negative")
		}
		if s.timeout <= s.warningLead {
			return nil, errors.Errorf("[session.New] session timeout (%s) must exceed warning lead (%s)", s.timeout, s.warningLead)
		}
		onWarning := s.onWarning
		if onWarning == nil {
			onWarning = func(remaining time.Duration) {
				s.logger.Warn().Dur("remaining", remaining).Msg("session expires soon")
			}
		}
		s.expiry = newExpiryManager(s.clock, s.timeout, s.warningLead, onWarning, s.expire)
	}

	if s.rehydrate() && s.expiry != nil {
		s.expiry.Arm()
	}
	return s, nil
}

// Login adopts the authenticated state and persists the credentials.
func (s *Store) Login(user *users.User, tokens *Tokens) {
	s.lock.Lock()
	s.current = Session{
		User:          user,
		Tokens:        tokens,
		Authenticated: user != nil && tokens != nil,
	}
	s.persistUserLocked(user)
	s.persistTokensLocked(tokens)
	authenticated := s.current.Authenticated
	s.lock.Unlock()

	if s.expiry != nil {
		if authenticated {
			s.expiry.Arm()
		} else {
			s.expiry.Disarm()
		}
	}
	s.logger.Info().Bool("authenticated", authenticated).Msg("session started")
}

// Logout clears state and storage unconditionally. It is idempotent
// and safe to invoke from both user action and timer expiry.
func (s *Store) Logout() {
	s.lock.Lock()
	s.current = Session{}
	s.clearStorageLocked()
	s.lock.Unlock()

	if s.expiry != nil {
		s.expiry.Disarm()
	}
	s.logger.Info().Msg("session ended")
}

// UpdateUser replaces the cached user record and persists it.
func (s *Store) UpdateUser(user *users.User) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.current.User = user
	s.current.Authenticated = s.current.User != nil && s.current.Tokens != nil
	s.persistUserLocked(user)
}

// UpdateTokens replaces the bearer credentials and persists them.
func (s *Store) UpdateTokens(tokens *Tokens) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.current.Tokens = tokens
	s.current.Authenticated = s.current.User != nil && s.current.Tokens != nil
	s.persistTokensLocked(tokens)
}

// SetLoading sets the UI-facing busy flag. No persistence side effects.
func (s *Store) SetLoading(loading bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.current.Loading = loading
}

// SetError surfaces an error message for UI display. No persistence
// side effects.
func (s *Store) SetError(msg string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.current.Err = msg
}

// ClearError removes a previously surfaced error.
func (s *Store) ClearError() {
	s.SetError("")
}

// Snapshot returns a deep copy of the current session.
func (s *Store) Snapshot() Session {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.current.clone()
}

// IsAuthenticated reports whether a user is currently logged in.
func (s *Store) IsAuthenticated() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.current.Authenticated
}

// ExpiryState reports where the session is in its expiry lifecycle,
// ExpiryIdle when expiry is not configured.
func (s *Store) ExpiryState() ExpiryState {
	if s.expiry == nil {
		return ExpiryIdle
	}
	return s.expiry.State()
}

// ExpiryRemaining reports the time left until forced logout, zero when
// no session is running or expiry is not configured.
func (s *Store) ExpiryRemaining() time.Duration {
	if s.expiry == nil {
		return 0
	}
	return s.expiry.Remaining()
}

// Close cancels any armed expiry timers. The underlying storage is
// owned by the caller and is not closed here.
func (s *Store) Close() {
	if s.expiry != nil {
		s.expiry.Disarm()
	}
}

// expire is the forced-logout path, invoked by the expiry manager.
func (s *Store) expire() {
	s.logger.Info().Msg("session timed out")
	s.Logout()
}

// rehydrate reads the persisted session once and adopts it when both
// the user record and access token are present. Returns true when the
// store came up authenticated.
func (s *Store) rehydrate() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	access, err := s.storage.Get(KeyAccessToken)
	if err != nil {
		s.logStorageMiss(KeyAccessToken, err)
		return false
	}

	rawUser, err := s.storage.Get(KeyUser)
	if err != nil {
		s.logStorageMiss(KeyUser, err)
		return false
	}

	var user users.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.logger.Warn().Err(err).Msg("persisted user record is corrupt, discarding session")
		return false
	}

	tokens := &Tokens{
		Access: access,
		Type:   DefaultTokenType,
	}
	// The refresh token is optional; its absence does not invalidate
	// the session.
	if refresh, err := s.storage.Get(KeyRefreshToken); err == nil {
		tokens.Refresh = refresh
	}

	s.current = Session{
		User:          &user,
		Tokens:        tokens,
		Authenticated: true,
	}
	s.logger.Info().Str("user", user.Email).Msg("session rehydrated")
	return true
}

func (s *Store) logStorageMiss(key string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debug().Str("key", key).Msg("no persisted session")
		return
	}
	s.logger.Warn().Err(err).Str("key", key).Msg("storage read failed, starting unauthenticated")
}

func (s *Store) persistTokensLocked(tokens *Tokens) {
	if tokens == nil {
		s.deleteKeyLocked(KeyAccessToken)
		s.deleteKeyLocked(KeyRefreshToken)
		return
	}
	if err := s.storage.Set(KeyAccessToken, tokens.Access); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist access token")
	}
	if tokens.Refresh == "" {
		s.deleteKeyLocked(KeyRefreshToken)
		return
	}
	if err := s.storage.Set(KeyRefreshToken, tokens.Refresh); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist refresh token")
	}
}

func (s *Store) persistUserLocked(user *users.User) {
	if user == nil {
		s.deleteKeyLocked(KeyUser)
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to serialize user record")
		return
	}
	if err := s.storage.Set(KeyUser, string(raw)); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist user record")
	}
}

func (s *Store) clearStorageLocked() {
	s.deleteKeyLocked(KeyAccessToken)
	s.deleteKeyLocked(KeyRefreshToken)
	s.deleteKeyLocked(KeyUser)
}

func (s *Store) deleteKeyLocked(key string) {
	if err := s.storage.Delete(key); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to clear storage key")
	}
}
