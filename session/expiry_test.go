package session_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/dinekit/dinekit/session"
	"github.com/dinekit/dinekit/session/storage/storagefake"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

const (
	testTimeout     = 30 * time.Minute
	testWarningLead = 5 * time.Minute
)

// expiryFixture wires a store with a fake clock and counters for the
// warning signal.
type expiryFixture struct {
	store    *session.Store
	storage  *storagefake.FakeStorage
	clock    *clockwork.FakeClock
	warnings *atomic.Int64
}

func setupExpiryFixture(t *testing.T, timeout, warningLead time.Duration) *expiryFixture {
	t.Helper()

	st := storagefake.NewFakeStorage()
	clock := clockwork.NewFakeClock()
	warnings := &atomic.Int64{}

	store, err := session.New(st,
		session.WithClock(clock),
		session.WithExpiry(timeout, warningLead),
		session.WithWarningFunc(func(time.Duration) {
			warnings.Add(1)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	return &expiryFixture{
		store:    store,
		storage:  st,
		clock:    clock,
		warnings: warnings,
	}
}

func (f *expiryFixture) waitForState(t *testing.T, want session.ExpiryState) {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.store.ExpiryState() == want
	}, time.Second, time.Millisecond)
}

func TestExpiryConfigValidation(t *testing.T) {
	st := storagefake.NewFakeStorage()

	_, err := session.New(st, session.WithExpiry(5*time.Minute, 5*time.Minute))
	require.Error(t, err)

	_, err = session.New(st, session.WithExpiry(5*time.Minute, 10*time.Minute))
	require.Error(t, err)

	_, err = session.New(st, session.WithExpiry(-time.Minute, 0))
	require.Error(t, err)

	_, err = session.New(st, session.WithExpiry(10*time.Minute, -time.Second))
	require.Error(t, err)

	_, err = session.New(st, session.WithExpiry(10*time.Minute, time.Minute))
	require.NoError(t, err)
}

func TestExpiryLifecycle(t *testing.T) {
	f := setupExpiryFixture(t, testTimeout, testWarningLead)

	require.Equal(t, session.ExpiryIdle, f.store.ExpiryState())

	f.store.Login(testUser(), testTokens())
	require.Equal(t, session.ExpiryActive, f.store.ExpiryState())
	require.Equal(t, testTimeout, f.store.ExpiryRemaining())

	// Just before the warning offset nothing has fired.
	f.clock.Advance(testTimeout - testWarningLead - time.Millisecond)
	require.Equal(t, session.ExpiryActive, f.store.ExpiryState())
	require.EqualValues(t, 0, f.warnings.Load())

	// Cross the warning offset: exactly one warning.
	f.clock.Advance(2 * time.Millisecond)
	f.waitForState(t, session.ExpiryWarned)
	require.Eventually(t, func() bool {
		return f.warnings.Load() == 1
	}, time.Second, time.Millisecond)
	require.True(t, f.store.IsAuthenticated())

	// Run out the rest of the session: forced logout, storage cleared.
	f.clock.Advance(testWarningLead)
	f.waitForState(t, session.ExpiryIdle)
	require.Eventually(t, func() bool {
		return !f.store.IsAuthenticated()
	}, time.Second, time.Millisecond)
	require.Equal(t, 0, f.storage.Len())
	require.EqualValues(t, 1, f.warnings.Load())
}

func TestWarningFiresExactlyOnce(t *testing.T) {
	f := setupExpiryFixture(t, testTimeout, testWarningLead)

	f.store.Login(testUser(), testTokens())
	f.clock.Advance(testTimeout - testWarningLead)
	f.waitForState(t, session.ExpiryWarned)

	// Further advances short of the deadline produce no extra warnings.
	f.clock.Advance(time.Minute)
	f.clock.Advance(time.Minute)
	require.EqualValues(t, 1, f.warnings.Load())
}

func TestExplicitLogoutCancelsTimers(t *testing.T) {
	f := setupExpiryFixture(t, testTimeout, testWarningLead)

	f.store.Login(testUser(), testTokens())
	f.store.Logout()
	require.Equal(t, session.ExpiryIdle, f.store.ExpiryState())

	// Timers of the dead session must not fire.
	f.clock.Advance(2 * testTimeout)
	require.EqualValues(t, 0, f.warnings.Load())
	require.False(t, f.store.IsAuthenticated())
}

func TestLogoutFromWarnedStateCancelsLogoutTimer(t *testing.T) {
	f := setupExpiryFixture(t, testTimeout, testWarningLead)

	f.store.Login(testUser(), testTokens())
	f.clock.Advance(testTimeout - testWarningLead)
	f.waitForState(t, session.ExpiryWarned)

	f.store.Logout()
	require.Equal(t, session.ExpiryIdle, f.store.ExpiryState())

	f.clock.Advance(2 * testTimeout)
	require.EqualValues(t, 1, f.warnings.Load())
	require.False(t, f.store.IsAuthenticated())
}

func TestReLoginRearmsTimers(t *testing.T) {
	f := setupExpiryFixture(t, testTimeout, testWarningLead)

	f.store.Login(testUser(), testTokens())
	f.clock.Advance(testTimeout - testWarningLead)
	f.waitForState(t, session.ExpiryWarned)

	// A fresh login resets the lifecycle; the old logout timer is stale.
	f.store.Login(testUser(), testTokens())
	require.Equal(t, session.ExpiryActive, f.store.ExpiryState())
	require.Equal(t, testTimeout, f.store.ExpiryRemaining())

	f.clock.Advance(testWarningLead)
	require.True(t, f.store.IsAuthenticated())
	require.Equal(t, session.ExpiryActive, f.store.ExpiryState())

	// The new session still warns and expires on its own schedule.
	f.clock.Advance(testTimeout - testWarningLead - testWarningLead)
	f.waitForState(t, session.ExpiryWarned)
	f.clock.Advance(testWarningLead)
	require.Eventually(t, func() bool {
		return !f.store.IsAuthenticated()
	}, time.Second, time.Millisecond)
}

func TestRehydrationArmsTimers(t *testing.T) {
	st := storagefake.NewFakeStorage()
	st.Seed(session.KeyAccessToken, "access-abc")
	st.Seed(session.KeyUser, `{"id":"user-1","email":"jane@bistro.example"}`)

	clock := clockwork.NewFakeClock()
	store, err := session.New(st,
		session.WithClock(clock),
		session.WithExpiry(testTimeout, testWarningLead),
	)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.True(t, store.IsAuthenticated())
	require.Equal(t, session.ExpiryActive, store.ExpiryState())

	clock.Advance(testTimeout)
	require.Eventually(t, func() bool {
		return !store.IsAuthenticated()
	}, time.Second, time.Millisecond)
	require.Equal(t, 0, st.Len())
}

func TestExpiryDisabledWithoutOption(t *testing.T) {
	store, err := session.New(storagefake.NewFakeStorage())
	require.NoError(t, err)

	store.Login(testUser(), testTokens())
	require.Equal(t, session.ExpiryIdle, store.ExpiryState())
	require.Zero(t, store.ExpiryRemaining())
}
