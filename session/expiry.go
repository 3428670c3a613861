package session

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ExpiryState describes where the session is in its expiry lifecycle.
type ExpiryState int

const (
	// ExpiryIdle means no session is running and no timers are armed.
	ExpiryIdle ExpiryState = iota
	// ExpiryActive means a session is running and the warning timer is armed.
	ExpiryActive
	// ExpiryWarned means the warning has fired and only the logout timer remains.
	ExpiryWarned
)

func (s ExpiryState) String() string {
	switch s {
	case ExpiryIdle:
		return "idle"
	case ExpiryActive:
		return "active"
	case ExpiryWarned:
		return "warned"
	}
	return "unknown"
}

// expiryManager owns the two session timers. Timers are scheduled
// cancellable tasks: arming bumps a generation counter and any callback
// from an older generation is a no-op, so a stale timer can never fire
// against a newer session.
type expiryManager struct {
	lock        sync.Mutex
	clock       clockwork.Clock
	timeout     time.Duration
	warningLead time.Duration

	state       ExpiryState
	generation  uint64
	deadline    time.Time
	warnTimer   clockwork.Timer
	logoutTimer clockwork.Timer

	onWarning func(remaining time.Duration)
	onExpire  func()
}

func newExpiryManager(clock clockwork.Clock, timeout, warningLead time.Duration, onWarning func(time.Duration), onExpire func()) *expiryManager {
	return &expiryManager{
		clock:       clock,
		timeout:     timeout,
		warningLead: warningLead,
		onWarning:   onWarning,
		onExpire:    onExpire,
	}
}

// Arm starts (or restarts) both timers from now. Any previously armed
// timers are cancelled first.
func (m *expiryManager) Arm() {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.stopTimersLocked()
	m.generation++
	m.state = ExpiryActive
	m.deadline = m.clock.Now().Add(m.timeout)

	generation := m.generation
	m.warnTimer = m.clock.AfterFunc(m.timeout-m.warningLead, func() {
		m.fireWarning(generation)
	})
	m.logoutTimer = m.clock.AfterFunc(m.timeout, func() {
		m.fireExpiry(generation)
	})
}

// Disarm cancels both timers and returns to Idle.
func (m *expiryManager) Disarm() {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.stopTimersLocked()
	m.generation++
	m.state = ExpiryIdle
	m.deadline = time.Time{}
}

// State reports the current lifecycle state.
func (m *expiryManager) State() ExpiryState {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.state
}

// Remaining reports the time left until forced logout, zero when idle.
func (m *expiryManager) Remaining() time.Duration {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.state == ExpiryIdle {
		return 0
	}
	remaining := m.deadline.Sub(m.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (m *expiryManager) stopTimersLocked() {
	if m.warnTimer != nil {
		m.warnTimer.Stop()
		m.warnTimer = nil
	}
	if m.logoutTimer != nil {
		m.logoutTimer.Stop()
		m.logoutTimer = nil
	}
}

func (m *expiryManager) fireWarning(generation uint64) {
	m.lock.Lock()
	if generation != m.generation || m.state != ExpiryActive {
		m.lock.Unlock()
		return
	}
	m.state = ExpiryWarned
	onWarning := m.onWarning
	remaining := m.deadline.Sub(m.clock.Now())
	m.lock.Unlock()

	if onWarning != nil {
		onWarning(remaining)
	}
}

func (m *expiryManager) fireExpiry(generation uint64) {
	m.lock.Lock()
	if generation != m.generation {
		m.lock.Unlock()
		return
	}
	m.stopTimersLocked()
	m.generation++
	m.state = ExpiryIdle
	m.deadline = time.Time{}
	onExpire := m.onExpire
	m.lock.Unlock()

	// Invoked outside the lock: the expiry handler calls back into the
	// store, which in turn calls Disarm.
	if onExpire != nil {
		onExpire()
	}
}
