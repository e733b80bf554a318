package checkout

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/shared/events"
)

// Sessions are dropped after this long without activity.
const sessionIdleTTL = 30 * time.Minute

// Manager hands out one checkout session per Telegram user. A session
// lives from the first checkout touch until the user abandons it, the
// flow is reset, or the idle TTL expires.
type Manager struct {
	payments PaymentService
	bus      *events.Bus
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[int64]*entry
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// NewManager creates a session manager.
func NewManager(payments PaymentService, bus *events.Bus, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		payments: payments,
		bus:      bus,
		logger:   logger,
		sessions: make(map[int64]*entry),
	}
}

// Session returns the user's checkout session, creating one on first use.
func (m *Manager) Session(userID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked(time.Now())

	e, ok := m.sessions[userID]
	if !ok {
		e = &entry{session: NewSession(m.payments, m.bus, m.logger)}
		m.sessions[userID] = e
		m.logger.Debug("checkout session created", zap.Int64("user_id", userID))
	}
	e.lastSeen = time.Now()
	return e.session
}

// Drop closes and removes the user's session, if any.
func (m *Manager) Drop(userID int64) {
	m.mu.Lock()
	e, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()
	if ok {
		e.session.Close()
	}
}

// Close tears down every live session.
func (m *Manager) Close() {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.sessions = make(map[int64]*entry)
	m.mu.Unlock()

	for _, e := range entries {
		e.session.Close()
	}
}

// sweepLocked evicts idle sessions. Caller holds m.mu.
func (m *Manager) sweepLocked(now time.Time) {
	for userID, e := range m.sessions {
		if now.Sub(e.lastSeen) > sessionIdleTTL {
			delete(m.sessions, userID)
			e.session.Close()
			m.logger.Debug("checkout session expired", zap.Int64("user_id", userID))
		}
	}
}
