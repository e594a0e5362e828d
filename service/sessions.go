package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/domain"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jonboulle/clockwork"
)

// SessionStore maps a client id to the backend it is pinned to, plus the last
// time the client was seen. Entries are created by the reverse proxy on first
// contact, refreshed on every proxied request, rewritten by the migration
// engine and deleted by the expiry sweep. Enumeration order is creation
// order, which migration relies on for deterministic fan-out.
type SessionStore struct {
	clock  clockwork.Clock
	logger log.Logger

	mu       sync.RWMutex
	sessions map[string]*domain.ClientSession
	order    []string // creation order, ids present in sessions
}

// NewSessionStore creates an empty sticky session store.
func NewSessionStore(clock clockwork.Clock, logger log.Logger) *SessionStore {
	return &SessionStore{
		clock:    clock,
		logger:   log.WithPrefix(logger, "component", "sessions"),
		sessions: make(map[string]*domain.ClientSession),
	}
}

// Resolve returns the backend id the client is pinned to and refreshes its
// last-activity time. ok is false for unknown clients.
func (s *SessionStore) Resolve(clientID string) (backendID string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, found := s.sessions[clientID]
	if !found {
		return "", false
	}
	sess.LastActivity = s.clock.Now()
	return sess.BackendID, true
}

// Bind creates or overwrites the pin for clientID and resets last-activity.
func (s *SessionStore) Bind(clientID, backendID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindLocked(clientID, backendID)
}

func (s *SessionStore) bindLocked(clientID, backendID string) {
	sess, found := s.sessions[clientID]
	if !found {
		sess = &domain.ClientSession{ClientID: clientID}
		s.sessions[clientID] = sess
		s.order = append(s.order, clientID)
	}
	sess.BackendID = backendID
	sess.LastActivity = s.clock.Now()
}

// Touch refreshes last-activity without changing the pin. No-op for unknown
// clients.
func (s *SessionStore) Touch(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, found := s.sessions[clientID]; found {
		sess.LastActivity = s.clock.Now()
	}
}

// Delete removes the session for clientID if present.
func (s *SessionStore) Delete(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(clientID)
}

func (s *SessionStore) deleteLocked(clientID string) {
	if _, found := s.sessions[clientID]; !found {
		return
	}
	delete(s.sessions, clientID)
	for i := range s.order {
		if s.order[i] == clientID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// ClientsPinnedTo returns the client ids currently pinned to backendID, in
// creation order.
func (s *SessionStore) ClientsPinnedTo(backendID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, id := range s.order {
		if s.sessions[id].BackendID == backendID {
			out = append(out, id)
		}
	}
	return out
}

// Snapshot returns copies of every session in creation order. Used by the
// debug listing and the dashboard stats.
func (s *SessionStore) Snapshot() []domain.ClientSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ClientSession, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.sessions[id])
	}
	return out
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ExpireStale deletes every session whose last activity is older than
// timeout and returns the number removed.
func (s *SessionStore) ExpireStale(timeout time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	var stale []string
	for _, id := range s.order {
		if now.Sub(s.sessions[id].LastActivity) > timeout {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		s.deleteLocked(id)
	}
	if len(stale) > 0 {
		level.Info(s.logger).Log("msg", "expired stale sessions", "count", len(stale))
	}
	return len(stale)
}

// PickRandomBackend selects a backend uniformly at random. This is the
// placement strategy for brand-new sessions only; migration deliberately uses
// round-robin instead, so the two must stay separate.
func PickRandomBackend(backends []domain.Backend) (domain.Backend, bool) {
	if len(backends) == 0 {
		return domain.Backend{}, false
	}
	return backends[rand.Intn(len(backends))], true //nolint:gosec // placement does not need to be cryptographically secure
}
