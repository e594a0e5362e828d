package service

import (
	"math"
	"sync"
	"time"

	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/domain"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jonboulle/clockwork"
)

// Registry holds every known game-world backend and its last-reported
// metrics. It is the gateway's single source of truth for liveness: a backend
// is healthy while now-LastHeartbeat < serverTimeout. All mutation happens
// through Register/Heartbeat/Unregister/Remove under one mutex; callers never
// see the internal maps. Enumeration order is registration order, which the
// migration engine relies on for deterministic fan-out.
type Registry struct {
	serverTimeout time.Duration
	clock         clockwork.Clock
	logger        log.Logger

	mu       sync.RWMutex
	backends map[string]*domain.Backend
	order    []string // registration order, ids present in backends
}

// RegisterParams carries the identity fields a backend reports on registration.
type RegisterParams struct {
	ID             string
	Host           string
	PublicHost     string
	Port           int
	WSPort         int
	MaxConnections int
}

// NewRegistry creates an empty registry. serverTimeout is the staleness bound
// used by ListHealthy and the reconciliation sweep.
func NewRegistry(serverTimeout time.Duration, clock clockwork.Clock, logger log.Logger) *Registry {
	return &Registry{
		serverTimeout: serverTimeout,
		clock:         clock,
		logger:        log.WithPrefix(logger, "component", "registry"),
		backends:      make(map[string]*domain.Backend),
	}
}

// Register inserts or replaces the entry for p.ID. Re-registration replaces
// the identity fields but keeps the previously observed ActiveConnections
// until the next heartbeat overwrites it, so a restarting backend does not
// look empty to the migration engine. Sessions are never touched here.
func (r *Registry) Register(p RegisterParams) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := &domain.Backend{
		ID:             p.ID,
		Host:           p.Host,
		Port:           p.Port,
		PublicHost:     p.PublicHost,
		WSPort:         p.WSPort,
		MaxConnections: p.MaxConnections,
		LastHeartbeat:  r.clock.Now(),
	}
	if prev, ok := r.backends[p.ID]; ok {
		b.ActiveConnections = prev.ActiveConnections
	} else {
		r.order = append(r.order, p.ID)
	}
	r.backends[p.ID] = b

	level.Info(r.logger).Log("msg", "backend registered", "id", p.ID, "host", p.Host, "port", p.Port)
}

// HeartbeatParams carries the metrics a backend reports on each heartbeat.
// Nil optional fields leave the previous value in place.
type HeartbeatParams struct {
	ID                string
	ActiveConnections int
	CPUUsage          *float64
	RAMUsage          *float64
	RTTMs             *float64
}

// Heartbeat refreshes liveness and metrics for a known backend and returns
// the gateway's current time, so the backend can compute round-trip time
// without trusting clock alignment between the machines. A supplied RTT is
// halved and rounded into a one-way latency estimate. Unknown ids yield an
// entity_not_found error.
func (r *Registry) Heartbeat(p HeartbeatParams) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.backends[p.ID]
	if !ok {
		return time.Time{}, NewEntityNotFoundError("unknown backend id", nil)
	}

	now := r.clock.Now()
	b.LastHeartbeat = now
	b.ActiveConnections = p.ActiveConnections
	if p.CPUUsage != nil {
		b.CPUUsage = *p.CPUUsage
	}
	if p.RAMUsage != nil {
		b.RAMUsage = *p.RAMUsage
	}
	if p.RTTMs != nil {
		b.Latency = int(math.Round(*p.RTTMs / 2))
	}
	return now, nil
}

// Unregister removes the entry for id. Unknown ids yield an entity_not_found
// error. Explicit unregistration does not migrate sessions by itself; the
// caller decides whether to migrate eagerly (see config MIGRATE_ON_UNREGISTER).
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.backends[id]; !ok {
		return NewEntityNotFoundError("unknown backend id", nil)
	}
	r.removeLocked(id)
	level.Info(r.logger).Log("msg", "backend unregistered", "id", id)
	return nil
}

// Remove deletes id without not-found semantics. Used by the reconciliation
// sweep, which already knows the id exists.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(id)
}

func (r *Registry) removeLocked(id string) {
	if _, ok := r.backends[id]; !ok {
		return
	}
	delete(r.backends, id)
	for i := range r.order {
		if r.order[i] == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns a copy of the backend for id.
func (r *Registry) Get(id string) (domain.Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[id]
	if !ok {
		return domain.Backend{}, false
	}
	return *b, true
}

// ListAll returns copies of every backend in registration order.
func (r *Registry) ListAll() []domain.Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Backend, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.backends[id])
	}
	return out
}

// ListHealthy returns copies of every backend whose last heartbeat is within
// serverTimeout, in registration order.
func (r *Registry) ListHealthy() []domain.Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.clock.Now()
	out := make([]domain.Backend, 0, len(r.order))
	for _, id := range r.order {
		b := r.backends[id]
		if now.Sub(b.LastHeartbeat) < r.serverTimeout {
			out = append(out, *b)
		}
	}
	return out
}

// StaleIDs returns the ids of every backend whose last heartbeat is older
// than serverTimeout, in registration order. Read-only; the sweep removes
// them one by one so migration sees each death in isolation.
func (r *Registry) StaleIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.clock.Now()
	var stale []string
	for _, id := range r.order {
		if now.Sub(r.backends[id].LastHeartbeat) > r.serverTimeout {
			stale = append(stale, id)
		}
	}
	return stale
}

// Count returns the number of registered backends.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.backends)
}

// ServerTimeout returns the configured staleness bound.
func (r *Registry) ServerTimeout() time.Duration {
	return r.serverTimeout
}
