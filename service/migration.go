package service

import (
	"fmt"
	"sync"

	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/domain"
	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/metrics"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jonboulle/clockwork"
)

// migrationLogCap bounds the retained record ring; older entries are dropped.
const migrationLogCap = 100

// MigrationEngine reassigns sticky sessions away from a backend that has been
// declared dead. Placement is plain round-robin over every registered backend
// with a free connection slot; it is intentionally not load- or
// latency-weighted. Each batch that moves at least one session is appended to
// a bounded record ring for the dashboard.
type MigrationEngine struct {
	registry *Registry
	sessions *SessionStore
	clock    clockwork.Clock
	logger   log.Logger
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	records []domain.MigrationRecord
	total   int
}

// NewMigrationEngine creates a migration engine over the given registry and
// session store.
func NewMigrationEngine(registry *Registry, sessions *SessionStore, clock clockwork.Clock, m *metrics.Metrics, logger log.Logger) *MigrationEngine {
	return &MigrationEngine{
		registry: registry,
		sessions: sessions,
		clock:    clock,
		logger:   log.WithPrefix(logger, "component", "migration"),
		metrics:  m,
	}
}

// Migrate repoints every session pinned to deadBackendID onto the remaining
// backends and returns the number of sessions moved.
//
// The caller must have removed deadBackendID from the registry already, so
// the candidate pool excludes it implicitly. The pool is every registered
// backend with ActiveConnections < MaxConnections; health is not re-checked
// here because a backend that stopped heartbeating will be caught by its own
// sweep pass. With an empty pool the collected sessions are deleted outright
// (their clients must reconnect and be re-pinned) and no record is appended.
// Otherwise session i goes to pool[i % len(pool)] in the sessions' original
// creation order, its last-activity is reset so the expiry sweep does not
// immediately collect it, and one record summarizing the batch is appended.
func (e *MigrationEngine) Migrate(deadBackendID string) int {
	clientIDs := e.sessions.ClientsPinnedTo(deadBackendID)
	if len(clientIDs) == 0 {
		return 0
	}

	var pool []domain.Backend
	for _, b := range e.registry.ListAll() {
		if b.ActiveConnections < b.MaxConnections {
			pool = append(pool, b)
		}
	}

	if len(pool) == 0 {
		for _, clientID := range clientIDs {
			e.sessions.Delete(clientID)
		}
		level.Warn(e.logger).Log(
			"msg", "no backend can absorb sessions, dropping them",
			"from", deadBackendID,
			"count", len(clientIDs),
		)
		return 0
	}

	destinations := make(map[string]struct{})
	var lastDestination string
	for i, clientID := range clientIDs {
		target := pool[i%len(pool)]
		e.sessions.Bind(clientID, target.ID)
		destinations[target.ID] = struct{}{}
		lastDestination = target.ID
	}

	toServer := lastDestination
	if len(clientIDs) > 1 {
		toServer = fmt.Sprintf("%d servers", len(destinations))
	}
	e.appendRecord(domain.MigrationRecord{
		Timestamp:   e.clock.Now(),
		FromServer:  deadBackendID,
		ToServer:    toServer,
		ClientCount: len(clientIDs),
	})

	e.metrics.MigrationsTotal.Inc()
	e.metrics.SessionsMigrated.Add(float64(len(clientIDs)))
	level.Info(e.logger).Log(
		"msg", "migrated sessions",
		"from", deadBackendID,
		"to", toServer,
		"count", len(clientIDs),
	)
	return len(clientIDs)
}

func (e *MigrationEngine) appendRecord(rec domain.MigrationRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = append(e.records, rec)
	if len(e.records) > migrationLogCap {
		e.records = e.records[len(e.records)-migrationLogCap:]
	}
	e.total++
}

// TotalMigrations returns the number of batches ever recorded, independent of
// the ring cap.
func (e *MigrationEngine) TotalMigrations() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.total
}

// RecentRecords returns up to limit of the most recent records, newest last.
func (e *MigrationEngine) RecentRecords(limit int) []domain.MigrationRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if limit <= 0 || limit > len(e.records) {
		limit = len(e.records)
	}
	out := make([]domain.MigrationRecord, limit)
	copy(out, e.records[len(e.records)-limit:])
	return out
}
