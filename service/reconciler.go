package service

import (
	"context"
	"time"

	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/metrics"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// sessionSweepPeriod is fixed and deliberately decoupled from the heartbeat
// interval that paces the server sweep.
const sessionSweepPeriod = time.Minute

// Reconciler runs the gateway's two periodic sweeps: dead-backend detection
// (every heartbeat interval: remove the stale backend, then migrate its
// sessions) and sticky-session expiry (every minute). The two tasks tick
// independently and are never fused, since their periods differ.
type Reconciler struct {
	registry       *Registry
	sessions       *SessionStore
	engine         *MigrationEngine
	clock          clockwork.Clock
	logger         log.Logger
	metrics        *metrics.Metrics
	sweepInterval  time.Duration
	sessionTimeout time.Duration
}

// NewReconciler creates a reconciler. sweepInterval is the configured
// heartbeat interval; sessionTimeout bounds session idleness.
func NewReconciler(
	registry *Registry,
	sessions *SessionStore,
	engine *MigrationEngine,
	sweepInterval time.Duration,
	sessionTimeout time.Duration,
	clock clockwork.Clock,
	m *metrics.Metrics,
	logger log.Logger,
) *Reconciler {
	return &Reconciler{
		registry:       registry,
		sessions:       sessions,
		engine:         engine,
		clock:          clock,
		logger:         log.WithPrefix(logger, "component", "reconciler"),
		metrics:        m,
		sweepInterval:  sweepInterval,
		sessionTimeout: sessionTimeout,
	}
}

// Run drives both sweep loops until ctx is canceled.
func (r *Reconciler) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return r.loop(ctx, r.sweepInterval, r.SweepServers) })
	group.Go(func() error { return r.loop(ctx, sessionSweepPeriod, r.SweepSessions) })
	return group.Wait()
}

func (r *Reconciler) loop(ctx context.Context, period time.Duration, sweep func()) error {
	ticker := r.clock.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			sweep()
		}
	}
}

// SweepServers removes every backend whose heartbeat is stale and migrates
// its sessions. Each backend is removed before its migration runs so the
// candidate pool excludes it. Stale backends are handled one at a time;
// sessions parked on another stale backend earlier in the same pass simply
// migrate again when that backend's turn comes.
func (r *Reconciler) SweepServers() {
	for _, id := range r.registry.StaleIDs() {
		level.Warn(r.logger).Log("msg", "backend missed heartbeats, removing", "id", id)
		r.registry.Remove(id)
		r.engine.Migrate(id)
	}
}

// SweepSessions expires sessions idle past the session timeout.
func (r *Reconciler) SweepSessions() {
	if n := r.sessions.ExpireStale(r.sessionTimeout); n > 0 {
		r.metrics.SessionsExpired.Add(float64(n))
	}
}
