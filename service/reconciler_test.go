package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionTimeout = 30 * time.Minute

type reconcilerFixture struct {
	*migrationFixture
	reconciler *Reconciler
}

func newReconcilerFixture() *reconcilerFixture {
	f := newMigrationFixture()
	return &reconcilerFixture{
		migrationFixture: f,
		reconciler: NewReconciler(
			f.registry, f.sessions, f.engine,
			5*time.Second, testSessionTimeout,
			f.clock, f.metrics, log.NewNopLogger(),
		),
	}
}

// The canonical failover sequence: A registers and fills up, a client pins to
// it, B registers, A stops heartbeating. The next sweep removes A and moves
// the client to B.
func TestReconciler_SweepServersMigratesDeadBackendSessions(t *testing.T) {
	f := newReconcilerFixture()
	f.addBackend("A", 2, 2)
	f.sessions.Bind("c1", "A")
	f.addBackend("B", 0, 2)

	// Past the server timeout both look stale; B proves itself alive again.
	f.clock.Advance(testServerTimeout + time.Second)
	_, err := f.registry.Heartbeat(HeartbeatParams{ID: "B", ActiveConnections: 0})
	require.NoError(t, err)

	f.reconciler.SweepServers()

	_, ok := f.registry.Get("A")
	assert.False(t, ok)
	backendID, ok := f.sessions.Resolve("c1")
	require.True(t, ok)
	assert.Equal(t, "B", backendID)

	assert.Equal(t, 1, f.engine.TotalMigrations())
	records := f.engine.RecentRecords(0)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].FromServer)
	assert.Equal(t, "B", records[0].ToServer)
	assert.Equal(t, 1, records[0].ClientCount)
}

func TestReconciler_SweepServersNoStaleBackends(t *testing.T) {
	f := newReconcilerFixture()
	f.addBackend("A", 0, 2)

	f.reconciler.SweepServers()

	_, ok := f.registry.Get("A")
	assert.True(t, ok)
	assert.Equal(t, 0, f.engine.TotalMigrations())
}

func TestReconciler_SweepServersDropsSessionsWhenNoTarget(t *testing.T) {
	f := newReconcilerFixture()
	f.addBackend("A", 0, 2)
	f.sessions.Bind("c1", "A")
	f.sessions.Bind("c2", "A")

	f.clock.Advance(testServerTimeout + time.Second)
	f.reconciler.SweepServers()

	assert.Equal(t, 0, f.registry.Count())
	assert.Equal(t, 0, f.sessions.Count())
	assert.Equal(t, 0, f.engine.TotalMigrations())
}

func TestReconciler_SweepSessionsExpiresStale(t *testing.T) {
	f := newReconcilerFixture()
	f.sessions.Bind("old", "A")
	f.clock.Advance(testSessionTimeout + time.Second)
	f.sessions.Bind("fresh", "A")

	f.reconciler.SweepSessions()

	_, ok := f.sessions.Resolve("old")
	assert.False(t, ok)
	_, ok = f.sessions.Resolve("fresh")
	assert.True(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SessionsExpired))
}

func TestReconciler_RunSweepsOnTicks(t *testing.T) {
	f := newReconcilerFixture()
	f.addBackend("A", 0, 2)
	f.sessions.Bind("c1", "A")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- f.reconciler.Run(ctx) }()

	// Both sweep tickers must be armed before time moves.
	f.clock.BlockUntil(2)
	f.clock.Advance(testServerTimeout + time.Second)

	assert.Eventually(t, func() bool {
		return f.registry.Count() == 0 && f.sessions.Count() == 0
	}, 2*time.Second, 10*time.Millisecond, "server sweep should remove the stale backend and drop its sessions")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
