// Package metrics defines the gateway's prometheus instruments.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the gateway's counters on a private registry so tests can
// construct independent instances without duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	// ProxiedRequests counts application requests relayed to backends, by
	// response class: "ok", "no_backend", "upstream_error".
	ProxiedRequests *prometheus.CounterVec
	// MigrationsTotal counts migration batches that moved at least one session.
	MigrationsTotal prometheus.Counter
	// SessionsMigrated counts individual sessions repointed by migration.
	SessionsMigrated prometheus.Counter
	// SessionsExpired counts sessions removed by the expiry sweep.
	SessionsExpired prometheus.Counter
}

// New creates the gateway instruments on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ProxiedRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_proxied_requests_total",
			Help: "Application requests relayed to game-world backends, by outcome.",
		}, []string{"outcome"}),
		MigrationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gateway_migrations_total",
			Help: "Migration batches that moved at least one session.",
		}),
		SessionsMigrated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gateway_sessions_migrated_total",
			Help: "Client sessions repointed to a new backend by migration.",
		}),
		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "gateway_sessions_expired_total",
			Help: "Client sessions removed by the expiry sweep.",
		}),
	}
}

// RegisterGauges binds the live server/session gauges to the given readers.
// Called once during wiring, after the registry and session store exist.
func (m *Metrics) RegisterGauges(servers func() float64, sessions func() float64) {
	factory := promauto.With(m.registry)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gateway_backends_registered",
		Help: "Currently registered game-world backends.",
	}, servers)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gateway_sessions_active",
		Help: "Currently live sticky client sessions.",
	}, sessions)
}

// Handler returns the exposition handler for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
