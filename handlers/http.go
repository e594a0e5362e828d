// Package handlers contains the gateway's HTTP surface: the control plane
// used by game-world backends (register/heartbeat/unregister), the public
// status endpoint, the operator dashboard, and the catch-all reverse proxy
// that application traffic falls through to.
package handlers

import (
	"net/http"

	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/adapters"
	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/metrics"
	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/service"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	// SessionCookieName carries the sticky client session id on proxied traffic.
	SessionCookieName = "gateway_http_session"
	// DashboardCookieName carries the operator session token.
	DashboardCookieName = "gateway_dashboard_session"

	recentMigrationsLimit = 10
)

// HTTPServer wires the gateway's stores into echo handlers.
type HTTPServer struct {
	registry  *service.Registry
	sessions  *service.SessionStore
	engine    *service.MigrationEngine
	dashboard *service.DashboardAuth
	upstream  *adapters.Upstream
	clock     clockwork.Clock
	metrics   *metrics.Metrics
	logger    log.Logger

	// migrateOnUnregister makes an explicit unregister migrate sessions
	// eagerly instead of leaving them for the sweep. Off by default to match
	// the historical behavior where only heartbeat timeouts trigger migration.
	migrateOnUnregister bool
}

// NewHTTPServer creates a new HTTPServer.
func NewHTTPServer(
	registry *service.Registry,
	sessions *service.SessionStore,
	engine *service.MigrationEngine,
	dashboard *service.DashboardAuth,
	upstream *adapters.Upstream,
	clock clockwork.Clock,
	m *metrics.Metrics,
	migrateOnUnregister bool,
	logger log.Logger,
) *HTTPServer {
	return &HTTPServer{
		registry:            registry,
		sessions:            sessions,
		engine:              engine,
		dashboard:           dashboard,
		upstream:            upstream,
		clock:               clock,
		metrics:             m,
		logger:              log.WithPrefix(logger, "component", "HTTPServer"),
		migrateOnUnregister: migrateOnUnregister,
	}
}

// RegisterRoutes binds every gateway route on e. Named routes win over the
// catch-all proxy; CORS preflights short-circuit in the middleware.
func RegisterRoutes(e *echo.Echo, h *HTTPServer) {
	e.Use(middleware.CORS())

	e.POST("/register", h.RegisterBackend)
	e.POST("/heartbeat", h.Heartbeat)
	e.POST("/unregister", h.UnregisterBackend)

	e.GET("/status", h.Status)
	e.GET("/debug/sessions", h.DebugSessions)
	e.GET("/metrics", echo.WrapHandler(h.metrics.Handler()))

	e.POST("/api/login", h.DashboardLogin)
	e.POST("/api/logout", h.DashboardLogout)
	e.GET("/api/stats", h.DashboardStats)
	e.GET("/dashboard", h.DashboardView)

	e.Any("/*", h.Proxy)
}

// defaultMaxConnections applies when a backend registers without a cap.
const defaultMaxConnections = 100

// RegisterBackend (POST /register) inserts or replaces the backend entry.
// Returns 200 with the server id, 401 on a bad auth key, 400 on missing fields.
func (h *HTTPServer) RegisterBackend(ectx echo.Context) error {
	var req RegisterRequest
	if err := ectx.Bind(&req); err != nil {
		return service.NewBadParameterError("invalid request body", err)
	}
	if !h.dashboard.CheckAuthKey(req.AuthKey) {
		return service.NewUnauthorizedError("invalid auth key")
	}
	if req.ID == "" || req.Host == "" || req.Port == 0 || req.WSPort == 0 {
		return service.NewBadParameterError("id, host, port and wsPort are required", nil)
	}

	publicHost := service.Value(req.PublicHost)
	if publicHost == "" {
		publicHost = req.Host
	}
	maxConnections := service.Value(req.MaxConnections)
	if maxConnections == 0 {
		maxConnections = defaultMaxConnections
	}

	h.registry.Register(service.RegisterParams{
		ID:             req.ID,
		Host:           req.Host,
		PublicHost:     publicHost,
		Port:           req.Port,
		WSPort:         req.WSPort,
		MaxConnections: maxConnections,
	})
	return ectx.JSON(http.StatusOK, RegisterResponse{Success: true, ServerID: req.ID})
}

// Heartbeat (POST /heartbeat) refreshes liveness and metrics for a known
// backend. Returns the gateway's current time so the backend can measure its
// own round trip. 401 on a bad auth key, 404 on an unknown id.
func (h *HTTPServer) Heartbeat(ectx echo.Context) error {
	var req HeartbeatRequest
	if err := ectx.Bind(&req); err != nil {
		return service.NewBadParameterError("invalid request body", err)
	}
	if !h.dashboard.CheckAuthKey(req.AuthKey) {
		return service.NewUnauthorizedError("invalid auth key")
	}
	if req.ID == "" || req.ActiveConnections == nil {
		return service.NewBadParameterError("id and activeConnections are required", nil)
	}

	now, err := h.registry.Heartbeat(service.HeartbeatParams{
		ID:                req.ID,
		ActiveConnections: *req.ActiveConnections,
		CPUUsage:          req.CPUUsage,
		RAMUsage:          req.RAMUsage,
		RTTMs:             req.RTT,
	})
	if err != nil {
		return err
	}
	return ectx.JSON(http.StatusOK, HeartbeatResponse{Success: true, Timestamp: now.UnixMilli()})
}

// UnregisterBackend (POST /unregister) removes the backend entry immediately.
// Sessions pinned to it are migrated eagerly only when the gateway is
// configured for it; otherwise they wait for the sweep, as with a timeout.
func (h *HTTPServer) UnregisterBackend(ectx echo.Context) error {
	var req UnregisterRequest
	if err := ectx.Bind(&req); err != nil {
		return service.NewBadParameterError("invalid request body", err)
	}
	if !h.dashboard.CheckAuthKey(req.AuthKey) {
		return service.NewUnauthorizedError("invalid auth key")
	}
	if req.ID == "" {
		return service.NewBadParameterError("id is required", nil)
	}

	if err := h.registry.Unregister(req.ID); err != nil {
		return err
	}
	if h.migrateOnUnregister {
		moved := h.engine.Migrate(req.ID)
		level.Info(h.logger).Log("msg", "migrated sessions on unregister", "id", req.ID, "moved", moved)
	}
	return ectx.JSON(http.StatusOK, UnregisterResponse{Success: true})
}

// Status (GET /status) is the public listing of backends: public addresses,
// connection counts, latency and a derived online/full/offline state.
// Internal hostnames are never included here.
func (h *HTTPServer) Status(ectx echo.Context) error {
	backends := h.registry.ListAll()
	now := h.clock.Now()
	timeout := h.registry.ServerTimeout()

	servers := make([]StatusServer, 0, len(backends))
	for _, b := range backends {
		servers = append(servers, toStatusServer(b, now, timeout))
	}
	return ectx.JSON(http.StatusOK, StatusResponse{TotalServers: len(servers), Servers: servers})
}

// DebugSessions (GET /debug/sessions) lists every sticky session with its
// age. Deliberately left without an auth gate to match the historical
// behavior; see DESIGN.md before gating it.
func (h *HTTPServer) DebugSessions(ectx echo.Context) error {
	now := h.clock.Now()
	snapshot := h.sessions.Snapshot()
	sessions := make([]DebugSession, 0, len(snapshot))
	for _, sess := range snapshot {
		sessions = append(sessions, DebugSession{
			ClientID: sess.ClientID,
			ServerID: sess.BackendID,
			AgeMs:    now.Sub(sess.LastActivity).Milliseconds(),
		})
	}
	return ectx.JSON(http.StatusOK, DebugSessionsResponse{TotalSessions: len(sessions), Sessions: sessions})
}
