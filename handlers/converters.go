package handlers

import (
	"time"

	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/domain"
)

// RegisterRequest is the body of POST /register. The backend assigns its own
// id; the gateway never generates one.
type RegisterRequest struct {
	ID             string  `json:"id"`
	Host           string  `json:"host"`
	PublicHost     *string `json:"publicHost,omitempty"`
	Port           int     `json:"port"`
	WSPort         int     `json:"wsPort"`
	MaxConnections *int    `json:"maxConnections,omitempty"`
	AuthKey        string  `json:"authKey"`
}

// RegisterResponse is the body of a successful POST /register.
type RegisterResponse struct {
	Success  bool   `json:"success"`
	ServerID string `json:"serverId"`
}

// HeartbeatRequest is the body of POST /heartbeat. ActiveConnections is a
// pointer so that an absent field is distinguishable from zero load.
type HeartbeatRequest struct {
	ID                string   `json:"id"`
	ActiveConnections *int     `json:"activeConnections"`
	CPUUsage          *float64 `json:"cpuUsage,omitempty"`
	RAMUsage          *float64 `json:"ramUsage,omitempty"`
	RTT               *float64 `json:"rtt,omitempty"`
	AuthKey           string   `json:"authKey"`
}

// HeartbeatResponse returns the gateway's current time in Unix milliseconds
// so the backend can compute round-trip time independent of clock skew.
type HeartbeatResponse struct {
	Success   bool  `json:"success"`
	Timestamp int64 `json:"timestamp"`
}

// UnregisterRequest is the body of POST /unregister.
type UnregisterRequest struct {
	ID      string `json:"id"`
	AuthKey string `json:"authKey"`
}

// UnregisterResponse is the body of a successful POST /unregister.
type UnregisterResponse struct {
	Success bool `json:"success"`
}

// StatusServer is one backend in the public GET /status listing. Only the
// public address is exposed.
type StatusServer struct {
	ID                string `json:"id"`
	PublicHost        string `json:"publicHost"`
	Port              int    `json:"port"`
	WSPort            int    `json:"wsPort"`
	ActiveConnections int    `json:"activeConnections"`
	MaxConnections    int    `json:"maxConnections"`
	Latency           int    `json:"latency"`
	Status            string `json:"status"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	TotalServers int            `json:"totalServers"`
	Servers      []StatusServer `json:"servers"`
}

// DebugSession is one entry in GET /debug/sessions.
type DebugSession struct {
	ClientID string `json:"clientId"`
	ServerID string `json:"serverId"`
	AgeMs    int64  `json:"ageMs"`
}

// DebugSessionsResponse is the body of GET /debug/sessions.
type DebugSessionsResponse struct {
	TotalSessions int            `json:"totalSessions"`
	Sessions      []DebugSession `json:"sessions"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	AuthKey string `json:"authKey"`
}

// LoginResponse is the body of a successful POST /api/login. The token is
// also set as an HttpOnly cookie.
type LoginResponse struct {
	Success      bool   `json:"success"`
	SessionToken string `json:"sessionToken"`
}

// LogoutResponse is the body of POST /api/logout.
type LogoutResponse struct {
	Success bool `json:"success"`
}

// DashboardServer is one backend in the operator stats view. Unlike the
// public listing it includes the internal address.
type DashboardServer struct {
	ID                string `json:"id"`
	Host              string `json:"host"`
	PublicHost        string `json:"publicHost"`
	Port              int    `json:"port"`
	WSPort            int    `json:"wsPort"`
	ActiveConnections int    `json:"activeConnections"`
	MaxConnections    int    `json:"maxConnections"`
	Latency           int    `json:"latency"`
	Status            string `json:"status"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Timestamp           int64                    `json:"timestamp"`
	TotalServers        int                      `json:"totalServers"`
	HealthyServers      int                      `json:"healthyServers"`
	TotalActiveSessions int                      `json:"totalActiveSessions"`
	TotalMigrations     int                      `json:"totalMigrations"`
	RecentMigrations    []domain.MigrationRecord `json:"recentMigrations"`
	Servers             []DashboardServer        `json:"servers"`
}

func toStatusServer(b domain.Backend, now time.Time, timeout time.Duration) StatusServer {
	return StatusServer{
		ID:                b.ID,
		PublicHost:        b.PublicHost,
		Port:              b.Port,
		WSPort:            b.WSPort,
		ActiveConnections: b.ActiveConnections,
		MaxConnections:    b.MaxConnections,
		Latency:           b.Latency,
		Status:            string(b.Status(now, timeout)),
	}
}

func toDashboardServer(b domain.Backend, now time.Time, timeout time.Duration) DashboardServer {
	return DashboardServer{
		ID:                b.ID,
		Host:              b.Host,
		PublicHost:        b.PublicHost,
		Port:              b.Port,
		WSPort:            b.WSPort,
		ActiveConnections: b.ActiveConnections,
		MaxConnections:    b.MaxConnections,
		Latency:           b.Latency,
		Status:            string(b.Status(now, timeout)),
	}
}
