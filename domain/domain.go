// Package domain holds the gateway's core data types: registered game-world
// backends, sticky client sessions, migration records and dashboard sessions.
package domain

import "time"

// BackendStatus is the derived state reported on the public status endpoint.
type BackendStatus string

const (
	BackendStatusOnline  BackendStatus = "online"
	BackendStatusOffline BackendStatus = "offline"
	BackendStatusFull    BackendStatus = "full"
)

// Backend is one registered game-world server. Host/Port are the internal
// address the gateway proxies to; PublicHost and WSPort are what
// clients are told to connect to directly.
type Backend struct {
	ID                string
	Host              string
	Port              int
	PublicHost        string
	WSPort            int
	LastHeartbeat     time.Time
	ActiveConnections int
	MaxConnections    int
	CPUUsage          float64 // percent, 0 if never reported
	RAMUsage          float64 // MB, 0 if never reported
	Latency           int     // one-way latency estimate in ms, 0 if never reported
}

// Status derives the externally visible state of the backend. A backend is
// offline once now-LastHeartbeat exceeds timeout, full when it has no
// connection slots left, otherwise online.
func (b Backend) Status(now time.Time, timeout time.Duration) BackendStatus {
	if now.Sub(b.LastHeartbeat) >= timeout {
		return BackendStatusOffline
	}
	if b.ActiveConnections >= b.MaxConnections {
		return BackendStatusFull
	}
	return BackendStatusOnline
}

// ClientSession pins one client to one backend. BackendID references a
// Backend by ID only; between a backend's death and the next sweep the
// reference may briefly dangle.
type ClientSession struct {
	ClientID     string
	BackendID    string
	LastActivity time.Time
}

// MigrationRecord is an immutable log entry describing one migration batch.
// ToServer is a single backend ID when the batch landed on one backend,
// otherwise a human-readable count of distinct destinations.
type MigrationRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	FromServer  string    `json:"fromServer"`
	ToServer    string    `json:"toServer"`
	ClientCount int       `json:"clientCount"`
}

// DashboardSession guards the operator-facing status view. Wholly independent
// of ClientSession: absolute expiry, slid forward on each validated call.
type DashboardSession struct {
	Token     string
	ExpiresAt time.Time
}
