package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// GatewayConfig is the process configuration, loaded from the environment.
type GatewayConfig struct {
	HTTPPort            int
	AuthKey             string
	HeartbeatInterval   time.Duration
	ServerTimeout       time.Duration
	SessionTimeout      time.Duration
	MigrateOnUnregister bool
}

const (
	defaultHeartbeatIntervalMs = 5000
	defaultServerTimeoutMs     = 15000
	defaultSessionTimeoutMs    = 1800000 // 30 minutes
)

// LoadConfig loads configuration from environment variables.
// GATEWAY_HTTP_PORT and GATEWAY_AUTH_KEY are required.
func LoadConfig() (*GatewayConfig, error) {
	httpPortStr := os.Getenv("GATEWAY_HTTP_PORT")
	if httpPortStr == "" {
		return nil, fmt.Errorf("GATEWAY_HTTP_PORT is required")
	}
	httpPort, err := strconv.Atoi(httpPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid GATEWAY_HTTP_PORT: %w", err)
	}

	authKey := os.Getenv("GATEWAY_AUTH_KEY")
	if authKey == "" {
		return nil, fmt.Errorf("GATEWAY_AUTH_KEY is required")
	}

	heartbeatMs, err := envMsOrDefault("HEARTBEAT_INTERVAL_MS", defaultHeartbeatIntervalMs)
	if err != nil {
		return nil, err
	}
	serverTimeoutMs, err := envMsOrDefault("SERVER_TIMEOUT_MS", defaultServerTimeoutMs)
	if err != nil {
		return nil, err
	}
	sessionTimeoutMs, err := envMsOrDefault("SESSION_TIMEOUT_MS", defaultSessionTimeoutMs)
	if err != nil {
		return nil, err
	}

	migrateOnUnregister := false
	if v := os.Getenv("MIGRATE_ON_UNREGISTER"); v != "" {
		migrateOnUnregister, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MIGRATE_ON_UNREGISTER: %w", err)
		}
	}

	return &GatewayConfig{
		HTTPPort:            httpPort,
		AuthKey:             authKey,
		HeartbeatInterval:   time.Duration(heartbeatMs) * time.Millisecond,
		ServerTimeout:       time.Duration(serverTimeoutMs) * time.Millisecond,
		SessionTimeout:      time.Duration(sessionTimeoutMs) * time.Millisecond,
		MigrateOnUnregister: migrateOnUnregister,
	}, nil
}

func envMsOrDefault(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer of milliseconds", name)
	}
	return ms, nil
}
