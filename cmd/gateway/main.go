package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/adapters"
	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/handlers"
	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/metrics"
	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/service"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
)

func main() {
	// Initialize logger
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.WithPrefix(logger, "ts", log.DefaultTimestampUTC)
	logger = log.WithPrefix(logger, "caller", log.DefaultCaller)

	level.Info(logger).Log("msg", "Starting gateway")

	// Load configuration
	config, err := LoadConfig()
	if err != nil {
		level.Error(logger).Log("msg", "Failed to load configuration", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log(
		"msg", "Configuration loaded",
		"http_port", config.HTTPPort,
		"heartbeat_interval", config.HeartbeatInterval,
		"server_timeout", config.ServerTimeout,
		"session_timeout", config.SessionTimeout,
		"migrate_on_unregister", config.MigrateOnUnregister,
	)

	clock := clockwork.NewRealClock()
	gatewayMetrics := metrics.New()

	// Control-plane state
	registry := service.NewRegistry(config.ServerTimeout, clock, logger)
	sessions := service.NewSessionStore(clock, logger)
	engine := service.NewMigrationEngine(registry, sessions, clock, gatewayMetrics, logger)
	dashboard := service.NewDashboardAuth(config.AuthKey, clock, logger)
	gatewayMetrics.RegisterGauges(
		func() float64 { return float64(registry.Count()) },
		func() float64 { return float64(sessions.Count()) },
	)

	// Outbound proxy client. No per-request timeout: a hung backend hangs its
	// own proxied requests, bounded only by the connect timeout here.
	upstream := adapters.NewUpstream(&http.Client{
		Transport: http.DefaultTransport,
	})

	httpServer := handlers.NewHTTPServer(
		registry, sessions, engine, dashboard, upstream,
		clock, gatewayMetrics, config.MigrateOnUnregister, logger,
	)

	// Create HTTP server (Echo)
	var e *echo.Echo
	{
		e = echo.New()
		e.HideBanner = true
		service.RegisterErrorHandler(e, logger)
		handlers.RegisterRoutes(e, httpServer)
	}

	// Reconciliation sweeps
	reconciler := service.NewReconciler(
		registry, sessions, engine,
		config.HeartbeatInterval, config.SessionTimeout,
		clock, gatewayMetrics, logger,
	)
	sweepCtx, stopSweeps := context.WithCancel(context.Background())
	sweepsDone := make(chan struct{})
	go func() {
		defer close(sweepsDone)
		if err := reconciler.Run(sweepCtx); err != nil && err != context.Canceled {
			level.Error(logger).Log("msg", "Reconciler stopped", "err", err)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%d", config.HTTPPort)
		level.Info(logger).Log("msg", "Starting HTTP server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			level.Error(logger).Log("msg", "HTTP server error", "err", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	level.Info(logger).Log("msg", "Shutting down server...")

	stopSweeps()
	<-sweepsDone

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		level.Error(logger).Log("msg", "Error during server shutdown", "err", err)
	}

	level.Info(logger).Log("msg", "Server stopped")
}
