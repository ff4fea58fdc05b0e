// Package main initializes and starts the budget history server, setting up
// configuration, logging, the database connection, repositories, services,
// handlers, and the HTTP listener.
package main

import (
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/config"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/db"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/fingerprint"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/logger"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/repository"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/server/handler/http"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Port
	dsn := options.DatabaseDSN

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(dsn)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Watch the commit graph for concurrent-writer forks.
	db.StartForkWatcher(context.Background(), postgresDB,
		time.Hour,
		zapLogger,
	)

	// Initialize repositories for history and the branch/tag registry.
	historyRepo := repository.NewPostgresHistoryRepository(postgresDB)
	registryRepo := repository.NewPostgresRegistryRepository(postgresDB)

	// The server's own device identity, used when a request carries none.
	device := fingerprint.NewProvider(options.DataDir, zapLogger)

	// Initialize business-logic services.
	historyService := service.NewHistoryService(historyRepo, time.Now, device.Fingerprint)
	queryService := service.NewQueryService(historyRepo, zapLogger)
	registryService := service.NewRegistryService(registryRepo, historyRepo, time.Now)
	deviceService := service.NewDeviceService(historyRepo, time.Now)
	analyticsService := service.NewAnalyticsService(historyRepo, time.Now, zapLogger)

	// Create HTTP handlers.
	trackHandler := &http.TrackHandler{History: historyService}
	queryHandler := &http.QueryHandler{Queries: queryService}
	registryHandler := &http.RegistryHandler{Registry: registryService}
	deviceHandler := &http.DeviceHandler{Devices: deviceService}
	analyticsHandler := &http.AnalyticsHandler{Analytics: analyticsService}

	// Build the router with middleware and routes.
	router := http.NewRouter(trackHandler, queryHandler, registryHandler, deviceHandler, analyticsHandler, zapLogger)

	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

// orDefault returns v, or def if v is empty; equivalent to cmp.Or for
// strings (cmp.Or requires Go 1.22, toolchain here is 1.21).
func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
