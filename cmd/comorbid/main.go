package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridianhealth/comorbid/internal/api"
	"github.com/meridianhealth/comorbid/internal/charlson"
	"github.com/meridianhealth/comorbid/internal/config"
	"github.com/meridianhealth/comorbid/internal/events"
	"github.com/meridianhealth/comorbid/internal/mapping"
	"github.com/meridianhealth/comorbid/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mapping registry
	var source mapping.RegistrySource
	var reloader api.Reloader
	if cfg.Mappings.Watch {
		watcher, err := mapping.NewWatcher(cfg.Mappings.Path, logger)
		if err != nil {
			logger.Error("failed to load mapping registry", "error", err)
			os.Exit(1)
		}
		defer watcher.Close()
		go watcher.Run(ctx)
		source = watcher
		reloader = watcher
	} else {
		reg, err := mapping.Load(cfg.Mappings.Path)
		if err != nil {
			logger.Error("failed to load mapping registry", "error", err)
			os.Exit(1)
		}
		source = mapping.NewStatic(reg)
	}
	logger.Info("mapping registry loaded", "path", cfg.Mappings.Path, "versions", source.Current().VersionIDs())

	// Database
	db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	// Events (optional)
	var eventsClient events.Client
	if cfg.Events.URL != "" {
		ec, err := events.NewNATSClient(cfg.Events.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to event bus, running without events", "error", err)
		} else {
			eventsClient = ec
			defer ec.Close()
			logger.Info("connected to event bus")
		}
	}

	// Scorer
	scorer := charlson.NewScorer(source, logger)

	// API server
	router := api.NewRouter(scorer, source, db, eventsClient, reloader, cfg, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsRouter := api.NewMetricsRouter()
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsRouter,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
