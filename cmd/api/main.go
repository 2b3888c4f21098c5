package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/handvault/backend/internal/analysis"
	"github.com/handvault/backend/internal/api"
	"github.com/handvault/backend/internal/repository"
	"github.com/handvault/backend/internal/repository/jsonfile"
	"github.com/handvault/backend/internal/service"
	"github.com/handvault/backend/pkg/config"
	"github.com/handvault/backend/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.LogJSON)
	log.WithField("app", cfg.AppName).WithField("port", cfg.Port).Info("Starting application")

	// Pick the persistence backend. Route and service code is
	// backend-agnostic; the store handle is injected at construction.
	var store repository.Store
	switch cfg.StoreBackend {
	case "postgres", "postgresql":
		db, err := repository.NewDatabase(cfg.DatabaseURL, cfg.Debug, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize database")
		}
		store = repository.NewGormStore(db)
	case "jsonfile":
		fileStore, err := jsonfile.New(cfg.DataDir)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize JSON-file store")
		}
		log.Warn("JSON-file store selected: concurrent writers from other processes can lose updates")
		store = fileStore
	default:
		log.WithField("backend", cfg.StoreBackend).Fatal("Unsupported STORE_BACKEND (use postgres or jsonfile)")
	}

	invoker, err := analysis.NewScriptInvoker(cfg.AnalyzerCommand, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure analyzer")
	}

	eventService := service.NewEventService(store, log)
	handService := service.NewHandService(
		store,
		invoker,
		log,
		cfg.UploadsDir,
		time.Duration(cfg.AnalyzerTimeoutSeconds)*time.Second,
	)

	router := api.NewRouter(api.RouterConfig{
		Events:      eventService,
		Hands:       handService,
		Log:         log,
		UploadsDir:  cfg.UploadsDir,
		MaxUploadMB: cfg.MaxUploadMB,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
	log.Info("Server stopped")
}
