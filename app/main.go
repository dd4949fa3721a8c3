package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/lectio/app/api"
	"github.com/lysyi3m/lectio/app/bible"
	"github.com/lysyi3m/lectio/app/cache"
	"github.com/lysyi3m/lectio/app/cfg"
	"github.com/lysyi3m/lectio/app/database"
	"github.com/lysyi3m/lectio/app/readings"
	"github.com/lysyi3m/lectio/app/reset"
	"github.com/lysyi3m/lectio/app/tasks"
	"github.com/lysyi3m/lectio/app/usccb"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// help was shown
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting Lectio server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	readingRepo := database.NewReadingRepository(db)
	messageRepo := database.NewMessageRepository(db)

	store := cache.NewMemory()
	httpClient := &http.Client{}
	sources := appCfg.Sources

	primary := usccb.NewSource(httpClient, usccb.NewParser(), store, usccb.Options{
		BaseURL:   sources.USCCB.URL,
		UserAgent: appCfg.UserAgent,
		Timeout:   sources.USCCB.GetTimeout(),
		TTL:       sources.Cache.GetReadingsTTL(),
	})

	if appCfg.BibleAPIKey == "" {
		slog.Warn("API_BIBLE_KEY not set, enrichment requests will be rejected upstream")
	}

	enrichment := bible.NewClient(httpClient, store, bible.Options{
		BaseURL:   sources.Bible.URL,
		APIKey:    appCfg.BibleAPIKey,
		UserAgent: appCfg.UserAgent,
		Timeout:   sources.Bible.GetTimeout(),
		TTL:       sources.Cache.GetEnrichmentTTL(),
	})

	readingsService := readings.NewService(primary, enrichment, store, readings.Options{
		BibleID:           sources.Bible.DefaultBibleID,
		FallbackPassage:   sources.Bible.FallbackPassage,
		FallbackReference: sources.Bible.FallbackReference,
		TTL:               sources.Cache.GetReadingsTTL(),
	})

	coordinator := reset.NewCoordinator(readingsService, readingRepo, messageRepo)

	slog.Info("Starting background scheduler",
		"workers", appCfg.WorkerCount,
		"interval", time.Duration(appCfg.SchedulerInterval)*time.Second,
		"reset_interval", time.Duration(appCfg.ResetInterval)*time.Second)
	scheduler := tasks.NewScheduler(coordinator, readingsService)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(readingsService, coordinator, readingRepo)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Lectio server shutdown complete")
}
