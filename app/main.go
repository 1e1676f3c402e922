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

	"github.com/lysyi3m/sportwire/app/api"
	"github.com/lysyi3m/sportwire/app/cfg"
	"github.com/lysyi3m/sportwire/app/feed"
	"github.com/lysyi3m/sportwire/app/pipeline"
	"github.com/lysyi3m/sportwire/app/sources"
	"github.com/lysyi3m/sportwire/app/store"
	"github.com/lysyi3m/sportwire/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Sportwire server", "version", appCfg.Version)

	db, err := store.Open(appCfg.DataDir)
	if err != nil {
		slog.Error("Failed to open article store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := store.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run store migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Article store ready", "schema_version", version, "dirty", dirty)

	articleRepo := store.NewArticleRepository(db)
	metaRepo := store.NewMetadataRepository(db)

	sourceLoader := sources.NewLoader(appCfg.SourcesFile)
	srcs, err := sourceLoader.Load()
	if err != nil {
		slog.Error("Failed to load source registry", "error", err)
		os.Exit(1)
	}
	slog.Info("Source registry loaded", "sources", len(srcs))

	httpClient := &http.Client{}
	fetchTimeout := time.Duration(appCfg.FetchTimeout) * time.Second

	var extractor *feed.Extractor
	if appCfg.ExtractContent {
		extractor = feed.NewExtractor(httpClient, appCfg.UserAgent, fetchTimeout)
	}

	fetcher := feed.NewFetcher(httpClient, feed.NewParser(), extractor,
		appCfg.UserAgent, appCfg.FetchConcurrency, appCfg.PerHostConcurrency, fetchTimeout)

	orchestrator := pipeline.NewOrchestrator(
		fetcher,
		pipeline.NewScorer(),
		pipeline.NewFreshness(time.Duration(appCfg.FreshnessHorizon)*time.Hour),
		pipeline.NewDeduplicator(appCfg.SimilarityThreshold, appCfg.URLThreshold),
		pipeline.NewCategorizer(),
		pipeline.NewRanker(),
		articleRepo,
		metaRepo,
		db,
		srcs,
	)

	scheduler := tasks.NewScheduler(orchestrator)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(articleRepo, metaRepo, orchestrator, scheduler, len(srcs))
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
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

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
