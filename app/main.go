package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/api"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/audit"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/cache"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/cfg"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/database"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/feed"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/metrics"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/page"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/tasks"
)

func main() {
	os.Exit(run())
}

func run() int {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if appCfg == nil {
		// Help was shown
		return 0
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting stock audit", "version", appCfg.Version, "cache_backend", appCfg.CacheBackend)

	auditConfig, err := feed.LoadConfig(appCfg.ConfigFile)
	if err != nil {
		slog.Error("Failed to load audit configuration", "file", appCfg.ConfigFile, "error", err)
		return 1
	}
	slog.Info("Audit configuration loaded",
		"url", auditConfig.URL,
		"triggers", len(auditConfig.Watchlist.Triggers),
		"exclusions", len(auditConfig.Watchlist.Exclusions),
		"workers", auditConfig.Settings.Workers)

	ctx := context.Background()

	store, err := newCacheStore(ctx, appCfg)
	if err != nil {
		slog.Error("Failed to initialize feed cache", "backend", appCfg.CacheBackend, "error", err)
		return 1
	}
	defer store.Close()

	metrics.Init(appCfg.Version, appCfg.CacheBackend)

	// Timeouts are applied per request through the context
	httpClient := &http.Client{}

	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent, auditConfig.Settings.GetTimeout(), store, auditConfig.Settings.GetCacheTTL())
	inspector := page.NewInspector(httpClient, appCfg.UserAgent, auditConfig.Settings.GetPageTimeout(), auditConfig.Settings.RequestRPS)
	dispatcher := tasks.NewDispatcher(inspector, auditConfig.Settings.Workers)
	auditor := audit.NewAuditor(auditConfig, fetcher, dispatcher)

	if appCfg.ClearCache {
		if err := auditor.ClearCache(ctx); err != nil {
			slog.Warn("Failed to clear feed cache", "error", err)
		}
	}

	if appCfg.Once {
		return runOnce(ctx, auditor)
	}

	return serve(appCfg, auditor)
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func newCacheStore(ctx context.Context, appCfg *cfg.Cfg) (cache.Store, error) {
	switch appCfg.CacheBackend {
	case "sqlite":
		db, err := database.NewConnection(appCfg.CachePath)
		if err != nil {
			return nil, err
		}

		version, err := database.RunMigrations(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		slog.Debug("Feed cache migrations applied", "path", appCfg.CachePath, "version", version)

		return database.NewFeedCacheRepository(db), nil
	case "redis":
		return cache.NewRedisStore(ctx, appCfg.RedisAddr)
	default:
		return cache.NewMemoryStore(), nil
	}
}

func runOnce(ctx context.Context, auditor *audit.Auditor) int {
	report, err := auditor.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit failed: %v\n", err)
		return 1
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		slog.Error("Failed to write report", "error", err)
		return 1
	}

	return 0
}

func serve(appCfg *cfg.Cfg, auditor *audit.Auditor) int {
	handler := api.NewHandler(auditor, appCfg.Version, appCfg.CacheBackend)
	server := api.NewServer(handler)

	// Audits run inside the request, so the write timeout covers a full audit
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
		exitCode = 1
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return 1
	}

	slog.Info("Shutdown complete")
	return exitCode
}
