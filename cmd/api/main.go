package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/replayed-app/replayed/internal/adapters/lastfm"
	"github.com/replayed-app/replayed/internal/adapters/rest"
	"github.com/replayed-app/replayed/internal/adapters/sqlite"
	"github.com/replayed-app/replayed/internal/config"
	"github.com/replayed-app/replayed/internal/core/services"
	"github.com/replayed-app/replayed/internal/worker"
)

// fetchTimeout bounds the single external call per sync.
const fetchTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Configuration. Crash early if required config is missing.
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize "Driven" Adapters (The Tools)
	repo, err := sqlite.NewAdapter(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	source := lastfm.NewClient(&http.Client{Timeout: fetchTimeout}, cfg.Lastfm.BaseURL, cfg.Lastfm.APIKey)

	// 3. Initialize Core Logic (The Driver)
	ingest := services.NewIngestor(source, repo)
	stats := services.NewAnalyzer(repo)

	// 4. Initialize "Driving" Adapter (The Interface)
	pool := worker.NewPool(ingest, logger, cfg.Sync.QueueSize)
	pool.Start(cfg.Sync.Workers)
	defer pool.Stop()

	handler := rest.NewHandler(ingest, stats, repo, pool, logger)

	// 5. Start the Server
	logger.Info("replayed API is running", "addr", cfg.ListenAddr, "db", cfg.DBPath)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown error", "error", err)
		}
	}
}
