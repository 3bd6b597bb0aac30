package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/contractgest/internal/api"
	"github.com/dgallion1/contractgest/internal/cache"
	"github.com/dgallion1/contractgest/internal/config"
	"github.com/dgallion1/contractgest/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional parse cache.
	var store *cache.Store
	var c pipeline.Cache
	if cfg.CacheDB != "" {
		store, err = cache.Open(cfg.CacheDB)
		if err != nil {
			log.Error("open cache", "path", cfg.CacheDB, "error", err)
			os.Exit(1)
		}
		c = store
	}

	svc := pipeline.NewService(cfg, c, log)
	results := pipeline.NewResultStore(cfg.ResultTTL)
	go results.RunCleanup(ctx, 5*time.Minute, log)

	srv := api.NewServer(svc, results, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if store != nil {
			store.Close()
		}
	}()

	log.Info("starting contractgest", "port", cfg.Port, "cache", cfg.CacheDB != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
