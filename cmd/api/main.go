package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sport-backend/internal/bootstrap"
	"sport-backend/internal/shared/config"
	"sport-backend/internal/shared/server"
	"sport-backend/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("config.invalid", map[string]any{"error": err})
		os.Exit(1)
	}
	telemetry.Configure(cfg.LogLevel)
	defer telemetry.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": err})
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	telemetry.Info("server.start", map[string]any{
		"addr":           srv.Addr,
		"env":            cfg.Env,
		"provider":       cfg.LLM.Provider,
		"model":          app.Model,
		"schema_version": app.Schema.Version,
		"has_credential": cfg.LLM.HasCredential(),
	})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		telemetry.Error("server.error", map[string]any{"error": err})
		os.Exit(1)
	}
	telemetry.Info("server.stopped", nil)
}
