// Command server runs the forum HTTP API.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forum/internal/bootstrap"
	"forum/internal/config"
	"forum/internal/middleware"
	"forum/internal/observability"
	"forum/internal/server"
)

func main() {
	seedDemo := flag.Bool("seed-demo", false, "Seed demo content into an empty development database")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "forum-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		middleware.Logger.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedDemoData: *seedDemo})
	if err != nil {
		middleware.Logger.Error("Failed to initialize runtime", "error", err)
		os.Exit(1)
	}

	srv, err := server.NewServerWithDeps(cfg, db, rdb)
	if err != nil {
		middleware.Logger.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("Server shutdown error", "error", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("Tracing shutdown error", "error", err)
		}
	}()

	if err := srv.Start(); err != nil {
		middleware.Logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
