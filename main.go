// entry point of the application
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"tubegrab/internal/config"
	"tubegrab/internal/depmanager"
	"tubegrab/internal/download"
	"tubegrab/internal/extractor"
	"tubegrab/internal/format"
	httprouter "tubegrab/internal/infrastructure/delivery/http"
	"tubegrab/internal/observability"
	httpserver "tubegrab/pkg/http/server"
	"tubegrab/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		slog.Error("config new", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		AddSource: true,
		Level:     cfg.App.LogLevel,
	})

	metrics := observability.New()

	depMgr := depmanager.New(log, cfg)

	log.InfoContext(ctx, "checking if yt-dlp and ffmpeg are available. it may take some time...")

	if err := depMgr.Start(ctx); err != nil {
		log.ErrorContext(ctx, "dependency manager start", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	ext := extractor.NewYTdlp(log, cfg, depMgr)
	resolver := format.NewResolver(log, ext, metrics)
	orchestrator := download.New(log, cfg, ext, metrics)

	router := httprouter.New(log, cfg, resolver, orchestrator, metrics)

	httpSrv := httpserver.New(router, httpserver.Options{
		Addr:            cfg.HTTP.Port,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	})

	log.InfoContext(ctx, "tubegrab started", slog.String("port", cfg.HTTP.Port))

	// Waiting for shutdown signal
	select {
	case <-ctx.Done():
	case err := <-httpSrv.Notify():
		log.ErrorContext(ctx, "http server", slog.Any("error", err))
	}

	err = httpSrv.Shutdown()
	if err != nil {
		log.Error(err.Error())
	}

	log.InfoContext(ctx, "tubegrab shut down gracefully")
}
