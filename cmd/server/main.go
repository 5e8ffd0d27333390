// Package main is the API server entry point. It reads configuration,
// builds the logger, and hands off to internal/server — all actual logic
// lives in the imported packages.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/petlink/petlink/internal/config"
	"github.com/petlink/petlink/internal/server"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("ENV") != "production" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to build server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
