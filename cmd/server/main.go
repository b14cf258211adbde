// Package main is the entry point for the service book API server. It
// loads configuration, sets up logging and optional object storage, and
// hands everything to internal/server.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/garasiku/servicebook/internal/config"
	"github.com/garasiku/servicebook/internal/server"
	"github.com/garasiku/servicebook/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// Object storage is optional. Without it the server runs fine; only the
	// photo upload endpoints fail.
	var photos storage.ObjectStorage
	if cfg.Minio.Enabled() {
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			logger.Error("invalid object storage configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = client.EnsureBucket(ctx)
		cancel()
		if err != nil {
			logger.Warn("object storage unreachable, photo uploads will fail",
				slog.String("error", err.Error()),
			)
		}
		photos = client
	} else {
		logger.Warn("MINIO_ENDPOINT not set, photo uploads are disabled")
	}

	srv, err := server.New(cfg, logger, photos)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
