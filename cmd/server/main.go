package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tendant/edu-content/pkg/educontent/api"
	"github.com/tendant/edu-content/pkg/educontent/config"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	svc, err := cfg.BuildService(ctx)
	if err != nil {
		slog.Error("failed to build service", "err", err)
		os.Exit(1)
	}

	server := api.NewServer(svc, api.Options{
		Environment:     cfg.Environment,
		UploadDir:       cfg.Upload.BaseDir,
		UploadURLPrefix: cfg.Upload.URLPrefix,
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: server.Routes(),
	}

	go func() {
		database := "memory"
		if cfg.UsesPostgres() {
			database = "postgres"
		}
		slog.Info("edu-content server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"database", database,
			"upload_dir", cfg.Upload.BaseDir)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("server exiting")
}
