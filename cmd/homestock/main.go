package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/homestock/internal/database"
	"github.com/dukerupert/homestock/internal/logging"
	"github.com/dukerupert/homestock/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv, err := server.New(db, cfg.Backup, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}

	if cfg.Seed {
		if _, err := srv.Inventory().SeedDefaults(); err != nil {
			logger.Error("failed to seed inventory", "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv.BackupManager().Start(ctx)
	go srv.Limiter().PruneEvery(ctx, 10*time.Minute)

	httpServer := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     srv.Router(),
		ReadTimeout: 5 * time.Second,
		// Backups encrypt the whole database inside the request.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("homestock running", "addr", "http://localhost:"+cfg.Port, "db", cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	srv.BackupManager().Stop()
}
