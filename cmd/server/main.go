package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/logging"
	"github.com/NikhilKartha5/ai-journal/internal/server/config"
	"github.com/NikhilKartha5/ai-journal/internal/server/db"
	"github.com/NikhilKartha5/ai-journal/internal/server/httpapi"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	logger := logging.NewSlogLogger(slog.Default())

	var repos db.RepositoryManager
	pg, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		slog.Warn("database connection failed, falling back to in-memory storage", "error", err)
		repos = db.NewInMemoryRepositoryManager()
	} else {
		repos = pg
	}
	defer repos.Close()

	ctx := context.Background()
	if err := repos.RunMigrations(ctx); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpapi.NewServer(cfg, repos, logger).Router(),
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
