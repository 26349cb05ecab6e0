package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bmariscotes-strat/stride/internal/api"
	"github.com/bmariscotes-strat/stride/internal/auth"
	"github.com/bmariscotes-strat/stride/internal/config"
	"github.com/bmariscotes-strat/stride/internal/database"
	"github.com/bmariscotes-strat/stride/internal/permission"
	"github.com/bmariscotes-strat/stride/internal/project"
	"github.com/bmariscotes-strat/stride/internal/team"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := auth.NewRepository(db.Pool())
	teamRepo := team.NewRepository(db.Pool())
	projectRepo := project.NewRepository(db.Pool())

	authService := auth.NewService(userRepo, cfg.BcryptCost)
	if _, err := authService.BootstrapUser(ctx, "founder", "founder@localhost"); err != nil {
		slog.Error("failed to bootstrap initial user", "error", err)
		os.Exit(1)
	}

	resolver := permission.NewResolver(projectRepo, teamRepo)
	permCache := permission.NewCache(resolver, cfg.PermissionCacheSize,
		time.Duration(cfg.PermissionCacheTTL)*time.Second)

	router := api.NewRouter(api.RouterDeps{
		AuthService: authService,
		Users:       userRepo,
		Projects:    projectRepo,
		Teams:       teamRepo,
		Permissions: permCache,
		DBPinger:    db,
		Version:     cfg.Version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting stride server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
