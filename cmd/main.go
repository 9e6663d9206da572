// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
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

	"github.com/Shivanand-hulikatti/library-circulation/internal/auth"
	"github.com/Shivanand-hulikatti/library-circulation/internal/config"
	"github.com/Shivanand-hulikatti/library-circulation/internal/database"
	"github.com/Shivanand-hulikatti/library-circulation/internal/handler"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository/memory"
	"github.com/Shivanand-hulikatti/library-circulation/internal/repository/postgres"
	"github.com/Shivanand-hulikatti/library-circulation/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := newLogger(cfg)
	if cfg.EnvFileLoaded {
		logger.Debug("loaded .env file")
	}
	if cfg.UsesDevSecret() {
		logger.Warn("JWT_SECRET is not set; using the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Open storage ──────────────────────────────────────────────────
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// ── 2. Wire up layers ────────────────────────────────────────────────
	opts := []service.Option{service.WithLogger(logger)}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, nil)
	svc := handler.Services{
		Catalog: service.NewCatalogService(store, opts...),
		Members: service.NewMemberService(store, tokens, opts...),
		Ledger: service.NewLedgerService(store, service.LedgerConfig{
			LoanPeriodDays:    cfg.LoanPeriodDays,
			MaxLoanPeriodDays: cfg.MaxLoanPeriodDays,
			FinePerDay:        cfg.FinePerDay,
		}, opts...),
		Reports: service.NewReportService(store, opts...),
		Queries: service.NewQueryService(store, opts...),
	}

	if err := seed(ctx, cfg, svc, logger); err != nil {
		return err
	}

	// ── 3. Build the router ───────────────────────────────────────────────
	router := handler.NewRouter(svc, handler.RouterConfig{
		Tokens:   tokens,
		Logger:   logger,
		Throttle: cfg.HTTPThrottle,
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.Store, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on exit")
		return memory.NewStore(), func() {}, nil
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	logger.Info("connected to postgres", "host", cfg.Database.Host, "db", cfg.Database.DBName)

	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return postgres.NewStore(pool), pool.Close, nil
}

func seed(ctx context.Context, cfg config.Config, svc handler.Services, logger *slog.Logger) error {
	created, err := svc.Members.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created && cfg.AdminPassword == "admin123" {
		logger.Warn("admin account uses the default password", "email", cfg.AdminEmail)
	}

	if !cfg.SeedSample {
		return nil
	}
	added, err := svc.Catalog.SeedSampleBooks(ctx)
	if err != nil {
		return fmt.Errorf("seed books: %w", err)
	}
	if added > 0 {
		logger.Info("sample books added", "count", added)
	}
	return nil
}
