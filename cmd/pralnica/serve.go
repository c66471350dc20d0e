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

	"github.com/spf13/cobra"

	"github.com/erazemk/pralnica/internal/api"
	"github.com/erazemk/pralnica/internal/auth"
	"github.com/erazemk/pralnica/internal/config"
	"github.com/erazemk/pralnica/internal/db"
	"github.com/erazemk/pralnica/internal/store"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (creates the database on first run)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, a.cfg)
		},
	}
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	dbPath := cfg.Database.Path

	// Auto-init a missing database.
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		database, password, err := initDatabase(dbPath, cfg.Auth.AdminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(cmd.OutOrStdout(), dbPath, cfg.Auth.AdminUser, password)
		fmt.Fprintln(cmd.OutOrStdout())
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Info("database ready", "path", dbPath)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := api.Options{AuthMode: cfg.Auth.Mode}
	if cfg.Auth.Mode == auth.ModeMock {
		slog.Warn("authentication disabled: every request acts as an administrator", "auth_mode", cfg.Auth.Mode)
	} else {
		secret := cfg.Auth.JWTSecret
		if secret == "" {
			secret, err = store.GetJWTSecret(ctx, database)
			if err != nil {
				return fmt.Errorf("loading jwt secret: %w", err)
			}
		}
		opts.Signer, err = auth.NewSigner(secret, cfg.Auth.TokenTTL)
		if err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(database, opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", cfg.Server.Addr, "auth_mode", cfg.Auth.Mode)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}

	slog.Info("server stopped, closing database")
	return nil
}
