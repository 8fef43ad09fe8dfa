// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/auth"
	authpg "github.com/keygate/keygate/internal/auth/postgres"
	"github.com/keygate/keygate/internal/config"
	"github.com/keygate/keygate/internal/httpapi"
	"github.com/keygate/keygate/internal/logging"
	"github.com/keygate/keygate/internal/observability"
	"github.com/keygate/keygate/internal/store"
	"github.com/keygate/keygate/internal/validate"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the registration API server",
		Long: `Start the HTTP server that handles account registration,
token issuance, and the JWKS document.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return runServe(cmd.Context(), cfg, cmd)
		},
	}

	d := config.Default()
	cmd.Flags().String("listen-addr", d.ListenAddr, "API listen address")
	cmd.Flags().String("metrics-addr", d.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("private-key", "", "path to the PEM-encoded RSA signing key")
	cmd.Flags().String("issuer", d.Issuer, "token issuer claim")
	cmd.Flags().Duration("access-ttl", d.AccessTTL, "access token lifetime")
	cmd.Flags().Duration("refresh-ttl", d.RefreshTTL, "refresh token lifetime")
	cmd.Flags().Int("password-min", d.PasswordMin, "minimum password length")
	cmd.Flags().Int("password-max", d.PasswordMax, "maximum password length")
	cmd.Flags().Bool("cookie-secure", false, "mark token cookies Secure")
	cmd.Flags().String("log-format", d.LogFormat, "log format (json or text)")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config, cmd *cobra.Command) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.SetDefault("keygate", version, logging.Options{Format: cfg.LogFormat})

	slog.Info("starting server",
		"listen_addr", cfg.ListenAddr,
		"log_format", cfg.LogFormat,
	)

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	pool, err := store.NewPool(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	slog.Info("connected to database")

	key, err := auth.LoadPrivateKey(cfg.PrivateKeyPath)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}

	accounts := authpg.NewAccountRepository(pool)
	sessions := authpg.NewRefreshSessionRepository(pool)

	issuer, err := auth.NewTokenIssuer(key, sessions, auth.TokenIssuerConfig{
		Issuer:     cfg.Issuer,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}

	registrations, err := auth.NewRegistrationService(accounts, auth.NewArgon2idHasher(), issuer, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create registration service: %w", err)
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured
	var obsServer *observability.Server
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		metrics = obsServer.Metrics()

		obsErrChan, err := obsServer.Start()
		if err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	handler := httpapi.NewHandler(registrations, issuer, metrics, slog.Default(), httpapi.HandlerConfig{
		PasswordBounds: validate.PasswordBounds{Min: cfg.PasswordMin, Max: cfg.PasswordMax},
		CookieSecure:   cfg.CookieSecure,
	})
	apiServer := httpapi.NewServer(cfg.ListenAddr, handler)

	apiErrChan, err := apiServer.Start()
	if err != nil {
		stopObservability(obsServer)
		return fmt.Errorf("failed to start api server: %w", err)
	}
	go monitorServerErrors(ctx, cancel, apiErrChan, "api")

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Server started")
	slog.Info("server ready", "addr", apiServer.Addr())

	// Wait for shutdown signal or server failure
	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	// Graceful shutdown
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping api server", "error", err)
	}

	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

func stopObservability(s *observability.Server) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		slog.Warn("failed to stop observability server during cleanup", "error", err)
	}
}

// monitorServerErrors monitors a server's error channel and cancels the
// context on error, so a server failure triggers graceful shutdown of the
// whole process. It exits when an error arrives, the channel closes, or the
// context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
