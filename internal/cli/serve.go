// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/greenhouse/internal/api"
	"github.com/tomtom215/greenhouse/internal/audit"
	"github.com/tomtom215/greenhouse/internal/auth"
	"github.com/tomtom215/greenhouse/internal/authz"
	"github.com/tomtom215/greenhouse/internal/config"
	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/events"
	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/mail"
	"github.com/tomtom215/greenhouse/internal/supervisor"
	"github.com/tomtom215/greenhouse/internal/supervisor/services"
	"github.com/tomtom215/greenhouse/internal/websocket"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// runServe starts every component under the supervisor tree and blocks
// until SIGINT or SIGTERM.
//
// Startup order:
//  1. Configuration and logging
//  2. Database (migrations run on open)
//  3. Mail sender, tokens, OTP, lockout and casbin enforcer
//  4. WebSocket hub, event bus and audit logger
//  5. HTTP router and server
//  6. Supervisor tree
func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting greenhouse server")

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()

	sender, err := mail.New(&cfg.Mail)
	if err != nil {
		return err
	}

	lockoutStore, closeLockout, err := openLockoutStore(&cfg.Security)
	if err != nil {
		return err
	}
	defer closeLockout()

	enforcer, err := authz.NewEnforcer(&cfg.Security.Casbin)
	if err != nil {
		return fmt.Errorf("failed to create authorization enforcer: %w", err)
	}
	defer enforcer.Close()

	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL, db)
	otp := auth.NewOTPService(db, sender, cfg.OTP)
	lockout := auth.NewLockoutManager(lockoutStore, auth.LockoutConfigFrom(&cfg.Security))

	hub := websocket.NewHub()
	wmLogger := events.NewLogger()
	bus := events.NewBus(wmLogger)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close event bus")
		}
	}()

	var recorder audit.Recorder = audit.Nop{}
	var auditLog *audit.Logger
	if cfg.Audit.Enabled {
		auditLog = audit.NewLogger(db, cfg.Audit)
		recorder = auditLog
	}

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		DB:       db,
		Tokens:   tokens,
		OTP:      otp,
		Lockout:  lockout,
		Enforcer: enforcer,
		Events:   bus,
		Hub:      hub,
		Audit:    recorder,
	})
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	tree.AddDataService(services.NewJanitorService(db, otp, cfg.OTP.CleanupInterval))
	if auditLog != nil {
		tree.AddDataService(auditLog)
	}
	if cfg.Security.LockoutEnabled {
		tree.AddDataService(services.NewLockoutCleanupService(lockout, 0))
	}
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewEventRouterService(func() (services.EventRouter, error) {
		return events.NewRouter(bus, hub, wmLogger)
	}))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// ServeBackground sends exactly one result and never closes the channel.
	serveErr := <-errCh
	if errors.Is(serveErr, context.Canceled) {
		serveErr = nil
	}
	if serveErr != nil {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("Server stopped")
	return serveErr
}

// openLockoutStore opens BadgerDB when a store path is configured and
// falls back to memory otherwise. The returned func releases the store.
func openLockoutStore(cfg *config.SecurityConfig) (auth.LockoutStore, func(), error) {
	if cfg.LockoutStorePath == "" {
		return auth.NewMemoryLockoutStore(), func() {}, nil
	}
	store, err := auth.OpenBadgerLockoutStore(cfg.LockoutStorePath)
	if err != nil {
		return nil, nil, err
	}
	logging.Info().Str("path", cfg.LockoutStorePath).Msg("Using persistent lockout store")
	return store, func() {
		if err := store.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close lockout store")
		}
	}, nil
}
