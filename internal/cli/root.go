// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

// Package cli defines the greenhouse command tree.
//
//	greenhouse [serve]                     run the API server (default)
//	greenhouse migrate                     apply database migrations and exit
//	greenhouse email test <address>        send a sample OTP email
//	greenhouse user create-admin ...       bootstrap an administrator
//
// Every command loads configuration through config.LoadWithKoanf. The
// persistent --config flag points CONFIG_PATH at a YAML file.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/greenhouse/internal/config"
	"github.com/tomtom215/greenhouse/internal/logging"
)

var configPath string

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "greenhouse",
		Short: "Smart greenhouse management API server",
		Long: `Greenhouse serves the REST API for greenhouse monitoring: accounts with
email OTP verification, greenhouses with climate controls, plants, sensors
and user administration.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := os.Setenv(config.ConfigPathEnvVar, configPath); err != nil {
					return fmt.Errorf("set %s: %w", config.ConfigPathEnvVar, err)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (sets CONFIG_PATH)")

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newEmailCommand(),
		newUserCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig loads configuration and applies its logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	return cfg, nil
}
