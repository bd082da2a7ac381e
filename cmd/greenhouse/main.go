// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

// Command greenhouse runs the smart greenhouse management API.
//
// Configuration comes from built-in defaults, an optional config.yaml, an
// optional .env file and environment variables, in increasing priority.
// JWT_SECRET (32+ characters) is the only required setting.
//
//	greenhouse                      # serve on :8000 with SQLite in data/
//	greenhouse migrate              # apply migrations and exit
//	greenhouse email test a@b.org   # verify mail delivery
//	greenhouse user create-admin --email admin@example.org --name Admin --password ********
//
// The server shuts down gracefully on SIGINT and SIGTERM.
package main

import (
	"os"

	"github.com/tomtom215/greenhouse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
