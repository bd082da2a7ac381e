// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

// Package testinfra provides databases for tests.
//
// OpenTestDB gives each test its own migrated in-memory SQLite database.
// Behind the integration build tag, NewPostgresContainer starts a real
// PostgreSQL server with testcontainers-go.
package testinfra

import (
	"strings"
	"testing"

	"github.com/tomtom215/greenhouse/internal/config"
	"github.com/tomtom215/greenhouse/internal/database"
)

// MemoryDSN returns a shared-cache in-memory SQLite DSN unique to t.
func MemoryDSN(t testing.TB) string {
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	return "file:" + name + "?mode=memory&cache=shared"
}

// OpenTestDB opens and migrates an in-memory database closed at test end.
func OpenTestDB(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          MemoryDSN(t),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
