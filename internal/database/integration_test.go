// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

//go:build integration

package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/greenhouse/internal/config"
	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/models"
	"github.com/tomtom215/greenhouse/internal/testinfra"
)

func TestPostgres_MigrateAndCascade(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := testinfra.NewPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("NewPostgresContainer() error = %v", err)
	}
	testinfra.CleanupContainer(t, pg)

	db, err := database.Open(&config.DatabaseConfig{Driver: "postgres", DSN: pg.DSN, LogLevel: "warn"})
	if err != nil {
		t.Fatalf("Open(postgres) error = %v", err)
	}
	defer db.Close()

	u := &models.User{Name: "pg", Email: "pg@example.org", Password: "hash", Role: models.RoleFarmer}
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	dup := &models.User{Name: "pg2", Email: "pg@example.org", Password: "hash", Role: models.RoleFarmer}
	if err := db.CreateUser(ctx, dup); !errors.Is(err, database.ErrDuplicate) {
		t.Fatalf("duplicate email error = %v, want ErrDuplicate", err)
	}

	g := &models.Greenhouse{Name: "PG", Location: "Rack", Status: models.GreenhouseActive, UserID: u.ID}
	if err := db.CreateGreenhouse(ctx, g); err != nil {
		t.Fatalf("CreateGreenhouse() error = %v", err)
	}
	planted, _ := models.ParseDate("2024-03-01")
	p := &models.Plant{Name: "Kale", Species: "Brassica", PlantingDate: planted, Status: models.PlantGrowing, GreenhouseID: g.ID}
	if err := db.CreatePlant(ctx, p); err != nil {
		t.Fatalf("CreatePlant() error = %v", err)
	}

	if err := db.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := db.PlantByID(ctx, p.ID, database.Scope{All: true}); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("plant survived user delete on postgres: %v", err)
	}
}
