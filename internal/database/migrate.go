// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/models"
)

// SchemaMigration records one applied migration.
type SchemaMigration struct {
	Version   uint      `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName implements gorm's tabler.
func (SchemaMigration) TableName() string { return "schema_migrations" }

// Migration is one schema step. Steps run in version order, each in its own
// transaction, and are never re-applied once recorded.
type Migration struct {
	Version uint
	Name    string
	Up      func(tx *gorm.DB) error
}

// createTable creates the table of model with its indexes and foreign keys.
func createTable(model interface{}) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		return tx.Migrator().CreateTable(model)
	}
}

// Migrations is the ordered schema history.
var Migrations = []Migration{
	{Version: 1, Name: "create_users_table", Up: createTable(&models.User{})},
	{Version: 2, Name: "create_greenhouses_table", Up: createTable(&models.Greenhouse{})},
	{Version: 3, Name: "create_plants_table", Up: createTable(&models.Plant{})},
	{Version: 4, Name: "create_sensors_table", Up: createTable(&models.Sensor{})},
	{Version: 5, Name: "create_otps_table", Up: createTable(&models.OTP{})},
	{Version: 6, Name: "create_access_tokens_table", Up: createTable(&models.AccessToken{})},
	{Version: 7, Name: "create_control_states_table", Up: createTable(&models.ControlState{})},
	{Version: 8, Name: "create_audit_events_table", Up: createTable(&models.AuditEvent{})},
}

// Migrate applies every migration newer than the recorded schema version.
func (db *DB) Migrate(ctx context.Context) error {
	conn := db.withContext(ctx)
	if err := conn.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	current := db.SchemaVersion(ctx)
	for _, m := range Migrations {
		if m.Version <= current {
			continue
		}
		err := conn.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Version:   m.Version,
				Name:      m.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		logging.Info().Uint("version", m.Version).Str("name", m.Name).Msg("Applied migration")
	}
	return nil
}

// SchemaVersion returns the highest applied migration version, or 0.
func (db *DB) SchemaVersion(ctx context.Context) uint {
	var latest SchemaMigration
	db.withContext(ctx).
		Model(&SchemaMigration{}).
		Select("version").
		Order("version desc").
		Limit(1).
		Scan(&latest)
	return latest.Version
}

// AppliedMigrations lists recorded migrations in version order.
func (db *DB) AppliedMigrations(ctx context.Context) ([]SchemaMigration, error) {
	var applied []SchemaMigration
	if err := db.withContext(ctx).Order("version").Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	return applied, nil
}
