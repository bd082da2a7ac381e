// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package database

import (
	"context"

	"github.com/tomtom215/greenhouse/internal/models"
)

// UpsertControlState records the latest command for a greenhouse system and
// returns the stored row.
func (db *DB) UpsertControlState(ctx context.Context, greenhouseID uint, system, mode string, value *float64) (*models.ControlState, error) {
	state := models.ControlState{}
	err := db.withContext(ctx).
		Where(models.ControlState{GreenhouseID: greenhouseID, System: system}).
		Assign(map[string]interface{}{"mode": mode, "value": value}).
		FirstOrCreate(&state).Error
	if err != nil {
		return nil, translate("upsert control state", err)
	}
	return &state, nil
}

// ControlStates returns the stored state of every system of a greenhouse.
func (db *DB) ControlStates(ctx context.Context, greenhouseID uint) ([]models.ControlState, error) {
	states := []models.ControlState{}
	err := db.withContext(ctx).
		Where("greenhouse_id = ?", greenhouseID).
		Order("system").
		Find(&states).Error
	if err != nil {
		return nil, translate("list control states", err)
	}
	return states, nil
}
