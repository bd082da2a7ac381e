// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package models

import (
	"fmt"
	"strings"
	"time"
)

// Control actions.
const (
	ControlOn   = "on"
	ControlOff  = "off"
	ControlAuto = "auto"
)

// ControlState is the last command applied to one system of a greenhouse.
// There is at most one row per (greenhouse, system).
type ControlState struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	GreenhouseID uint        `gorm:"not null;uniqueIndex:idx_control_greenhouse_system" json:"greenhouse_id"`
	Greenhouse   *Greenhouse `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	System       string      `gorm:"size:32;not null;uniqueIndex:idx_control_greenhouse_system" json:"system"`
	Mode         string      `gorm:"size:16;not null" json:"mode"`
	Value        *float64    `json:"value"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ControlMessage is the confirmation shown after a control command,
// e.g. "Ventilation turned on" or "Heating set to auto".
func ControlMessage(system, action string) string {
	name := system
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	if action == ControlAuto {
		return fmt.Sprintf("%s set to auto", name)
	}
	return fmt.Sprintf("%s turned %s", name, action)
}
