// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package models

import "time"

// Sensor types. Each one feeds one greenhouse metric column.
const (
	SensorTemperature  = "temperature"
	SensorHumidity     = "humidity"
	SensorLight        = "light"
	SensorSoilMoisture = "soil_moisture"
)

// Sensor is a probe installed in a greenhouse.
type Sensor struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Name          string      `gorm:"size:255;not null" json:"name"`
	Type          string      `gorm:"size:32;not null" json:"type"`
	Status        string      `gorm:"size:32;not null;default:active" json:"status"`
	LastReading   *float64    `json:"last_reading"`
	LastReadingAt *time.Time  `json:"last_reading_at"`
	GreenhouseID  uint        `gorm:"not null;index" json:"greenhouse_id"`
	Greenhouse    *Greenhouse `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"greenhouse,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
