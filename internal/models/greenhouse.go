// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package models

import "time"

// Greenhouse status values.
const (
	GreenhouseActive      = "active"
	GreenhouseInactive    = "inactive"
	GreenhouseMaintenance = "maintenance"
)

// Fallback metric values reported when a greenhouse has no reading yet.
const (
	DefaultTemperature    = 25.0
	DefaultHumidity       = 60.0
	DefaultSoilMoisture   = 75.0
	DefaultLightIntensity = 80.0
)

// Greenhouse is a monitored growing space owned by one user.
// The four metric columns hold the latest value of each sensor type.
type Greenhouse struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Location       string    `gorm:"size:255;not null" json:"location"`
	Size           float64   `gorm:"not null;default:0" json:"size"`
	Status         string    `gorm:"size:32;not null;default:active" json:"status"`
	Temperature    *float64  `json:"temperature"`
	Humidity       *float64  `json:"humidity"`
	SoilMoisture   *float64  `json:"soil_moisture"`
	LightIntensity *float64  `json:"light_intensity"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	User           *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GreenhouseMetrics is the body of GET /api/greenhouses/{id}/metrics.
type GreenhouseMetrics struct {
	Temperature    float64 `json:"temperature"`
	Humidity       float64 `json:"humidity"`
	SoilMoisture   float64 `json:"soil_moisture"`
	LightIntensity float64 `json:"light_intensity"`
}

// Metrics returns the stored readings, substituting defaults for missing ones.
func (g *Greenhouse) Metrics() GreenhouseMetrics {
	return GreenhouseMetrics{
		Temperature:    valueOr(g.Temperature, DefaultTemperature),
		Humidity:       valueOr(g.Humidity, DefaultHumidity),
		SoilMoisture:   valueOr(g.SoilMoisture, DefaultSoilMoisture),
		LightIntensity: valueOr(g.LightIntensity, DefaultLightIntensity),
	}
}

// MetricColumn maps a sensor type to the greenhouse column it feeds.
// The second result is false for unknown types.
func MetricColumn(sensorType string) (string, bool) {
	switch sensorType {
	case SensorTemperature:
		return "temperature", true
	case SensorHumidity:
		return "humidity", true
	case SensorSoilMoisture:
		return "soil_moisture", true
	case SensorLight:
		return "light_intensity", true
	default:
		return "", false
	}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
