// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package models

import "time"

// Plant status values.
const (
	PlantGrowing   = "growing"
	PlantHarvested = "harvested"
	PlantFailed    = "failed"
)

// Plant is a crop planted in a greenhouse.
type Plant struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"size:255;not null" json:"name"`
	Species      string      `gorm:"size:255;not null" json:"species"`
	PlantingDate Date        `gorm:"not null" json:"planting_date"`
	HarvestDate  *Date       `json:"harvest_date"`
	Status       string      `gorm:"size:32;not null;default:growing" json:"status"`
	GreenhouseID uint        `gorm:"not null;index" json:"greenhouse_id"`
	Greenhouse   *Greenhouse `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"greenhouse,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// HarvestAfterPlanting reports whether the harvest date, when set, falls
// strictly after the planting date.
func (p *Plant) HarvestAfterPlanting() bool {
	return p.HarvestDate == nil || p.HarvestDate.After(p.PlantingDate.Time)
}
