// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package models

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Request bodies. Create requests require every field; update requests use
// pointers with `omitnil` so a field is validated only when present.

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Normalize canonicalizes the email before validation.
func (r *RegisterRequest) Normalize() { r.Email = NormalizeEmail(r.Email) }

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() { r.Email = NormalizeEmail(r.Email) }

// VerifyOTPRequest is the body of POST /api/verify-otp.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

func (r *VerifyOTPRequest) Normalize() { r.Email = NormalizeEmail(r.Email) }

// ResendOTPRequest is the body of POST /api/resend-otp.
type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ResendOTPRequest) Normalize() { r.Email = NormalizeEmail(r.Email) }

// GreenhouseRequest is the body of POST /api/greenhouses.
type GreenhouseRequest struct {
	Name           string   `json:"name" validate:"required,max=255"`
	Location       string   `json:"location" validate:"required,max=255"`
	Status         string   `json:"status" validate:"required,greenhouse_status"`
	Size           *float64 `json:"size" validate:"omitnil,gte=0"`
	Temperature    *float64 `json:"temperature"`
	Humidity       *float64 `json:"humidity" validate:"omitnil,gte=0,lte=100"`
	SoilMoisture   *float64 `json:"soil_moisture" validate:"omitnil,gte=0,lte=100"`
	LightIntensity *float64 `json:"light_intensity" validate:"omitnil,gte=0"`
}

// Greenhouse builds a new greenhouse owned by ownerID.
func (r *GreenhouseRequest) Greenhouse(ownerID uint) *Greenhouse {
	g := &Greenhouse{
		Name:           r.Name,
		Location:       r.Location,
		Status:         r.Status,
		Temperature:    r.Temperature,
		Humidity:       r.Humidity,
		SoilMoisture:   r.SoilMoisture,
		LightIntensity: r.LightIntensity,
		UserID:         ownerID,
	}
	if r.Size != nil {
		g.Size = *r.Size
	}
	return g
}

// GreenhouseUpdateRequest is the body of PUT/PATCH /api/greenhouses/{id}.
type GreenhouseUpdateRequest struct {
	Name           *string  `json:"name" validate:"omitnil,required,max=255"`
	Location       *string  `json:"location" validate:"omitnil,required,max=255"`
	Status         *string  `json:"status" validate:"omitnil,required,greenhouse_status"`
	Size           *float64 `json:"size" validate:"omitnil,gte=0"`
	Temperature    *float64 `json:"temperature"`
	Humidity       *float64 `json:"humidity" validate:"omitnil,gte=0,lte=100"`
	SoilMoisture   *float64 `json:"soil_moisture" validate:"omitnil,gte=0,lte=100"`
	LightIntensity *float64 `json:"light_intensity" validate:"omitnil,gte=0"`
}

// Apply copies the fields present in the request onto g.
func (r *GreenhouseUpdateRequest) Apply(g *Greenhouse) {
	setString(&g.Name, r.Name)
	setString(&g.Location, r.Location)
	setString(&g.Status, r.Status)
	if r.Size != nil {
		g.Size = *r.Size
	}
	setFloatPtr(&g.Temperature, r.Temperature)
	setFloatPtr(&g.Humidity, r.Humidity)
	setFloatPtr(&g.SoilMoisture, r.SoilMoisture)
	setFloatPtr(&g.LightIntensity, r.LightIntensity)
}

// ControlRequest is the body of POST /api/greenhouses/{id}/control.
type ControlRequest struct {
	System string   `json:"system" validate:"required,control_system"`
	Action string   `json:"action" validate:"required,control_action"`
	Value  *float64 `json:"value"`
}

// PlantRequest is the body of POST /api/plants.
type PlantRequest struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Species      string  `json:"species" validate:"required,max=255"`
	PlantingDate string  `json:"planting_date" validate:"required,date"`
	HarvestDate  *string `json:"harvest_date" validate:"omitnil,date"`
	Status       string  `json:"status" validate:"required,plant_status"`
	GreenhouseID uint    `json:"greenhouse_id" validate:"required"`
}

// Plant builds a plant from a validated request.
func (r *PlantRequest) Plant() (*Plant, error) {
	planted, err := ParseDate(r.PlantingDate)
	if err != nil {
		return nil, err
	}
	p := &Plant{
		Name:         r.Name,
		Species:      r.Species,
		PlantingDate: planted,
		Status:       r.Status,
		GreenhouseID: r.GreenhouseID,
	}
	if r.HarvestDate != nil {
		harvest, err := ParseDate(*r.HarvestDate)
		if err != nil {
			return nil, err
		}
		p.HarvestDate = &harvest
	}
	return p, nil
}

// PlantUpdateRequest is the body of PUT/PATCH /api/plants/{id}.
type PlantUpdateRequest struct {
	Name         *string `json:"name" validate:"omitnil,required,max=255"`
	Species      *string `json:"species" validate:"omitnil,required,max=255"`
	PlantingDate *string `json:"planting_date" validate:"omitnil,required,date"`
	HarvestDate  *string `json:"harvest_date" validate:"omitnil,date"`
	Status       *string `json:"status" validate:"omitnil,required,plant_status"`
	GreenhouseID *uint   `json:"greenhouse_id" validate:"omitnil,required"`

	// ClearHarvestDate is set when the body carries "harvest_date": null.
	ClearHarvestDate bool `json:"-"`
}

// UnmarshalJSON decodes the body and records an explicit null harvest date,
// which a nil pointer alone cannot tell apart from an absent key.
func (r *PlantUpdateRequest) UnmarshalJSON(b []byte) error {
	type plain PlantUpdateRequest
	if err := json.Unmarshal(b, (*plain)(r)); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	raw, ok := fields["harvest_date"]
	r.ClearHarvestDate = ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
	return nil
}

// Apply copies the fields present in the request onto p. An explicit null
// harvest date clears it.
func (r *PlantUpdateRequest) Apply(p *Plant) error {
	setString(&p.Name, r.Name)
	setString(&p.Species, r.Species)
	setString(&p.Status, r.Status)
	if r.GreenhouseID != nil {
		p.GreenhouseID = *r.GreenhouseID
	}
	if r.PlantingDate != nil {
		d, err := ParseDate(*r.PlantingDate)
		if err != nil {
			return err
		}
		p.PlantingDate = d
	}
	if r.HarvestDate != nil {
		d, err := ParseDate(*r.HarvestDate)
		if err != nil {
			return err
		}
		p.HarvestDate = &d
	} else if r.ClearHarvestDate {
		p.HarvestDate = nil
	}
	return nil
}

// SensorRequest is the body of POST /api/sensors.
type SensorRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Type         string `json:"type" validate:"required,sensor_type"`
	Status       string `json:"status" validate:"required,sensor_status"`
	GreenhouseID uint   `json:"greenhouse_id" validate:"required"`
}

// Sensor builds a sensor from a validated request.
func (r *SensorRequest) Sensor() *Sensor {
	return &Sensor{
		Name:         r.Name,
		Type:         r.Type,
		Status:       r.Status,
		GreenhouseID: r.GreenhouseID,
	}
}

// SensorUpdateRequest is the body of PUT/PATCH /api/sensors/{id}.
type SensorUpdateRequest struct {
	Name         *string `json:"name" validate:"omitnil,required,max=255"`
	Type         *string `json:"type" validate:"omitnil,required,sensor_type"`
	Status       *string `json:"status" validate:"omitnil,required,sensor_status"`
	GreenhouseID *uint   `json:"greenhouse_id" validate:"omitnil,required"`
}

// Apply copies the fields present in the request onto s.
func (r *SensorUpdateRequest) Apply(s *Sensor) {
	setString(&s.Name, r.Name)
	setString(&s.Type, r.Type)
	setString(&s.Status, r.Status)
	if r.GreenhouseID != nil {
		s.GreenhouseID = *r.GreenhouseID
	}
}

// SensorReadingRequest is the body of POST /api/sensors/{id}/readings.
type SensorReadingRequest struct {
	Value *float64 `json:"value" validate:"required"`
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Username *string `json:"username" validate:"omitnil,required,alphanum,max=255"`
	Password string  `json:"password" validate:"required,min=8"`
	Role     string  `json:"role" validate:"required,user_role"`
}

func (r *CreateUserRequest) Normalize() { r.Email = NormalizeEmail(r.Email) }

// UpdateUserRequest is the body of PUT /api/users/{id}.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitnil,required,max=255"`
	Email    *string `json:"email" validate:"omitnil,required,email,max=255"`
	Username *string `json:"username" validate:"omitnil,required,alphanum,max=255"`
	Password *string `json:"password" validate:"omitnil,required,min=8"`
}

func (r *UpdateUserRequest) Normalize() {
	if r.Email != nil {
		email := NormalizeEmail(*r.Email)
		r.Email = &email
	}
}

// PermissionsRequest is the body of PUT /api/users/{id}/permissions.
type PermissionsRequest struct {
	Role string `json:"role" validate:"required,user_role"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setFloatPtr(dst **float64, src *float64) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
