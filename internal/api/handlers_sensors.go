// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/greenhouse/internal/auth"
	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/events"
	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/metrics"
	"github.com/tomtom215/greenhouse/internal/models"
)

// Sensor response messages.
const (
	MsgSensorNotFound    = "Sensor not found"
	MsgSensorCreated     = "Sensor created successfully"
	MsgSensorUpdated     = "Sensor updated successfully"
	MsgReadingRecorded   = "Reading recorded successfully"
	MsgReadingOutOfRange = "The value must be between 0 and 100."
)

// ListSensors returns the visible sensors with their greenhouse.
func (h *Handler) ListSensors(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	sensors, err := h.db.ListSensors(r.Context(), database.ScopeFor(user))
	if err != nil {
		respondInternal(w, r, err, "Failed to fetch sensors")
		return
	}
	respondSuccess(w, http.StatusOK, "", sensors)
}

// CreateSensor adds a sensor to a greenhouse the caller can see.
func (h *Handler) CreateSensor(w http.ResponseWriter, r *http.Request) {
	var req models.SensorRequest
	if !bind(w, r, &req) {
		return
	}

	g, ok := h.referencedGreenhouse(w, r, req.GreenhouseID)
	if !ok {
		return
	}

	s := req.Sensor()
	if err := h.db.CreateSensor(r.Context(), s); err != nil {
		respondInternal(w, r, err, "Failed to create sensor")
		return
	}
	s.Greenhouse = g

	respondSuccess(w, http.StatusCreated, MsgSensorCreated, s)
}

// GetSensor returns one sensor with its greenhouse.
func (h *Handler) GetSensor(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSensor(w, r)
	if !ok {
		return
	}
	respondSuccess(w, http.StatusOK, "", s)
}

// UpdateSensor applies the fields present in the body.
func (h *Handler) UpdateSensor(w http.ResponseWriter, r *http.Request) {
	var req models.SensorUpdateRequest
	if !bind(w, r, &req) {
		return
	}

	s, ok := h.loadSensor(w, r)
	if !ok {
		return
	}

	previousGreenhouse := s.GreenhouseID
	req.Apply(s)
	if s.GreenhouseID != previousGreenhouse {
		g, ok := h.referencedGreenhouse(w, r, s.GreenhouseID)
		if !ok {
			return
		}
		s.Greenhouse = g
	}

	if err := h.db.UpdateSensor(r.Context(), s); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgSensorNotFound)
			return
		}
		respondInternal(w, r, err, "Failed to update sensor")
		return
	}

	respondSuccess(w, http.StatusOK, MsgSensorUpdated, s)
}

// DeleteSensor removes a sensor and answers 204.
func (h *Handler) DeleteSensor(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSensor(w, r)
	if !ok {
		return
	}

	if err := h.db.DeleteSensor(r.Context(), s.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgSensorNotFound)
			return
		}
		respondInternal(w, r, err, "Failed to delete sensor")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordSensorReading stores a reading, copies it to the greenhouse metric
// the sensor feeds and streams it to the owner.
func (h *Handler) RecordSensorReading(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SensorReadingRequest
	if !bind(w, r, &req) {
		return
	}

	s, ok := h.loadSensor(w, r)
	if !ok {
		return
	}

	value := *req.Value
	if percentSensor(s.Type) && (value < 0 || value > 100) {
		respondFieldError(w, "value", MsgReadingOutOfRange)
		return
	}

	now := h.now()
	if err := h.db.RecordReading(ctx, s, value, now); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgSensorNotFound)
			return
		}
		respondInternal(w, r, err, "Failed to record reading")
		return
	}
	metrics.SensorReadings.WithLabelValues(s.Type).Inc()

	if s.Greenhouse != nil {
		ev := events.ReadingEvent{
			UserID:       s.Greenhouse.UserID,
			GreenhouseID: s.GreenhouseID,
			SensorID:     s.ID,
			SensorType:   s.Type,
			Value:        value,
			Timestamp:    now,
		}
		if err := h.events.PublishReading(ctx, ev); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Uint("sensor_id", s.ID).Msg("Failed to publish reading event")
		}
	}

	respondSuccess(w, http.StatusOK, MsgReadingRecorded, s)
}

func (h *Handler) loadSensor(w http.ResponseWriter, r *http.Request) (*models.Sensor, bool) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, MsgSensorNotFound)
		return nil, false
	}

	user := auth.UserFromContext(r.Context())
	s, err := h.db.SensorByID(r.Context(), id, database.ScopeFor(user))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgSensorNotFound)
			return nil, false
		}
		respondInternal(w, r, err, "Failed to fetch sensor")
		return nil, false
	}
	return s, true
}

// percentSensor reports whether readings of sensorType are percentages.
func percentSensor(sensorType string) bool {
	return sensorType == models.SensorHumidity || sensorType == models.SensorSoilMoisture
}
