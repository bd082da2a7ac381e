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
	"github.com/tomtom215/greenhouse/internal/models"
)

// Plant response messages.
const (
	MsgPlantNotFound       = "Plant not found"
	MsgPlantCreated        = "Plant created successfully"
	MsgPlantUpdated        = "Plant updated successfully"
	MsgHarvestBeforePlant  = "The harvest date must be a date after planting date."
	MsgGreenhouseIDInvalid = "The selected greenhouse id is invalid."
)

// ListPlants returns the visible plants with their greenhouse.
func (h *Handler) ListPlants(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	plants, err := h.db.ListPlants(r.Context(), database.ScopeFor(user))
	if err != nil {
		respondInternal(w, r, err, "Failed to fetch plants")
		return
	}
	respondSuccess(w, http.StatusOK, "", plants)
}

// CreatePlant adds a plant to a greenhouse the caller can see.
func (h *Handler) CreatePlant(w http.ResponseWriter, r *http.Request) {
	var req models.PlantRequest
	if !bind(w, r, &req) {
		return
	}

	p, err := req.Plant()
	if err != nil {
		respondFieldError(w, "planting_date", "The planting date is not a valid date.")
		return
	}
	if !p.HarvestAfterPlanting() {
		respondFieldError(w, "harvest_date", MsgHarvestBeforePlant)
		return
	}

	g, ok := h.referencedGreenhouse(w, r, p.GreenhouseID)
	if !ok {
		return
	}

	if err := h.db.CreatePlant(r.Context(), p); err != nil {
		respondInternal(w, r, err, "Failed to create plant")
		return
	}
	p.Greenhouse = g

	respondSuccess(w, http.StatusCreated, MsgPlantCreated, p)
}

// GetPlant returns one plant with its greenhouse.
func (h *Handler) GetPlant(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPlant(w, r)
	if !ok {
		return
	}
	respondSuccess(w, http.StatusOK, "", p)
}

// UpdatePlant applies the fields present in the body.
func (h *Handler) UpdatePlant(w http.ResponseWriter, r *http.Request) {
	var req models.PlantUpdateRequest
	if !bind(w, r, &req) {
		return
	}

	p, ok := h.loadPlant(w, r)
	if !ok {
		return
	}

	previousGreenhouse := p.GreenhouseID
	if err := req.Apply(p); err != nil {
		respondFieldError(w, "planting_date", "The planting date is not a valid date.")
		return
	}
	if !p.HarvestAfterPlanting() {
		respondFieldError(w, "harvest_date", MsgHarvestBeforePlant)
		return
	}

	if p.GreenhouseID != previousGreenhouse {
		g, ok := h.referencedGreenhouse(w, r, p.GreenhouseID)
		if !ok {
			return
		}
		p.Greenhouse = g
	}

	if err := h.db.UpdatePlant(r.Context(), p); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgPlantNotFound)
			return
		}
		respondInternal(w, r, err, "Failed to update plant")
		return
	}

	respondSuccess(w, http.StatusOK, MsgPlantUpdated, p)
}

// DeletePlant removes a plant and answers 204.
func (h *Handler) DeletePlant(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPlant(w, r)
	if !ok {
		return
	}

	if err := h.db.DeletePlant(r.Context(), p.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgPlantNotFound)
			return
		}
		respondInternal(w, r, err, "Failed to delete plant")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) loadPlant(w http.ResponseWriter, r *http.Request) (*models.Plant, bool) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, MsgPlantNotFound)
		return nil, false
	}

	user := auth.UserFromContext(r.Context())
	p, err := h.db.PlantByID(r.Context(), id, database.ScopeFor(user))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgPlantNotFound)
			return nil, false
		}
		respondInternal(w, r, err, "Failed to fetch plant")
		return nil, false
	}
	return p, true
}

// referencedGreenhouse checks that greenhouse_id names a greenhouse the
// caller can see. Otherwise it writes the 422 and returns false.
func (h *Handler) referencedGreenhouse(w http.ResponseWriter, r *http.Request, id uint) (*models.Greenhouse, bool) {
	user := auth.UserFromContext(r.Context())
	g, err := h.db.GreenhouseByID(r.Context(), id, database.ScopeFor(user))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondFieldError(w, "greenhouse_id", MsgGreenhouseIDInvalid)
			return nil, false
		}
		respondInternal(w, r, err, "Failed to fetch greenhouse")
		return nil, false
	}
	return g, true
}
