// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tomtom215/greenhouse/internal/audit"
	"github.com/tomtom215/greenhouse/internal/auth"
	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/events"
	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/metrics"
	"github.com/tomtom215/greenhouse/internal/models"
)

// Greenhouse response messages.
const (
	MsgGreenhouseNotFound = "Greenhouse not found"
	MsgGreenhouseCreated  = "Greenhouse created successfully"
	MsgGreenhouseUpdated  = "Greenhouse updated successfully"
	MsgGreenhouseDeleted  = "Greenhouse deleted successfully"
)

// ListGreenhouses returns the caller's greenhouses, or all of them for admins.
func (h *Handler) ListGreenhouses(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	greenhouses, err := h.db.ListGreenhouses(r.Context(), database.ScopeFor(user))
	if err != nil {
		respondInternal(w, r, err, "Failed to fetch greenhouses")
		return
	}
	respondSuccess(w, http.StatusOK, "", greenhouses)
}

// CreateGreenhouse creates a greenhouse owned by the caller.
func (h *Handler) CreateGreenhouse(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req models.GreenhouseRequest
	if !bind(w, r, &req) {
		return
	}

	g := req.Greenhouse(user.ID)
	if err := h.db.CreateGreenhouse(r.Context(), g); err != nil {
		respondInternal(w, r, err, "Failed to create greenhouse")
		return
	}

	logging.Ctx(r.Context()).Info().Uint("greenhouse_id", g.ID).Msg("Greenhouse created")
	respondSuccess(w, http.StatusCreated, MsgGreenhouseCreated, g)
}

// GetGreenhouse returns one greenhouse.
func (h *Handler) GetGreenhouse(w http.ResponseWriter, r *http.Request) {
	g, ok := h.loadGreenhouse(w, r)
	if !ok {
		return
	}
	respondSuccess(w, http.StatusOK, "", g)
}

// UpdateGreenhouse applies the fields present in the body.
func (h *Handler) UpdateGreenhouse(w http.ResponseWriter, r *http.Request) {
	var req models.GreenhouseUpdateRequest
	if !bind(w, r, &req) {
		return
	}

	g, ok := h.loadGreenhouse(w, r)
	if !ok {
		return
	}

	req.Apply(g)
	if err := h.db.UpdateGreenhouse(r.Context(), g); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgGreenhouseNotFound)
			return
		}
		respondInternal(w, r, err, "Failed to update greenhouse")
		return
	}

	respondSuccess(w, http.StatusOK, MsgGreenhouseUpdated, g)
}

// DeleteGreenhouse removes a greenhouse with its plants, sensors and control states.
func (h *Handler) DeleteGreenhouse(w http.ResponseWriter, r *http.Request) {
	g, ok := h.loadGreenhouse(w, r)
	if !ok {
		return
	}

	if err := h.db.DeleteGreenhouse(r.Context(), g.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgGreenhouseNotFound)
			return
		}
		respondInternal(w, r, err, "Failed to delete greenhouse")
		return
	}

	logging.Ctx(r.Context()).Info().Uint("greenhouse_id", g.ID).Msg("Greenhouse deleted")
	respondSuccess(w, http.StatusOK, MsgGreenhouseDeleted, nil)
}

// GreenhouseMetrics returns the current environment values, falling back to
// the defaults for values no sensor has reported yet.
func (h *Handler) GreenhouseMetrics(w http.ResponseWriter, r *http.Request) {
	g, ok := h.loadGreenhouse(w, r)
	if !ok {
		return
	}
	respondSuccess(w, http.StatusOK, "", g.Metrics())
}

// GreenhouseControls returns the stored control states.
func (h *Handler) GreenhouseControls(w http.ResponseWriter, r *http.Request) {
	g, ok := h.loadGreenhouse(w, r)
	if !ok {
		return
	}

	states, err := h.db.ControlStates(r.Context(), g.ID)
	if err != nil {
		respondInternal(w, r, err, "Failed to fetch control states")
		return
	}
	respondSuccess(w, http.StatusOK, "", states)
}

// ControlGreenhouse switches a greenhouse system and notifies the owner's
// WebSocket clients.
func (h *Handler) ControlGreenhouse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.ControlRequest
	if !bind(w, r, &req) {
		return
	}

	g, ok := h.loadGreenhouse(w, r)
	if !ok {
		return
	}

	state, err := h.db.UpsertControlState(ctx, g.ID, req.System, req.Action, req.Value)
	if err != nil {
		respondInternal(w, r, err, "Failed to apply control command")
		return
	}
	metrics.RecordControlCommand(req.System, req.Action)

	message := models.ControlMessage(req.System, req.Action)
	ev := events.ControlEvent{
		UserID:       g.UserID,
		GreenhouseID: g.ID,
		System:       req.System,
		Action:       req.Action,
		Value:        req.Value,
		Message:      message,
		Timestamp:    h.now(),
	}
	if err := h.events.PublishControl(ctx, ev); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Uint("greenhouse_id", g.ID).Msg("Failed to publish control event")
	}

	h.audit.Record(r, audit.Event{
		Type:        audit.EventControlChanged,
		Actor:       auth.UserFromContext(ctx),
		TargetType:  "greenhouse",
		TargetID:    strconv.FormatUint(uint64(g.ID), 10),
		Description: message,
	})
	respondSuccess(w, http.StatusOK, message, state)
}

// loadGreenhouse resolves {id} within the caller's scope. It writes the 404
// itself and returns false when the greenhouse is missing or not visible.
func (h *Handler) loadGreenhouse(w http.ResponseWriter, r *http.Request) (*models.Greenhouse, bool) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, MsgGreenhouseNotFound)
		return nil, false
	}

	user := auth.UserFromContext(r.Context())
	g, err := h.db.GreenhouseByID(r.Context(), id, database.ScopeFor(user))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgGreenhouseNotFound)
			return nil, false
		}
		respondInternal(w, r, err, "Failed to fetch greenhouse")
		return nil, false
	}
	return g, true
}
