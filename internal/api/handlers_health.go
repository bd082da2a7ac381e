// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/models"
)

const healthCheckTimeout = 2 * time.Second

// Health reports whether the database answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check failed")
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status:  models.StatusError,
			Message: "Service unavailable",
			Data:    models.HealthPayload{Database: "unavailable"},
		})
		return
	}

	respondSuccess(w, http.StatusOK, "", models.HealthPayload{Database: "ok"})
}
