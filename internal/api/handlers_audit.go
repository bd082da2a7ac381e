// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/models"
)

const defaultAuditLimit = 50

// ListAuditEvents returns the newest audit entries. Optional query
// parameters: type, actor_id and limit (1 to 500, default 50).
func (h *Handler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := database.AuditFilter{Type: q.Get("type"), Limit: defaultAuditLimit}

	if v := q.Get("actor_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondFieldError(w, "actor_id", "The actor id must be a positive integer.")
			return
		}
		actor := uint(id)
		filter.ActorID = &actor
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > database.MaxAuditLimit {
			respondFieldError(w, "limit", "The limit must be between 1 and 500.")
			return
		}
		filter.Limit = n
	}

	events, err := h.db.ListAuditEvents(r.Context(), filter)
	if err != nil {
		respondInternal(w, r, err, "Failed to list audit events")
		return
	}
	respondSuccess(w, http.StatusOK, "", models.AuditEventsPayload{Events: events})
}
