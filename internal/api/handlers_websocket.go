// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/greenhouse/internal/auth"
	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/websocket"
)

// WebSocket upgrades the connection and streams the caller's control and
// reading events until either side closes.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		auth.WriteUnauthenticated(w)
		return
	}

	// The upgrader writes its own error response on failure.
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	// Serve closes conn itself when registration fails.
	if err := h.hub.Serve(r.Context(), conn, user.ID); err != nil {
		if !errors.Is(err, websocket.ErrHubStopped) {
			logging.Ctx(r.Context()).Error().Err(err).Msg("WebSocket registration failed")
		}
		return
	}
	logging.Ctx(r.Context()).Debug().Msg("WebSocket client connected")
}
