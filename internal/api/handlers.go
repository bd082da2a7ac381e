// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package api

import (
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/greenhouse/internal/audit"
	"github.com/tomtom215/greenhouse/internal/auth"
	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/events"
	"github.com/tomtom215/greenhouse/internal/models"
	"github.com/tomtom215/greenhouse/internal/websocket"
)

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	db       *database.DB
	tokens   *auth.TokenManager
	otp      *auth.OTPService
	lockout  *auth.LockoutManager
	events   events.Publisher
	hub      *websocket.Hub
	audit    audit.Recorder
	upgrader gorillaws.Upgrader
	now      func() time.Time
}

// NewHandler creates the handler set from deps. A nil Audit discards events.
func NewHandler(deps Deps) *Handler {
	recorder := deps.Audit
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Handler{
		db:       deps.DB,
		tokens:   deps.Tokens,
		otp:      deps.OTP,
		lockout:  deps.Lockout,
		events:   deps.Events,
		hub:      deps.Hub,
		audit:    recorder,
		upgrader: websocket.NewUpgrader(deps.Config.Security.CORSOrigins),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// auditUser records an administrative action on target by the caller.
func (h *Handler) auditUser(r *http.Request, typ audit.EventType, target *models.User, description string) {
	h.audit.Record(r, audit.Event{
		Type:        typ,
		Actor:       auth.UserFromContext(r.Context()),
		TargetType:  "user",
		TargetID:    userID(target),
		Description: description,
	})
}
