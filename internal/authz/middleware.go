// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package authz

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/greenhouse/internal/auth"
	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/models"
)

// MsgForbidden is the body message of every 403 response.
const MsgForbidden = "This action is unauthorized."

// Middleware authorizes authenticated requests by role.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates the authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// Authorize checks the caller's role against the request path and method.
// It must run after auth.Middleware.Authenticate.
func (m *Middleware) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		if user == nil {
			auth.WriteUnauthenticated(w)
			return
		}

		allowed, err := m.enforcer.Enforce(user.Role, r.URL.Path, MethodToAction(r.Method))
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !allowed {
			logging.Ctx(r.Context()).Debug().
				Str("role", user.Role).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg("Access denied")
			writeError(w, http.StatusForbidden, MsgForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// MethodToAction maps HTTP methods to Casbin actions.
func MethodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.APIResponse{Status: models.StatusError, Message: message}); err != nil {
		logging.Error().Err(err).Msg("Error encoding authorization response")
	}
}
