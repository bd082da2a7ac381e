// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/models"
)

// MsgUnauthenticated is the body message of every 401 response.
const MsgUnauthenticated = "Unauthenticated."

type contextKey string

const (
	// UserContextKey holds the authenticated *models.User.
	UserContextKey contextKey = "user"
	// ClaimsContextKey holds the validated *Claims.
	ClaimsContextKey contextKey = "claims"
)

// UserStore loads users by id. *database.DB implements it.
type UserStore interface {
	UserByID(ctx context.Context, id uint) (*models.User, error)
}

// Middleware authenticates requests with bearer tokens.
type Middleware struct {
	tokens *TokenManager
	users  UserStore
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(tokens *TokenManager, users UserStore) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Authenticate rejects requests without a valid token for an active user.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw := extractToken(r)
		if raw == "" {
			WriteUnauthenticated(w)
			return
		}

		claims, err := m.tokens.Validate(ctx, raw)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Msg("Token rejected")
			WriteUnauthenticated(w)
			return
		}

		user, err := m.users.UserByID(ctx, claims.UserID)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				logging.Ctx(ctx).Error().Err(err).Msg("Failed to load authenticated user")
			}
			WriteUnauthenticated(w)
			return
		}
		if !user.IsActive {
			WriteUnauthenticated(w)
			return
		}

		ctx = context.WithValue(ctx, UserContextKey, user)
		ctx = context.WithValue(ctx, ClaimsContextKey, claims)
		ctx = logging.ContextWithUserID(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken reads the bearer token. The query parameter is honored only
// on WebSocket upgrades so tokens do not end up in ordinary access logs.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if isWebSocketUpgrade(r) {
		return r.URL.Query().Get("token")
	}
	return ""
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserContextKey).(*models.User)
	return user
}

// ClaimsFromContext returns the validated token claims, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}

// ContextWithUser stores user on ctx the way Authenticate does.
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	ctx = context.WithValue(ctx, UserContextKey, user)
	return logging.ContextWithUserID(ctx, user.ID)
}

// WriteUnauthenticated writes the 401 envelope.
func WriteUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="greenhouse"`)
	writeError(w, http.StatusUnauthorized, MsgUnauthenticated)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{Status: models.StatusError, Message: message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Error encoding auth response")
	}
}
