// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/greenhouse/internal/audit"
	"github.com/tomtom215/greenhouse/internal/auth"
	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/models"
	"github.com/tomtom215/greenhouse/internal/validation"
)

// User administration messages.
const (
	MsgUserCreated        = "User created successfully"
	MsgUserUpdated        = "User updated successfully"
	MsgUserDeleted        = "User deleted successfully"
	MsgUserActivated      = "User activated successfully"
	MsgUserDeactivated    = "User deactivated successfully"
	MsgPermissionsUpdated = "User permissions updated successfully"
	MsgUsernameTaken      = "The username has already been taken."
	MsgCannotDeleteSelf   = "You cannot delete your own account."
	MsgCannotDisableSelf  = "You cannot deactivate your own account."
	MsgCannotDemoteSelf   = "You cannot remove your own admin role."
)

// ListUsers returns every user.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.ListUsers(r.Context())
	if err != nil {
		respondInternal(w, r, err, "Failed to fetch users")
		return
	}
	respondSuccess(w, http.StatusOK, "", users)
}

// CreateUser creates an active user whose email counts as verified.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CreateUserRequest
	if !bind(w, r, &req) {
		return
	}

	ve, err := h.checkUnique(ctx, req.Email, req.Username, 0)
	if err != nil {
		respondInternal(w, r, err, "Failed to create user")
		return
	}
	if ve != nil {
		respondValidation(w, ve)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondInternal(w, r, err, "Failed to create user")
		return
	}

	now := h.now()
	user := &models.User{
		Name:            req.Name,
		Email:           req.Email,
		Username:        req.Username,
		Password:        hash,
		Role:            req.Role,
		IsActive:        true,
		EmailVerifiedAt: &now,
	}
	if err := h.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			h.respondDuplicateUser(w, r, err, req.Email, req.Username, 0, "Failed to create user")
			return
		}
		respondInternal(w, r, err, "Failed to create user")
		return
	}

	h.auditUser(r, audit.EventUserCreated, user, "Created "+user.Email+" as "+user.Role)
	logging.Ctx(ctx).Info().Uint("target_user_id", user.ID).Str("role", user.Role).Msg("User created by admin")
	respondSuccess(w, http.StatusCreated, MsgUserCreated, models.UserPayload{User: user})
}

// GetUser returns one user.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	respondSuccess(w, http.StatusOK, "", models.UserPayload{User: user})
}

// UpdateUser applies the fields present in the body.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.UpdateUserRequest
	if !bind(w, r, &req) {
		return
	}

	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}

	email := ""
	if req.Email != nil && *req.Email != user.Email {
		email = *req.Email
	}
	ve, err := h.checkUnique(ctx, email, req.Username, user.ID)
	if err != nil {
		respondInternal(w, r, err, "Failed to update user")
		return
	}
	if ve != nil {
		respondValidation(w, ve)
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Username != nil {
		user.Username = req.Username
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			respondInternal(w, r, err, "Failed to update user")
			return
		}
		user.Password = hash
	}

	if err := h.db.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			respondError(w, http.StatusNotFound, MsgUserNotFound)
		case errors.Is(err, database.ErrDuplicate):
			h.respondDuplicateUser(w, r, err, email, req.Username, user.ID, "Failed to update user")
		default:
			respondInternal(w, r, err, "Failed to update user")
		}
		return
	}

	h.auditUser(r, audit.EventUserModified, user, "Updated "+user.Email)
	respondSuccess(w, http.StatusOK, MsgUserUpdated, models.UserPayload{User: user})
}

// DeleteUser removes a user and everything they own. Admins cannot delete
// their own account.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	if caller := auth.UserFromContext(ctx); caller != nil && caller.ID == user.ID {
		respondError(w, http.StatusUnprocessableEntity, MsgCannotDeleteSelf)
		return
	}

	if err := h.db.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgUserNotFound)
			return
		}
		respondInternal(w, r, err, "Failed to delete user")
		return
	}

	h.auditUser(r, audit.EventUserDeleted, user, "Deleted "+user.Email)
	logging.Ctx(ctx).Info().Uint("target_user_id", user.ID).Msg("User deleted by admin")
	respondSuccess(w, http.StatusOK, MsgUserDeleted, nil)
}

// ToggleUserStatus activates or deactivates a user. Deactivation revokes
// every token of the user.
func (h *Handler) ToggleUserStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	if caller := auth.UserFromContext(ctx); caller != nil && caller.ID == user.ID {
		respondError(w, http.StatusUnprocessableEntity, MsgCannotDisableSelf)
		return
	}

	active := !user.IsActive
	if err := h.db.SetActive(ctx, user.ID, active); err != nil {
		respondInternal(w, r, err, "Failed to update user status")
		return
	}
	user.IsActive = active

	message := MsgUserActivated
	if !active {
		message = MsgUserDeactivated
		revoked, err := h.tokens.RevokeAll(ctx, user.ID)
		if err != nil {
			respondInternal(w, r, err, "Failed to update user status")
			return
		}
		if err := h.db.SetLoggedIn(ctx, user.ID, false); err != nil {
			respondInternal(w, r, err, "Failed to update user status")
			return
		}
		user.IsLoggedIn = false
		logging.Ctx(ctx).Info().Uint("target_user_id", user.ID).Int64("revoked_tokens", revoked).Msg("User deactivated")
	}

	event := audit.EventUserActivated
	if !active {
		event = audit.EventUserDeactivated
	}
	h.auditUser(r, event, user, user.Email)
	respondSuccess(w, http.StatusOK, message, models.UserPayload{User: user})
}

// UpdateUserPermissions changes a user's role. Admins cannot demote themselves.
func (h *Handler) UpdateUserPermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.PermissionsRequest
	if !bind(w, r, &req) {
		return
	}

	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	caller := auth.UserFromContext(ctx)
	if caller != nil && caller.ID == user.ID && req.Role != models.RoleAdmin {
		respondError(w, http.StatusUnprocessableEntity, MsgCannotDemoteSelf)
		return
	}

	if err := h.db.SetRole(ctx, user.ID, req.Role); err != nil {
		respondInternal(w, r, err, "Failed to update permissions")
		return
	}
	user.Role = req.Role

	h.auditUser(r, audit.EventRoleAssigned, user, user.Email+" is now "+user.Role)
	logging.Ctx(ctx).Info().Uint("target_user_id", user.ID).Str("role", user.Role).Msg("User role changed")
	respondSuccess(w, http.StatusOK, MsgPermissionsUpdated, models.UserPayload{User: user})
}

func (h *Handler) loadUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusNotFound, MsgUserNotFound)
		return nil, false
	}

	user, err := h.db.UserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgUserNotFound)
			return nil, false
		}
		respondInternal(w, r, err, "Failed to fetch user")
		return nil, false
	}
	return user, true
}

// checkUnique reports taken emails and usernames as field errors. An empty
// email and a nil username are not checked.
func (h *Handler) checkUnique(ctx context.Context, email string, username *string, excludeID uint) (*validation.RequestValidationError, error) {
	var ve *validation.RequestValidationError

	if email != "" {
		taken, err := h.db.EmailExists(ctx, email, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			ve = addFieldError(ve, "email", MsgEmailTaken)
		}
	}
	if username != nil {
		taken, err := h.db.UsernameExists(ctx, *username, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			ve = addFieldError(ve, "username", MsgUsernameTaken)
		}
	}
	return ve, nil
}

// respondDuplicateUser answers a write that lost a race on a unique column.
// It re-runs checkUnique to name the column that collided; if neither is
// taken any more the original error is reported as internal.
func (h *Handler) respondDuplicateUser(w http.ResponseWriter, r *http.Request, err error, email string, username *string, excludeID uint, message string) {
	ve, checkErr := h.checkUnique(r.Context(), email, username, excludeID)
	if checkErr != nil {
		respondInternal(w, r, checkErr, message)
		return
	}
	if ve == nil {
		respondInternal(w, r, err, message)
		return
	}
	respondValidation(w, ve)
}

func addFieldError(ve *validation.RequestValidationError, field, message string) *validation.RequestValidationError {
	if ve == nil {
		return validation.NewFieldError(field, message)
	}
	ve.Add(field, message)
	return ve
}
