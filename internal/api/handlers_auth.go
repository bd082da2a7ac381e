// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/tomtom215/greenhouse/internal/audit"
	"github.com/tomtom215/greenhouse/internal/auth"
	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/metrics"
	"github.com/tomtom215/greenhouse/internal/models"
)

// Auth response messages.
const (
	MsgRegistered         = "Registration successful. Please verify your email with the OTP sent."
	MsgLoginSuccessful    = "Login successful"
	MsgInvalidCredentials = "Invalid credentials"
	MsgEmailNotVerified   = "Please verify your email address first."
	MsgAccountDeactivated = "Your account has been deactivated."
	MsgOTPVerified        = "OTP verified successfully"
	MsgOTPInvalid         = "Invalid or expired OTP code"
	MsgOTPSent            = "OTP sent successfully"
	MsgOTPThrottled       = "Please wait before requesting another OTP."
	MsgLoggedOut          = "Logged out successfully"
	MsgUserNotFound       = "User not found"
	MsgEmailTaken         = "The email has already been taken."
)

const (
	msgRegistrationFailed = "Registration failed"
	msgLoginFailed        = "Login failed"
	msgVerificationFailed = "OTP verification failed"
	msgResendFailed       = "Failed to resend OTP"
	msgLogoutFailed       = "Logout failed"
	msgUserFetchFailed    = "Failed to fetch user data"
)

// Login outcomes recorded in greenhouse_login_attempts_total.
const (
	loginResultSuccess    = "success"
	loginResultInvalid    = "invalid_credentials"
	loginResultLocked     = "locked"
	loginResultInactive   = "inactive"
	loginResultUnverified = "unverified"
)

// Register creates a farmer account and mails it a verification code.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.RegisterRequest
	if !bind(w, r, &req) {
		return
	}

	taken, err := h.db.EmailExists(ctx, req.Email, 0)
	if err != nil {
		respondInternal(w, r, err, msgRegistrationFailed)
		return
	}
	if taken {
		respondFieldError(w, "email", MsgEmailTaken)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondInternal(w, r, err, msgRegistrationFailed)
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleFarmer,
		IsActive: true,
	}
	if err := h.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			respondFieldError(w, "email", MsgEmailTaken)
			return
		}
		respondInternal(w, r, err, msgRegistrationFailed)
		return
	}

	if err := h.otp.Generate(ctx, user); err != nil {
		// Roll back so the address can register again once mail works.
		if delErr := h.db.DeleteUser(ctx, user.ID); delErr != nil {
			logging.Ctx(ctx).Error().Err(delErr).Uint("target_user_id", user.ID).Msg("Failed to remove user after OTP failure")
		}
		respondInternal(w, r, err, msgRegistrationFailed)
		return
	}

	h.audit.Record(r, audit.Event{Type: audit.EventRegistered, Actor: user, TargetType: "user", TargetID: userID(user)})
	logging.Ctx(ctx).Info().Uint("target_user_id", user.ID).Msg("User registered")
	respondSuccess(w, http.StatusCreated, MsgRegistered, models.UserPayload{User: user})
}

// Login exchanges credentials for a token. All earlier tokens of the user
// are revoked.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.LoginRequest
	if !bind(w, r, &req) {
		return
	}

	subject := req.Email
	ip := clientIP(r)

	locked, remaining, err := h.lockout.CheckLogin(ctx, subject, ip)
	if err != nil {
		respondInternal(w, r, err, msgLoginFailed)
		return
	}
	if locked {
		metrics.RecordLogin(loginResultLocked)
		h.audit.Record(r, audit.Event{
			Type:        audit.EventLoginFailure,
			Outcome:     audit.OutcomeFailure,
			ActorEmail:  subject,
			Description: "Login rejected while locked out",
		})
		auth.WriteLockoutResponse(w, remaining)
		return
	}

	user, err := h.db.UserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		respondInternal(w, r, err, msgLoginFailed)
		return
	}
	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		metrics.RecordLogin(loginResultInvalid)
		h.audit.Record(r, audit.Event{
			Type:        audit.EventLoginFailure,
			Outcome:     audit.OutcomeFailure,
			ActorEmail:  subject,
			Description: "Invalid credentials",
		})
		nowLocked, _, err := h.lockout.RecordFailedAttempt(ctx, subject, ip)
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Msg("Failed to record login failure")
		}
		if nowLocked {
			h.audit.Record(r, audit.Event{
				Type:        audit.EventLockout,
				Outcome:     audit.OutcomeFailure,
				Severity:    audit.SeverityCritical,
				ActorEmail:  subject,
				Description: "Too many failed login attempts",
			})
		}
		respondError(w, http.StatusUnauthorized, MsgInvalidCredentials)
		return
	}

	if err := h.lockout.RecordSuccessfulLogin(ctx, subject); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to clear login failures")
	}

	if !user.IsActive {
		metrics.RecordLogin(loginResultInactive)
		respondError(w, http.StatusForbidden, MsgAccountDeactivated)
		return
	}

	if !user.IsVerified() {
		metrics.RecordLogin(loginResultUnverified)
		respondJSON(w, http.StatusForbidden, &models.APIResponse{
			Status:                  models.StatusError,
			Message:                 MsgEmailNotVerified,
			RequiresOTPVerification: true,
			Email:                   user.Email,
		})
		return
	}

	if _, err := h.tokens.RevokeAll(ctx, user.ID); err != nil {
		respondInternal(w, r, err, msgLoginFailed)
		return
	}

	token, err := h.startSession(ctx, user)
	if err != nil {
		respondInternal(w, r, err, msgLoginFailed)
		return
	}

	metrics.RecordLogin(loginResultSuccess)
	h.audit.Record(r, audit.Event{Type: audit.EventLoginSuccess, Actor: user})
	logging.Ctx(ctx).Info().Uint("target_user_id", user.ID).Msg("User logged in")
	respondSuccess(w, http.StatusOK, MsgLoginSuccessful, models.AuthPayload{User: user, Token: token})
}

// VerifyOTP consumes a verification code, marks the email verified and
// signs the user in.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.VerifyOTPRequest
	if !bind(w, r, &req) {
		return
	}

	user, err := h.db.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgUserNotFound)
			return
		}
		respondInternal(w, r, err, msgVerificationFailed)
		return
	}

	if err := h.otp.Verify(ctx, user, req.OTP); err != nil {
		if errors.Is(err, auth.ErrInvalidOTP) {
			respondError(w, http.StatusUnprocessableEntity, MsgOTPInvalid)
			return
		}
		respondInternal(w, r, err, msgVerificationFailed)
		return
	}

	if !user.IsVerified() {
		now := h.now()
		if err := h.db.MarkEmailVerified(ctx, user.ID, now); err != nil {
			respondInternal(w, r, err, msgVerificationFailed)
			return
		}
		user.EmailVerifiedAt = &now
	}

	token, err := h.startSession(ctx, user)
	if err != nil {
		respondInternal(w, r, err, msgVerificationFailed)
		return
	}

	h.audit.Record(r, audit.Event{Type: audit.EventOTPVerified, Actor: user})
	respondSuccess(w, http.StatusOK, MsgOTPVerified, models.AuthPayload{User: user, Token: token})
}

// ResendOTP mails a fresh code, at most once per resend interval per address.
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.ResendOTPRequest
	if !bind(w, r, &req) {
		return
	}

	user, err := h.db.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, MsgUserNotFound)
			return
		}
		respondInternal(w, r, err, msgResendFailed)
		return
	}

	if err := h.otp.Resend(ctx, user); err != nil {
		if errors.Is(err, auth.ErrOTPThrottled) {
			respondError(w, http.StatusTooManyRequests, MsgOTPThrottled)
			return
		}
		respondInternal(w, r, err, msgResendFailed)
		return
	}

	respondSuccess(w, http.StatusOK, MsgOTPSent, nil)
}

// CurrentUser returns the authenticated user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		respondInternal(w, r, errors.New("no user in context"), msgUserFetchFailed)
		return
	}
	respondSuccess(w, http.StatusOK, "", models.UserPayload{User: user})
}

// Logout revokes the token used for this request.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := auth.UserFromContext(ctx)
	claims := auth.ClaimsFromContext(ctx)
	if user == nil || claims == nil {
		auth.WriteUnauthenticated(w)
		return
	}

	if err := h.tokens.Revoke(ctx, claims.ID); err != nil && !errors.Is(err, database.ErrNotFound) {
		respondInternal(w, r, err, msgLogoutFailed)
		return
	}
	if err := h.db.SetLoggedIn(ctx, user.ID, false); err != nil {
		respondInternal(w, r, err, msgLogoutFailed)
		return
	}

	h.audit.Record(r, audit.Event{Type: audit.EventLogout, Actor: user})
	logging.Ctx(ctx).Info().Msg("User logged out")
	respondSuccess(w, http.StatusOK, MsgLoggedOut, nil)
}

// startSession issues a token and flags the user as logged in.
func (h *Handler) startSession(ctx context.Context, user *models.User) (string, error) {
	token, err := h.tokens.Issue(ctx, user, auth.DefaultTokenName)
	if err != nil {
		return "", err
	}
	if err := h.db.SetLoggedIn(ctx, user.ID, true); err != nil {
		return "", err
	}
	user.IsLoggedIn = true
	return token, nil
}

// clientIP returns the host part of RemoteAddr. RealIP, when enabled,
// has already replaced it with the forwarded address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func userID(u *models.User) string {
	return strconv.FormatUint(uint64(u.ID), 10)
}
