// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package models

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the envelope used by every JSON endpoint.
//
// Success:
//
//	{"status": "success", "message": "Greenhouse created successfully", "data": {...}}
//
// Validation failure:
//
//	{"status": "error", "message": "Validation failed", "errors": {"name": ["The name field is required."]}}
type APIResponse struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`

	// Set on login when the account still needs email verification.
	RequiresOTPVerification bool   `json:"requires_otp_verification,omitempty"`
	Email                   string `json:"email,omitempty"`
}

// AuthPayload is the data of a successful login or OTP verification.
type AuthPayload struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UserPayload wraps a single user, matching {"data": {"user": {...}}}.
type UserPayload struct {
	User *User `json:"user"`
}

// HealthPayload is the data of GET /api/health.
type HealthPayload struct {
	Database string `json:"database"`
}
