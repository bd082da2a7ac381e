// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package audit

import (
	"net/http"

	"github.com/tomtom215/greenhouse/internal/models"
)

// EventType categorizes an audit event.
type EventType string

const (
	// Authentication
	EventRegistered   EventType = "auth.registered"
	EventLoginSuccess EventType = "auth.login_success"
	EventLoginFailure EventType = "auth.login_failure"
	EventLockout      EventType = "auth.lockout"
	EventOTPVerified  EventType = "auth.otp_verified"
	EventLogout       EventType = "auth.logout"

	// User administration
	EventUserCreated     EventType = "user.created"
	EventUserModified    EventType = "user.modified"
	EventUserDeleted     EventType = "user.deleted"
	EventUserActivated   EventType = "user.activated"
	EventUserDeactivated EventType = "user.deactivated"
	EventRoleAssigned    EventType = "user.role_assigned"

	// Greenhouse operations
	EventControlChanged EventType = "greenhouse.control_changed"
)

// Severity of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Outcome of the audited action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is what a handler reports. Request metadata is filled in by the
// Recorder.
type Event struct {
	Type    EventType
	Outcome Outcome

	// Severity defaults to info for successes and warning for failures.
	Severity Severity

	// Actor is the authenticated user, if any. ActorEmail covers
	// unauthenticated attempts such as a failed login.
	Actor      *models.User
	ActorEmail string

	TargetType  string
	TargetID    string
	Description string
}

// Recorder accepts audit events.
type Recorder interface {
	Record(r *http.Request, ev Event)
}

// Nop discards every event.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(*http.Request, Event) {}
