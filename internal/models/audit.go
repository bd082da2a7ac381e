// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package models

import "time"

// AuditEvent is one entry of the security audit trail. Actor columns are
// copied rather than referenced so entries outlive deleted users.
type AuditEvent struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	OccurredAt  time.Time `gorm:"not null;index" json:"occurred_at"`
	Type        string    `gorm:"size:64;not null;index" json:"type"`
	Severity    string    `gorm:"size:16;not null" json:"severity"`
	Outcome     string    `gorm:"size:16;not null" json:"outcome"`
	ActorID     *uint     `gorm:"index" json:"actor_id"`
	ActorEmail  string    `gorm:"size:255" json:"actor_email,omitempty"`
	TargetType  string    `gorm:"size:32" json:"target_type,omitempty"`
	TargetID    string    `gorm:"size:64" json:"target_id,omitempty"`
	IPAddress   string    `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent   string    `gorm:"size:512" json:"user_agent,omitempty"`
	RequestID   string    `gorm:"size:64" json:"request_id,omitempty"`
	Description string    `gorm:"size:1024" json:"description"`
}

// TableName keeps the table name stable regardless of naming strategy.
func (AuditEvent) TableName() string { return "audit_events" }

// AuditEventsPayload is the data of the audit listing.
type AuditEventsPayload struct {
	Events []AuditEvent `json:"events"`
}
