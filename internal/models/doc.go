// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

// Package models defines the persisted entities, the HTTP request bodies and
// the response envelope shared by the API and the store.
//
// Entities are gorm models and double as response bodies. Secrets such as
// password hashes and OTP codes carry `json:"-"`. Request types are separate
// structs so a client can never set ownership, role or activation through a
// resource endpoint.
//
// Relationships (all ON DELETE CASCADE):
//
//	users ─┬─< greenhouses ─┬─< plants
//	       │                ├─< sensors
//	       │                └─< control_states
//	       ├─< otps
//	       └─< access_tokens
package models
