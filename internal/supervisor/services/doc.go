// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

// Package services adapts the server's long-running components to
// suture.Service.
//
// Each wrapper blocks in Serve until its context is canceled and returns
// ctx.Err() on clean shutdown. Any other error makes the parent supervisor
// restart the service.
package services
