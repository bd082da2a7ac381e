// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

// Package audit records security-relevant actions: sign-ins, lockouts,
// OTP verification, account administration and greenhouse control changes.
//
// Handlers call Recorder.Record with the request and an Event. The Logger
// stamps the entry with an ID, time, client address, user agent and request
// ID, then queues it. Its Serve loop (run under the supervisor) writes the
// queue to the database and prunes entries older than the retention window.
//
// Recording never blocks a request. When the queue is full the entry is
// dropped and a warning is logged.
package audit
