// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

/*
Package supervisor runs the long-lived parts of the server under suture v4.

The tree isolates failures by layer:

	greenhouse
	├── data-layer
	│   ├── janitor          (expired OTPs, tokens, resend limiters)
	│   ├── audit-logger     (audit trail writes and retention)
	│   └── lockout-cleanup  (idle lockout entries)
	├── messaging-layer
	│   ├── websocket-hub
	│   └── event-router     (watermill: domain events to the hub)
	└── api-layer
	    └── http-server

A crashing service is restarted by its layer supervisor with suture's
failure decay and backoff. Supervisor events are logged through
sutureslog on the zerolog-backed slog handler.

Services return ctx.Err() on shutdown and a wrapped error on failure. The
wrappers live in the services subpackage.
*/
package supervisor
