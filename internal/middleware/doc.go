// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

/*
Package middleware provides the infrastructure HTTP middleware shared by every
route: request IDs, access logging, Prometheus instrumentation, security
headers and gzip compression.

All middleware uses the func(http.Handler) http.Handler shape so it plugs
directly into chi's r.Use. Authentication and authorization live in the auth
and authz packages; CORS and rate limiting are configured by the api package.

Typical stack, outermost first:

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Compression)
*/
package middleware
