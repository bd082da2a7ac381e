// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

/*
Package api serves the greenhouse REST API over a chi router.

Every response uses the models.APIResponse envelope:

	{"status": "success", "message": "Greenhouse created successfully", "data": {...}}
	{"status": "error", "message": "Validation failed", "errors": {"name": ["The name field is required."]}}

Route groups:

  - Public: /api/health, /api/register, /api/login, /api/verify-otp,
    /api/resend-otp. The auth routes carry stricter per-IP rate limits.
  - Authenticated: /api/user, /api/logout, /api/ws and the greenhouse,
    plant and sensor resources. Requests pass auth.Middleware.Authenticate
    and then the casbin policy in authz.
  - Admin: /api/users, allowed by the policy for the admin role only.

Farmers see only their own greenhouses and the plants, sensors and control
states under them; admins see everything. A row outside the caller's scope
is reported as not found.

/metrics exposes Prometheus metrics outside the /api tree.
*/
package api
