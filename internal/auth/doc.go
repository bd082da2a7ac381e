// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

/*
Package auth implements authentication for the Greenhouse API.

# Tokens

Bearer tokens are HS256 JWTs whose jti is the primary key of an
access_tokens row. Validation checks the signature, the algorithm and the
expiry, then requires the row to still exist, so deleting the row revokes
the token immediately:

	tm := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL, db)
	token, err := tm.Issue(ctx, user, "auth_token")
	claims, err := tm.Validate(ctx, token)

Login revokes every token the user holds before issuing a new one, and
logout deletes the current token.

# Middleware

Middleware.Authenticate reads "Authorization: Bearer <token>". WebSocket
upgrade requests may pass the token as a "token" query parameter instead,
because browsers cannot set headers on the upgrade. The authenticated user
and claims are stored on the request context:

	user := auth.UserFromContext(r.Context())

# Verification codes

OTPService issues six digit numeric codes from crypto/rand, stores them
with an expiry and mails them. Issuing a code invalidates any unused one.
Resends are throttled per email address.

# Account lockout

LockoutManager counts failed logins per email and per client IP. After
MaxAttempts failures the subject is locked for LockoutDuration, doubling
on each repeat lockout up to MaxLockoutDuration. State lives in memory or,
when a path is configured, in BadgerDB so it survives restarts.
*/
package auth
