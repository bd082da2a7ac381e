// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package services

import (
	"context"
	"time"

	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/metrics"
)

// ExpiryStore deletes rows that have passed their expiry.
// *database.DB satisfies it.
type ExpiryStore interface {
	DeleteExpiredOTPs(ctx context.Context, now time.Time) (int64, error)
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// LimiterPruner drops idle in-memory rate limiters.
// *auth.OTPService satisfies it.
type LimiterPruner interface {
	PruneLimiters() int
}

// JanitorService keeps the auth tables bounded. Each sweep:
//
//  1. Deletes OTP codes past their expiry
//  2. Deletes access token records past their expiry
//  3. Drops OTP resend limiters idle for longer than their window
//
// Deletion counts are exported on greenhouse_janitor_deleted_total,
// labeled by kind. A failed step is logged and retried on the next tick
// without failing the service.
//
// Example usage:
//
//	janitor := services.NewJanitorService(db, otpService, cfg.OTP.CleanupInterval)
//	tree.AddDataService(janitor)
type JanitorService struct {
	store    ExpiryStore
	pruner   LimiterPruner
	interval time.Duration
	now      func() time.Time
	name     string
}

// NewJanitorService sweeps every interval. A non-positive interval means 15m.
// pruner may be nil.
func NewJanitorService(store ExpiryStore, pruner LimiterPruner, interval time.Duration) *JanitorService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &JanitorService{
		store:    store,
		pruner:   pruner,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		name:     "janitor",
	}
}

// Serve implements suture.Service. It sweeps once at start, then on every tick.
// Sweep errors are logged and retried on the next tick.
func (j *JanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		j.Sweep(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep runs one cleanup pass.
func (j *JanitorService) Sweep(ctx context.Context) {
	now := j.now()

	if n, err := j.store.DeleteExpiredOTPs(ctx, now); err != nil {
		if ctx.Err() == nil {
			logging.Error().Err(err).Msg("Failed to delete expired OTPs")
		}
	} else {
		metrics.RecordJanitorDeleted("otp", n)
	}

	if n, err := j.store.DeleteExpiredTokens(ctx, now); err != nil {
		if ctx.Err() == nil {
			logging.Error().Err(err).Msg("Failed to delete expired tokens")
		}
	} else {
		metrics.RecordJanitorDeleted("token", n)
	}

	if j.pruner != nil {
		metrics.RecordJanitorDeleted("otp_limiter", int64(j.pruner.PruneLimiters()))
	}
}

func (j *JanitorService) String() string {
	return j.name
}
