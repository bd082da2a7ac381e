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

// LockoutCleaner removes lockout entries that are no longer needed.
// *auth.LockoutManager satisfies it.
type LockoutCleaner interface {
	Cleanup(ctx context.Context) (int, error)
}

// LockoutCleanupService prunes idle login lockout entries on an interval.
type LockoutCleanupService struct {
	cleaner  LockoutCleaner
	interval time.Duration
	name     string
}

// NewLockoutCleanupService cleans every interval. A non-positive interval
// means 5m.
func NewLockoutCleanupService(cleaner LockoutCleaner, interval time.Duration) *LockoutCleanupService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &LockoutCleanupService{cleaner: cleaner, interval: interval, name: "lockout-cleanup"}
}

// Serve implements suture.Service.
func (l *LockoutCleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := l.cleaner.Cleanup(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logging.Warn().Err(err).Msg("Lockout cleanup failed")
				}
				continue
			}
			metrics.RecordJanitorDeleted("lockout", int64(n))
		}
	}
}

func (l *LockoutCleanupService) String() string {
	return l.name
}
