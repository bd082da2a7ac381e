// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package audit

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/greenhouse/internal/config"
	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/metrics"
	"github.com/tomtom215/greenhouse/internal/models"
)

// Store persists audit entries. *database.DB satisfies it.
type Store interface {
	CreateAuditEvent(ctx context.Context, ev *models.AuditEvent) error
	DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Logger queues events and writes them from its Serve loop.
type Logger struct {
	store     Store
	queue     chan *models.AuditEvent
	retention time.Duration
	cleanup   time.Duration
	now       func() time.Time
}

// NewLogger creates a Logger for store. Zero config fields take defaults:
// a 1000 entry queue, 90 days retention and a daily cleanup.
func NewLogger(store Store, cfg config.AuditConfig) *Logger {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 90 * 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 24 * time.Hour
	}
	return &Logger{
		store:     store,
		queue:     make(chan *models.AuditEvent, cfg.BufferSize),
		retention: cfg.Retention,
		cleanup:   cfg.CleanupInterval,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Record implements Recorder. It never blocks.
func (l *Logger) Record(r *http.Request, ev Event) {
	entry := l.entry(r, ev)

	logging.Ctx(r.Context()).Debug().
		Str("audit_type", entry.Type).
		Str("outcome", entry.Outcome).
		Str("target", entry.TargetType+":"+entry.TargetID).
		Msg("Audit event")

	select {
	case l.queue <- entry:
	default:
		metrics.AuditEventsDropped.Inc()
		logging.Warn().Str("audit_type", entry.Type).Msg("Audit queue full, dropping event")
	}
}

func (l *Logger) entry(r *http.Request, ev Event) *models.AuditEvent {
	severity := ev.Severity
	if severity == "" {
		severity = SeverityInfo
		if ev.Outcome == OutcomeFailure {
			severity = SeverityWarning
		}
	}
	outcome := ev.Outcome
	if outcome == "" {
		outcome = OutcomeSuccess
	}

	entry := &models.AuditEvent{
		ID:          uuid.NewString(),
		OccurredAt:  l.now(),
		Type:        string(ev.Type),
		Severity:    string(severity),
		Outcome:     string(outcome),
		ActorEmail:  ev.ActorEmail,
		TargetType:  ev.TargetType,
		TargetID:    ev.TargetID,
		IPAddress:   remoteHost(r),
		UserAgent:   truncate(r.UserAgent(), 512),
		RequestID:   logging.RequestIDFromContext(r.Context()),
		Description: truncate(ev.Description, 1024),
	}
	if ev.Actor != nil {
		id := ev.Actor.ID
		entry.ActorID = &id
		if entry.ActorEmail == "" {
			entry.ActorEmail = ev.Actor.Email
		}
	}
	return entry
}

// Serve implements suture.Service. On cancellation it drains the queue
// before returning.
func (l *Logger) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.drain()
			return ctx.Err()
		case entry := <-l.queue:
			l.write(entry)
		case <-ticker.C:
			l.prune(ctx)
		}
	}
}

func (l *Logger) drain() {
	for {
		select {
		case entry := <-l.queue:
			l.write(entry)
		default:
			return
		}
	}
}

// write uses its own deadline so entries queued before shutdown still land.
func (l *Logger) write(entry *models.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.store.CreateAuditEvent(ctx, entry); err != nil {
		logging.Error().Err(err).Str("audit_type", entry.Type).Msg("Failed to save audit event")
		return
	}
	metrics.AuditEventsWritten.WithLabelValues(entry.Type).Inc()
}

func (l *Logger) prune(ctx context.Context) {
	n, err := l.store.DeleteAuditEventsBefore(ctx, l.now().Add(-l.retention))
	if err != nil {
		if ctx.Err() == nil {
			logging.Error().Err(err).Msg("Audit retention cleanup failed")
		}
		return
	}
	metrics.RecordJanitorDeleted("audit", n)
}

func (l *Logger) String() string {
	return "audit-logger"
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
