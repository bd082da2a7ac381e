// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/greenhouse/internal/config"
	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/models"
)

// lockoutRetention keeps unlocked entries around so repeat offenders still
// get the doubled lockout.
const lockoutRetention = 24 * time.Hour

// ErrLockoutNotFound is returned when a lockout entry doesn't exist.
var ErrLockoutNotFound = errors.New("lockout entry not found")

// LockoutConfig holds configuration for the account lockout system.
type LockoutConfig struct {
	MaxAttempts     int
	LockoutDuration time.Duration
	// MaxLockoutDuration caps the doubled lockout period.
	MaxLockoutDuration time.Duration
	// TrackByIP also counts failures per client IP.
	TrackByIP bool
	Enabled   bool
}

// DefaultLockoutConfig returns the lockout defaults.
func DefaultLockoutConfig() *LockoutConfig {
	return &LockoutConfig{
		MaxAttempts:        5,
		LockoutDuration:    15 * time.Minute,
		MaxLockoutDuration: 24 * time.Hour,
		TrackByIP:          true,
		Enabled:            true,
	}
}

// LockoutConfigFrom maps security settings onto a LockoutConfig.
func LockoutConfigFrom(cfg *config.SecurityConfig) *LockoutConfig {
	lc := DefaultLockoutConfig()
	lc.Enabled = cfg.LockoutEnabled
	if cfg.LockoutMaxAttempts > 0 {
		lc.MaxAttempts = cfg.LockoutMaxAttempts
	}
	if cfg.LockoutDuration > 0 {
		lc.LockoutDuration = cfg.LockoutDuration
	}
	return lc
}

// LockoutEntry tracks failed login attempts for a subject (email or "ip:<addr>").
type LockoutEntry struct {
	Subject        string    `json:"subject"`
	FailedAttempts int       `json:"failed_attempts"`
	LastAttempt    time.Time `json:"last_attempt"`
	LockoutCount   int       `json:"lockout_count"`
	LockedUntil    time.Time `json:"locked_until"`
	LastFailedIP   string    `json:"last_failed_ip,omitempty"`
}

// IsLockedAt reports whether the entry is locked at now.
func (e *LockoutEntry) IsLockedAt(now time.Time) bool {
	return now.Before(e.LockedUntil)
}

// expiredAt reports whether the entry can be forgotten.
func (e *LockoutEntry) expiredAt(now time.Time) bool {
	return !e.IsLockedAt(now) && e.LastAttempt.Before(now.Add(-lockoutRetention))
}

// LockoutStore persists lockout state.
type LockoutStore interface {
	GetEntry(ctx context.Context, subject string) (*LockoutEntry, error)
	SaveEntry(ctx context.Context, entry *LockoutEntry) error
	DeleteEntry(ctx context.Context, subject string) error
	ListLockedEntries(ctx context.Context, now time.Time) ([]*LockoutEntry, error)
	CleanupExpired(ctx context.Context, now time.Time) (int, error)
}

// LockoutManager handles account lockout logic.
type LockoutManager struct {
	config *LockoutConfig
	store  LockoutStore
	now    func() time.Time
	// mu serializes read-modify-write of entries.
	mu sync.Mutex
}

// NewLockoutManager creates a new lockout manager.
func NewLockoutManager(store LockoutStore, cfg *LockoutConfig) *LockoutManager {
	if cfg == nil {
		cfg = DefaultLockoutConfig()
	}
	return &LockoutManager{config: cfg, store: store, now: time.Now}
}

// IPSubject returns the lockout subject for a client IP.
func IPSubject(ip string) string {
	return "ip:" + ip
}

// CheckLocked reports whether subject is locked and for how much longer.
func (m *LockoutManager) CheckLocked(ctx context.Context, subject string) (bool, time.Duration, error) {
	if !m.config.Enabled || subject == "" {
		return false, 0, nil
	}

	entry, err := m.store.GetEntry(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrLockoutNotFound) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("check lockout: %w", err)
	}

	now := m.now()
	if !entry.IsLockedAt(now) {
		return false, 0, nil
	}
	return true, entry.LockedUntil.Sub(now), nil
}

// CheckLogin checks both the email and the client IP.
func (m *LockoutManager) CheckLogin(ctx context.Context, email, ip string) (bool, time.Duration, error) {
	locked, remaining, err := m.CheckLocked(ctx, email)
	if err != nil || locked {
		return locked, remaining, err
	}
	if !m.config.TrackByIP || ip == "" {
		return false, 0, nil
	}
	return m.CheckLocked(ctx, IPSubject(ip))
}

// RecordFailedAttempt records a failed login against the email and, when IP
// tracking is on, against the client IP. Both counters are incremented even
// when the email locks on this attempt. It reports whether either subject is
// now locked, with the longer of the two remaining durations.
func (m *LockoutManager) RecordFailedAttempt(ctx context.Context, email, ip string) (locked bool, remaining time.Duration, err error) {
	if !m.config.Enabled {
		return false, 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	locked, remaining, err = m.recordAttemptForSubject(ctx, email, ip)
	if err != nil {
		return false, 0, err
	}

	if !m.config.TrackByIP || ip == "" {
		return locked, remaining, nil
	}

	ipLocked, ipRemaining, err := m.recordAttemptForSubject(ctx, IPSubject(ip), ip)
	if err != nil {
		return false, 0, err
	}
	if ipRemaining > remaining {
		remaining = ipRemaining
	}
	return locked || ipLocked, remaining, nil
}

// calculateLockoutDuration doubles the base duration for each previous lockout.
func calculateLockoutDuration(cfg *LockoutConfig, lockoutCount int) time.Duration {
	duration := cfg.LockoutDuration
	if lockoutCount == 0 {
		return duration
	}

	// Cap the shift so the multiplication cannot overflow.
	if lockoutCount > 16 {
		lockoutCount = 16
	}
	duration = time.Duration(int64(duration) * int64(1<<lockoutCount))

	if cfg.MaxLockoutDuration > 0 && duration > cfg.MaxLockoutDuration {
		return cfg.MaxLockoutDuration
	}
	return duration
}

func (m *LockoutManager) recordAttemptForSubject(ctx context.Context, subject, ip string) (bool, time.Duration, error) {
	entry, err := m.store.GetEntry(ctx, subject)
	if err != nil {
		if !errors.Is(err, ErrLockoutNotFound) {
			return false, 0, fmt.Errorf("get entry: %w", err)
		}
		entry = &LockoutEntry{Subject: subject}
	}

	now := m.now()
	if entry.IsLockedAt(now) {
		return true, entry.LockedUntil.Sub(now), nil
	}

	entry.FailedAttempts++
	entry.LastAttempt = now
	entry.LastFailedIP = ip

	if entry.FailedAttempts < m.config.MaxAttempts {
		if err := m.store.SaveEntry(ctx, entry); err != nil {
			return false, 0, fmt.Errorf("save entry: %w", err)
		}
		return false, 0, nil
	}

	duration := calculateLockoutDuration(m.config, entry.LockoutCount)
	entry.LockedUntil = now.Add(duration)
	entry.LockoutCount++
	entry.FailedAttempts = 0

	logging.Ctx(ctx).Warn().
		Str("subject", entry.Subject).
		Dur("duration", duration).
		Int("lockout_count", entry.LockoutCount).
		Msg("Account locked")

	if err := m.store.SaveEntry(ctx, entry); err != nil {
		return false, 0, fmt.Errorf("save locked entry: %w", err)
	}
	return true, duration, nil
}

// RecordSuccessfulLogin clears the failure count for email. The IP entry
// is kept so one valid account cannot launder a brute force from that IP.
func (m *LockoutManager) RecordSuccessfulLogin(ctx context.Context, email string) error {
	if !m.config.Enabled {
		return nil
	}
	return m.ClearLockout(ctx, email)
}

// ClearLockout removes any lockout state for subject.
func (m *LockoutManager) ClearLockout(ctx context.Context, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.DeleteEntry(ctx, subject); err != nil && !errors.Is(err, ErrLockoutNotFound) {
		return fmt.Errorf("clear lockout: %w", err)
	}
	return nil
}

// LockedEntries returns all currently locked subjects.
func (m *LockoutManager) LockedEntries(ctx context.Context) ([]*LockoutEntry, error) {
	entries, err := m.store.ListLockedEntries(ctx, m.now())
	if err != nil {
		return nil, fmt.Errorf("list locked: %w", err)
	}
	return entries, nil
}

// Cleanup removes entries that are unlocked and idle past the retention window.
func (m *LockoutManager) Cleanup(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.CleanupExpired(ctx, m.now())
}

// WriteLockoutResponse writes a 429 envelope with Retry-After.
func WriteLockoutResponse(w http.ResponseWriter, remaining time.Duration) {
	secs := int(remaining.Round(time.Second).Seconds())
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	w.WriteHeader(http.StatusTooManyRequests)

	resp := models.APIResponse{
		Status:  models.StatusError,
		Message: fmt.Sprintf("Too many login attempts. Please try again in %d seconds.", secs),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Error encoding lockout response")
	}
}

// MemoryLockoutStore keeps lockout state in process memory.
type MemoryLockoutStore struct {
	entries map[string]*LockoutEntry
	mu      sync.RWMutex
}

// NewMemoryLockoutStore creates a new in-memory lockout store.
func NewMemoryLockoutStore() *MemoryLockoutStore {
	return &MemoryLockoutStore{entries: make(map[string]*LockoutEntry)}
}

// GetEntry returns a copy of the entry for subject.
func (s *MemoryLockoutStore) GetEntry(_ context.Context, subject string) (*LockoutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[subject]
	if !ok {
		return nil, ErrLockoutNotFound
	}
	return copyEntry(entry), nil
}

// SaveEntry stores a copy of entry.
func (s *MemoryLockoutStore) SaveEntry(_ context.Context, entry *LockoutEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Subject] = copyEntry(entry)
	return nil
}

// DeleteEntry removes the entry for subject.
func (s *MemoryLockoutStore) DeleteEntry(_ context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[subject]; !ok {
		return ErrLockoutNotFound
	}
	delete(s.entries, subject)
	return nil
}

// ListLockedEntries returns entries locked at now.
func (s *MemoryLockoutStore) ListLockedEntries(_ context.Context, now time.Time) ([]*LockoutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var locked []*LockoutEntry
	for _, entry := range s.entries {
		if entry.IsLockedAt(now) {
			locked = append(locked, copyEntry(entry))
		}
	}
	return locked, nil
}

// CleanupExpired removes entries idle past the retention window.
func (s *MemoryLockoutStore) CleanupExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for subject, entry := range s.entries {
		if entry.expiredAt(now) {
			delete(s.entries, subject)
			count++
		}
	}
	return count, nil
}

func copyEntry(entry *LockoutEntry) *LockoutEntry {
	copied := *entry
	return &copied
}
