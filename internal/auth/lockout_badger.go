// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const lockoutKeyPrefix = "lockout:"

// BadgerLockoutStore persists lockout state in BadgerDB so it survives restarts.
type BadgerLockoutStore struct {
	db *badger.DB
}

// OpenBadgerLockoutStore opens (or creates) a BadgerDB at path.
func OpenBadgerLockoutStore(path string) (*BadgerLockoutStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open lockout store: %w", err)
	}
	return NewBadgerLockoutStore(db), nil
}

// NewBadgerLockoutStore wraps an open BadgerDB.
func NewBadgerLockoutStore(db *badger.DB) *BadgerLockoutStore {
	return &BadgerLockoutStore{db: db}
}

// Close closes the underlying database.
func (s *BadgerLockoutStore) Close() error {
	return s.db.Close()
}

// GetEntry returns the entry for subject.
func (s *BadgerLockoutStore) GetEntry(_ context.Context, subject string) (*LockoutEntry, error) {
	var entry LockoutEntry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(lockoutKeyPrefix + subject))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrLockoutNotFound
		}
		if err != nil {
			return fmt.Errorf("get lockout: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SaveEntry stores entry. Badger expires the key once the retention
// window after the lock (or last attempt) has passed.
func (s *BadgerLockoutStore) SaveEntry(_ context.Context, entry *LockoutEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal lockout: %w", err)
	}

	until := entry.LastAttempt
	if entry.LockedUntil.After(until) {
		until = entry.LockedUntil
	}
	ttl := time.Until(until.Add(lockoutRetention))
	if ttl <= 0 {
		ttl = time.Minute
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(lockoutKeyPrefix+entry.Subject), data).WithTTL(ttl)
		return txn.SetEntry(e)
	})
}

// DeleteEntry removes the entry for subject.
func (s *BadgerLockoutStore) DeleteEntry(ctx context.Context, subject string) error {
	if _, err := s.GetEntry(ctx, subject); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(lockoutKeyPrefix + subject))
	})
}

// ListLockedEntries returns entries locked at now.
func (s *BadgerLockoutStore) ListLockedEntries(_ context.Context, now time.Time) ([]*LockoutEntry, error) {
	var locked []*LockoutEntry
	err := s.scan(func(entry *LockoutEntry) {
		if entry.IsLockedAt(now) {
			locked = append(locked, entry)
		}
	})
	return locked, err
}

// CleanupExpired removes entries idle past the retention window. Badger's
// TTL normally gets there first; this catches entries written with a
// skewed clock.
func (s *BadgerLockoutStore) CleanupExpired(_ context.Context, now time.Time) (int, error) {
	var expired []string
	err := s.scan(func(entry *LockoutEntry) {
		if entry.expiredAt(now) {
			expired = append(expired, entry.Subject)
		}
	})
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, subject := range expired {
			if err := txn.Delete([]byte(lockoutKeyPrefix + subject)); err != nil {
				return fmt.Errorf("delete lockout: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(expired), nil
}

func (s *BadgerLockoutStore) scan(fn func(*LockoutEntry)) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(lockoutKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry LockoutEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return fmt.Errorf("decode lockout: %w", err)
			}
			fn(&entry)
		}
		return nil
	})
}
