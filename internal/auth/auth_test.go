// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/models"
	"github.com/tomtom215/greenhouse/internal/testinfra"
)

const testSecret = "test-secret-0123456789abcdef-0123456789"

func newTestTokenManager(t *testing.T) (*TokenManager, *database.DB) {
	t.Helper()
	db := testinfra.OpenTestDB(t)
	return NewTokenManager(testSecret, time.Hour, db), db
}

func createUser(t *testing.T, db *database.DB, email, role string) *models.User {
	t.Helper()
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	u := &models.User{Name: "Test User", Email: email, Password: hash, Role: role}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "s3cret-password") {
		t.Error("CheckPassword() rejected the correct password")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Error("CheckPassword() accepted a wrong password")
	}
	if CheckPassword("not-a-bcrypt-hash", "s3cret-password") {
		t.Error("CheckPassword() accepted a malformed hash")
	}
}
