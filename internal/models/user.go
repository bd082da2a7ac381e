// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package models

import (
	"strings"
	"time"
)

// Role names. They must match the subjects in the casbin policy.
const (
	RoleAdmin  = "admin"
	RoleFarmer = "farmer"
)

// ValidRoles contains all valid role names.
var ValidRoles = []string{RoleAdmin, RoleFarmer}

// NormalizeEmail trims and lower-cases an address. Stored emails are always
// normalized so case variants resolve to one account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidRole reports whether role is a known role name.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an account holder. Farmers own greenhouses; admins manage users.
type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"size:255;not null" json:"name"`
	Email           string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Username        *string    `gorm:"size:255;uniqueIndex" json:"username"`
	Password        string     `gorm:"size:255;not null" json:"-"`
	Role            string     `gorm:"size:32;not null;default:farmer" json:"role"`
	IsActive        bool       `gorm:"not null;default:true" json:"is_active"`
	IsLoggedIn      bool       `gorm:"not null;default:false" json:"is_logged_in"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsVerified reports whether the user has confirmed their email address.
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
