// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package validation

import (
	"strings"
	"testing"
)

type signup struct {
	Name                 string `json:"name" validate:"required,max=10"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 string `json:"role" validate:"omitempty,user_role"`
}

type planting struct {
	Status       string   `json:"status" validate:"required,plant_status"`
	PlantingDate string   `json:"planting_date" validate:"required,date"`
	Temperature  *float64 `json:"temperature" validate:"omitempty,gte=-50,lte=100"`
	Internal     string   `json:"-" validate:"omitempty,max=1"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	req := signup{
		Name:                 "Ana",
		Email:                "ana@example.org",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
		Role:                 "farmer",
	}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStruct_Messages(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		field string
		want  string
	}{
		{
			name:  "required",
			input: &signup{Email: "a@b.co", Password: "secret123", PasswordConfirmation: "secret123"},
			field: "name",
			want:  "The name field is required.",
		},
		{
			name:  "max string",
			input: &signup{Name: "abcdefghijk", Email: "a@b.co", Password: "secret123", PasswordConfirmation: "secret123"},
			field: "name",
			want:  "The name field must not be greater than 10 characters.",
		},
		{
			name:  "email",
			input: &signup{Name: "a", Email: "nope", Password: "secret123", PasswordConfirmation: "secret123"},
			field: "email",
			want:  "The email field must be a valid email address.",
		},
		{
			name:  "confirmation",
			input: &signup{Name: "a", Email: "a@b.co", Password: "secret123", PasswordConfirmation: "other123"},
			field: "password",
			want:  "The password field confirmation does not match.",
		},
		{
			name:  "enum",
			input: &signup{Name: "a", Email: "a@b.co", Password: "secret123", PasswordConfirmation: "secret123", Role: "root"},
			field: "role",
			want:  "The selected role is invalid.",
		},
		{
			name:  "date",
			input: &planting{Status: "growing", PlantingDate: "2024-13-40"},
			field: "planting_date",
			want:  "The planting date field must be a valid date.",
		},
		{
			name:  "numeric bound",
			input: &planting{Status: "growing", PlantingDate: "2024-03-01", Temperature: ptr(150)},
			field: "temperature",
			want:  "The temperature field must not be greater than 100.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			msgs := err.FieldErrors()[tt.field]
			if len(msgs) == 0 {
				t.Fatalf("no errors for %q: %v", tt.field, err.FieldErrors())
			}
			if msgs[0] != tt.want {
				t.Errorf("message = %q, want %q", msgs[0], tt.want)
			}
		})
	}
}

func TestValidateStruct_MultipleFields(t *testing.T) {
	err := ValidateStruct(&signup{})
	if err == nil {
		t.Fatal("expected error")
	}
	got := strings.Join(err.Fields(), ",")
	if got != "email,name,password" {
		t.Errorf("Fields() = %q, want email,name,password", got)
	}
	if !strings.Contains(err.Error(), "The email field is required.") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNewFieldError(t *testing.T) {
	err := NewFieldError("harvest_date", "The harvest date field must be a date after planting date.")
	err.Add("harvest_date", "second")
	if n := len(err.FieldErrors()["harvest_date"]); n != 2 {
		t.Errorf("len(harvest_date) = %d, want 2", n)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Errorf("ParseDate() = %v", d)
	}
	if _, err := ParseDate("29/02/2024"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func ptr(f float64) *float64 { return &f }
