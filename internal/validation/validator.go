// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

// Package validation provides request validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide. Field names are taken
// from json tags so errors line up with the request body, and messages read
// like the dashboard expects:
//
//	{"errors": {"email": ["The email field is required."]}}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar date format accepted by the API.
const DateLayout = "2006-01-02"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Domain enumerations, shared with the models package through the tags below.
var (
	GreenhouseStatuses = []string{"active", "inactive", "maintenance"}
	PlantStatuses      = []string{"growing", "harvested", "failed"}
	SensorTypes        = []string{"temperature", "humidity", "light", "soil_moisture"}
	SensorStatuses     = []string{"active", "inactive", "maintenance"}
	UserRoles          = []string{"admin", "farmer"}
	ControlSystems     = []string{"ventilation", "irrigation", "lighting", "heating"}
	ControlActions     = []string{"on", "off", "auto"}
)

// enumTags maps custom tag names to their allowed values.
var enumTags = map[string][]string{
	"greenhouse_status": GreenhouseStatuses,
	"plant_status":      PlantStatuses,
	"sensor_type":       SensorTypes,
	"sensor_status":     SensorStatuses,
	"user_role":         UserRoles,
	"control_system":    ControlSystems,
	"control_action":    ControlActions,
}

// FieldError is a single failed rule on a request field.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// RequestValidationError collects every failed rule for one request.
type RequestValidationError struct {
	errors []FieldError
}

// Errors returns the individual failures in validation order.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.errors
}

// Add appends a failure raised outside struct tags, such as a cross-row check.
func (ve *RequestValidationError) Add(field, message string) {
	ve.errors = append(ve.errors, FieldError{Field: field, Tag: "custom", Message: message})
}

// Error implements the error interface.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(ve.errors))
	for _, err := range ve.errors {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

// FieldErrors groups messages by field name for the response body.
func (ve *RequestValidationError) FieldErrors() map[string][]string {
	out := make(map[string][]string, len(ve.errors))
	for _, err := range ve.errors {
		out[err.Field] = append(out[err.Field], err.Message)
	}
	return out
}

// Fields returns the sorted names of the failing fields.
func (ve *RequestValidationError) Fields() []string {
	seen := make(map[string]bool, len(ve.errors))
	fields := make([]string, 0, len(ve.errors))
	for _, err := range ve.errors {
		if !seen[err.Field] {
			seen[err.Field] = true
			fields = append(fields, err.Field)
		}
	}
	sort.Strings(fields)
	return fields
}

// NewFieldError builds a single-field validation error.
func NewFieldError(field, message string) *RequestValidationError {
	ve := &RequestValidationError{}
	ve.Add(field, message)
	return ve
}

// GetValidator returns the shared validator, initializing it on first use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)

		for tag, allowed := range enumTags {
			if err := validate.RegisterValidation(tag, enumValidator(allowed)); err != nil {
				panic(fmt.Sprintf("validation: register %s: %v", tag, err))
			}
		}
		if err := validate.RegisterValidation("date", isDate); err != nil {
			panic(fmt.Sprintf("validation: register date: %v", err))
		}
	})

	return validate
}

// ValidateStruct validates s and returns nil or a *RequestValidationError.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return NewFieldError("request", err.Error())
	}

	fieldErrors := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fieldErrors[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translateError(fe),
		}
	}
	return &RequestValidationError{errors: fieldErrors}
}

// ParseDate parses a YYYY-MM-DD string in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func enumValidator(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, a := range allowed {
			if v == a {
				return true
			}
		}
		return false
	}
}

func isDate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}
