// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// messageTemplates maps tags to messages. %s is the humanized field name.
var messageTemplates = map[string]string{
	"required": "The %s field is required.",
	"email":    "The %s field must be a valid email address.",
	"date":     "The %s field must be a valid date.",
	"numeric":  "The %s field must be a number.",
	"number":   "The %s field must be a number.",
	"unique":   "The %s has already been taken.",
}

// translateError renders a validator.FieldError the way the dashboard
// displays it.
func translateError(fe validator.FieldError) string {
	field := humanize(fe.Field())
	tag := fe.Tag()
	param := fe.Param()

	if _, ok := enumTags[tag]; ok {
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
	if template, ok := messageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}

	isString := fe.Kind().String() == "string"
	switch tag {
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", field)
	case "len":
		if isString {
			return fmt.Sprintf("The %s field must be %s characters.", field, param)
		}
		return fmt.Sprintf("The %s field must be %s.", field, param)
	case "min", "gte":
		if isString {
			return fmt.Sprintf("The %s field must be at least %s characters.", field, param)
		}
		return fmt.Sprintf("The %s field must be at least %s.", field, param)
	case "max", "lte":
		if isString {
			return fmt.Sprintf("The %s field must not be greater than %s characters.", field, param)
		}
		return fmt.Sprintf("The %s field must not be greater than %s.", field, param)
	case "gt":
		return fmt.Sprintf("The %s field must be greater than %s.", field, param)
	case "lt":
		return fmt.Sprintf("The %s field must be less than %s.", field, param)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

// humanize turns "planting_date" into "planting date".
func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
