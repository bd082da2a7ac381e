// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/models"
	"github.com/tomtom215/greenhouse/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// MsgValidationFailed is the message of every 422 with field errors.
const MsgValidationFailed = "Validation failed"

// respondJSON writes resp with the given status.
func respondJSON(w http.ResponseWriter, status int, resp *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Error encoding JSON response")
	}
}

// respondSuccess writes a success envelope. message may be empty.
func respondSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status:  models.StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// respondError writes an error envelope without field errors.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, &models.APIResponse{
		Status:  models.StatusError,
		Message: message,
	})
}

// respondValidation writes a 422 with per-field messages.
func respondValidation(w http.ResponseWriter, ve *validation.RequestValidationError) {
	respondJSON(w, http.StatusUnprocessableEntity, &models.APIResponse{
		Status:  models.StatusError,
		Message: MsgValidationFailed,
		Errors:  ve.FieldErrors(),
	})
}

// respondFieldError writes a 422 for a single field.
func respondFieldError(w http.ResponseWriter, field, message string) {
	respondValidation(w, validation.NewFieldError(field, message))
}

// respondInternal logs err with the request context and writes a 500 with
// the generic message. err never reaches the client.
func respondInternal(w http.ResponseWriter, r *http.Request, err error, message string) {
	logging.Ctx(r.Context()).Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg(message)
	respondError(w, http.StatusInternalServerError, message)
}

// decodeJSON reads the body into dst. An empty body decodes as {} so the
// validator reports the missing fields.
func decodeJSON(r *http.Request, dst interface{}) *validation.RequestValidationError {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return validation.NewFieldError(typeErr.Field, "The "+typeErr.Field+" field has an invalid type.")
	}
	return validation.NewFieldError("body", "The request body must be valid JSON.")
}

// normalizer is implemented by requests that canonicalize fields, such as
// emails, before validation.
type normalizer interface {
	Normalize()
}

// bind decodes, normalizes and validates the body into dst. On failure it
// writes the 422 response and returns false.
func bind(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if ve := decodeJSON(r, dst); ve != nil {
		respondValidation(w, ve)
		return false
	}
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	if ve := validation.ValidateStruct(dst); ve != nil {
		respondValidation(w, ve)
		return false
	}
	return true
}

// idParam parses the {id} URL parameter. Non-numeric ids are treated as
// missing rows by the callers.
func idParam(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
