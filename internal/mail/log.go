// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package mail

import (
	"context"

	"github.com/tomtom215/greenhouse/internal/logging"
)

// LogSender writes messages to the log instead of delivering them.
// The text body is logged so OTP codes are visible during development.
type LogSender struct {
	from string
}

// NewLogSender creates a LogSender.
func NewLogSender(from string) *LogSender {
	return &LogSender{from: from}
}

// Send logs msg at info level.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := validateRecipient(msg.To); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().
		Str("mailer", "log").
		Str("from", s.from).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Text).
		Msg("Mail message")
	return nil
}
