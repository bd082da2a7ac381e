// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

// Package mail delivers transactional email, currently the OTP
// verification message.
//
// Two transports exist: SMTPSender talks to a relay with optional STARTTLS
// and PLAIN auth, LogSender writes the message to the structured log for
// local development. New wraps the SMTP transport in a circuit breaker so a
// dead relay fails fast instead of holding request goroutines for the full
// dial timeout.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/tomtom215/greenhouse/internal/config"
)

// ErrInvalidRecipient is returned when Message.To is not an email address.
var ErrInvalidRecipient = errors.New("mail: invalid recipient")

// Message is one outbound email. Either HTML or Text may be empty.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the Sender selected by cfg.Driver.
func New(cfg *config.MailConfig) (Sender, error) {
	switch cfg.Driver {
	case "log", "":
		return NewLogSender(cfg.FromAddress), nil
	case "smtp":
		return NewBreakerSender("mail-smtp", NewSMTPSender(cfg), cfg.BreakerMaxFailures, cfg.BreakerTimeout), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

func validateRecipient(to string) error {
	addr, err := mail.ParseAddress(to)
	if err != nil || addr.Address != to {
		return fmt.Errorf("%w: %q", ErrInvalidRecipient, to)
	}
	return nil
}
