// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package cli

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/greenhouse/internal/mail"
)

func newEmailCommand() *cobra.Command {
	email := &cobra.Command{
		Use:   "email",
		Short: "Mail transport utilities",
	}
	email.AddCommand(&cobra.Command{
		Use:   "test <address>",
		Short: "Send a sample OTP email to check the mail configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sender, err := mail.New(&cfg.Mail)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Mail.Timeout+5*time.Second)
			defer cancel()
			if err := sendTestEmail(ctx, sender, args[0], cfg.OTP.TTL); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test email sent to %s\n", args[0])
			return nil
		},
	})
	return email
}

// sendTestEmail renders the OTP template with a random code and sends it.
func sendTestEmail(ctx context.Context, sender mail.Sender, to string, ttl time.Duration) error {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	msg, err := mail.RenderOTP(to, fmt.Sprintf("%06d", n.Int64()), ttl, time.Now())
	if err != nil {
		return err
	}
	if err := sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send test email: %w", err)
	}
	return nil
}
