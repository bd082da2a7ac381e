// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/greenhouse/internal/auth"
	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/models"
	"github.com/tomtom215/greenhouse/internal/validation"
)

func newUserCommand() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Account administration",
	}

	var in adminInput
	create := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a verified, active administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(&cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			u, err := createAdmin(cmd.Context(), db, in, time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (id %d)\n", u.Email, u.ID)
			return nil
		},
	}
	create.Flags().StringVar(&in.Email, "email", "", "admin email address")
	create.Flags().StringVar(&in.Name, "name", "", "display name")
	create.Flags().StringVar(&in.Password, "password", "", "password (at least 8 characters)")
	for _, f := range []string{"email", "name", "password"} {
		_ = create.MarkFlagRequired(f)
	}

	user.AddCommand(create)
	return user
}

type adminInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

// createAdmin validates in and stores a new administrator.
func createAdmin(ctx context.Context, db *database.DB, in adminInput, now time.Time) (*models.User, error) {
	in.Email = models.NormalizeEmail(in.Email)
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, verr
	}

	exists, err := db.EmailExists(ctx, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("a user with email %s already exists", in.Email)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Name:            in.Name,
		Email:           in.Email,
		Password:        hash,
		Role:            models.RoleAdmin,
		IsActive:        true,
		EmailVerifiedAt: &now,
	}
	if err := db.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
