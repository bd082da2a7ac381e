// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/metrics"
	"github.com/tomtom215/greenhouse/internal/models"
)

// Token errors.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// DefaultTokenName labels tokens issued by login and OTP verification.
const DefaultTokenName = "auth_token"

const tokenIssuer = "greenhouse"

// Claims are the JWT claims of an access token. RegisteredClaims.ID is the
// access_tokens row id.
type Claims struct {
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenStore persists access token rows. *database.DB implements it.
type TokenStore interface {
	CreateToken(ctx context.Context, t *models.AccessToken) error
	TokenByID(ctx context.Context, id string) (*models.AccessToken, error)
	TouchToken(ctx context.Context, id string, at time.Time) error
	DeleteToken(ctx context.Context, id string) error
	DeleteUserTokens(ctx context.Context, userID uint) (int64, error)
}

// TokenManager issues, validates and revokes bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	store  TokenStore
	now    func() time.Time
}

// NewTokenManager creates a token manager signing with secret.
func NewTokenManager(secret string, ttl time.Duration, store TokenStore) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue records a new token for user and returns the signed JWT.
func (m *TokenManager) Issue(ctx context.Context, user *models.User, name string) (string, error) {
	now := m.now()
	jti := uuid.New().String()

	row := &models.AccessToken{
		ID:        jti,
		UserID:    user.ID,
		Name:      name,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.CreateToken(ctx, row); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(row.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenString and checks that its row still exists.
// A successful validation updates the row's last_used_at.
func (m *TokenManager) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	row, err := m.store.TokenByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, fmt.Errorf("load token: %w", err)
	}
	now := m.now()
	if row.UserID != claims.UserID || !now.Before(row.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	if err := m.store.TouchToken(ctx, row.ID, now); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("jti", row.ID).Msg("Failed to update token last_used_at")
	}

	return claims, nil
}

// Revoke deletes one token. Revoking an unknown token is not an error.
func (m *TokenManager) Revoke(ctx context.Context, jti string) error {
	if err := m.store.DeleteToken(ctx, jti); err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("revoke token: %w", err)
	}
	metrics.TokensRevoked.Inc()
	return nil
}

// RevokeAll deletes every token held by userID and returns how many were removed.
func (m *TokenManager) RevokeAll(ctx context.Context, userID uint) (int64, error) {
	n, err := m.store.DeleteUserTokens(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke user tokens: %w", err)
	}
	metrics.TokensRevoked.Add(float64(n))
	return n, nil
}
