// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/greenhouse/internal/config"
	"github.com/tomtom215/greenhouse/internal/database"
	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/mail"
	"github.com/tomtom215/greenhouse/internal/metrics"
	"github.com/tomtom215/greenhouse/internal/models"
)

// OTPLength is the number of digits in a verification code.
const OTPLength = 6

// OTP errors.
var (
	ErrInvalidOTP   = errors.New("invalid or expired otp")
	ErrOTPThrottled = errors.New("otp resend throttled")
)

// OTPStore persists verification codes. *database.DB implements it.
type OTPStore interface {
	ReplaceOTP(ctx context.Context, otp *models.OTP) error
	LatestValidOTP(ctx context.Context, userID uint, now time.Time) (*models.OTP, error)
	MarkOTPUsed(ctx context.Context, id uint) error
}

type resendLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// OTPService issues and verifies email verification codes.
type OTPService struct {
	store          OTPStore
	sender         mail.Sender
	ttl            time.Duration
	resendInterval time.Duration
	now            func() time.Time

	mu       sync.Mutex
	limiters map[string]*resendLimiter
}

// NewOTPService creates an OTP service.
func NewOTPService(store OTPStore, sender mail.Sender, cfg config.OTPConfig) *OTPService {
	return &OTPService{
		store:          store,
		sender:         sender,
		ttl:            cfg.TTL,
		resendInterval: cfg.ResendInterval,
		now:            func() time.Time { return time.Now().UTC() },
		limiters:       make(map[string]*resendLimiter),
	}
}

// TTL returns how long issued codes stay valid.
func (s *OTPService) TTL() time.Duration {
	return s.ttl
}

// GenerateCode returns a uniformly random numeric code of OTPLength digits.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

// Generate replaces any unused code of user with a fresh one and mails it.
func (s *OTPService) Generate(ctx context.Context, user *models.User) error {
	code, err := GenerateCode()
	if err != nil {
		return err
	}

	now := s.now()
	otp := &models.OTP{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.ReplaceOTP(ctx, otp); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	msg, err := mail.RenderOTP(user.Email, code, s.ttl, now)
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		metrics.RecordOTPSent("failed")
		return fmt.Errorf("send otp: %w", err)
	}

	metrics.RecordOTPSent("sent")
	logging.Ctx(ctx).Info().Uint("target_user_id", user.ID).Time("expires_at", otp.ExpiresAt).Msg("OTP issued")
	return nil
}

// Verify consumes code if it matches the user's latest valid code.
func (s *OTPService) Verify(ctx context.Context, user *models.User, code string) error {
	otp, err := s.store.LatestValidOTP(ctx, user.ID, s.now())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			metrics.RecordOTPVerification(false)
			return ErrInvalidOTP
		}
		return fmt.Errorf("load otp: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		metrics.RecordOTPVerification(false)
		return ErrInvalidOTP
	}

	if err := s.store.MarkOTPUsed(ctx, otp.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			metrics.RecordOTPVerification(false)
			return ErrInvalidOTP
		}
		return fmt.Errorf("consume otp: %w", err)
	}

	metrics.RecordOTPVerification(true)
	return nil
}

// Resend issues a new code unless one was resent to the same address
// within the resend interval.
func (s *OTPService) Resend(ctx context.Context, user *models.User) error {
	if !s.allowResend(user.Email) {
		metrics.RecordOTPSent("throttled")
		return ErrOTPThrottled
	}
	return s.Generate(ctx, user)
}

func (s *OTPService) allowResend(email string) bool {
	if s.resendInterval <= 0 {
		return true
	}
	key := strings.ToLower(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[key]
	if !ok {
		l = &resendLimiter{limiter: rate.NewLimiter(rate.Every(s.resendInterval), 1)}
		s.limiters[key] = l
	}
	l.lastSeen = s.now()
	return l.limiter.Allow()
}

// PruneLimiters drops resend limiters idle for longer than the resend
// interval and returns how many were removed.
func (s *OTPService) PruneLimiters() int {
	cutoff := s.now().Add(-s.resendInterval)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, l := range s.limiters {
		if l.lastSeen.Before(cutoff) {
			delete(s.limiters, key)
			n++
		}
	}
	return n
}
