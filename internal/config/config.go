// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

// Package config loads Greenhouse configuration from defaults, an optional
// YAML file, an optional .env file and the process environment, in that
// order of increasing precedence.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Mail     MailConfig     `koanf:"mail"`
	OTP      OTPConfig      `koanf:"otp"`
	Audit    AuditConfig    `koanf:"audit"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DatabaseConfig selects and tunes the relational store.
//
// Environment Variables:
//   - DB_DRIVER: sqlite or postgres (default: sqlite)
//   - DB_PATH: SQLite file path (default: data/greenhouse.db)
//   - DB_DSN: PostgreSQL DSN (required when DB_DRIVER=postgres)
//   - DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS, DB_CONN_MAX_LIFETIME
//   - DB_LOG_LEVEL: silent, error, warn, info (default: warn)
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"`
	Path            string        `koanf:"path"`
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	LogLevel        string        `koanf:"log_level"`
}

// SecurityConfig holds token, rate limiting, CORS, lockout and RBAC settings.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`

	LockoutEnabled     bool          `koanf:"lockout_enabled"`
	LockoutMaxAttempts int           `koanf:"lockout_max_attempts"`
	LockoutDuration    time.Duration `koanf:"lockout_duration"`
	// LockoutStorePath is a BadgerDB directory. Empty keeps lockout state in memory.
	LockoutStorePath string `koanf:"lockout_store_path"`

	Casbin CasbinConfig `koanf:"casbin"`
}

// CasbinConfig points at optional on-disk RBAC files.
// Empty paths use the model and policy embedded in the authz package.
type CasbinConfig struct {
	ModelPath  string        `koanf:"model_path"`
	PolicyPath string        `koanf:"policy_path"`
	CacheTTL   time.Duration `koanf:"cache_ttl"`
}

// MailConfig configures outbound email for OTP delivery.
//
// Environment Variables (Laravel-compatible names):
//   - MAIL_MAILER: log or smtp (default: log)
//   - MAIL_HOST, MAIL_PORT, MAIL_USERNAME, MAIL_PASSWORD
//   - MAIL_USE_TLS: require STARTTLS (default: true)
//   - MAIL_FROM_ADDRESS, MAIL_FROM_NAME
type MailConfig struct {
	Driver      string        `koanf:"driver"`
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Username    string        `koanf:"username"`
	Password    string        `koanf:"password"`
	UseTLS      bool          `koanf:"use_tls"`
	FromAddress string        `koanf:"from_address"`
	FromName    string        `koanf:"from_name"`
	Timeout     time.Duration `koanf:"timeout"`

	// Circuit breaker around the transport.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// OTPConfig controls one-time password generation and delivery.
type OTPConfig struct {
	TTL             time.Duration `koanf:"ttl"`
	ResendInterval  time.Duration `koanf:"resend_interval"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// AuditConfig controls the security audit trail.
type AuditConfig struct {
	Enabled         bool          `koanf:"enabled"`
	BufferSize      int           `koanf:"buffer_size"`
	Retention       time.Duration `koanf:"retention"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration with the layered koanf loader and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
