// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// validConfig returns defaults plus the one required secret.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testSecret
	return cfg
}

// isolateEnv points the loader at an empty temp dir so a developer's
// config.yaml or .env cannot leak into the test.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(DotEnvPathEnvVar, filepath.Join(dir, "missing.env"))
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	return dir
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.OTP.TTL != 10*time.Minute {
		t.Errorf("OTP.TTL = %v, want 10m", cfg.OTP.TTL)
	}
	if cfg.Mail.Driver != "log" {
		t.Errorf("Mail.Driver = %q, want log", cfg.Mail.Driver)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_CONNECTION", "postgres")
	t.Setenv("DB_DSN", "host=localhost user=gh dbname=gh")
	t.Setenv("MAIL_MAILER", "smtp")
	t.Setenv("MAIL_HOST", "smtp.example.org")
	t.Setenv("MAIL_PORT", "2525")
	t.Setenv("MAIL_USE_TLS", "false")
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://dash.example.org")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN == "" {
		t.Errorf("Database = %+v, want postgres with DSN", cfg.Database)
	}
	if cfg.Mail.Driver != "smtp" || cfg.Mail.Host != "smtp.example.org" || cfg.Mail.Port != 2525 {
		t.Errorf("Mail = %+v", cfg.Mail)
	}
	if cfg.Mail.UseTLS {
		t.Error("Mail.UseTLS = true, want false")
	}
	if cfg.OTP.TTL != 5*time.Minute {
		t.Errorf("OTP.TTL = %v, want 5m", cfg.OTP.TTL)
	}
	want := []string{"http://localhost:3000", "https://dash.example.org"}
	if strings.Join(cfg.Security.CORSOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_YAMLFile(t *testing.T) {
	dir := isolateEnv(t)
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 7070\nsecurity:\n  jwt_secret: " + testSecret + "\notp:\n  resend_interval: 1m\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.OTP.ResendInterval != time.Minute {
		t.Errorf("OTP.ResendInterval = %v, want 1m", cfg.OTP.ResendInterval)
	}
}

func TestLoadWithKoanf_DotEnv(t *testing.T) {
	dir := isolateEnv(t)
	envPath := filepath.Join(dir, ".env")
	content := "JWT_SECRET=" + testSecret + "\nHTTP_PORT=8123\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv(DotEnvPathEnvVar, envPath)
	// godotenv sets real process variables; register them for restoration.
	t.Setenv("JWT_SECRET", "")
	t.Setenv("HTTP_PORT", "")
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("HTTP_PORT")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("Server.Port = %d, want 8123 from .env", cfg.Server.Port)
	}
}

func TestLoadWithKoanf_MissingSecret(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid defaults", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "HTTP_PORT"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "DB_DRIVER"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: "DB_DSN"},
		{name: "short secret", mutate: func(c *Config) { c.Security.JWTSecret = "short" }, wantErr: "at least 32"},
		{name: "placeholder secret", mutate: func(c *Config) {
			c.Security.JWTSecret = "CHANGEME-CHANGEME-CHANGEME-CHANGEME"
		}, wantErr: "placeholder"},
		{name: "wildcard cors in production", mutate: func(c *Config) { c.Server.Environment = "production" }, wantErr: "CORS_ORIGINS"},
		{name: "explicit cors in production", mutate: func(c *Config) {
			c.Server.Environment = "production"
			c.Security.CORSOrigins = []string{"https://dash.example.org"}
		}},
		{name: "smtp without host", mutate: func(c *Config) { c.Mail.Driver = "smtp" }, wantErr: "MAIL_HOST"},
		{name: "unknown mailer", mutate: func(c *Config) { c.Mail.Driver = "ses" }, wantErr: "MAIL_MAILER"},
		{name: "zero otp ttl", mutate: func(c *Config) { c.OTP.TTL = 0 }, wantErr: "OTP_TTL"},
		{name: "zero audit buffer", mutate: func(c *Config) { c.Audit.BufferSize = 0 }, wantErr: "AUDIT_BUFFER_SIZE"},
		{name: "audit disabled skips bounds", mutate: func(c *Config) {
			c.Audit.Enabled = false
			c.Audit.Retention = 0
		}},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "LOG_LEVEL"},
		{name: "rate limit disabled skips bounds", mutate: func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"HTTP_PORT":         "server.port",
		"DB_DRIVER":         "database.driver",
		"MAIL_MAILER":       "mail.driver",
		"MAIL_FROM_ADDRESS": "mail.from_address",
		"OTP_TTL":           "otp.ttl",
		"AUDIT_RETENTION":   "audit.retention",
		"PATH":              "",
		"HOME":              "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestServerAddr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 8000}
	if got := s.Addr(); got != "127.0.0.1:8000" {
		t.Errorf("Addr() = %q", got)
	}
}
