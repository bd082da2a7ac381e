// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package config

import "strings"

// envMappings maps lower-cased environment variable names to koanf paths.
// Names follow the Laravel .env conventions where one existed (DB_*, MAIL_*).
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"app_env":               "server.environment",
	"environment":           "server.environment",

	// Database
	"db_driver":            "database.driver",
	"db_connection":        "database.driver",
	"db_path":              "database.path",
	"db_database":          "database.path",
	"db_dsn":               "database.dsn",
	"db_max_open_conns":    "database.max_open_conns",
	"db_max_idle_conns":    "database.max_idle_conns",
	"db_conn_max_lifetime": "database.conn_max_lifetime",
	"db_log_level":         "database.log_level",

	// Security
	"jwt_secret":           "security.jwt_secret",
	"token_ttl":            "security.token_ttl",
	"rate_limit_requests":  "security.rate_limit_reqs",
	"rate_limit_window":    "security.rate_limit_window",
	"disable_rate_limit":   "security.rate_limit_disabled",
	"cors_origins":         "security.cors_origins",
	"trusted_proxies":      "security.trusted_proxies",
	"lockout_enabled":      "security.lockout_enabled",
	"lockout_max_attempts": "security.lockout_max_attempts",
	"lockout_duration":     "security.lockout_duration",
	"lockout_store_path":   "security.lockout_store_path",
	"casbin_model_path":    "security.casbin.model_path",
	"casbin_policy_path":   "security.casbin.policy_path",
	"casbin_cache_ttl":     "security.casbin.cache_ttl",

	// Mail
	"mail_mailer":               "mail.driver",
	"mail_host":                 "mail.host",
	"mail_port":                 "mail.port",
	"mail_username":             "mail.username",
	"mail_password":             "mail.password",
	"mail_use_tls":              "mail.use_tls",
	"mail_from_address":         "mail.from_address",
	"mail_from_name":            "mail.from_name",
	"mail_timeout":              "mail.timeout",
	"mail_breaker_max_failures": "mail.breaker_max_failures",
	"mail_breaker_timeout":      "mail.breaker_timeout",

	// OTP
	"otp_ttl":              "otp.ttl",
	"otp_resend_interval":  "otp.resend_interval",
	"otp_cleanup_interval": "otp.cleanup_interval",

	// Audit
	"audit_enabled":          "audit.enabled",
	"audit_buffer_size":      "audit.buffer_size",
	"audit_retention":        "audit.retention",
	"audit_cleanup_interval": "audit.cleanup_interval",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" so unrelated environment does not leak into config.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DB_DRIVER -> database.driver
//   - MAIL_MAILER -> mail.driver
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
