// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

// Package metrics defines the Prometheus instruments exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "greenhouse_http_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "greenhouse_http_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_http_rate_limit_hits_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
		[]string{"limiter"},
	)

	// Authentication Metrics
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"result"}, // success, invalid_credentials, unverified, inactive, locked
	)

	OTPSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_otp_sent_total",
			Help: "OTP emails sent by outcome",
		},
		[]string{"result"}, // sent, failed, throttled
	)

	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_otp_verifications_total",
			Help: "OTP verification attempts by outcome",
		},
		[]string{"result"}, // success, invalid
	)

	TokensRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "greenhouse_tokens_revoked_total",
			Help: "Access tokens revoked by logout, login or deactivation",
		},
	)

	// Domain Metrics
	ControlCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_control_commands_total",
			Help: "Control commands applied to greenhouse systems",
		},
		[]string{"system", "action"},
	)

	SensorReadings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_sensor_readings_total",
			Help: "Sensor readings recorded",
		},
		[]string{"type"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "greenhouse_websocket_clients",
			Help: "Current number of connected WebSocket clients",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_websocket_messages_sent_total",
			Help: "WebSocket messages delivered to clients",
		},
		[]string{"type"},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "greenhouse_websocket_messages_dropped_total",
			Help: "WebSocket messages dropped because a client buffer was full",
		},
	)

	// Background Job Metrics
	JanitorDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_janitor_deleted_total",
			Help: "Rows removed by the janitor",
		},
		[]string{"kind"}, // otp, token, otp_limiter, lockout, audit
	)

	// Audit Metrics
	AuditEventsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_audit_events_total",
			Help: "Audit events persisted, by type",
		},
		[]string{"type"},
	)

	AuditEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "greenhouse_audit_events_dropped_total",
			Help: "Audit events dropped because the queue was full",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "greenhouse_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "greenhouse_circuit_breaker_consecutive_failures",
			Help: "Consecutive failures seen by a circuit breaker",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenhouse_events_published_total",
			Help: "Domain events published on the in-process bus",
		},
		[]string{"topic"},
	)
)

// RecordAPIRequest records one completed request. route is the chi route
// pattern so ids do not explode label cardinality.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordLogin records the outcome of a login attempt.
func RecordLogin(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}

// RecordOTPSent records an OTP send attempt.
func RecordOTPSent(result string) {
	OTPSent.WithLabelValues(result).Inc()
}

// RecordOTPVerification records an OTP check.
func RecordOTPVerification(success bool) {
	result := "invalid"
	if success {
		result = "success"
	}
	OTPVerifications.WithLabelValues(result).Inc()
}

// RecordControlCommand records an applied control command.
func RecordControlCommand(system, action string) {
	ControlCommands.WithLabelValues(system, action).Inc()
}

// RecordJanitorDeleted adds n removed rows of kind.
func RecordJanitorDeleted(kind string, n int64) {
	if n > 0 {
		JanitorDeleted.WithLabelValues(kind).Add(float64(n))
	}
}
