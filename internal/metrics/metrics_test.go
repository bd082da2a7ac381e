// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/greenhouses/{id}", "200"))

	RecordAPIRequest("GET", "/api/greenhouses/{id}", 200, 12*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/greenhouses/{id}", "200"))
	if after-before != 1 {
		t.Errorf("requests counter delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}

func TestRecordOTPVerification(t *testing.T) {
	ok := testutil.ToFloat64(OTPVerifications.WithLabelValues("success"))
	bad := testutil.ToFloat64(OTPVerifications.WithLabelValues("invalid"))

	RecordOTPVerification(true)
	RecordOTPVerification(false)
	RecordOTPVerification(false)

	if d := testutil.ToFloat64(OTPVerifications.WithLabelValues("success")) - ok; d != 1 {
		t.Errorf("success delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(OTPVerifications.WithLabelValues("invalid")) - bad; d != 2 {
		t.Errorf("invalid delta = %v, want 2", d)
	}
}

func TestRecordJanitorDeleted_IgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(JanitorDeleted.WithLabelValues("otp"))
	RecordJanitorDeleted("otp", 0)
	RecordJanitorDeleted("otp", 3)
	if d := testutil.ToFloat64(JanitorDeleted.WithLabelValues("otp")) - before; d != 3 {
		t.Errorf("delta = %v, want 3", d)
	}
}
