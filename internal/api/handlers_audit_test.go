// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package api

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/tomtom215/greenhouse/internal/audit"
	"github.com/tomtom215/greenhouse/internal/models"
)

func countType(types []string, want audit.EventType) int {
	n := 0
	for _, typ := range types {
		if typ == string(want) {
			n++
		}
	}
	return n
}

func TestAudit_RecordsAuthAndAdminActions(t *testing.T) {
	env := newTestEnv(t)
	admin, adminToken := env.signIn("admin@example.com", models.RoleAdmin)
	farmer := env.createUser("farmer@example.com", models.RoleFarmer, true)

	env.expect(http.StatusUnauthorized, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "farmer@example.com",
		"password": "wrong-password",
	})
	env.expect(http.StatusOK, http.MethodPost, userPath(farmer.ID, "/toggle-status"), adminToken, nil)
	env.expect(http.StatusOK, http.MethodPut, userPath(farmer.ID, "/permissions"), adminToken, map[string]string{"role": models.RoleAdmin})
	env.expect(http.StatusOK, http.MethodPost, "/api/logout", adminToken, nil)

	types := env.auditTypes()
	for _, want := range []audit.EventType{
		audit.EventLoginSuccess,
		audit.EventLoginFailure,
		audit.EventUserDeactivated,
		audit.EventRoleAssigned,
		audit.EventLogout,
	} {
		if countType(types, want) != 1 {
			t.Errorf("audit types = %v, want one %s", types, want)
		}
	}

	_, token := env.signIn("auditor@example.com", models.RoleAdmin)
	resp := env.expect(http.StatusOK, http.MethodGet, "/api/audit-events?type="+string(audit.EventUserDeactivated), token, nil)
	var payload models.AuditEventsPayload
	decodeData(t, resp, &payload)
	if len(payload.Events) != 1 {
		t.Fatalf("events = %+v, want one deactivation", payload.Events)
	}
	ev := payload.Events[0]
	if ev.ActorID == nil || *ev.ActorID != admin.ID || ev.TargetID != strconv.FormatUint(uint64(farmer.ID), 10) {
		t.Errorf("event = %+v", ev)
	}

	resp = env.expect(http.StatusOK, http.MethodGet, "/api/audit-events?type="+string(audit.EventLoginFailure), token, nil)
	decodeData(t, resp, &payload)
	if len(payload.Events) != 1 || payload.Events[0].ActorEmail != "farmer@example.com" || payload.Events[0].Severity != string(audit.SeverityWarning) {
		t.Errorf("login failure events = %+v", payload.Events)
	}

	resp = env.expect(http.StatusOK, http.MethodGet, "/api/audit-events?limit=2&actor_id="+strconv.FormatUint(uint64(admin.ID), 10), token, nil)
	decodeData(t, resp, &payload)
	if len(payload.Events) != 2 {
		t.Errorf("limited events = %d, want 2", len(payload.Events))
	}
}

func TestAudit_Lockout(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("farmer@example.com", models.RoleFarmer, true)

	bad := map[string]string{"email": "farmer@example.com", "password": "wrong-password"}
	for i := 0; i < env.cfg.Security.LockoutMaxAttempts; i++ {
		env.do(http.MethodPost, "/api/login", "", bad)
	}

	if n := countType(env.auditTypes(), audit.EventLockout); n != 1 {
		t.Errorf("lockout events = %d, want 1", n)
	}
}

func TestListAuditEvents_Access(t *testing.T) {
	env := newTestEnv(t)
	_, farmerToken := env.signIn("farmer@example.com", models.RoleFarmer)
	_, adminToken := env.signIn("admin@example.com", models.RoleAdmin)

	env.expect(http.StatusForbidden, http.MethodGet, "/api/audit-events", farmerToken, nil)
	env.expect(http.StatusUnauthorized, http.MethodGet, "/api/audit-events", "", nil)

	resp := env.expect(http.StatusUnprocessableEntity, http.MethodGet, "/api/audit-events?limit=0", adminToken, nil)
	if len(resp.Errors["limit"]) == 0 {
		t.Errorf("errors = %v, want limit", resp.Errors)
	}
	resp = env.expect(http.StatusUnprocessableEntity, http.MethodGet, "/api/audit-events?actor_id=abc", adminToken, nil)
	if len(resp.Errors["actor_id"]) == 0 {
		t.Errorf("errors = %v, want actor_id", resp.Errors)
	}
}
