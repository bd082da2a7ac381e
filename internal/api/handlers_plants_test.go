// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/tomtom215/greenhouse/internal/models"
)

func plantBody(greenhouseID uint) map[string]interface{} {
	return map[string]interface{}{
		"name":          "Roma",
		"species":       "Solanum lycopersicum",
		"planting_date": "2026-03-01",
		"status":        models.PlantGrowing,
		"greenhouse_id": greenhouseID,
	}
}

func TestPlantCRUD(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signIn("farmer@example.com", models.RoleFarmer)
	g := createGreenhouse(t, env, token, "Tomatoes")

	resp := env.expect(http.StatusCreated, http.MethodPost, "/api/plants", token, plantBody(g.ID))
	if resp.Message != MsgPlantCreated {
		t.Errorf("message = %q", resp.Message)
	}
	var p models.Plant
	decodeData(t, resp, &p)
	if p.ID == 0 || p.PlantingDate.String() != "2026-03-01" || p.Greenhouse == nil || p.Greenhouse.ID != g.ID {
		t.Fatalf("created = %+v", p)
	}
	path := fmt.Sprintf("/api/plants/%d", p.ID)

	resp = env.expect(http.StatusOK, http.MethodGet, "/api/plants", token, nil)
	var list []models.Plant
	decodeData(t, resp, &list)
	if len(list) != 1 || list[0].Greenhouse == nil {
		t.Fatalf("list = %+v", list)
	}

	resp = env.expect(http.StatusOK, http.MethodPut, path, token, map[string]string{
		"status":       models.PlantHarvested,
		"harvest_date": "2026-07-15",
	})
	if resp.Message != MsgPlantUpdated {
		t.Errorf("message = %q", resp.Message)
	}
	var updated models.Plant
	decodeData(t, resp, &updated)
	if updated.Status != models.PlantHarvested || updated.HarvestDate == nil || updated.HarvestDate.String() != "2026-07-15" {
		t.Errorf("updated = %+v", updated)
	}

	resp = env.expect(http.StatusOK, http.MethodPut, path, token, map[string]interface{}{
		"status":       models.PlantGrowing,
		"harvest_date": nil,
	})
	var raw map[string]interface{}
	decodeData(t, resp, &raw)
	if v, ok := raw["harvest_date"]; !ok || v != nil {
		t.Errorf("harvest_date = %v (present %v), want null", v, ok)
	}
	if raw["status"] != models.PlantGrowing {
		t.Errorf("status = %v, want growing", raw["status"])
	}
	resp = env.expect(http.StatusOK, http.MethodGet, path, token, nil)
	var reloaded models.Plant
	decodeData(t, resp, &reloaded)
	if reloaded.HarvestDate != nil {
		t.Errorf("stored harvest_date = %v, want cleared", reloaded.HarvestDate)
	}

	rec, _ := env.do(http.MethodDelete, path, token, nil)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("delete: status = %d, body = %q", rec.Code, rec.Body.String())
	}
	resp = env.expect(http.StatusNotFound, http.MethodGet, path, token, nil)
	if resp.Message != MsgPlantNotFound {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestPlant_HarvestDateAfterPlanting(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signIn("farmer@example.com", models.RoleFarmer)
	g := createGreenhouse(t, env, token, "Tomatoes")

	for _, harvest := range []string{"2026-03-01", "2026-02-01"} {
		body := plantBody(g.ID)
		body["harvest_date"] = harvest
		resp := env.expect(http.StatusUnprocessableEntity, http.MethodPost, "/api/plants", token, body)
		if msgs := resp.Errors["harvest_date"]; len(msgs) == 0 || msgs[0] != MsgHarvestBeforePlant {
			t.Errorf("harvest %s: errors = %v", harvest, resp.Errors)
		}
	}

	resp := env.expect(http.StatusCreated, http.MethodPost, "/api/plants", token, plantBody(g.ID))
	var p models.Plant
	decodeData(t, resp, &p)

	// Moving the planting date past the stored harvest date is rejected too.
	env.expect(http.StatusOK, http.MethodPatch, fmt.Sprintf("/api/plants/%d", p.ID), token,
		map[string]string{"harvest_date": "2026-06-01"})
	resp = env.expect(http.StatusUnprocessableEntity, http.MethodPatch, fmt.Sprintf("/api/plants/%d", p.ID), token,
		map[string]string{"planting_date": "2026-06-02"})
	if _, ok := resp.Errors["harvest_date"]; !ok {
		t.Errorf("errors = %v, want harvest_date", resp.Errors)
	}
}

func TestPlant_GreenhouseMustBeVisible(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.signIn("alice@example.com", models.RoleFarmer)
	_, bob := env.signIn("bob@example.com", models.RoleFarmer)
	aliceGreenhouse := createGreenhouse(t, env, alice, "Alice's")

	for _, id := range []uint{aliceGreenhouse.ID, 9999} {
		resp := env.expect(http.StatusUnprocessableEntity, http.MethodPost, "/api/plants", bob, plantBody(id))
		if msgs := resp.Errors["greenhouse_id"]; len(msgs) == 0 || msgs[0] != MsgGreenhouseIDInvalid {
			t.Errorf("greenhouse %d: errors = %v", id, resp.Errors)
		}
	}

	resp := env.expect(http.StatusCreated, http.MethodPost, "/api/plants", alice, plantBody(aliceGreenhouse.ID))
	var p models.Plant
	decodeData(t, resp, &p)
	env.expect(http.StatusNotFound, http.MethodGet, fmt.Sprintf("/api/plants/%d", p.ID), bob, nil)
	env.expect(http.StatusNotFound, http.MethodDelete, fmt.Sprintf("/api/plants/%d", p.ID), bob, nil)

	resp = env.expect(http.StatusOK, http.MethodGet, "/api/plants", bob, nil)
	var list []models.Plant
	decodeData(t, resp, &list)
	if len(list) != 0 {
		t.Errorf("bob sees %d plants, want 0", len(list))
	}
}

func TestGreenhouseDelete_CascadesToPlantsAndSensors(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signIn("farmer@example.com", models.RoleFarmer)
	g := createGreenhouse(t, env, token, "Doomed")

	resp := env.expect(http.StatusCreated, http.MethodPost, "/api/plants", token, plantBody(g.ID))
	var p models.Plant
	decodeData(t, resp, &p)
	resp = env.expect(http.StatusCreated, http.MethodPost, "/api/sensors", token, sensorBody(g.ID, models.SensorTemperature))
	var s models.Sensor
	decodeData(t, resp, &s)

	env.expect(http.StatusOK, http.MethodDelete, greenhousePath(g.ID, ""), token, nil)

	env.expect(http.StatusNotFound, http.MethodGet, fmt.Sprintf("/api/plants/%d", p.ID), token, nil)
	env.expect(http.StatusNotFound, http.MethodGet, fmt.Sprintf("/api/sensors/%d", s.ID), token, nil)
}
