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

func sensorBody(greenhouseID uint, sensorType string) map[string]interface{} {
	return map[string]interface{}{
		"name":          sensorType + " probe",
		"type":          sensorType,
		"status":        "active",
		"greenhouse_id": greenhouseID,
	}
}

func createSensor(t *testing.T, env *testEnv, token string, greenhouseID uint, sensorType string) models.Sensor {
	t.Helper()
	resp := env.expect(http.StatusCreated, http.MethodPost, "/api/sensors", token, sensorBody(greenhouseID, sensorType))
	var s models.Sensor
	decodeData(t, resp, &s)
	return s
}

func TestSensorCRUD(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signIn("farmer@example.com", models.RoleFarmer)
	g := createGreenhouse(t, env, token, "Tomatoes")
	other := createGreenhouse(t, env, token, "Peppers")

	s := createSensor(t, env, token, g.ID, models.SensorHumidity)
	if s.ID == 0 || s.Greenhouse == nil || s.Greenhouse.ID != g.ID {
		t.Fatalf("created = %+v", s)
	}
	path := fmt.Sprintf("/api/sensors/%d", s.ID)

	resp := env.expect(http.StatusOK, http.MethodPut, path, token, map[string]interface{}{
		"status":        "maintenance",
		"greenhouse_id": other.ID,
	})
	if resp.Message != MsgSensorUpdated {
		t.Errorf("message = %q", resp.Message)
	}
	var updated models.Sensor
	decodeData(t, resp, &updated)
	if updated.Status != "maintenance" || updated.GreenhouseID != other.ID {
		t.Errorf("updated = %+v", updated)
	}

	resp = env.expect(http.StatusUnprocessableEntity, http.MethodPut, path, token,
		map[string]string{"type": "pressure"})
	if _, ok := resp.Errors["type"]; !ok {
		t.Errorf("errors = %v, want type", resp.Errors)
	}

	resp = env.expect(http.StatusOK, http.MethodGet, "/api/sensors", token, nil)
	var list []models.Sensor
	decodeData(t, resp, &list)
	if len(list) != 1 {
		t.Fatalf("list = %+v", list)
	}

	rec, _ := env.do(http.MethodDelete, path, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	resp = env.expect(http.StatusNotFound, http.MethodGet, path, token, nil)
	if resp.Message != MsgSensorNotFound {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestSensor_GreenhouseMustBeVisible(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.signIn("alice@example.com", models.RoleFarmer)
	_, bob := env.signIn("bob@example.com", models.RoleFarmer)
	g := createGreenhouse(t, env, alice, "Alice's")

	resp := env.expect(http.StatusUnprocessableEntity, http.MethodPost, "/api/sensors", bob, sensorBody(g.ID, models.SensorLight))
	if msgs := resp.Errors["greenhouse_id"]; len(msgs) == 0 || msgs[0] != MsgGreenhouseIDInvalid {
		t.Errorf("errors = %v", resp.Errors)
	}

	s := createSensor(t, env, alice, g.ID, models.SensorLight)
	env.expect(http.StatusNotFound, http.MethodPost, fmt.Sprintf("/api/sensors/%d/readings", s.ID), bob,
		map[string]float64{"value": 500})
}

func TestRecordSensorReading(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signIn("farmer@example.com", models.RoleFarmer)
	g := createGreenhouse(t, env, token, "Tomatoes")
	temp := createSensor(t, env, token, g.ID, models.SensorTemperature)
	soil := createSensor(t, env, token, g.ID, models.SensorSoilMoisture)

	resp := env.expect(http.StatusOK, http.MethodPost, fmt.Sprintf("/api/sensors/%d/readings", temp.ID), token,
		map[string]float64{"value": 28.5})
	if resp.Message != MsgReadingRecorded {
		t.Errorf("message = %q", resp.Message)
	}
	var s models.Sensor
	decodeData(t, resp, &s)
	if s.LastReading == nil || *s.LastReading != 28.5 || s.LastReadingAt == nil {
		t.Errorf("sensor = %+v", s)
	}

	resp = env.expect(http.StatusOK, http.MethodGet, greenhousePath(g.ID, "/metrics"), token, nil)
	var m models.GreenhouseMetrics
	decodeData(t, resp, &m)
	if m.Temperature != 28.5 {
		t.Errorf("temperature metric = %v, want 28.5", m.Temperature)
	}

	resp = env.expect(http.StatusUnprocessableEntity, http.MethodPost, fmt.Sprintf("/api/sensors/%d/readings", soil.ID), token,
		map[string]float64{"value": 140})
	if msgs := resp.Errors["value"]; len(msgs) == 0 || msgs[0] != MsgReadingOutOfRange {
		t.Errorf("errors = %v", resp.Errors)
	}

	resp = env.expect(http.StatusUnprocessableEntity, http.MethodPost, fmt.Sprintf("/api/sensors/%d/readings", soil.ID), token,
		map[string]string{})
	if _, ok := resp.Errors["value"]; !ok {
		t.Errorf("errors = %v, want value", resp.Errors)
	}

	readings := env.events.readingEvents()
	if len(readings) != 1 {
		t.Fatalf("published %d reading events, want 1", len(readings))
	}
	ev := readings[0]
	if ev.UserID != user.ID || ev.SensorID != temp.ID || ev.GreenhouseID != g.ID || ev.Value != 28.5 || ev.SensorType != models.SensorTemperature {
		t.Errorf("event = %+v", ev)
	}
}
