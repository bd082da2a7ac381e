// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

// Package events carries greenhouse activity between the HTTP handlers and
// the WebSocket hub over an in-process Watermill pub/sub.
//
// Handlers publish a ControlEvent when a system is switched and a
// ReadingEvent when a sensor reports. The Router consumes both topics and
// forwards each payload to the owning user's WebSocket clients.
package events

import (
	"time"
)

// Topics.
const (
	TopicControl = "greenhouse.control"
	TopicReading = "greenhouse.reading"
)

// ControlEvent records a control command applied to a greenhouse system.
type ControlEvent struct {
	UserID       uint      `json:"user_id"`
	GreenhouseID uint      `json:"greenhouse_id"`
	System       string    `json:"system"`
	Action       string    `json:"action"`
	Value        *float64  `json:"value"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
}

// ReadingEvent records a sensor reading after it has been applied to the
// greenhouse metrics.
type ReadingEvent struct {
	UserID       uint      `json:"user_id"`
	GreenhouseID uint      `json:"greenhouse_id"`
	SensorID     uint      `json:"sensor_id"`
	SensorType   string    `json:"sensor_type"`
	Value        float64   `json:"value"`
	Timestamp    time.Time `json:"timestamp"`
}

// envelope is the part of every payload the router needs for fan-out.
type envelope struct {
	UserID uint `json:"user_id"`
}
