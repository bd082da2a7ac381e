// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package services

import (
	"context"
	"fmt"
)

// ContextHub is a hub whose run loop honors context cancellation.
//
// Satisfied by *websocket.Hub from internal/websocket:
//   - RunWithContext(ctx context.Context) error
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// WebSocketHubService supervises the realtime hub's run loop.
//
// The hub owns the per-user client registry, so a panic or failure in it
// would silently stop every live dashboard. Running it under suture means:
//
//  1. A failed loop is restarted with the tree's backoff
//  2. Cancellation of the messaging layer stops it cleanly
//  3. Connected clients are closed by the hub on exit and reconnect
//
// Example usage:
//
//	hub := websocket.NewHub()
//	tree.AddMessagingService(services.NewWebSocketHubService(hub))
type WebSocketHubService struct {
	hub  ContextHub
	name string
}

// NewWebSocketHubService wraps hub.
func NewWebSocketHubService(hub ContextHub) *WebSocketHubService {
	return &WebSocketHubService{hub: hub, name: "websocket-hub"}
}

// Serve implements suture.Service. It returns ctx.Err() when stopped by
// the supervisor and a wrapped error when the loop fails on its own.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	err := w.hub.RunWithContext(ctx)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("websocket hub failed: %w", err)
	}
	return nil
}

// String implements fmt.Stringer.
func (w *WebSocketHubService) String() string {
	return w.name
}
