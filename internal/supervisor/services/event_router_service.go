// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/greenhouse/internal/logging"
)

// EventRouter is the lifecycle of an events.Router.
//
// Satisfied by *events.Router from internal/events:
//   - Run(ctx context.Context) error
//   - Close() error
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterFactory builds a fresh router. Watermill routers cannot be
// restarted, so every Serve call asks for a new one.
type EventRouterFactory func() (EventRouter, error)

// EventRouterService forwards bus events to the websocket hub under
// supervision.
//
// Each Serve call:
//
//  1. Builds a router from the factory, wiring its handlers to the bus
//  2. Runs it until the context ends
//  3. Closes it, logging rather than returning a close failure
//
// A router that stops while the context is still live is reported as an
// error so suture restarts it with fresh subscriptions.
//
// Example usage:
//
//	svc := services.NewEventRouterService(func() (services.EventRouter, error) {
//		return events.NewRouter(bus, hub, wmLogger)
//	})
//	tree.AddMessagingService(svc)
type EventRouterService struct {
	factory EventRouterFactory
	name    string
}

// NewEventRouterService wraps factory.
func NewEventRouterService(factory EventRouterFactory) *EventRouterService {
	return &EventRouterService{factory: factory, name: "event-router"}
}

// Serve implements suture.Service.
func (e *EventRouterService) Serve(ctx context.Context) error {
	router, err := e.factory()
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}
	defer func() {
		if cerr := router.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Event router close failed")
		}
	}()

	err = router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("event router failed: %w", err)
	}
	// A router that returns on its own has lost its subscriptions.
	return errors.New("event router stopped unexpectedly")
}

// String implements fmt.Stringer.
func (e *EventRouterService) String() string {
	return e.name
}
