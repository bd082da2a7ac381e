// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type mockEventRouter struct {
	runErr error
	closed atomic.Bool
}

func (m *mockEventRouter) Run(ctx context.Context) error {
	if m.runErr != nil {
		return m.runErr
	}
	<-ctx.Done()
	return nil
}

func (m *mockEventRouter) Close() error {
	m.closed.Store(true)
	return nil
}

func TestEventRouterService_NewRouterPerServe(t *testing.T) {
	var built []*mockEventRouter
	svc := NewEventRouterService(func() (EventRouter, error) {
		r := &mockEventRouter{}
		built = append(built, r)
		return r, nil
	})

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		err := svc.Serve(ctx)
		cancel()
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("Serve() = %v, want context.DeadlineExceeded", err)
		}
	}

	if len(built) != 2 {
		t.Fatalf("built %d routers, want 2", len(built))
	}
	for i, r := range built {
		if !r.closed.Load() {
			t.Errorf("router %d not closed", i)
		}
	}
}

func TestEventRouterService_Errors(t *testing.T) {
	factoryErr := errors.New("no bus")
	svc := NewEventRouterService(func() (EventRouter, error) { return nil, factoryErr })
	if err := svc.Serve(context.Background()); !errors.Is(err, factoryErr) {
		t.Errorf("Serve() = %v, want factory error", err)
	}

	runErr := errors.New("subscribe failed")
	router := &mockEventRouter{runErr: runErr}
	svc = NewEventRouterService(func() (EventRouter, error) { return router, nil })
	if err := svc.Serve(context.Background()); !errors.Is(err, runErr) {
		t.Errorf("Serve() = %v, want run error", err)
	}
	if !router.closed.Load() {
		t.Error("router not closed after failure")
	}
	if svc.String() != "event-router" {
		t.Errorf("String() = %q", svc.String())
	}
}
