// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/greenhouse/internal/websocket"
)

type mockContextHub struct {
	err error
}

func (m *mockContextHub) RunWithContext(ctx context.Context) error {
	if m.err != nil {
		return m.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubService_Interface(t *testing.T) {
	var _ suture.Service = (*WebSocketHubService)(nil)
	var _ ContextHub = (*websocket.Hub)(nil)
}

func TestWebSocketHubService_StopsOnCancel(t *testing.T) {
	svc := NewWebSocketHubService(&mockContextHub{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want context.DeadlineExceeded", err)
	}
}

func TestWebSocketHubService_Failure(t *testing.T) {
	hubErr := errors.New("boom")
	svc := NewWebSocketHubService(&mockContextHub{err: hubErr})

	if err := svc.Serve(context.Background()); !errors.Is(err, hubErr) {
		t.Errorf("Serve() = %v, want wrapped hub error", err)
	}
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestWebSocketHubService_RealHub(t *testing.T) {
	hub := websocket.NewHub()
	svc := NewWebSocketHubService(hub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	select {
	case <-hub.Done():
	default:
		t.Error("hub.Done() not closed")
	}
}
