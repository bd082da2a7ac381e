// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
)

// Broadcaster delivers a typed message to one user's WebSocket clients.
type Broadcaster interface {
	BroadcastToUser(userID uint, msgType string, data interface{})
}

// WebSocket message types used for each topic.
const (
	MessageTypeControl = "control"
	MessageTypeReading = "reading"
)

// Router consumes bus topics and forwards them to a Broadcaster.
type Router struct {
	router *message.Router
}

// NewRouter wires the control and reading topics of bus to hub.
//
// A router runs once; build a new one to restart.
func NewRouter(bus *Bus, hub Broadcaster, logger watermill.LoggerAdapter) (*Router, error) {
	if bus == nil || hub == nil {
		return nil, errors.New("bus and hub required")
	}
	if logger == nil {
		logger = bus.logger
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	wmRouter.AddConsumerHandler("control-to-websocket", TopicControl, bus.Subscriber(), forward(hub, MessageTypeControl))
	wmRouter.AddConsumerHandler("reading-to-websocket", TopicReading, bus.Subscriber(), forward(hub, MessageTypeReading))

	return &Router{router: wmRouter}, nil
}

// forward returns a handler that sends the raw payload to the event's owner.
// Malformed payloads are dropped; retrying them cannot succeed.
func forward(hub Broadcaster, msgType string) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var env envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil || env.UserID == 0 {
			return nil
		}
		hub.BroadcastToUser(env.UserID, msgType, json.RawMessage(msg.Payload))
		return nil
	}
}

// Run blocks until ctx is canceled or the router fails.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running is closed once every handler is subscribed.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close stops the router.
func (r *Router) Close() error {
	return r.router.Close()
}
