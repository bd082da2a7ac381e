// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package events

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/metrics"
)

// Publisher is implemented by Bus. Handlers depend on this interface so
// tests can record events without a running router.
type Publisher interface {
	PublishControl(ctx context.Context, ev ControlEvent) error
	PublishReading(ctx context.Context, ev ReadingEvent) error
}

// Bus is an in-process pub/sub. Messages published while no router is
// subscribed are dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewLogger adapts the application logger for Watermill.
func NewLogger() watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger())
}

// NewBus creates a Bus. A nil logger uses NewLogger.
func NewBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = NewLogger()
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, logger),
		logger: logger,
	}
}

// Subscriber returns the subscriber side of the bus.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// PublishControl publishes ev on TopicControl.
func (b *Bus) PublishControl(ctx context.Context, ev ControlEvent) error {
	return b.publish(ctx, TopicControl, ev.UserID, ev)
}

// PublishReading publishes ev on TopicReading.
func (b *Bus) PublishReading(ctx context.Context, ev ReadingEvent) error {
	return b.publish(ctx, TopicReading, ev.UserID, ev)
}

func (b *Bus) publish(ctx context.Context, topic string, userID uint, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("user_id", strconv.FormatUint(uint64(userID), 10))
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// Close closes the bus and all subscriptions.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
