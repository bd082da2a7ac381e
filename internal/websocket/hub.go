// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

// Package websocket streams greenhouse events to connected dashboards.
//
// Each client belongs to the user whose token opened the connection, and
// BroadcastToUser delivers only to that user's clients. The Hub goroutine
// owns registration; RunWithContext is meant to run under the supervisor.
package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tomtom215/greenhouse/internal/logging"
	"github.com/tomtom215/greenhouse/internal/metrics"
)

// Message types sent to clients.
const (
	MessageTypeControl = "control"
	MessageTypeReading = "reading"
	MessageTypePing    = "ping"
	MessageTypePong    = "pong"
)

// ErrHubStopped is returned when registering with a hub that is not running.
var ErrHubStopped = errors.New("websocket hub stopped")

// Message is the frame written to clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type userMessage struct {
	userID uint
	msg    Message
}

// Hub tracks connected clients by owner and fans messages out to them.
type Hub struct {
	clients    map[*Client]bool
	byUser     map[uint]map[*Client]bool
	broadcast  chan userMessage
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	doneOnce   sync.Once
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		byUser:     make(map[uint]map[*Client]bool),
		broadcast:  make(chan userMessage, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// RunWithContext processes registrations and broadcasts until ctx is
// canceled, then closes every client and returns ctx.Err().
//
// Lifecycle events are drained before broadcasts so a client registered
// just before a broadcast receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	defer h.doneOnce.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case um := <-h.broadcast:
			h.deliver(um)
		}
	}
}

// Done is closed once the hub has stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	set, ok := h.byUser[c.userID]
	if !ok {
		set = make(map[*Client]bool)
		h.byUser[c.userID] = set
	}
	set[c] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Debug().Uint("user_id", c.userID).Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	h.dropLocked(c)
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Debug().Uint("user_id", c.userID).Int("total_clients", total).Msg("websocket client disconnected")
}

// dropLocked removes c and closes its send channel. Callers hold mu.
func (h *Hub) dropLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if set, ok := h.byUser[c.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.userID)
		}
	}
	close(c.send)
}

// deliver sends to the user's clients in id order. A client whose buffer
// is full is dropped rather than blocking the hub.
func (h *Hub) deliver(um userMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.byUser[um.userID]
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, c := range clients {
		select {
		case c.send <- um.msg:
			metrics.WSMessagesSent.WithLabelValues(um.msg.Type).Inc()
		default:
			metrics.WSMessagesDropped.Inc()
			h.dropLocked(c)
		}
	}
	metrics.WSConnections.Set(float64(len(h.clients)))
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	for _, c := range clients {
		h.dropLocked(c)
	}
	h.mu.Unlock()

	metrics.WSConnections.Set(0)
	logging.Info().
		Str("component", "websocket-hub").
		Int("clients_closed", len(clients)).
		Msg("websocket hub stopped")
}

// BroadcastToUser queues a message for every client of userID. It never
// blocks; when the queue is full the message is dropped.
func (h *Hub) BroadcastToUser(userID uint, msgType string, data interface{}) {
	select {
	case h.broadcast <- userMessage{userID: userID, msg: Message{Type: msgType, Data: data}}:
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Str("message_type", msgType).Msg("broadcast channel full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserClientCount returns the number of clients connected for userID.
func (h *Hub) UserClientCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}

// register hands c to the hub goroutine.
func (h *Hub) register(ctx context.Context, c *Client) error {
	select {
	case h.Register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// unregister hands c back; it is a no-op once the hub has stopped.
func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}
