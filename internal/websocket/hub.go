// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

// Package websocket relays recommendation run events to connected browser
// clients. The hub owns the client set; the relay feeds it from the event
// bus.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/ludograph/ludographus/internal/logging"
	"github.com/ludograph/ludographus/internal/metrics"
)

// Message types pushed to clients.
const (
	MessageTypeProgress = "progress"
	MessageTypeResult   = "result"
	MessageTypePing     = "ping"
	MessageTypePong     = "pong"
)

// Message is one websocket frame. Data holds the already-encoded event
// payload so the hub never re-serializes per client.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Hub maintains the set of active clients and fans broadcast messages out
// to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	sendBuffer int
	mu         sync.RWMutex
}

// NewHub creates a hub. sendBuffer is the per-client outbound queue length;
// a client that falls that far behind is disconnected.
func NewHub(sendBuffer int) *Hub {
	if sendBuffer < 1 {
		sendBuffer = 32
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		sendBuffer: sendBuffer,
	}
}

// Run processes lifecycle events and broadcasts until ctx is canceled.
// Designed to run under supervision; on cancellation all clients are
// closed and ctx.Err() is returned so the supervisor sees a clean stop.
//
// Lifecycle events are drained before broadcasts so the client set is
// consistent when a message fans out.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
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
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// Broadcast queues a message for all connected clients. Drops the message
// when the hub's own queue is full rather than blocking the publisher.
func (h *Hub) Broadcast(msgType string, data json.RawMessage) {
	select {
	case h.broadcast <- Message{Type: msgType, Data: data}:
	default:
		metrics.WebSocketMessagesDropped.Inc()
		logging.Warn().Str("message_type", msgType).Msg("broadcast queue full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketConnections.Inc()
	logging.Info().Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.WebSocketConnections.Dec()
		logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
	}
}

// fanOut delivers a message to every client in id order. Clients whose send
// queue is full are disconnected; a stalled browser must not hold back the
// rest.
func (h *Hub) fanOut(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- msg:
			metrics.WebSocketMessagesSent.Inc()
		default:
			metrics.WebSocketMessagesDropped.Inc()
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WebSocketConnections.Dec()
	}
}

// shutdown closes every client and logs the stop. Cancellation is the
// normal path, so nothing here is logged at error level.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
		metrics.WebSocketConnections.Dec()
	}
	h.mu.Unlock()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "websocket_hub").
		Str("reason", reason).
		Int("clients_closed", len(clients)).
		Msg("websocket hub stopped")
}
