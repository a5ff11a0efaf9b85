// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/ludograph/ludographus/internal/logging"
)

//nolint:gochecknoinits // keep test logs quiet
func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

// runHub starts the hub under a cancelable context and returns the cancel.
func runHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(8)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)
	return hub, cancel
}

// testClient builds a client without an underlying connection; the pumps
// are never started, so only the send channel matters.
func testClient(hub *Hub, buffer int) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message, buffer)}
}

func TestNewHubDefaults(t *testing.T) {
	hub := NewHub(0)
	if hub.sendBuffer != 32 {
		t.Errorf("sendBuffer = %d, want fallback 32", hub.sendBuffer)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("new hub has %d clients, want 0", hub.ClientCount())
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub, cancel := runHub(t)
	defer cancel()

	client := testClient(hub, 8)
	hub.Register <- client
	time.Sleep(20 * time.Millisecond)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("ClientCount after register = %d, want 1", got)
	}

	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)
	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount after unregister = %d, want 0", got)
	}
	if _, open := <-client.send; open {
		t.Error("send channel still open after unregister")
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub, cancel := runHub(t)
	defer cancel()

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = testClient(hub, 8)
		hub.Register <- clients[i]
	}
	time.Sleep(20 * time.Millisecond)

	payload, _ := json.Marshal(map[string]string{"runId": "run-1"})
	hub.Broadcast(MessageTypeProgress, payload)

	for i, client := range clients {
		select {
		case msg := <-client.send:
			if msg.Type != MessageTypeProgress {
				t.Errorf("client %d got type %q, want %q", i, msg.Type, MessageTypeProgress)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %d never received the broadcast", i)
		}
	}
}

func TestHubDisconnectsSlowClient(t *testing.T) {
	hub, cancel := runHub(t)
	defer cancel()

	slow := testClient(hub, 1)
	hub.Register <- slow
	time.Sleep(20 * time.Millisecond)

	// First message fills the queue, second overflows it.
	hub.Broadcast(MessageTypeProgress, nil)
	hub.Broadcast(MessageTypeProgress, nil)
	time.Sleep(50 * time.Millisecond)

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount = %d, want 0 after slow client dropped", got)
	}
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub(8)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)

	client := testClient(hub, 8)
	hub.Register <- client
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount after shutdown = %d, want 0", got)
	}
}
