// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ludograph/ludographus/internal/events"
	"github.com/ludograph/ludographus/internal/recommend"
)

func TestRelayForwardsBusEvents(t *testing.T) {
	hub, cancelHub := runHub(t)
	defer cancelHub()

	bus := events.NewBus(zerolog.Nop())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay := NewRelay(hub, bus)
	go func() { _ = relay.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)

	client := testClient(hub, 8)
	hub.Register <- client
	time.Sleep(20 * time.Millisecond)

	if err := bus.PublishProgress(recommend.Progress{
		Type:    "progress",
		RunID:   "run-relay",
		Stage:   recommend.StageShelves,
		Percent: 95,
	}); err != nil {
		t.Fatalf("PublishProgress error: %v", err)
	}

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeProgress {
			t.Fatalf("frame type = %q, want %q", msg.Type, MessageTypeProgress)
		}
		var p recommend.Progress
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			t.Fatalf("unmarshaling frame data: %v", err)
		}
		if p.RunID != "run-relay" || p.Stage != recommend.StageShelves {
			t.Errorf("relayed progress = %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client never received the relayed progress event")
	}
}
