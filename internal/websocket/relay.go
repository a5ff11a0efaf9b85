// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package websocket

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/ludograph/ludographus/internal/events"
	"github.com/ludograph/ludographus/internal/logging"
)

// Relay subscribes to the event bus and forwards run events to the hub.
type Relay struct {
	hub *Hub
	bus *events.Bus
}

// NewRelay creates a relay between bus and hub.
func NewRelay(hub *Hub, bus *events.Bus) *Relay {
	return &Relay{hub: hub, bus: bus}
}

// Run forwards bus events until ctx is canceled. Subscriptions are scoped
// to ctx, so cancellation closes both channels and the loop drains out.
func (r *Relay) Run(ctx context.Context) error {
	progress, err := r.bus.SubscribeProgress(ctx)
	if err != nil {
		return err
	}
	results, err := r.bus.SubscribeResult(ctx)
	if err != nil {
		return err
	}

	logging.Info().Str("component", "websocket_relay").Msg("relay started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Str("component", "websocket_relay").Msg("relay stopped")
			return ctx.Err()

		case msg, ok := <-progress:
			if !ok {
				return ctx.Err()
			}
			r.hub.Broadcast(MessageTypeProgress, json.RawMessage(msg.Payload))
			msg.Ack()

		case msg, ok := <-results:
			if !ok {
				return ctx.Err()
			}
			r.hub.Broadcast(MessageTypeResult, json.RawMessage(msg.Payload))
			msg.Ack()
		}
	}
}
