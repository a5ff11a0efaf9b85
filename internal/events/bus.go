// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

// Package events carries recommendation run notifications between the
// worker and its subscribers over an in-process watermill pub/sub.
package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ludograph/ludographus/internal/recommend"
)

// Topics carried by the bus.
const (
	TopicProgress = "reco.progress"
	TopicResult   = "reco.result"
)

// Bus is the in-process event bus. Publishers never block on slow
// subscribers; messages published with no subscriber are dropped, which is
// the wanted semantic for one-way notifications.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger
}

// NewBus creates the event bus.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBus(logger zerolog.Logger) *Bus {
	l := logger.With().Str("component", "event_bus").Logger()
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, newWatermillAdapter(l)),
		logger: l,
	}
}

// PublishProgress publishes a stage-boundary notification.
func (b *Bus) PublishProgress(p recommend.Progress) error {
	return b.publish(TopicProgress, p)
}

// PublishResult publishes a terminal run result.
func (b *Bus) PublishResult(r *recommend.Result) error {
	return b.publish(TopicResult, r)
}

// publish serializes the payload and publishes it with a fresh message id.
func (b *Bus) publish(topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), raw)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// SubscribeProgress subscribes to progress notifications. The channel
// closes when ctx is canceled or the bus shuts down.
func (b *Bus) SubscribeProgress(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicProgress)
}

// SubscribeResult subscribes to terminal results.
func (b *Bus) SubscribeResult(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicResult)
}

// Close shuts the bus down, closing all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
