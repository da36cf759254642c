// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package activity

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/musehub-io/musehub/internal/config"
	"github.com/musehub-io/musehub/internal/metrics"
)

// Sink is the process-local activity bus. Publishers hand events to it
// from the request path; the Consumer drains them into storage.
type Sink struct {
	pubsub *gochannel.GoChannel

	mu     sync.RWMutex
	closed bool
}

// NewSink creates the in-memory pub/sub backing the activity pipeline.
func NewSink(cfg config.ActivityConfig) *Sink {
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 256
	}
	return &Sink{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: buffer,
		}, newWatermillLogger()),
	}
}

// PublishEvent publishes a user interaction event.
func (s *Sink) PublishEvent(ctx context.Context, ev Event) error {
	msg, err := marshalMessage(ev.EventID, ev)
	if err != nil {
		return err
	}
	if err := s.publish(TopicActivity, msg); err != nil {
		return err
	}
	metrics.ActivityEventsPublished.WithLabelValues(ev.Action).Inc()
	return nil
}

// PublishRecommendationServed publishes a served recommendation batch.
func (s *Sink) PublishRecommendationServed(ctx context.Context, ev RecommendationServed) error {
	msg, err := marshalMessage(ev.EventID, ev)
	if err != nil {
		return err
	}
	if err := s.publish(TopicRecommendations, msg); err != nil {
		return err
	}
	metrics.ActivityEventsPublished.WithLabelValues("recommendation_served").Inc()
	return nil
}

func (s *Sink) publish(topic string, msg *message.Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("activity sink is closed")
	}
	if err := s.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns a message channel for a topic. Used by the Consumer.
func (s *Sink) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return s.pubsub.Subscribe(ctx, topic)
}

// Close shuts the pub/sub down. Pending messages are dropped.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.pubsub.Close()
}
