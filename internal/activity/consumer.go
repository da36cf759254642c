// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/musehub-io/musehub/internal/config"
	"github.com/musehub-io/musehub/internal/logging"
	"github.com/musehub-io/musehub/internal/metrics"
	"github.com/musehub-io/musehub/internal/models"
)

// Store is what the consumer needs from the database.
type Store interface {
	InsertActivity(ctx context.Context, activity *models.Activity) error
	IncrementViews(ctx context.Context, contentID int64) error
}

// ImpressionRecorder receives served recommendations for the impression log.
// May be nil when impression logging is disabled.
type ImpressionRecorder interface {
	Record(impression models.Impression) error
}

// Consumer drains the activity sink into the database and impression
// log. It implements suture.Service and runs under the root supervisor.
type Consumer struct {
	sink        *Sink
	store       Store
	impressions ImpressionRecorder
	timeout     time.Duration

	events <-chan *message.Message
	served <-chan *message.Message
}

// NewConsumer wires the consumer to its sink and stores. Both topic
// subscriptions are registered here, not in Serve: the gochannel
// transport drops publishes with no subscriber, so the subscriptions
// must exist before any publisher can run. The subscriptions live for
// the sink's lifetime and survive supervisor restarts of Serve.
func NewConsumer(sink *Sink, store Store, impressions ImpressionRecorder, cfg config.ActivityConfig) (*Consumer, error) {
	timeout := cfg.PersistTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	events, err := sink.Subscribe(context.Background(), TopicActivity)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", TopicActivity, err)
	}
	served, err := sink.Subscribe(context.Background(), TopicRecommendations)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", TopicRecommendations, err)
	}

	return &Consumer{
		sink:        sink,
		store:       store,
		impressions: impressions,
		timeout:     timeout,
		events:      events,
		served:      served,
	}, nil
}

// Serve processes messages until the context is canceled. Satisfies
// suture.Service.
func (c *Consumer) Serve(ctx context.Context) error {
	logging.Info().Msg("activity consumer started")
	for {
		select {
		case <-ctx.Done():
			c.drain(c.events, c.served)
			logging.Info().Msg("activity consumer stopped")
			return ctx.Err()
		case msg, ok := <-c.events:
			if !ok {
				return fmt.Errorf("activity subscription closed")
			}
			c.handleEvent(ctx, msg)
		case msg, ok := <-c.served:
			if !ok {
				return fmt.Errorf("recommendation subscription closed")
			}
			c.handleServed(msg)
		}
	}
}

// drain processes buffered messages after shutdown is signaled so
// interactions received before cancellation are not lost.
func (c *Consumer) drain(events, served <-chan *message.Message) {
	deadline := time.After(100 * time.Millisecond)
	drained := 0
	for {
		select {
		case <-deadline:
			c.logDrained(drained)
			return
		case msg, ok := <-events:
			if !ok {
				c.logDrained(drained)
				return
			}
			c.handleEvent(context.Background(), msg)
			drained++
		case msg, ok := <-served:
			if !ok {
				c.logDrained(drained)
				return
			}
			c.handleServed(msg)
			drained++
		default:
			c.logDrained(drained)
			return
		}
	}
}

func (c *Consumer) logDrained(count int) {
	if count > 0 {
		logging.Info().Int("count", count).Msg("activity consumer drained messages during shutdown")
	}
}

func (c *Consumer) handleEvent(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var ev Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		metrics.ActivityEventsDropped.Inc()
		logging.Warn().Str("message_uuid", msg.UUID).Err(err).Msg("failed to parse activity event")
		return
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	activity := models.Activity{
		UserID:      ev.UserID,
		Action:      ev.Action,
		ContentID:   ev.ContentID,
		Description: ev.Description,
	}
	if err := c.store.InsertActivity(persistCtx, &activity); err != nil {
		metrics.ActivityEventsDropped.Inc()
		logging.Warn().
			Str("event_id", ev.EventID).
			Str("action", ev.Action).
			Err(err).
			Msg("failed to persist activity")
		return
	}

	if ev.Action == models.ActionView && ev.ContentID != nil {
		if err := c.store.IncrementViews(persistCtx, *ev.ContentID); err != nil {
			logging.Warn().
				Int64("content_id", *ev.ContentID).
				Err(err).
				Msg("failed to increment views")
		}
	}

	metrics.ActivityEventsPersisted.Inc()
}

func (c *Consumer) handleServed(msg *message.Message) {
	defer msg.Ack()

	var ev RecommendationServed
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		metrics.ActivityEventsDropped.Inc()
		logging.Warn().Str("message_uuid", msg.UUID).Err(err).Msg("failed to parse served batch")
		return
	}
	if c.impressions == nil {
		return
	}

	for _, item := range ev.Items {
		imp := models.Impression{
			UserID:    ev.UserID,
			ContentID: item.ContentID,
			Score:     item.Score,
			Reason:    item.Source,
			ServedAt:  ev.ServedAt,
		}
		if err := c.impressions.Record(imp); err != nil {
			logging.Warn().
				Int64("user_id", ev.UserID).
				Int64("content_id", item.ContentID).
				Err(err).
				Msg("failed to record impression")
		}
	}
}
