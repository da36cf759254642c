// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

// Package activity is the in-process event pipeline. User interactions
// and served recommendations are published to an in-memory pub/sub and
// persisted asynchronously, keeping writes off the request path.
package activity

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Topics on the in-process pub/sub.
const (
	TopicActivity        = "activity.events"
	TopicRecommendations = "activity.recommendations"
)

// Event is a single user interaction.
type Event struct {
	EventID     string    `json:"event_id"`
	UserID      int64     `json:"user_id"`
	Action      string    `json:"action"`
	ContentID   *int64    `json:"content_id,omitempty"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ServedItem is one recommendation in a served batch.
type ServedItem struct {
	ContentID int64   `json:"content_id"`
	Score     float64 `json:"score"`
	Source    string  `json:"source"`
}

// RecommendationServed records a recommendation batch delivered to a user.
type RecommendationServed struct {
	EventID  string       `json:"event_id"`
	UserID   int64        `json:"user_id"`
	ServedAt time.Time    `json:"served_at"`
	Items    []ServedItem `json:"items"`
}

// NewEvent builds an interaction event with a fresh ID and timestamp.
func NewEvent(userID int64, action string, contentID *int64, description string) Event {
	return Event{
		EventID:     uuid.NewString(),
		UserID:      userID,
		Action:      action,
		ContentID:   contentID,
		Description: description,
		OccurredAt:  time.Now().UTC(),
	}
}

func marshalMessage(eventID string, payload interface{}) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", eventID, err)
	}
	return message.NewMessage(eventID, data), nil
}
