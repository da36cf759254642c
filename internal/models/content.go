// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

// Package models defines the data structures used throughout MuseHub:
// users, content items, tags, interactions, and API response envelopes.
package models

import (
	"time"
)

// Content visibility values.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Rating scale bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// User represents a platform account.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContentItem represents a published piece of creative content.
//
// AvgRating and RatingsCount are aggregate annotations computed by the
// query layer, not stored columns. AvgRating is nil when the item has no
// ratings; ranking treats nil as lower than any present value.
type ContentItem struct {
	ID         int64  `json:"id"`
	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"author_name,omitempty"`
	Title      string `json:"title"`
	Summary    string `json:"summary,omitempty"`
	Body       string `json:"body,omitempty"`

	// Visibility is "public" or "private". Only public content is ever
	// recommended.
	Visibility string `json:"visibility"`

	Tags []Tag `json:"tags,omitempty"`

	// Interaction counters.
	ViewsCount     int `json:"views_count"`
	LikesCount     int `json:"likes_count"`
	CommentsCount  int `json:"comments_count"`
	FavoritesCount int `json:"favorites_count"`

	// Rating aggregates (query-layer annotations).
	AvgRating    *float64 `json:"avg_rating,omitempty"`
	RatingsCount int      `json:"ratings_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPublic reports whether the item is visible to users other than its author.
func (c *ContentItem) IsPublic() bool {
	return c.Visibility == VisibilityPublic
}

// Tag labels content for discovery and preference matching.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// TrendingTag is a tag ranked by recent engagement.
type TrendingTag struct {
	Tag          Tag   `json:"tag"`
	ContentCount int   `json:"content_count"`
	LikesCount   int   `json:"likes_count"`
	FavoritesSum int   `json:"favorites_count"`
	Score        int64 `json:"score"`
}

// Rating is a user's 1-5 score for a content item. One rating per
// user+content pair; re-rating replaces the previous score.
type Rating struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ContentID int64     `json:"content_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsHigh reports whether the rating counts as an endorsement at the given
// threshold.
func (r *Rating) IsHigh(threshold int) bool {
	return r.Score >= threshold
}

// Like records that a user liked a content item. Presence only.
type Like struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ContentID int64     `json:"content_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Favorite records that a user favorited a content item. Presence only;
// favorites weigh double likes in preference extraction and popularity.
type Favorite struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ContentID int64     `json:"content_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Activity is a recorded user action for the activity feed.
type Activity struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Action      string    `json:"action"`
	ContentID   *int64    `json:"content_id,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Activity action values.
const (
	ActionLike               = "like"
	ActionFavorite           = "favorite"
	ActionRate               = "rate"
	ActionView               = "view"
	ActionRecommendationView = "recommendation_view"
)

// Impression records a recommendation that was served to a user, and
// whether they clicked through. Stored in the impression log, not DuckDB.
type Impression struct {
	UserID    int64     `json:"user_id"`
	ContentID int64     `json:"content_id"`
	Score     float64   `json:"score"`
	Reason    string    `json:"reason"`
	Clicked   bool       `json:"clicked"`
	ServedAt  time.Time  `json:"served_at"`
	ClickedAt *time.Time `json:"clicked_at,omitempty"`
}
