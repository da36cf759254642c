// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

// Package recommend implements the hybrid recommendation engine.
//
// Three sources feed the aggregator, in priority order:
//
//   - Collaborative filtering: Pearson-similar users' highly rated content
//   - Content-based filtering: content matching the user's preferred tags
//   - Popularity fallback: broadly liked content, filling any shortfall
//
// The engine is read-only over the store: it never mutates domain
// entities, and per-source failures degrade results instead of failing
// the request.
package recommend

import (
	"context"

	"github.com/musehub-io/musehub/internal/models"
)

// Recommendation sources.
const (
	SourceCollaborative = "collaborative"
	SourceContentBased  = "content_based"
	SourcePopularity    = "popularity"
)

// ScoredContent is one recommended item with its score and originating
// source. It wraps the domain entity rather than annotating it.
type ScoredContent struct {
	Item   models.ContentItem `json:"item"`
	Score  float64            `json:"score"`
	Source string             `json:"source"`
}

// RatedItem pairs a content item with the score one specific user gave it.
type RatedItem struct {
	Item  models.ContentItem `json:"item"`
	Score int                `json:"score"`
}

// Store provides the read-only data access the engine needs. The
// database package implements it; tests use in-memory fakes.
//
// Ordering contracts:
//   - LikedTagIDs / FavoritedTagIDs / HighRatedTagIDs return tag IDs with
//     multiplicity (one entry per tagged interaction), oldest interaction
//     first, so preference ties break deterministically.
//   - PublicByTags returns items ranked by preferred-tag match count,
//     then average rating (NULL lowest), then likes+2*favorites, then
//     newest first.
//   - PopularPublic returns items ranked by likes+2*favorites+rating
//     count, newest first on ties.
type Store interface {
	// UserRatings returns all of a user's ratings as contentID -> score.
	UserRatings(ctx context.Context, userID int64) (map[int64]int, error)

	// OtherUserIDs returns the IDs of all users except userID.
	OtherUserIDs(ctx context.Context, userID int64) ([]int64, error)

	// HighRatedPublicBy returns public content the given user rated at or
	// above minScore, excluding excludeIDs, with that user's score.
	HighRatedPublicBy(ctx context.Context, raterID int64, minScore int, excludeIDs []int64) ([]RatedItem, error)

	// Interaction ID sets for exclusion filtering.
	LikedContentIDs(ctx context.Context, userID int64) ([]int64, error)
	FavoritedContentIDs(ctx context.Context, userID int64) ([]int64, error)
	RatedContentIDs(ctx context.Context, userID int64) ([]int64, error)
	AuthoredContentIDs(ctx context.Context, userID int64) ([]int64, error)

	// Tag occurrence streams for preference extraction.
	LikedTagIDs(ctx context.Context, userID int64) ([]int64, error)
	FavoritedTagIDs(ctx context.Context, userID int64) ([]int64, error)
	HighRatedTagIDs(ctx context.Context, userID int64, minScore int) ([]int64, error)

	// PublicByTags returns public content carrying at least one of the
	// given tags, minus excludeIDs, ranked for content-based delivery.
	PublicByTags(ctx context.Context, tagIDs, excludeIDs []int64, limit int) ([]models.ContentItem, error)

	// PopularPublic returns public content ranked by popularity,
	// excluding the given IDs and author.
	PopularPublic(ctx context.Context, excludeIDs []int64, excludeAuthorID int64, limit int) ([]models.ContentItem, error)
}
