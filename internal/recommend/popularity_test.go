// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/musehub-io/musehub/internal/models"
)

func TestPopularityScore(t *testing.T) {
	item := models.ContentItem{LikesCount: 3, FavoritesCount: 2, RatingsCount: 4}
	if got := PopularityScore(&item); got != 11 {
		t.Errorf("expected 11 (3 + 2*2 + 4), got %v", got)
	}
}

func TestCompositeScoreFresh(t *testing.T) {
	now := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	avg := 4.0
	item := models.ContentItem{
		LikesCount:     10,
		FavoritesCount: 2,
		CommentsCount:  4,
		ViewsCount:     100,
		AvgRating:      &avg,
		CreatedAt:      now,
	}

	// 10 + 2*2 + 0.5*4 + 0.1*100 + 2*4 = 34, no decay on day zero.
	if got := CompositeScore(&item, now); math.Abs(got-34) > 1e-9 {
		t.Errorf("expected 34, got %v", got)
	}
}

func TestCompositeScoreDecay(t *testing.T) {
	now := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	item := models.ContentItem{
		LikesCount: 10,
		CreatedAt:  now.AddDate(0, 0, -10),
	}

	// 10 days old: decay 1 - 0.05*10 = 0.5.
	if got := CompositeScore(&item, now); math.Abs(got-5) > 1e-9 {
		t.Errorf("expected 5 after 10-day decay, got %v", got)
	}
}

func TestCompositeScoreDecayFloor(t *testing.T) {
	now := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	item := models.ContentItem{
		LikesCount: 10,
		CreatedAt:  now.AddDate(0, 0, -365),
	}

	// Decay bottoms out at 0.1 so old content never disappears entirely.
	if got := CompositeScore(&item, now); math.Abs(got-1) > 1e-9 {
		t.Errorf("expected 1 (0.1 floor), got %v", got)
	}
}

func TestCompositeScoreNoRatings(t *testing.T) {
	now := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	item := models.ContentItem{LikesCount: 1, CreatedAt: now}

	if got := CompositeScore(&item, now); math.Abs(got-1) > 1e-9 {
		t.Errorf("expected 1 with nil avg rating, got %v", got)
	}
}
