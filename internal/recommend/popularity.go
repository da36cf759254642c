// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package recommend

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/musehub-io/musehub/internal/models"
)

// popularity returns broadly popular public content, excluding the given
// IDs and author. Ranking (likes + 2*favorites + rating count, newest
// first on ties) is delegated to the store; the returned score is that
// same popularity value so callers can see why an item ranked.
func (e *Engine) popularity(ctx context.Context, excludeIDs []int64, excludeAuthorID int64, limit int) ([]ScoredContent, error) {
	if limit <= 0 {
		return []ScoredContent{}, nil
	}

	items, err := e.store.PopularPublic(ctx, excludeIDs, excludeAuthorID, limit)
	if err != nil {
		return nil, fmt.Errorf("popular content: %w", err)
	}

	results := make([]ScoredContent, 0, len(items))
	for _, item := range items {
		results = append(results, ScoredContent{
			Item:   item,
			Score:  PopularityScore(&item),
			Source: SourcePopularity,
		})
	}
	return results, nil
}

// PopularityScore is the popularity ranking value for an item.
func PopularityScore(item *models.ContentItem) float64 {
	return float64(item.LikesCount + 2*item.FavoritesCount + item.RatingsCount)
}

// CompositeScore is the engagement score used by the popular-content
// surface: likes + 2*favorites + 0.5*comments + 0.1*views +
// 2*average rating, decayed 5% per day of age with a 0.1 floor so old
// content fades without vanishing.
func CompositeScore(item *models.ContentItem, now time.Time) float64 {
	score := float64(item.LikesCount) +
		2*float64(item.FavoritesCount) +
		0.5*float64(item.CommentsCount) +
		0.1*float64(item.ViewsCount)
	if item.AvgRating != nil {
		score += 2 * *item.AvgRating
	}

	days := now.Sub(item.CreatedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	decay := math.Max(0.1, 1-0.05*days)
	return score * decay
}
