// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package recommend

import (
	"context"
	"fmt"
	"sort"
)

// PreferredTags builds the user's weighted tag preference profile and
// returns the top preferred tag IDs, strongest first.
//
// Each tag occurrence contributes its interaction weight: liked content
// LikeWeight, favorited content FavoriteWeight, highly rated content
// HighRatingWeight. Occurrences are counted per interaction, not
// deduplicated per item, so a tag on three liked items counts three
// times. Ties keep first-encounter order (likes, then favorites, then
// high ratings, oldest interaction first).
//
// An empty result means the user has no interaction signal.
func (e *Engine) PreferredTags(ctx context.Context, userID int64) ([]int64, error) {
	liked, err := e.store.LikedTagIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("liked tags for user %d: %w", userID, err)
	}

	favorited, err := e.store.FavoritedTagIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("favorited tags for user %d: %w", userID, err)
	}

	highRated, err := e.store.HighRatedTagIDs(ctx, userID, e.cfg.HighRatingThreshold)
	if err != nil {
		return nil, fmt.Errorf("high-rated tags for user %d: %w", userID, err)
	}

	weights := make(map[int64]float64)
	order := make([]int64, 0, len(liked)+len(favorited)+len(highRated))

	accumulate := func(tagIDs []int64, weight float64) {
		for _, id := range tagIDs {
			if _, seen := weights[id]; !seen {
				order = append(order, id)
			}
			weights[id] += weight
		}
	}

	accumulate(liked, e.cfg.LikeWeight)
	accumulate(favorited, e.cfg.FavoriteWeight)
	accumulate(highRated, e.cfg.HighRatingWeight)

	if len(order) == 0 {
		return []int64{}, nil
	}

	sort.SliceStable(order, func(i, j int) bool {
		return weights[order[i]] > weights[order[j]]
	})

	if len(order) > e.cfg.PreferredTagCount {
		order = order[:e.cfg.PreferredTagCount]
	}
	return order, nil
}
