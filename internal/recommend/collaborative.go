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

// neighbor is a similar user found during the all-users scan.
type neighbor struct {
	userID     int64
	similarity float64
}

// collaborative produces recommendations from Pearson-similar users'
// highly rated public content.
//
// Neighbor selection: every other user is scored against the target;
// pairs with fewer than MinCommonRatings co-rated items are skipped,
// and only similarities strictly above SimilarityThreshold survive. The
// top MaxNeighbors by similarity contribute candidates in similarity
// order.
//
// Candidates are each neighbor's public content rated at or above
// HighRatingThreshold, excluding everything the target has already
// rated, liked, or favorited. Each candidate scores
// similarity * neighbor's rating; the first neighbor to surface an item
// keeps it.
func (e *Engine) collaborative(ctx context.Context, userID int64, limit int) ([]ScoredContent, error) {
	if limit <= 0 {
		return []ScoredContent{}, nil
	}

	target, err := e.store.UserRatings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ratings for user %d: %w", userID, err)
	}
	if len(target) == 0 {
		// No ratings means no similarity basis.
		return []ScoredContent{}, nil
	}

	others, err := e.store.OtherUserIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	// Memoized within this request only; ratings change between requests.
	simMemo := make(map[pairKey]float64)

	neighbors := make([]neighbor, 0, e.cfg.MaxNeighbors)
	for _, otherID := range others {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		otherRatings, err := e.store.UserRatings(ctx, otherID)
		if err != nil {
			return nil, fmt.Errorf("ratings for user %d: %w", otherID, err)
		}

		common := commonKeys(target, otherRatings)
		if len(common) < e.cfg.MinCommonRatings {
			continue
		}

		key := newPairKey(userID, otherID)
		sim, ok := simMemo[key]
		if !ok {
			sim = PearsonSimilarity(target, otherRatings, common)
			simMemo[key] = sim
		}

		if sim > e.cfg.SimilarityThreshold {
			neighbors = append(neighbors, neighbor{userID: otherID, similarity: sim})
		}
	}

	if len(neighbors) == 0 {
		return []ScoredContent{}, nil
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].similarity > neighbors[j].similarity
	})
	if len(neighbors) > e.cfg.MaxNeighbors {
		neighbors = neighbors[:e.cfg.MaxNeighbors]
	}

	exclude, err := e.interactedContentIDs(ctx, userID, target)
	if err != nil {
		return nil, err
	}

	excludeList := make([]int64, 0, len(exclude))
	for id := range exclude {
		excludeList = append(excludeList, id)
	}
	sort.Slice(excludeList, func(i, j int) bool { return excludeList[i] < excludeList[j] })

	seen := make(map[int64]bool)
	results := make([]ScoredContent, 0, limit)

	for _, n := range neighbors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rated, err := e.store.HighRatedPublicBy(ctx, n.userID, e.cfg.HighRatingThreshold, excludeList)
		if err != nil {
			return nil, fmt.Errorf("high-rated content of user %d: %w", n.userID, err)
		}

		for _, ri := range rated {
			id := ri.Item.ID
			if seen[id] || exclude[id] {
				continue
			}
			seen[id] = true
			results = append(results, ScoredContent{
				Item:   ri.Item,
				Score:  n.similarity * float64(ri.Score),
				Source: SourceCollaborative,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// interactedContentIDs returns the set of content the user has rated,
// liked, favorited, or authored. Liked content is excluded alongside
// rated and favorited content so users are never recommended what they
// already endorsed, and authored content so they never see their own.
func (e *Engine) interactedContentIDs(ctx context.Context, userID int64, ratings map[int64]int) (map[int64]bool, error) {
	exclude := make(map[int64]bool, len(ratings))
	for id := range ratings {
		exclude[id] = true
	}

	for _, fetch := range []struct {
		name string
		fn   func(context.Context, int64) ([]int64, error)
	}{
		{"liked", e.store.LikedContentIDs},
		{"favorited", e.store.FavoritedContentIDs},
		{"authored", e.store.AuthoredContentIDs},
	} {
		ids, err := fetch.fn(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("%s content of user %d: %w", fetch.name, userID, err)
		}
		for _, id := range ids {
			exclude[id] = true
		}
	}

	return exclude, nil
}
