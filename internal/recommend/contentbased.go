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

// contentBased recommends public content matching the user's preferred
// tags, excluding everything they have liked, favorited, rated, or
// authored.
//
// Ranking is delegated to the store: preferred-tag match count, then
// average rating (unrated lowest), then likes+2*favorites, then newest.
// The returned score is the preferred-tag match count, mirroring the
// primary ranking key.
func (e *Engine) contentBased(ctx context.Context, userID int64, limit int) ([]ScoredContent, error) {
	if limit <= 0 {
		return []ScoredContent{}, nil
	}

	preferred, err := e.PreferredTags(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(preferred) == 0 {
		// No preference signal: this source has nothing to say.
		return []ScoredContent{}, nil
	}

	exclude, err := e.exclusionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := e.store.PublicByTags(ctx, preferred, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("content by tags for user %d: %w", userID, err)
	}

	preferredSet := make(map[int64]bool, len(preferred))
	for _, id := range preferred {
		preferredSet[id] = true
	}

	results := make([]ScoredContent, 0, len(items))
	for _, item := range items {
		matches := 0
		for _, tag := range item.Tags {
			if preferredSet[tag.ID] {
				matches++
			}
		}
		results = append(results, ScoredContent{
			Item:   item,
			Score:  float64(matches),
			Source: SourceContentBased,
		})
	}
	return results, nil
}

// exclusionIDs returns the full exclusion set for content discovery:
// liked, favorited, rated, and authored content IDs, sorted.
func (e *Engine) exclusionIDs(ctx context.Context, userID int64) ([]int64, error) {
	set := make(map[int64]bool)

	for _, fetch := range []struct {
		name string
		fn   func(context.Context, int64) ([]int64, error)
	}{
		{"liked", e.store.LikedContentIDs},
		{"favorited", e.store.FavoritedContentIDs},
		{"rated", e.store.RatedContentIDs},
		{"authored", e.store.AuthoredContentIDs},
	} {
		ids, err := fetch.fn(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("%s content of user %d: %w", fetch.name, userID, err)
		}
		for _, id := range ids {
			set[id] = true
		}
	}

	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
