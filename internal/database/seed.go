// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package database

import (
	"context"
	"fmt"

	"github.com/musehub-io/musehub/internal/logging"
	"github.com/musehub-io/musehub/internal/models"
)

// SeedSampleData populates an empty database with a small set of users,
// tagged content, and interactions for development environments. It is a
// no-op when users already exist.
func (db *DB) SeedSampleData(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	users := []string{"ada", "brahms", "chiara", "dmitri"}
	userIDs := make([]int64, 0, len(users))
	for _, name := range users {
		id, err := db.CreateUser(ctx, name, name)
		if err != nil {
			return err
		}
		userIDs = append(userIDs, id)
	}

	seedContent := []struct {
		author  int
		title   string
		tags    []string
		private bool
	}{
		{0, "Nocturne Study No. 1", []string{"piano", "classical"}, false},
		{0, "Sketchbook: Night City", []string{"digital-art", "scifi"}, false},
		{1, "String Quartet Fragment", []string{"classical", "strings"}, false},
		{1, "Unfinished Draft", []string{"classical"}, true},
		{2, "Neon Alley Photography", []string{"photography", "scifi"}, false},
		{2, "Jazz Loop Pack", []string{"jazz", "samples"}, false},
		{3, "Ambient Field Recordings", []string{"ambient", "samples"}, false},
	}

	contentIDs := make([]int64, 0, len(seedContent))
	for _, c := range seedContent {
		visibility := models.VisibilityPublic
		if c.private {
			visibility = models.VisibilityPrivate
		}
		id, err := db.CreateContent(ctx, userIDs[c.author], c.title, "", visibility, c.tags)
		if err != nil {
			return err
		}
		contentIDs = append(contentIDs, id)
	}

	interactions := []struct {
		user, content int
		like, fav     bool
		rating        int
	}{
		{0, 2, true, false, 5},
		{0, 4, false, true, 4},
		{1, 0, true, false, 5},
		{1, 5, false, false, 3},
		{2, 0, true, true, 5},
		{2, 2, false, false, 4},
		{3, 0, false, false, 5},
		{3, 2, true, false, 4},
		{3, 5, false, true, 5},
	}

	for _, it := range interactions {
		userID := userIDs[it.user]
		contentID := contentIDs[it.content]
		if it.like {
			if err := db.AddLike(ctx, userID, contentID); err != nil {
				return err
			}
		}
		if it.fav {
			if err := db.AddFavorite(ctx, userID, contentID); err != nil {
				return err
			}
		}
		if it.rating > 0 {
			if err := db.SetRating(ctx, userID, contentID, it.rating); err != nil {
				return err
			}
		}
	}

	logging.Info().
		Int("users", len(userIDs)).
		Int("content", len(contentIDs)).
		Msg("seeded sample data")
	return nil
}
