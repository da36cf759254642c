// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/musehub-io/musehub/internal/metrics"
	"github.com/musehub-io/musehub/internal/models"
)

// CreateUser inserts a user and returns its ID.
func (db *DB) CreateUser(ctx context.Context, username, displayName string) (int64, error) {
	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	var id int64
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO users (username, display_name)
		VALUES (?, ?)
		RETURNING id`, username, displayName).Scan(&id)
	metrics.ObserveDBQuery("create_user", start, err)
	if err != nil {
		return 0, fmt.Errorf("insert user %s: %w", username, err)
	}
	return id, nil
}

// CreateContent inserts a content item and its tag links, returning the
// content ID. Tags are created on first use.
func (db *DB) CreateContent(ctx context.Context, authorID int64, title, summary, visibility string, tagNames []string) (int64, error) {
	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	var id int64
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO content (author_id, title, summary, visibility)
		VALUES (?, ?, ?, ?)
		RETURNING id`, authorID, title, summary, visibility).Scan(&id)
	metrics.ObserveDBQuery("create_content", start, err)
	if err != nil {
		return 0, fmt.Errorf("insert content %q: %w", title, err)
	}

	for _, name := range tagNames {
		tagID, err := db.ensureTag(ctx, name)
		if err != nil {
			return 0, err
		}
		if _, err := db.conn.ExecContext(ctx, `
			INSERT INTO content_tags (content_id, tag_id)
			VALUES (?, ?)
			ON CONFLICT DO NOTHING`, id, tagID); err != nil {
			return 0, fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return id, nil
}

// ensureTag returns the tag ID for the given name, creating it if needed.
func (db *DB) ensureTag(ctx context.Context, name string) (int64, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = db.conn.QueryRowContext(ctx, `
		INSERT INTO tags (name, slug)
		VALUES (?, ?)
		RETURNING id`, name, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert tag %q: %w", name, err)
	}
	return id, nil
}

// TagID returns the ID for a tag name, or ErrNotFound.
func (db *DB) TagID(ctx context.Context, name string) (int64, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	var id int64
	if err := db.conn.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, ErrNotFound
	}
	return id, nil
}

// AddLike records a like. Duplicate likes are ignored.
func (db *DB) AddLike(ctx context.Context, userID, contentID int64) error {
	return db.addInteraction(ctx, "likes", "add_like", userID, contentID)
}

// AddFavorite records a favorite. Duplicates are ignored.
func (db *DB) AddFavorite(ctx context.Context, userID, contentID int64) error {
	return db.addInteraction(ctx, "favorites", "add_favorite", userID, contentID)
}

func (db *DB) addInteraction(ctx context.Context, table, op string, userID, contentID int64) error {
	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, content_id)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING`, table)
	_, err := db.conn.ExecContext(ctx, query, userID, contentID)
	metrics.ObserveDBQuery(op, start, err)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// SetRating records or replaces a user's rating for a content item.
func (db *DB) SetRating(ctx context.Context, userID, contentID int64, score int) error {
	if score < models.MinRating || score > models.MaxRating {
		return fmt.Errorf("rating %d out of range [%d, %d]", score, models.MinRating, models.MaxRating)
	}

	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO ratings (user_id, content_id, score)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, content_id)
		DO UPDATE SET score = excluded.score, updated_at = now()`,
		userID, contentID, score)
	metrics.ObserveDBQuery("set_rating", start, err)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}
