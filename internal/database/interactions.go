// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/musehub-io/musehub/internal/metrics"
	"github.com/musehub-io/musehub/internal/models"
	"github.com/musehub-io/musehub/internal/recommend"
)

// UserRatings returns all of a user's ratings as contentID -> score.
func (db *DB) UserRatings(ctx context.Context, userID int64) (map[int64]int, error) {
	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT content_id, score FROM ratings WHERE user_id = ?`, userID)
	metrics.ObserveDBQuery("user_ratings", start, err)
	if err != nil {
		return nil, fmt.Errorf("query ratings for user %d: %w", userID, err)
	}
	defer rows.Close()

	out := make(map[int64]int)
	for rows.Next() {
		var (
			contentID int64
			score     int
		)
		if err := rows.Scan(&contentID, &score); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out[contentID] = score
	}
	return out, rows.Err()
}

// OtherUserIDs returns the IDs of all users except userID, ascending.
func (db *DB) OtherUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM users WHERE id != ? ORDER BY id`, userID)
	metrics.ObserveDBQuery("other_user_ids", start, err)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// HighRatedPublicBy returns public content the given user rated at or
// above minScore, excluding excludeIDs, with that user's score,
// strongest first.
func (db *DB) HighRatedPublicBy(ctx context.Context, raterID int64, minScore int, excludeIDs []int64) ([]recommend.RatedItem, error) {
	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	builder := contentBase("rr.score AS rater_score").
		Join("ratings rr ON rr.content_id = c.id AND rr.user_id = ? AND rr.score >= ?", raterID, minScore).
		GroupBy("rr.score").
		Where(sq.Eq{"c.visibility": models.VisibilityPublic}).
		Where(sq.NotEq{"c.id": excludeIDs}).
		OrderBy("rr.score DESC", "c.id ASC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.ObserveDBQuery("high_rated_public_by", start, err)
	if err != nil {
		return nil, fmt.Errorf("query high-rated content of user %d: %w", raterID, err)
	}
	defer rows.Close()

	var out []recommend.RatedItem
	for rows.Next() {
		var (
			item      models.ContentItem
			avgRating sql.NullFloat64
			raterScr  int
		)
		if err := rows.Scan(
			&item.ID, &item.AuthorID, &item.AuthorName,
			&item.Title, &item.Summary, &item.Visibility,
			&item.ViewsCount, &item.CommentsCount,
			&item.LikesCount, &item.FavoritesCount,
			&avgRating, &item.RatingsCount,
			&item.CreatedAt, &item.UpdatedAt,
			&raterScr,
		); err != nil {
			return nil, fmt.Errorf("scan rated content: %w", err)
		}
		if avgRating.Valid {
			item.AvgRating = &avgRating.Float64
		}
		out = append(out, recommend.RatedItem{Item: item, Score: raterScr})
	}
	return out, rows.Err()
}

// LikedContentIDs returns the content a user has liked, oldest first.
func (db *DB) LikedContentIDs(ctx context.Context, userID int64) ([]int64, error) {
	return db.interactionContentIDs(ctx, "likes", "liked_content_ids", userID)
}

// FavoritedContentIDs returns the content a user has favorited, oldest first.
func (db *DB) FavoritedContentIDs(ctx context.Context, userID int64) ([]int64, error) {
	return db.interactionContentIDs(ctx, "favorites", "favorited_content_ids", userID)
}

func (db *DB) interactionContentIDs(ctx context.Context, table, op string, userID int64) ([]int64, error) {
	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	// table is one of the fixed interaction table names, never user input.
	query := fmt.Sprintf(`SELECT content_id FROM %s WHERE user_id = ? ORDER BY created_at, id`, table)
	rows, err := db.conn.QueryContext(ctx, query, userID)
	metrics.ObserveDBQuery(op, start, err)
	if err != nil {
		return nil, fmt.Errorf("query %s of user %d: %w", table, userID, err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// RatedContentIDs returns the content a user has rated, oldest first.
func (db *DB) RatedContentIDs(ctx context.Context, userID int64) ([]int64, error) {
	return db.interactionContentIDs(ctx, "ratings", "rated_content_ids", userID)
}

// AuthoredContentIDs returns the content a user has authored.
func (db *DB) AuthoredContentIDs(ctx context.Context, userID int64) ([]int64, error) {
	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM content WHERE author_id = ? ORDER BY id`, userID)
	metrics.ObserveDBQuery("authored_content_ids", start, err)
	if err != nil {
		return nil, fmt.Errorf("query authored content of user %d: %w", userID, err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// LikedTagIDs returns the tag occurrences on a user's liked content,
// oldest like first. Tags repeat once per liked item carrying them.
func (db *DB) LikedTagIDs(ctx context.Context, userID int64) ([]int64, error) {
	return db.interactionTagIDs(ctx, "likes", "liked_tag_ids", userID, 0)
}

// FavoritedTagIDs returns the tag occurrences on a user's favorited
// content, oldest favorite first.
func (db *DB) FavoritedTagIDs(ctx context.Context, userID int64) ([]int64, error) {
	return db.interactionTagIDs(ctx, "favorites", "favorited_tag_ids", userID, 0)
}

// HighRatedTagIDs returns the tag occurrences on content the user rated
// at or above minScore, oldest rating first.
func (db *DB) HighRatedTagIDs(ctx context.Context, userID int64, minScore int) ([]int64, error) {
	return db.interactionTagIDs(ctx, "ratings", "high_rated_tag_ids", userID, minScore)
}

func (db *DB) interactionTagIDs(ctx context.Context, table, op string, userID int64, minScore int) ([]int64, error) {
	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT ct.tag_id
		FROM %s i
		JOIN content_tags ct ON ct.content_id = i.content_id
		WHERE i.user_id = ?`, table)
	args := []interface{}{userID}
	if minScore > 0 {
		query += ` AND i.score >= ?`
		args = append(args, minScore)
	}
	query += ` ORDER BY i.created_at, i.id, ct.tag_id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.ObserveDBQuery(op, start, err)
	if err != nil {
		return nil, fmt.Errorf("query %s tags of user %d: %w", table, userID, err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// InsertActivity records a user activity row.
func (db *DB) InsertActivity(ctx context.Context, activity *models.Activity) error {
	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	var contentID interface{}
	if activity.ContentID != nil {
		contentID = *activity.ContentID
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO activities (user_id, action, content_id, description)
		VALUES (?, ?, ?, ?)`,
		activity.UserID, activity.Action, contentID, activity.Description)
	metrics.ObserveDBQuery("insert_activity", start, err)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// RecentActivities returns a user's latest activities, newest first.
func (db *DB) RecentActivities(ctx context.Context, userID int64, limit int) ([]models.Activity, error) {
	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, action, content_id, description, created_at
		FROM activities
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	metrics.ObserveDBQuery("recent_activities", start, err)
	if err != nil {
		return nil, fmt.Errorf("query activities of user %d: %w", userID, err)
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		var (
			a         models.Activity
			contentID sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &contentID, &a.Description, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if contentID.Valid {
			a.ContentID = &contentID.Int64
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
