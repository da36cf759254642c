// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/musehub-io/musehub/internal/metrics"
	"github.com/musehub-io/musehub/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// contentSelectColumns are the columns every content query returns.
// Like, favorite and rating aggregates are derived; the DISTINCT counts
// keep them correct under the multi-join fan-out.
var contentSelectColumns = []string{
	"c.id",
	"c.author_id",
	"u.username",
	"c.title",
	"c.summary",
	"c.visibility",
	"c.views_count",
	"c.comments_count",
	"COUNT(DISTINCT l.id) AS likes_count",
	"COUNT(DISTINCT f.id) AS favorites_count",
	"AVG(r.score) AS avg_rating",
	"COUNT(DISTINCT r.id) AS ratings_count",
	"c.created_at",
	"c.updated_at",
}

var contentGroupByColumns = []string{
	"c.id", "c.author_id", "u.username", "c.title", "c.summary",
	"c.visibility", "c.views_count", "c.comments_count",
	"c.created_at", "c.updated_at",
}

// contentBase builds the shared select over content with its
// interaction aggregates.
func contentBase(columns ...string) sq.SelectBuilder {
	cols := contentSelectColumns
	if len(columns) > 0 {
		cols = append(append([]string{}, contentSelectColumns...), columns...)
	}
	return sq.Select(cols...).
		From("content c").
		Join("users u ON u.id = c.author_id").
		LeftJoin("likes l ON l.content_id = c.id").
		LeftJoin("favorites f ON f.content_id = c.id").
		LeftJoin("ratings r ON r.content_id = c.id").
		GroupBy(contentGroupByColumns...)
}

// scanContentItem reads one row produced by contentBase (without extra
// columns).
func scanContentItem(rows *sql.Rows) (models.ContentItem, error) {
	var (
		item      models.ContentItem
		avgRating sql.NullFloat64
	)
	err := rows.Scan(
		&item.ID, &item.AuthorID, &item.AuthorName,
		&item.Title, &item.Summary, &item.Visibility,
		&item.ViewsCount, &item.CommentsCount,
		&item.LikesCount, &item.FavoritesCount,
		&avgRating, &item.RatingsCount,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return item, fmt.Errorf("scan content: %w", err)
	}
	if avgRating.Valid {
		item.AvgRating = &avgRating.Float64
	}
	return item, nil
}

// queryContentItems runs a contentBase-derived builder and loads the
// result items with their tags.
func (db *DB) queryContentItems(ctx context.Context, builder sq.SelectBuilder) ([]models.ContentItem, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	defer rows.Close()

	var items []models.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content: %w", err)
	}

	if err := db.loadTags(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// loadTags attaches tags to the given items in one query.
func (db *DB) loadTags(ctx context.Context, items []models.ContentItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]int64, len(items))
	index := make(map[int64]int, len(items))
	for i := range items {
		ids[i] = items[i].ID
		index[items[i].ID] = i
	}

	query, args, err := sq.Select("ct.content_id", "t.id", "t.name", "t.slug").
		From("content_tags ct").
		Join("tags t ON t.id = ct.tag_id").
		Where(sq.Eq{"ct.content_id": ids}).
		OrderBy("ct.content_id", "t.id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build tags query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			contentID int64
			tag       models.Tag
		)
		if err := rows.Scan(&contentID, &tag.ID, &tag.Name, &tag.Slug); err != nil {
			return fmt.Errorf("scan tag: %w", err)
		}
		if i, ok := index[contentID]; ok {
			items[i].Tags = append(items[i].Tags, tag)
		}
	}
	return rows.Err()
}

// GetContentByID returns one content item with tags and aggregates.
// Returns ErrNotFound if the item does not exist.
func (db *DB) GetContentByID(ctx context.Context, id int64) (*models.ContentItem, error) {
	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	items, err := db.queryContentItems(ctx, contentBase().Where(sq.Eq{"c.id": id}))
	metrics.ObserveDBQuery("get_content_by_id", start, err)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

// PublicByTags returns public content carrying at least one of the given
// tags, excluding excludeIDs, ranked by preferred-tag match count, then
// average rating (unrated last), then likes+2*favorites, then newest.
func (db *DB) PublicByTags(ctx context.Context, tagIDs, excludeIDs []int64, limit int) ([]models.ContentItem, error) {
	if len(tagIDs) == 0 || limit <= 0 {
		return nil, nil
	}

	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	builder := contentBase("COUNT(DISTINCT ct.tag_id) AS match_count").
		Join("content_tags ct ON ct.content_id = c.id").
		Where(sq.Eq{"ct.tag_id": tagIDs}).
		Where(sq.Eq{"c.visibility": models.VisibilityPublic}).
		Where(sq.NotEq{"c.id": excludeIDs}).
		OrderBy(
			"match_count DESC",
			"avg_rating DESC NULLS LAST",
			"(COUNT(DISTINCT l.id) + 2 * COUNT(DISTINCT f.id)) DESC",
			"c.created_at DESC",
		).
		Limit(uint64(limit))

	items, err := db.queryContentItemsWithExtra(ctx, builder, 1)
	metrics.ObserveDBQuery("public_by_tags", start, err)
	return items, err
}

// PopularPublic returns public content ranked by likes + 2*favorites +
// rating count, newest first on ties, excluding the given IDs and
// author. An excludeAuthorID of 0 excludes no author.
func (db *DB) PopularPublic(ctx context.Context, excludeIDs []int64, excludeAuthorID int64, limit int) ([]models.ContentItem, error) {
	if limit <= 0 {
		return nil, nil
	}

	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	builder := contentBase().
		Where(sq.Eq{"c.visibility": models.VisibilityPublic}).
		Where(sq.NotEq{"c.id": excludeIDs}).
		OrderBy(
			"(COUNT(DISTINCT l.id) + 2 * COUNT(DISTINCT f.id) + COUNT(DISTINCT r.id)) DESC",
			"c.created_at DESC",
		).
		Limit(uint64(limit))
	if excludeAuthorID != 0 {
		builder = builder.Where(sq.NotEq{"c.author_id": excludeAuthorID})
	}

	items, err := db.queryContentItems(ctx, builder)
	metrics.ObserveDBQuery("popular_public", start, err)
	return items, err
}

// TrendingTags returns the tags attached to public content created in
// the last days, ranked by like count, then favorite count, then
// content count.
func (db *DB) TrendingTags(ctx context.Context, days, limit int) ([]models.TrendingTag, error) {
	if days <= 0 || limit <= 0 {
		return nil, nil
	}

	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	since := time.Now().AddDate(0, 0, -days)
	query, args, err := sq.Select(
		"t.id", "t.name", "t.slug",
		"COUNT(DISTINCT c.id) AS content_count",
		"COUNT(DISTINCT l.id) AS likes_count",
		"COUNT(DISTINCT f.id) AS favorites_count",
	).
		From("tags t").
		Join("content_tags ct ON ct.tag_id = t.id").
		Join("content c ON c.id = ct.content_id").
		LeftJoin("likes l ON l.content_id = c.id").
		LeftJoin("favorites f ON f.content_id = c.id").
		Where(sq.Eq{"c.visibility": models.VisibilityPublic}).
		Where(sq.GtOrEq{"c.created_at": since}).
		GroupBy("t.id", "t.name", "t.slug").
		OrderBy("likes_count DESC", "favorites_count DESC", "content_count DESC", "t.name ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build trending query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.ObserveDBQuery("trending_tags", start, err)
	if err != nil {
		return nil, fmt.Errorf("query trending tags: %w", err)
	}
	defer rows.Close()

	var out []models.TrendingTag
	for rows.Next() {
		var tt models.TrendingTag
		if err := rows.Scan(&tt.Tag.ID, &tt.Tag.Name, &tt.Tag.Slug,
			&tt.ContentCount, &tt.LikesCount, &tt.FavoritesSum); err != nil {
			return nil, fmt.Errorf("scan trending tag: %w", err)
		}
		tt.Score = int64(tt.LikesCount + 2*tt.FavoritesSum + tt.ContentCount)
		out = append(out, tt)
	}
	return out, rows.Err()
}

// IncrementViews bumps a content item's view counter.
func (db *DB) IncrementViews(ctx context.Context, contentID int64) error {
	start := time.Now()
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx,
		`UPDATE content SET views_count = views_count + 1 WHERE id = ?`, contentID)
	metrics.ObserveDBQuery("increment_views", start, err)
	return err
}

// queryContentItemsWithExtra runs a builder whose rows carry extraCols
// trailing columns beyond the standard content columns; the extras are
// discarded after scanning.
func (db *DB) queryContentItemsWithExtra(ctx context.Context, builder sq.SelectBuilder, extraCols int) ([]models.ContentItem, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	defer rows.Close()

	var items []models.ContentItem
	for rows.Next() {
		var (
			item      models.ContentItem
			avgRating sql.NullFloat64
		)
		dest := []interface{}{
			&item.ID, &item.AuthorID, &item.AuthorName,
			&item.Title, &item.Summary, &item.Visibility,
			&item.ViewsCount, &item.CommentsCount,
			&item.LikesCount, &item.FavoritesCount,
			&avgRating, &item.RatingsCount,
			&item.CreatedAt, &item.UpdatedAt,
		}
		discard := make([]interface{}, extraCols)
		for i := range discard {
			var sink interface{}
			discard[i] = &sink
		}
		if err := rows.Scan(append(dest, discard...)...); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		if avgRating.Valid {
			item.AvgRating = &avgRating.Float64
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content: %w", err)
	}

	if err := db.loadTags(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}
