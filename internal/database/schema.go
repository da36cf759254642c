// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package database

import (
	"fmt"
)

// schemaStatements bootstrap the MuseHub schema. All statements are
// idempotent so startup can run them unconditionally.
//
// Like, favorite and rating counts are derived from their tables at
// query time; only views and comments are denormalized counters on
// content (their sources are out of scope here).
var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS seq_users START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_content START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_tags START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_ratings START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_likes START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_favorites START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_activities START 1`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_users'),
		username VARCHAR NOT NULL UNIQUE,
		display_name VARCHAR NOT NULL DEFAULT '',
		email VARCHAR NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,

	`CREATE TABLE IF NOT EXISTS content (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_content'),
		author_id BIGINT NOT NULL,
		title VARCHAR NOT NULL,
		summary VARCHAR NOT NULL DEFAULT '',
		body VARCHAR NOT NULL DEFAULT '',
		visibility VARCHAR NOT NULL DEFAULT 'public',
		views_count INTEGER NOT NULL DEFAULT 0,
		comments_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,

	`CREATE TABLE IF NOT EXISTS tags (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_tags'),
		name VARCHAR NOT NULL UNIQUE,
		slug VARCHAR NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS content_tags (
		content_id BIGINT NOT NULL,
		tag_id BIGINT NOT NULL,
		PRIMARY KEY (content_id, tag_id)
	)`,

	`CREATE TABLE IF NOT EXISTS ratings (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_ratings'),
		user_id BIGINT NOT NULL,
		content_id BIGINT NOT NULL,
		score INTEGER NOT NULL CHECK (score BETWEEN 1 AND 5),
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		UNIQUE (user_id, content_id)
	)`,

	`CREATE TABLE IF NOT EXISTS likes (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_likes'),
		user_id BIGINT NOT NULL,
		content_id BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		UNIQUE (user_id, content_id)
	)`,

	`CREATE TABLE IF NOT EXISTS favorites (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_favorites'),
		user_id BIGINT NOT NULL,
		content_id BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		UNIQUE (user_id, content_id)
	)`,

	`CREATE TABLE IF NOT EXISTS activities (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_activities'),
		user_id BIGINT NOT NULL,
		action VARCHAR NOT NULL,
		content_id BIGINT,
		description VARCHAR NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,

	`CREATE INDEX IF NOT EXISTS idx_content_visibility ON content (visibility)`,
	`CREATE INDEX IF NOT EXISTS idx_content_author ON content (author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_content_tags_tag ON content_tags (tag_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_content ON ratings (content_id)`,
	`CREATE INDEX IF NOT EXISTS idx_likes_user ON likes (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_favorites_user ON favorites (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_user ON activities (user_id)`,
}

// initialize creates the schema.
func (db *DB) initialize() error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
