// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

// Package implog stores served-recommendation impressions in BadgerDB.
// Impressions expire via TTL so the log stays bounded without a
// compaction job.
package implog

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/musehub-io/musehub/internal/config"
	"github.com/musehub-io/musehub/internal/metrics"
	"github.com/musehub-io/musehub/internal/models"
)

const impressionKeyPrefix = "imp:"

// ErrNotFound is returned when no matching impression exists.
var ErrNotFound = errors.New("impression not found")

// Log is the impression store.
type Log struct {
	db  *badger.DB
	ttl time.Duration
}

// Open creates or opens the impression log. An empty path uses an
// in-memory store, which suits tests and ephemeral deployments.
func Open(cfg config.ImpressionConfig) (*Log, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(newBadgerLogger())
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open impression log: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Log{db: db, ttl: ttl}, nil
}

// Close shuts the underlying store down.
func (l *Log) Close() error {
	return l.db.Close()
}

// impressionKey orders a user's impressions chronologically so prefix
// scans return them in served order.
func impressionKey(userID int64, servedAt time.Time, contentID int64) []byte {
	return []byte(fmt.Sprintf("%s%d:%020d:%d", impressionKeyPrefix, userID, servedAt.UnixNano(), contentID))
}

func userPrefix(userID int64) []byte {
	return []byte(fmt.Sprintf("%s%d:", impressionKeyPrefix, userID))
}

// Record writes an impression with the configured TTL.
func (l *Log) Record(imp models.Impression) error {
	if imp.ServedAt.IsZero() {
		imp.ServedAt = time.Now().UTC()
	}

	data, err := json.Marshal(imp)
	if err != nil {
		return fmt.Errorf("marshal impression: %w", err)
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(impressionKey(imp.UserID, imp.ServedAt, imp.ContentID), data).WithTTL(l.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("store impression: %w", err)
	}

	metrics.ImpressionsRecorded.Inc()
	return nil
}

// MarkClicked flags the most recent impression of contentID for userID
// as clicked. Returns ErrNotFound when the user was never shown it (or
// the impression has expired).
func (l *Log) MarkClicked(userID, contentID int64) error {
	var (
		key   []byte
		found models.Impression
	)

	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := userPrefix(userID)
		// Reverse iteration needs a seek past the last key in the prefix.
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var imp models.Impression
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &imp)
			}); err != nil {
				return err
			}
			if imp.ContentID != contentID {
				continue
			}
			key = item.KeyCopy(nil)
			found = imp
			return nil
		}
		return ErrNotFound
	})
	if err != nil {
		return err
	}

	found.Clicked = true
	now := time.Now().UTC()
	found.ClickedAt = &now

	data, err := json.Marshal(found)
	if err != nil {
		return fmt.Errorf("marshal impression: %w", err)
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, data).WithTTL(l.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("update impression: %w", err)
	}

	metrics.ImpressionClicks.Inc()
	return nil
}

// ListForUser returns a user's impressions, newest first, up to limit.
func (l *Log) ListForUser(userID int64, limit int) ([]models.Impression, error) {
	var out []models.Impression

	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := userPrefix(userID)
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(out) >= limit {
				return nil
			}
			var imp models.Impression
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &imp)
			}); err != nil {
				return err
			}
			out = append(out, imp)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list impressions for user %d: %w", userID, err)
	}
	return out, nil
}

// RunGC triggers a value-log garbage collection cycle. Safe to call
// periodically; a no-rewrite result is not an error.
func (l *Log) RunGC() error {
	err := l.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
		return nil
	}
	return err
}
