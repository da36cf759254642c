// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package recommend

import "time"

// Config holds engine tuning parameters. DefaultConfig values define the
// production ranking behavior.
type Config struct {
	// DefaultLimit is used when the caller requests no specific count.
	DefaultLimit int

	// MaxLimit caps the per-request count.
	MaxLimit int

	// MinCommonRatings is the minimum number of co-rated items before a
	// user pair is eligible for similarity scoring. Below it, similarity
	// is meaningless and the pair is skipped.
	MinCommonRatings int

	// SimilarityThreshold is the exclusive lower bound for neighbors.
	SimilarityThreshold float64

	// MaxNeighbors bounds how many similar users contribute candidates.
	MaxNeighbors int

	// HighRatingThreshold marks a rating as an endorsement.
	HighRatingThreshold int

	// Preference profile weights per interaction kind.
	LikeWeight       float64
	FavoriteWeight   float64
	HighRatingWeight float64

	// PreferredTagCount bounds the preference profile size.
	PreferredTagCount int

	// SourceTimeout bounds each source's store work.
	SourceTimeout time.Duration

	// Circuit breaker tuning for the collaborative and content-based
	// sources.
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:        10,
		MaxLimit:            50,
		MinCommonRatings:    2,
		SimilarityThreshold: 0.3,
		MaxNeighbors:        5,
		HighRatingThreshold: 4,
		LikeWeight:          1.0,
		FavoriteWeight:      2.0,
		HighRatingWeight:    1.5,
		PreferredTagCount:   10,
		SourceTimeout:       5 * time.Second,
		BreakerMaxFailures:  5,
		BreakerOpenTimeout:  30 * time.Second,
	}
}

// normalize fills zero values with defaults so a partially populated
// Config behaves sanely.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = def.DefaultLimit
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = def.MaxLimit
	}
	if c.MinCommonRatings <= 0 {
		c.MinCommonRatings = def.MinCommonRatings
	}
	// Zero means unconfigured; a negative threshold is a deliberate
	// "accept any positive correlation" tuning and is kept as-is.
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = def.SimilarityThreshold
	}
	if c.MaxNeighbors <= 0 {
		c.MaxNeighbors = def.MaxNeighbors
	}
	if c.HighRatingThreshold <= 0 {
		c.HighRatingThreshold = def.HighRatingThreshold
	}
	if c.PreferredTagCount <= 0 {
		c.PreferredTagCount = def.PreferredTagCount
	}
	// A zero weight is a valid tuning choice, but all three zero means an
	// unconfigured struct.
	if c.LikeWeight == 0 && c.FavoriteWeight == 0 && c.HighRatingWeight == 0 {
		c.LikeWeight = def.LikeWeight
		c.FavoriteWeight = def.FavoriteWeight
		c.HighRatingWeight = def.HighRatingWeight
	}
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = def.SourceTimeout
	}
	if c.BreakerMaxFailures == 0 {
		c.BreakerMaxFailures = def.BreakerMaxFailures
	}
	if c.BreakerOpenTimeout <= 0 {
		c.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
}
