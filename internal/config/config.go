// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

// Package config provides centralized configuration for all MuseHub components.
//
// Configuration loading order (Koanf v2):
//  1. Defaults: built-in sensible defaults for every setting
//  2. Config file: optional YAML file (config.yaml) for persistent settings
//  3. Environment variables: override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Activity   ActivityConfig   `koanf:"activity"`
	Impression ImpressionConfig `koanf:"impression"`
	API        APIConfig        `koanf:"api"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0
	Host string `koanf:"host" validate:"required"`

	// Port is the listen port. Default: 8642
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// ReadTimeout bounds request reads. Default: 15s
	ReadTimeout time.Duration `koanf:"read_timeout" validate:"min=0"`

	// WriteTimeout bounds response writes. Default: 30s
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"min=0"`

	// ShutdownTimeout bounds graceful shutdown. Default: 15s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file location. Empty means in-memory.
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit (e.g. "2GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads limits DuckDB worker threads. 0 = runtime.NumCPU().
	Threads int `koanf:"threads" validate:"min=0"`

	// QueryTimeout bounds individual queries. Default: 10s
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"min=0"`

	// SeedSampleData populates the schema with sample users and content.
	SeedSampleData bool `koanf:"seed_sample_data"`
}

// RecommendConfig holds recommendation engine tuning.
// The defaults encode the production ranking behavior; changing them
// changes which content users see.
type RecommendConfig struct {
	// DefaultLimit is the recommendation count when the caller passes none.
	DefaultLimit int `koanf:"default_limit" validate:"min=1"`

	// MaxLimit caps the per-request recommendation count.
	MaxLimit int `koanf:"max_limit" validate:"min=1"`

	// MinCommonRatings is the minimum co-rated item count before a user
	// pair is eligible for similarity scoring.
	MinCommonRatings int `koanf:"min_common_ratings" validate:"min=2"`

	// SimilarityThreshold is the exclusive lower bound for neighbor
	// similarity. Pairs at or below it are discarded.
	SimilarityThreshold float64 `koanf:"similarity_threshold"`

	// MaxNeighbors is how many top similar users contribute candidates.
	MaxNeighbors int `koanf:"max_neighbors" validate:"min=1"`

	// HighRatingThreshold marks a rating as an endorsement (score >= this).
	HighRatingThreshold int `koanf:"high_rating_threshold" validate:"min=1,max=5"`

	// LikeWeight, FavoriteWeight and HighRatingWeight weigh tag
	// occurrences when building a user's preference profile.
	LikeWeight       float64 `koanf:"like_weight" validate:"min=0"`
	FavoriteWeight   float64 `koanf:"favorite_weight" validate:"min=0"`
	HighRatingWeight float64 `koanf:"high_rating_weight" validate:"min=0"`

	// PreferredTagCount is how many top-weighted tags form the profile.
	PreferredTagCount int `koanf:"preferred_tag_count" validate:"min=1"`

	// SourceTimeout bounds each recommendation source. Default: 5s
	SourceTimeout time.Duration `koanf:"source_timeout" validate:"min=0"`

	// BreakerMaxFailures trips a source's circuit breaker after this many
	// consecutive failures.
	BreakerMaxFailures uint32 `koanf:"breaker_max_failures"`

	// BreakerOpenTimeout is how long a tripped breaker stays open.
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout" validate:"min=0"`
}

// ActivityConfig holds the in-process activity event pipeline settings.
type ActivityConfig struct {
	// Enabled turns the activity sink on. Default: true
	Enabled bool `koanf:"enabled"`

	// BufferSize is the gochannel pub/sub buffer. Default: 256
	BufferSize int64 `koanf:"buffer_size" validate:"min=0"`

	// PersistTimeout bounds each activity write. Default: 5s
	PersistTimeout time.Duration `koanf:"persist_timeout" validate:"min=0"`
}

// ImpressionConfig holds the served-recommendation log settings.
type ImpressionConfig struct {
	// Enabled turns impression logging on. Default: true
	Enabled bool `koanf:"enabled"`

	// Path is the Badger directory. Empty means in-memory.
	Path string `koanf:"path"`

	// TTL is how long impressions are retained. Default: 720h (30 days)
	TTL time.Duration `koanf:"ttl" validate:"min=0"`
}

// APIConfig holds API behavior settings.
type APIConfig struct {
	// DefaultPageSize for list endpoints. Default: 20
	DefaultPageSize int `koanf:"default_page_size" validate:"min=1"`

	// MaxPageSize caps list endpoint page sizes. Default: 100
	MaxPageSize int `koanf:"max_page_size" validate:"min=1"`

	// RateLimitRequests per RateLimitWindow per client IP. 0 disables.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"min=0"`

	// CORSOrigins lists allowed origins. Default: ["*"]
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level: trace, debug, info, warn, error, fatal. Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`

	// Format: json or console. Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file:line in log output.
	Caller bool `koanf:"caller"`
}
