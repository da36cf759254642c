// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in priority order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/musehub/config.yaml",
	"/etc/musehub/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8642,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Path:           "/data/musehub.duckdb",
			MaxMemory:      "2GB",
			Threads:        0, // 0 = use runtime.NumCPU()
			QueryTimeout:   10 * time.Second,
			SeedSampleData: false,
		},
		Recommend: RecommendConfig{
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
		},
		Activity: ActivityConfig{
			Enabled:        true,
			BufferSize:     256,
			PersistTimeout: 5 * time.Second,
		},
		Impression: ImpressionConfig{
			Enabled: true,
			Path:    "/data/impressions",
			TTL:     720 * time.Hour,
		},
		API: APIConfig{
			DefaultPageSize:   20,
			MaxPageSize:       100,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values
//  2. Config file: optional YAML file (if found)
//  3. Environment variables: override any setting
//
// Precedence: ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// MUSEHUB_RECOMMEND_MAX_NEIGHBORS -> recommend.max_neighbors
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Env vars arrive as strings; known slice fields need splitting.
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated slices.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML): leave it alone.
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - RECOMMEND_MAX_NEIGHBORS -> recommend.max_neighbors
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":             "server.host",
		"http_port":             "server.port",
		"http_read_timeout":     "server.read_timeout",
		"http_write_timeout":    "server.write_timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",

		// Database mappings
		"duckdb_path":          "database.path",
		"duckdb_max_memory":    "database.max_memory",
		"duckdb_threads":       "database.threads",
		"duckdb_query_timeout": "database.query_timeout",
		"seed_sample_data":     "database.seed_sample_data",

		// Recommendation engine mappings
		"recommend_default_limit":         "recommend.default_limit",
		"recommend_max_limit":             "recommend.max_limit",
		"recommend_min_common_ratings":    "recommend.min_common_ratings",
		"recommend_similarity_threshold":  "recommend.similarity_threshold",
		"recommend_max_neighbors":         "recommend.max_neighbors",
		"recommend_high_rating_threshold": "recommend.high_rating_threshold",
		"recommend_like_weight":           "recommend.like_weight",
		"recommend_favorite_weight":       "recommend.favorite_weight",
		"recommend_high_rating_weight":    "recommend.high_rating_weight",
		"recommend_preferred_tag_count":   "recommend.preferred_tag_count",
		"recommend_source_timeout":        "recommend.source_timeout",
		"recommend_breaker_max_failures":  "recommend.breaker_max_failures",
		"recommend_breaker_open_timeout":  "recommend.breaker_open_timeout",

		// Activity pipeline mappings
		"activity_enabled":         "activity.enabled",
		"activity_buffer_size":     "activity.buffer_size",
		"activity_persist_timeout": "activity.persist_timeout",

		// Impression log mappings
		"impression_enabled": "impression.enabled",
		"impression_path":    "impression.path",
		"impression_ttl":     "impression.ttl",

		// API mappings
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",
		"rate_limit_requests":   "api.rate_limit_requests",
		"rate_limit_window":     "api.rate_limit_window",
		"cors_origins":          "api.cors_origins",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so random environment variables do not
	// pollute the config.
	return ""
}
