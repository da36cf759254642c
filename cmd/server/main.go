// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

// Package main is the entry point for the MuseHub server.
//
// MuseHub serves personalized content recommendations over a REST API,
// blending collaborative filtering, tag-based matching, and popularity
// ranking over a DuckDB store.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 loading (defaults, YAML file, env vars)
//  2. Database: DuckDB with schema bootstrap and optional sample data
//  3. Recommendation engine: three-source blend with circuit breakers
//  4. Impression log: BadgerDB served-recommendation history (optional)
//  5. Activity pipeline: Watermill in-process pub/sub with DuckDB persistence (optional)
//  6. HTTP server: Chi REST API with Prometheus metrics
//
// Everything runs under a Suture supervisor tree. A crash in the
// activity consumer restarts that service without touching the API
// layer, and vice versa.
//
// # Configuration
//
// Configuration precedence (highest wins): environment variables,
// config.yaml, built-in defaults. See internal/config for the full
// variable list. Common overrides:
//
//	export HTTP_PORT=8642
//	export DUCKDB_PATH=/data/musehub.duckdb
//	export SEED_SAMPLE_DATA=true   # demo dataset for local development
//	export LOG_LEVEL=debug
//	export LOG_FORMAT=console
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests, the activity consumer drains buffered events, and
// the stores close in dependency order.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/musehub-io/musehub/internal/activity"
	"github.com/musehub-io/musehub/internal/api"
	"github.com/musehub-io/musehub/internal/config"
	"github.com/musehub-io/musehub/internal/database"
	"github.com/musehub-io/musehub/internal/implog"
	"github.com/musehub-io/musehub/internal/logging"
	"github.com/musehub-io/musehub/internal/recommend"
	"github.com/musehub-io/musehub/internal/supervisor"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Str("db_path", cfg.Database.Path).
		Bool("activity_enabled", cfg.Activity.Enabled).
		Bool("impressions_enabled", cfg.Impression.Enabled).
		Msg("Starting MuseHub")

	db, err := database.New(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	engine := recommend.NewEngine(db, recommendConfig(cfg.Recommend))

	// Impression log is optional; the API returns 404 for its endpoints
	// when disabled.
	var impressions *implog.Log
	if cfg.Impression.Enabled {
		impressions, err = implog.Open(cfg.Impression)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open impression log")
		}
		defer func() {
			if err := impressions.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing impression log")
			}
		}()
		logging.Info().Str("path", cfg.Impression.Path).Msg("Impression log opened")
	} else {
		logging.Info().Msg("Impression log disabled (IMPRESSION_ENABLED=false)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	// Activity pipeline: the sink publishes events from request handlers,
	// the consumer persists them to DuckDB and the impression log.
	var sink *activity.Sink
	if cfg.Activity.Enabled {
		sink = activity.NewSink(cfg.Activity)
		defer func() {
			if err := sink.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing activity sink")
			}
		}()

		var recorder activity.ImpressionRecorder
		if impressions != nil {
			recorder = impressions
		}
		consumer, err := activity.NewConsumer(sink, db, recorder, cfg.Activity)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to start activity consumer")
		}
		tree.AddPipelineService(consumer)
		logging.Info().Int64("buffer_size", cfg.Activity.BufferSize).Msg("Activity pipeline enabled")
	} else {
		logging.Info().Msg("Activity pipeline disabled (ACTIVITY_ENABLED=false)")
	}

	// Typed-nil guard: the handler checks its interfaces against nil.
	var publisher api.Publisher
	if sink != nil {
		publisher = sink
	}
	var impressionStore api.ImpressionStore
	if impressions != nil {
		impressionStore = impressions
	}

	handler := api.NewHandler(engine, db, publisher, impressionStore, cfg.API)
	router := api.NewRouter(handler, cfg.API)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	// Report any services that failed to stop within the timeout.
	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// recommendConfig maps the application config onto the engine's tuning
// parameters.
func recommendConfig(cfg config.RecommendConfig) recommend.Config {
	return recommend.Config{
		DefaultLimit:        cfg.DefaultLimit,
		MaxLimit:            cfg.MaxLimit,
		MinCommonRatings:    cfg.MinCommonRatings,
		SimilarityThreshold: cfg.SimilarityThreshold,
		MaxNeighbors:        cfg.MaxNeighbors,
		HighRatingThreshold: cfg.HighRatingThreshold,
		LikeWeight:          cfg.LikeWeight,
		FavoriteWeight:      cfg.FavoriteWeight,
		HighRatingWeight:    cfg.HighRatingWeight,
		PreferredTagCount:   cfg.PreferredTagCount,
		SourceTimeout:       cfg.SourceTimeout,
		BreakerMaxFailures:  cfg.BreakerMaxFailures,
		BreakerOpenTimeout:  cfg.BreakerOpenTimeout,
	}
}
