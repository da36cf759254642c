// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

// Package metrics provides Prometheus instrumentation for MuseHub:
// recommendation engine throughput and per-source behavior, DuckDB query
// performance, API latency, and the activity pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Engine Metrics
	RecommendationRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests",
		},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "End-to-end recommendation assembly duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	RecommendationSourceResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_source_results_total",
			Help: "Recommendations contributed per source before deduplication",
		},
		[]string{"source"}, // "collaborative", "content_based", "popularity"
	)

	RecommendationSourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_source_failures_total",
			Help: "Recommendation source failures swallowed by the aggregator",
		},
		[]string{"source"},
	)

	RecommendationBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommendation_breaker_state",
			Help: "Circuit breaker state per source (0=closed, 1=half-open, 2=open)",
		},
		[]string{"source"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Activity Pipeline Metrics
	ActivityEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_events_published_total",
			Help: "Activity events published to the in-process pipeline",
		},
		[]string{"action"},
	)

	ActivityEventsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_events_persisted_total",
			Help: "Activity events persisted to the database",
		},
	)

	ActivityEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_events_dropped_total",
			Help: "Activity events dropped due to errors or shutdown",
		},
	)

	// Impression Log Metrics
	ImpressionsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "impressions_recorded_total",
			Help: "Served recommendations written to the impression log",
		},
	)

	ImpressionClicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "impression_clicks_total",
			Help: "Impressions marked as clicked",
		},
	)
)

// ObserveDBQuery records a database query duration and outcome.
func ObserveDBQuery(operation string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// ObserveAPIRequest records an API request's duration and status.
func ObserveAPIRequest(method, endpoint string, status int, start time.Time) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
}
