// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package models

import (
	"time"
)

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints, for both successful and error responses.
//
// Status is "success" or "error". Data carries the payload on success;
// Error is populated only when Status is "error".
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": {"recommendations": [...]},
//	  "metadata": {"timestamp": "2026-08-27T12:00:00Z", "query_time_ms": 12}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError carries structured error details.
//
// Common codes: VALIDATION_ERROR, DATABASE_ERROR, NOT_FOUND,
// RATE_LIMIT_EXCEEDED, INTERNAL_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RecommendationsResponse is the payload for the recommendations endpoint.
type RecommendationsResponse struct {
	UserID          int64                `json:"user_id"`
	Limit           int                  `json:"limit"`
	Recommendations []RecommendationItem `json:"recommendations"`
}

// RecommendationItem is one recommended content item with its score and
// the source that produced it.
type RecommendationItem struct {
	Content ContentItem `json:"content"`
	Score   float64     `json:"score"`
	Source  string      `json:"source"`
}

// PopularItem is one entry in the popular content listing. It carries
// the interaction-count ranking score and the decayed composite score.
type PopularItem struct {
	Content         ContentItem `json:"content"`
	PopularityScore float64     `json:"popularity_score"`
	CompositeScore  float64     `json:"composite_score"`
}

// PopularContentResponse is the payload for the popular content endpoint.
type PopularContentResponse struct {
	Items []PopularItem `json:"items"`
}

// ImpressionsResponse is the payload for the impression listing endpoint.
type ImpressionsResponse struct {
	UserID      int64        `json:"user_id"`
	Impressions []Impression `json:"impressions"`
}

// TrendingTagsResponse is the payload for the trending tags endpoint.
type TrendingTagsResponse struct {
	Days int           `json:"days"`
	Tags []TrendingTag `json:"tags"`
}

// HealthResponse is the payload for health endpoints.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Checks    []Check   `json:"checks,omitempty"`
}

// Check is one component health check result.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
