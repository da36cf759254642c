// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

// Package api provides the HTTP surface: recommendations, popular
// content, trending tags, impression feedback, and health probes.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/musehub-io/musehub/internal/activity"
	"github.com/musehub-io/musehub/internal/config"
	"github.com/musehub-io/musehub/internal/implog"
	"github.com/musehub-io/musehub/internal/logging"
	"github.com/musehub-io/musehub/internal/models"
	"github.com/musehub-io/musehub/internal/recommend"
)

// Version reported by health endpoints.
const Version = "1.0.0"

// Recommender is the recommendation engine surface handlers use.
type Recommender interface {
	Recommend(ctx context.Context, userID int64, limit int) []recommend.ScoredContent
	Popular(ctx context.Context, limit int) ([]recommend.ScoredContent, error)
	Config() recommend.Config
}

// Store is the database surface handlers use directly.
type Store interface {
	Ping(ctx context.Context) error
	TrendingTags(ctx context.Context, days, limit int) ([]models.TrendingTag, error)
}

// Publisher pushes events onto the activity pipeline. May be nil when
// the pipeline is disabled.
type Publisher interface {
	PublishEvent(ctx context.Context, ev activity.Event) error
	PublishRecommendationServed(ctx context.Context, ev activity.RecommendationServed) error
}

// ImpressionStore serves impression feedback endpoints. May be nil when
// impression logging is disabled.
type ImpressionStore interface {
	MarkClicked(userID, contentID int64) error
	ListForUser(userID int64, limit int) ([]models.Impression, error)
}

// Handler holds dependencies for all HTTP handlers.
type Handler struct {
	engine      Recommender
	store       Store
	publisher   Publisher
	impressions ImpressionStore
	cfg         config.APIConfig
	timeout     time.Duration
	startTime   time.Time
}

// NewHandler creates the handler set. publisher and impressions are
// optional.
func NewHandler(engine Recommender, store Store, publisher Publisher, impressions ImpressionStore, cfg config.APIConfig) *Handler {
	return &Handler{
		engine:      engine,
		store:       store,
		publisher:   publisher,
		impressions: impressions,
		cfg:         cfg,
		timeout:     10 * time.Second,
		startTime:   time.Now(),
	}
}

func (h *Handler) userIDParam(r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	return userID, err == nil && userID > 0
}

// GetRecommendations handles GET /api/v1/recommendations/user/{userID}.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", nil)
		return
	}
	limit := getIntParam(r, "limit", 0)

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	results := h.engine.Recommend(ctx, userID, limit)
	queryTime := time.Since(start).Milliseconds()

	items := make([]models.RecommendationItem, 0, len(results))
	for _, sc := range results {
		items = append(items, models.RecommendationItem{
			Content: sc.Item,
			Score:   sc.Score,
			Source:  sc.Source,
		})
	}

	h.publishServed(ctx, userID, results)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.RecommendationsResponse{
			UserID:          userID,
			Limit:           len(items),
			Recommendations: items,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: queryTime,
		},
	})
}

// publishServed records the served batch on the activity pipeline.
// Failures are logged, never surfaced to the caller.
func (h *Handler) publishServed(ctx context.Context, userID int64, results []recommend.ScoredContent) {
	if h.publisher == nil || len(results) == 0 {
		return
	}

	served := activity.RecommendationServed{
		EventID:  logging.GenerateRequestID(),
		UserID:   userID,
		ServedAt: time.Now().UTC(),
		Items:    make([]activity.ServedItem, 0, len(results)),
	}
	for _, sc := range results {
		served.Items = append(served.Items, activity.ServedItem{
			ContentID: sc.Item.ID,
			Score:     sc.Score,
			Source:    sc.Source,
		})
	}
	if err := h.publisher.PublishRecommendationServed(ctx, served); err != nil {
		logging.Warn().Int64("user_id", userID).Err(err).Msg("failed to publish served batch")
	}

	ev := activity.NewEvent(userID, models.ActionRecommendationView, nil, "viewed recommendations")
	if err := h.publisher.PublishEvent(ctx, ev); err != nil {
		logging.Warn().Int64("user_id", userID).Err(err).Msg("failed to publish activity event")
	}
}

// GetPopularContent handles GET /api/v1/content/popular.
func (h *Handler) GetPopularContent(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", h.cfg.DefaultPageSize)
	if limit <= 0 {
		limit = h.cfg.DefaultPageSize
	}
	if h.cfg.MaxPageSize > 0 && limit > h.cfg.MaxPageSize {
		limit = h.cfg.MaxPageSize
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	results, err := h.engine.Popular(ctx, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to load popular content", err)
		return
	}

	now := time.Now().UTC()
	items := make([]models.PopularItem, 0, len(results))
	for _, sc := range results {
		items = append(items, models.PopularItem{
			Content:         sc.Item,
			PopularityScore: sc.Score,
			CompositeScore:  recommend.CompositeScore(&sc.Item, now),
		})
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   models.PopularContentResponse{Items: items},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// GetTrendingTags handles GET /api/v1/tags/trending.
func (h *Handler) GetTrendingTags(w http.ResponseWriter, r *http.Request) {
	days := getIntParam(r, "days", 7)
	if days < 1 || days > 365 {
		respondError(w, http.StatusBadRequest, "INVALID_DAYS", "days must be between 1 and 365", nil)
		return
	}
	limit := getIntParam(r, "limit", h.cfg.DefaultPageSize)
	if limit <= 0 {
		limit = h.cfg.DefaultPageSize
	}
	if h.cfg.MaxPageSize > 0 && limit > h.cfg.MaxPageSize {
		limit = h.cfg.MaxPageSize
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	tags, err := h.store.TrendingTags(ctx, days, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to load trending tags", err)
		return
	}
	if tags == nil {
		tags = []models.TrendingTag{}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   models.TrendingTagsResponse{Days: days, Tags: tags},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// GetImpressions handles GET /api/v1/recommendations/user/{userID}/impressions.
func (h *Handler) GetImpressions(w http.ResponseWriter, r *http.Request) {
	if h.impressions == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Impression logging is disabled", nil)
		return
	}

	userID, ok := h.userIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", nil)
		return
	}
	limit := getIntParam(r, "limit", h.cfg.DefaultPageSize)

	imps, err := h.impressions.ListForUser(userID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_ERROR", "Failed to load impressions", err)
		return
	}
	if imps == nil {
		imps = []models.Impression{}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   models.ImpressionsResponse{UserID: userID, Impressions: imps},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// MarkImpressionClicked handles
// POST /api/v1/recommendations/user/{userID}/impressions/{contentID}/click.
func (h *Handler) MarkImpressionClicked(w http.ResponseWriter, r *http.Request) {
	if h.impressions == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Impression logging is disabled", nil)
		return
	}

	userID, ok := h.userIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", nil)
		return
	}
	contentID, err := strconv.ParseInt(chi.URLParam(r, "contentID"), 10, 64)
	if err != nil || contentID <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_CONTENT_ID", "Invalid content ID", err)
		return
	}

	if err := h.impressions.MarkClicked(userID, contentID); err != nil {
		if errors.Is(err, implog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "No impression found for this content", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to record click", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"user_id":    userID,
			"content_id": contentID,
			"clicked":    true,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
