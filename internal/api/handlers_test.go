// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/musehub-io/musehub/internal/activity"
	"github.com/musehub-io/musehub/internal/config"
	"github.com/musehub-io/musehub/internal/models"
	"github.com/musehub-io/musehub/internal/recommend"
)

type mockEngine struct {
	results    []recommend.ScoredContent
	popular    []recommend.ScoredContent
	popularErr error
	lastUserID int64
	lastLimit  int
}

func (m *mockEngine) Recommend(_ context.Context, userID int64, limit int) []recommend.ScoredContent {
	m.lastUserID = userID
	m.lastLimit = limit
	return m.results
}

func (m *mockEngine) Popular(_ context.Context, limit int) ([]recommend.ScoredContent, error) {
	if m.popularErr != nil {
		return nil, m.popularErr
	}
	if limit < len(m.popular) {
		return m.popular[:limit], nil
	}
	return m.popular, nil
}

func (m *mockEngine) Config() recommend.Config {
	return recommend.DefaultConfig()
}

type mockAPIStore struct {
	pingErr  error
	trending []models.TrendingTag
	trendErr error
	lastDays int
}

func (m *mockAPIStore) Ping(context.Context) error { return m.pingErr }

func (m *mockAPIStore) TrendingTags(_ context.Context, days, limit int) ([]models.TrendingTag, error) {
	m.lastDays = days
	if m.trendErr != nil {
		return nil, m.trendErr
	}
	return m.trending, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	served []activity.RecommendationServed
	events []activity.Event
}

func (m *mockPublisher) PublishEvent(_ context.Context, ev activity.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *mockPublisher) PublishRecommendationServed(_ context.Context, ev activity.RecommendationServed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.served = append(m.served, ev)
	return nil
}

type mockImpressionStore struct {
	clicks   [][2]int64
	clickErr error
	list     []models.Impression
	listErr  error
}

func (m *mockImpressionStore) MarkClicked(userID, contentID int64) error {
	if m.clickErr != nil {
		return m.clickErr
	}
	m.clicks = append(m.clicks, [2]int64{userID, contentID})
	return nil
}

func (m *mockImpressionStore) ListForUser(int64, int) ([]models.Impression, error) {
	return m.list, m.listErr
}

func testAPIConfig() config.APIConfig {
	return config.APIConfig{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		CORSOrigins:     []string{"*"},
	}
}

func newTestRouter(engine *mockEngine, store *mockAPIStore, pub *mockPublisher, imps *mockImpressionStore) http.Handler {
	var publisher Publisher
	if pub != nil {
		publisher = pub
	}
	var impressions ImpressionStore
	if imps != nil {
		impressions = imps
	}
	handler := NewHandler(engine, store, publisher, impressions, testAPIConfig())
	return NewRouter(handler, testAPIConfig())
}

func doRequest(t *testing.T, router http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func scored(id int64, score float64, source string) recommend.ScoredContent {
	return recommend.ScoredContent{
		Item:   models.ContentItem{ID: id, Title: "item", Visibility: models.VisibilityPublic},
		Score:  score,
		Source: source,
	}
}

func TestGetRecommendations(t *testing.T) {
	engine := &mockEngine{results: []recommend.ScoredContent{
		scored(10, 4.7, recommend.SourceCollaborative),
		scored(11, 2.0, recommend.SourceContentBased),
	}}
	pub := &mockPublisher{}
	router := newTestRouter(engine, &mockAPIStore{}, pub, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/recommendations/user/7?limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if engine.lastUserID != 7 || engine.lastLimit != 5 {
		t.Errorf("engine called with user=%d limit=%d", engine.lastUserID, engine.lastLimit)
	}

	resp := decodeResponse(t, rec)
	if resp.Status != "success" {
		t.Errorf("expected success, got %s", resp.Status)
	}

	data, _ := json.Marshal(resp.Data)
	var payload models.RecommendationsResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.UserID != 7 || len(payload.Recommendations) != 2 {
		t.Errorf("unexpected payload: %+v", payload)
	}
	if payload.Recommendations[0].Content.ID != 10 || payload.Recommendations[0].Source != recommend.SourceCollaborative {
		t.Errorf("unexpected first recommendation: %+v", payload.Recommendations[0])
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.served) != 1 || len(pub.served[0].Items) != 2 {
		t.Errorf("expected one served batch with 2 items, got %+v", pub.served)
	}
	if len(pub.events) != 1 || pub.events[0].Action != models.ActionRecommendationView {
		t.Errorf("expected a recommendation_view event, got %+v", pub.events)
	}
}

func TestGetRecommendationsInvalidUserID(t *testing.T) {
	router := newTestRouter(&mockEngine{}, &mockAPIStore{}, nil, nil)

	for _, path := range []string{
		"/api/v1/recommendations/user/abc",
		"/api/v1/recommendations/user/-1",
		"/api/v1/recommendations/user/0",
	} {
		rec := doRequest(t, router, http.MethodGet, path)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
		}
		resp := decodeResponse(t, rec)
		if resp.Error == nil || resp.Error.Code != "INVALID_USER_ID" {
			t.Errorf("%s: unexpected error payload: %+v", path, resp.Error)
		}
	}
}

func TestGetRecommendationsEmptyResultStillSucceeds(t *testing.T) {
	pub := &mockPublisher{}
	router := newTestRouter(&mockEngine{}, &mockAPIStore{}, pub, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/recommendations/user/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.served) != 0 {
		t.Error("empty batches should not be published")
	}
}

func TestGetPopularContent(t *testing.T) {
	// likes + 2*favorites = 11; created just now, so the composite
	// score's time decay is still ~1.
	top := scored(1, 11, recommend.SourcePopularity)
	top.Item.LikesCount = 5
	top.Item.FavoritesCount = 3
	top.Item.CreatedAt = time.Now().UTC()

	engine := &mockEngine{popular: []recommend.ScoredContent{
		top,
		scored(2, 3, recommend.SourcePopularity),
	}}
	router := newTestRouter(engine, &mockAPIStore{}, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/content/popular")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	data, _ := json.Marshal(resp.Data)
	var payload models.PopularContentResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(payload.Items))
	}
	if payload.Items[0].PopularityScore != 11 {
		t.Errorf("unexpected popularity score %v", payload.Items[0].PopularityScore)
	}
	if got := payload.Items[0].CompositeScore; math.Abs(got-11) > 0.01 {
		t.Errorf("expected composite score ~11, got %v", got)
	}
	if payload.Items[1].CompositeScore != 0 {
		t.Errorf("expected zero composite score for item without engagement, got %v", payload.Items[1].CompositeScore)
	}
}

func TestGetPopularContentError(t *testing.T) {
	engine := &mockEngine{popularErr: errors.New("db down")}
	router := newTestRouter(engine, &mockAPIStore{}, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/content/popular")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestGetTrendingTags(t *testing.T) {
	store := &mockAPIStore{trending: []models.TrendingTag{
		{Tag: models.Tag{ID: 1, Name: "scifi"}, ContentCount: 3, LikesCount: 5, Score: 11},
	}}
	router := newTestRouter(&mockEngine{}, store, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/tags/trending?days=14")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.lastDays != 14 {
		t.Errorf("expected days=14, got %d", store.lastDays)
	}

	resp := decodeResponse(t, rec)
	data, _ := json.Marshal(resp.Data)
	var payload models.TrendingTagsResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Days != 14 || len(payload.Tags) != 1 || payload.Tags[0].Tag.Name != "scifi" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestGetTrendingTagsRejectsBadDays(t *testing.T) {
	router := newTestRouter(&mockEngine{}, &mockAPIStore{}, nil, nil)

	for _, path := range []string{
		"/api/v1/tags/trending?days=0",
		"/api/v1/tags/trending?days=366",
	} {
		rec := doRequest(t, router, http.MethodGet, path)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestMarkImpressionClicked(t *testing.T) {
	imps := &mockImpressionStore{}
	router := newTestRouter(&mockEngine{}, &mockAPIStore{}, nil, imps)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/recommendations/user/3/impressions/42/click")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(imps.clicks) != 1 || imps.clicks[0] != [2]int64{3, 42} {
		t.Errorf("unexpected clicks: %v", imps.clicks)
	}
}

func TestMarkImpressionClickedDisabled(t *testing.T) {
	router := newTestRouter(&mockEngine{}, &mockAPIStore{}, nil, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/recommendations/user/3/impressions/42/click")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 when impression logging is disabled, got %d", rec.Code)
	}
}

func TestGetImpressions(t *testing.T) {
	now := time.Now().UTC()
	imps := &mockImpressionStore{list: []models.Impression{
		{UserID: 3, ContentID: 42, Reason: "collaborative", ServedAt: now},
	}}
	router := newTestRouter(&mockEngine{}, &mockAPIStore{}, nil, imps)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/recommendations/user/3/impressions")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	data, _ := json.Marshal(resp.Data)
	var payload models.ImpressionsResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.UserID != 3 || len(payload.Impressions) != 1 {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&mockEngine{}, &mockAPIStore{}, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	data, _ := json.Marshal(resp.Data)
	var payload models.HealthResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Status != "healthy" || payload.Version != Version {
		t.Errorf("unexpected health payload: %+v", payload)
	}
}

func TestHealthDegradedWhenDBDown(t *testing.T) {
	store := &mockAPIStore{pingErr: errors.New("connection refused")}
	router := newTestRouter(&mockEngine{}, store, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	data, _ := json.Marshal(resp.Data)
	var payload models.HealthResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Status != "degraded" {
		t.Errorf("expected degraded, got %s", payload.Status)
	}
}

func TestHealthReady(t *testing.T) {
	router := newTestRouter(&mockEngine{}, &mockAPIStore{}, nil, nil)
	if rec := doRequest(t, router, http.MethodGet, "/api/v1/health/ready"); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	down := newTestRouter(&mockEngine{}, &mockAPIStore{pingErr: errors.New("down")}, nil, nil)
	if rec := doRequest(t, down, http.MethodGet, "/api/v1/health/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(&mockEngine{}, &mockAPIStore{pingErr: errors.New("down")}, nil, nil)
	if rec := doRequest(t, router, http.MethodGet, "/api/v1/health/live"); rec.Code != http.StatusOK {
		t.Errorf("liveness must not depend on the database, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&mockEngine{}, &mockAPIStore{}, nil, nil)
	if rec := doRequest(t, router, http.MethodGet, "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(&mockEngine{}, &mockAPIStore{}, nil, nil)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/health/live")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header on response")
	}
}

func TestETagHeader(t *testing.T) {
	router := newTestRouter(&mockEngine{}, &mockAPIStore{}, nil, nil)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/health/live")
	if rec.Header().Get("ETag") == "" {
		t.Error("expected ETag header on response")
	}
}
