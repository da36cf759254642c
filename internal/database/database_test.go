// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package database

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/musehub-io/musehub/internal/config"
	"github.com/musehub-io/musehub/internal/models"
	"github.com/musehub-io/musehub/internal/recommend"
)

// newTestDB opens an in-memory DuckDB with the schema applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(config.DatabaseConfig{
		Path:         "",
		MaxMemory:    "512MB",
		Threads:      1,
		QueryTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}

func mustUser(t *testing.T, db *DB, name string) int64 {
	t.Helper()
	id, err := db.CreateUser(context.Background(), name, name)
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return id
}

func mustContent(t *testing.T, db *DB, author int64, title, visibility string, tags ...string) int64 {
	t.Helper()
	id, err := db.CreateContent(context.Background(), author, title, "", visibility, tags)
	if err != nil {
		t.Fatalf("create content %s: %v", title, err)
	}
	return id
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("ping failed: %v", err)
	}
}

func TestSetRatingUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := mustUser(t, db, "ada")
	author := mustUser(t, db, "brahms")
	content := mustContent(t, db, author, "Nocturne", models.VisibilityPublic)

	if err := db.SetRating(ctx, user, content, 3); err != nil {
		t.Fatalf("set rating: %v", err)
	}
	if err := db.SetRating(ctx, user, content, 5); err != nil {
		t.Fatalf("re-rate: %v", err)
	}

	ratings, err := db.UserRatings(ctx, user)
	if err != nil {
		t.Fatalf("user ratings: %v", err)
	}
	if len(ratings) != 1 || ratings[content] != 5 {
		t.Errorf("expected single rating of 5, got %v", ratings)
	}
}

func TestSetRatingRejectsOutOfRange(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetRating(context.Background(), 1, 1, 0); err == nil {
		t.Error("expected error for score 0")
	}
	if err := db.SetRating(context.Background(), 1, 1, 6); err == nil {
		t.Error("expected error for score 6")
	}
}

func TestOtherUserIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := mustUser(t, db, "ada")
	b := mustUser(t, db, "brahms")
	c := mustUser(t, db, "chiara")

	others, err := db.OtherUserIDs(ctx, b)
	if err != nil {
		t.Fatalf("other user ids: %v", err)
	}
	if len(others) != 2 || others[0] != a || others[1] != c {
		t.Errorf("expected [%d %d], got %v", a, c, others)
	}
}

func TestHighRatedPublicBy(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rater := mustUser(t, db, "ada")
	author := mustUser(t, db, "brahms")

	liked := mustContent(t, db, author, "liked", models.VisibilityPublic)
	low := mustContent(t, db, author, "low", models.VisibilityPublic)
	private := mustContent(t, db, author, "private", models.VisibilityPrivate)
	excluded := mustContent(t, db, author, "excluded", models.VisibilityPublic)

	for content, score := range map[int64]int{liked: 5, low: 3, private: 5, excluded: 4} {
		if err := db.SetRating(ctx, rater, content, score); err != nil {
			t.Fatalf("set rating: %v", err)
		}
	}

	items, err := db.HighRatedPublicBy(ctx, rater, 4, []int64{excluded})
	if err != nil {
		t.Fatalf("high rated public by: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Item.ID != liked || items[0].Score != 5 {
		t.Errorf("expected item %d with score 5, got %d/%d", liked, items[0].Item.ID, items[0].Score)
	}
}

func TestPublicByTagsRanking(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := mustUser(t, db, "brahms")
	rater := mustUser(t, db, "ada")

	twoTags := mustContent(t, db, author, "two tags", models.VisibilityPublic, "scifi", "drama")
	oneTagRated := mustContent(t, db, author, "one tag rated", models.VisibilityPublic, "scifi")
	oneTag := mustContent(t, db, author, "one tag", models.VisibilityPublic, "drama")
	mustContent(t, db, author, "private", models.VisibilityPrivate, "scifi")
	mustContent(t, db, author, "unrelated", models.VisibilityPublic, "jazz")

	if err := db.SetRating(ctx, rater, oneTagRated, 5); err != nil {
		t.Fatalf("set rating: %v", err)
	}

	scifi, err := db.TagID(ctx, "scifi")
	if err != nil {
		t.Fatalf("tag id: %v", err)
	}
	drama, err := db.TagID(ctx, "drama")
	if err != nil {
		t.Fatalf("tag id: %v", err)
	}

	items, err := db.PublicByTags(ctx, []int64{scifi, drama}, nil, 10)
	if err != nil {
		t.Fatalf("public by tags: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	// Two matching tags beats one; among single-tag items the rated one
	// ranks above the unrated one.
	if items[0].ID != twoTags {
		t.Errorf("expected item %d first (2 tag matches), got %d", twoTags, items[0].ID)
	}
	if items[1].ID != oneTagRated {
		t.Errorf("expected rated item %d second, got %d", oneTagRated, items[1].ID)
	}
	if items[2].ID != oneTag {
		t.Errorf("expected unrated item %d third, got %d", oneTag, items[2].ID)
	}
	if len(items[0].Tags) != 2 {
		t.Errorf("expected 2 tags loaded, got %v", items[0].Tags)
	}
}

func TestPublicByTagsExclusions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := mustUser(t, db, "brahms")
	a := mustContent(t, db, author, "a", models.VisibilityPublic, "scifi")
	b := mustContent(t, db, author, "b", models.VisibilityPublic, "scifi")

	scifi, err := db.TagID(ctx, "scifi")
	if err != nil {
		t.Fatalf("tag id: %v", err)
	}

	items, err := db.PublicByTags(ctx, []int64{scifi}, []int64{a}, 10)
	if err != nil {
		t.Fatalf("public by tags: %v", err)
	}
	if len(items) != 1 || items[0].ID != b {
		t.Errorf("expected only item %d, got %v", b, items)
	}
}

func TestPopularPublicRanking(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := mustUser(t, db, "brahms")
	fans := []int64{
		mustUser(t, db, "ada"),
		mustUser(t, db, "chiara"),
		mustUser(t, db, "dmitri"),
	}

	// top: 2 likes + 1 favorite + 1 rating = 5
	top := mustContent(t, db, author, "top", models.VisibilityPublic)
	// mid: 1 like + 1 rating = 2
	mid := mustContent(t, db, author, "mid", models.VisibilityPublic)
	// zero interactions
	bottom := mustContent(t, db, author, "bottom", models.VisibilityPublic)
	mustContent(t, db, author, "hidden", models.VisibilityPrivate)

	if err := db.AddLike(ctx, fans[0], top); err != nil {
		t.Fatal(err)
	}
	if err := db.AddLike(ctx, fans[1], top); err != nil {
		t.Fatal(err)
	}
	if err := db.AddFavorite(ctx, fans[2], top); err != nil {
		t.Fatal(err)
	}
	if err := db.SetRating(ctx, fans[0], top, 5); err != nil {
		t.Fatal(err)
	}
	if err := db.AddLike(ctx, fans[0], mid); err != nil {
		t.Fatal(err)
	}
	if err := db.SetRating(ctx, fans[1], mid, 4); err != nil {
		t.Fatal(err)
	}

	items, err := db.PopularPublic(ctx, nil, 0, 10)
	if err != nil {
		t.Fatalf("popular public: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != top || items[1].ID != mid || items[2].ID != bottom {
		t.Errorf("expected order [%d %d %d], got [%d %d %d]",
			top, mid, bottom, items[0].ID, items[1].ID, items[2].ID)
	}
	if items[0].LikesCount != 2 || items[0].FavoritesCount != 1 || items[0].RatingsCount != 1 {
		t.Errorf("unexpected aggregates: %+v", items[0])
	}

	// Author exclusion removes everything they wrote.
	items, err = db.PopularPublic(ctx, nil, author, 10)
	if err != nil {
		t.Fatalf("popular public with author exclusion: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items when excluding the only author, got %d", len(items))
	}
}

func TestTagOccurrenceStreams(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := mustUser(t, db, "ada")
	author := mustUser(t, db, "brahms")

	first := mustContent(t, db, author, "first", models.VisibilityPublic, "scifi")
	second := mustContent(t, db, author, "second", models.VisibilityPublic, "scifi", "drama")

	if err := db.AddLike(ctx, user, first); err != nil {
		t.Fatal(err)
	}
	if err := db.AddLike(ctx, user, second); err != nil {
		t.Fatal(err)
	}
	if err := db.SetRating(ctx, user, second, 5); err != nil {
		t.Fatal(err)
	}

	scifi, _ := db.TagID(ctx, "scifi")
	drama, _ := db.TagID(ctx, "drama")

	likedTags, err := db.LikedTagIDs(ctx, user)
	if err != nil {
		t.Fatalf("liked tag ids: %v", err)
	}
	// scifi appears once per liked item carrying it.
	want := []int64{scifi, scifi, drama}
	if len(likedTags) != len(want) {
		t.Fatalf("expected %v, got %v", want, likedTags)
	}
	if likedTags[0] != scifi {
		t.Errorf("expected oldest like's tag first, got %v", likedTags)
	}

	highTags, err := db.HighRatedTagIDs(ctx, user, 4)
	if err != nil {
		t.Fatalf("high rated tag ids: %v", err)
	}
	if len(highTags) != 2 {
		t.Errorf("expected scifi+drama from the rated item, got %v", highTags)
	}
}

func TestTrendingTags(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := mustUser(t, db, "brahms")
	fan := mustUser(t, db, "ada")

	hot := mustContent(t, db, author, "hot", models.VisibilityPublic, "scifi")
	mustContent(t, db, author, "cool", models.VisibilityPublic, "jazz")

	if err := db.AddLike(ctx, fan, hot); err != nil {
		t.Fatal(err)
	}

	tags, err := db.TrendingTags(ctx, 7, 10)
	if err != nil {
		t.Fatalf("trending tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	if tags[0].Tag.Name != "scifi" {
		t.Errorf("expected scifi first (1 like), got %s", tags[0].Tag.Name)
	}
	if tags[0].LikesCount != 1 || tags[0].ContentCount != 1 {
		t.Errorf("unexpected trending aggregates: %+v", tags[0])
	}
}

func TestActivities(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := mustUser(t, db, "ada")
	author := mustUser(t, db, "brahms")
	content := mustContent(t, db, author, "nocturne", models.VisibilityPublic)

	if err := db.InsertActivity(ctx, &models.Activity{
		UserID:      user,
		Action:      models.ActionLike,
		ContentID:   &content,
		Description: "liked nocturne",
	}); err != nil {
		t.Fatalf("insert activity: %v", err)
	}
	if err := db.InsertActivity(ctx, &models.Activity{
		UserID: user,
		Action: models.ActionView,
	}); err != nil {
		t.Fatalf("insert activity without content: %v", err)
	}

	acts, err := db.RecentActivities(ctx, user, 10)
	if err != nil {
		t.Fatalf("recent activities: %v", err)
	}
	if len(acts) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(acts))
	}
	// Newest first.
	if acts[0].Action != models.ActionView {
		t.Errorf("expected view action first, got %s", acts[0].Action)
	}
	if acts[1].ContentID == nil || *acts[1].ContentID != content {
		t.Errorf("expected content id %d on like activity", content)
	}
}

func TestGetContentByIDNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetContentByID(context.Background(), 12345)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIncrementViews(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := mustUser(t, db, "brahms")
	content := mustContent(t, db, author, "nocturne", models.VisibilityPublic)

	if err := db.IncrementViews(ctx, content); err != nil {
		t.Fatalf("increment views: %v", err)
	}
	item, err := db.GetContentByID(ctx, content)
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if item.ViewsCount != 1 {
		t.Errorf("expected 1 view, got %d", item.ViewsCount)
	}
}

// The engine running over real DuckDB reproduces the correlated-raters
// scenario end to end.
func TestEngineOverDatabase(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	x := mustUser(t, db, "x")
	y := mustUser(t, db, "y")
	author := mustUser(t, db, "author")

	items := make([]int64, 0, 4)
	for _, title := range []string{"one", "two", "three", "four"} {
		items = append(items, mustContent(t, db, author, title, models.VisibilityPublic))
	}

	for content, score := range map[int64]int{items[0]: 5, items[1]: 4, items[2]: 2} {
		if err := db.SetRating(ctx, x, content, score); err != nil {
			t.Fatal(err)
		}
	}
	for content, score := range map[int64]int{items[0]: 5, items[1]: 5, items[2]: 1, items[3]: 5} {
		if err := db.SetRating(ctx, y, content, score); err != nil {
			t.Fatal(err)
		}
	}

	engine := recommend.NewEngine(db, recommend.DefaultConfig())
	results := engine.Recommend(ctx, x, 10)

	var collaborative []recommend.ScoredContent
	for _, sc := range results {
		if sc.Source == recommend.SourceCollaborative {
			collaborative = append(collaborative, sc)
		}
	}
	if len(collaborative) != 1 {
		t.Fatalf("expected exactly one collaborative result, got %d", len(collaborative))
	}
	if collaborative[0].Item.ID != items[3] {
		t.Errorf("expected item %d, got %d", items[3], collaborative[0].Item.ID)
	}

	xr := map[int64]int{items[0]: 5, items[1]: 4, items[2]: 2}
	yr := map[int64]int{items[0]: 5, items[1]: 5, items[2]: 1}
	sim := recommend.PearsonSimilarity(xr, yr, []int64{items[0], items[1], items[2]})
	if math.Abs(collaborative[0].Score-sim*5) > 1e-9 {
		t.Errorf("expected score %v, got %v", sim*5, collaborative[0].Score)
	}
}
