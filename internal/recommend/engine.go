// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package recommend

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/musehub-io/musehub/internal/logging"
	"github.com/musehub-io/musehub/internal/metrics"
)

// Engine assembles recommendations from the three sources. It is safe
// for concurrent use; all state besides the circuit breakers is
// read-only after construction.
type Engine struct {
	store  Store
	cfg    Config
	logger zerolog.Logger

	cfBreaker *gobreaker.CircuitBreaker[[]ScoredContent]
	cbBreaker *gobreaker.CircuitBreaker[[]ScoredContent]
}

// NewEngine creates an engine over the given store. Zero-valued Config
// fields fall back to DefaultConfig values.
func NewEngine(store Store, cfg Config) *Engine {
	cfg.normalize()

	e := &Engine{
		store:  store,
		cfg:    cfg,
		logger: logging.WithComponent("recommend"),
	}
	e.cfBreaker = e.newBreaker(SourceCollaborative)
	e.cbBreaker = e.newBreaker(SourceContentBased)
	return e
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// newBreaker builds the circuit breaker for one recommendation source.
// A tripped breaker makes the source contribute nothing until
// BreakerOpenTimeout elapses.
func (e *Engine) newBreaker(source string) *gobreaker.CircuitBreaker[[]ScoredContent] {
	return gobreaker.NewCircuitBreaker[[]ScoredContent](gobreaker.Settings{
		Name:    source,
		Timeout: e.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= e.cfg.BreakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecommendationBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			e.logger.Warn().
				Str("source", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("recommendation source breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			// A canceled request is not a source failure.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Recommend assembles up to limit recommendations for the user.
//
// Source order and quotas: collaborative filtering contributes up to
// limit/2, content-based filtering up to limit, and popularity fills any
// remaining shortfall against the full exclusion set. Duplicates keep
// their first-seen entry. A failing source contributes nothing; the
// request still succeeds with whatever the other sources produced, so
// Recommend itself never fails.
func (e *Engine) Recommend(ctx context.Context, userID int64, limit int) []ScoredContent {
	start := time.Now()
	metrics.RecommendationRequests.Inc()
	defer func() {
		metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	}()

	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		limit = e.cfg.MaxLimit
	}

	results := make([]ScoredContent, 0, limit)
	seen := make(map[int64]bool, limit)

	addUnique := func(items []ScoredContent) {
		for _, sc := range items {
			if seen[sc.Item.ID] {
				continue
			}
			seen[sc.Item.ID] = true
			results = append(results, sc)
		}
	}

	addUnique(e.runSource(ctx, SourceCollaborative, e.cfBreaker,
		func(srcCtx context.Context) ([]ScoredContent, error) {
			return e.collaborative(srcCtx, userID, limit/2)
		}))

	addUnique(e.runSource(ctx, SourceContentBased, e.cbBreaker,
		func(srcCtx context.Context) ([]ScoredContent, error) {
			return e.contentBased(srcCtx, userID, limit)
		}))

	if len(results) > limit {
		results = results[:limit]
	}

	if shortfall := limit - len(results); shortfall > 0 {
		addUnique(e.fillFromPopularity(ctx, userID, seen, shortfall))
		if len(results) > limit {
			results = results[:limit]
		}
	}

	logging.Ctx(ctx).Debug().
		Int64("user_id", userID).
		Int("limit", limit).
		Int("count", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendations assembled")

	return results
}

// runSource executes one source behind its breaker and source timeout,
// swallowing failures.
func (e *Engine) runSource(
	ctx context.Context,
	source string,
	breaker *gobreaker.CircuitBreaker[[]ScoredContent],
	fn func(context.Context) ([]ScoredContent, error),
) []ScoredContent {
	results, err := breaker.Execute(func() ([]ScoredContent, error) {
		srcCtx, cancel := context.WithTimeout(ctx, e.cfg.SourceTimeout)
		defer cancel()
		return fn(srcCtx)
	})
	if err != nil {
		metrics.RecommendationSourceFailures.WithLabelValues(source).Inc()
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("source", source).
			Msg("recommendation source failed")
		return nil
	}

	metrics.RecommendationSourceResults.WithLabelValues(source).Add(float64(len(results)))
	return results
}

// fillFromPopularity tops the result set up from the popularity
// fallback. The exclusion set is everything already collected plus the
// user's full interaction history, so fills never repeat content the
// user has seen or produced.
func (e *Engine) fillFromPopularity(ctx context.Context, userID int64, seen map[int64]bool, fill int) []ScoredContent {
	exclude := make(map[int64]bool, len(seen))
	for id := range seen {
		exclude[id] = true
	}

	if interacted, err := e.exclusionIDs(ctx, userID); err != nil {
		// Degrade to the collected-set exclusion rather than dropping the fill.
		metrics.RecommendationSourceFailures.WithLabelValues(SourcePopularity).Inc()
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("source", SourcePopularity).
			Msg("exclusion set unavailable, filling with collected-set exclusion only")
	} else {
		for _, id := range interacted {
			exclude[id] = true
		}
	}

	excludeList := sortedIDs(exclude)

	results, err := e.popularity(ctx, excludeList, userID, fill)
	if err != nil {
		metrics.RecommendationSourceFailures.WithLabelValues(SourcePopularity).Inc()
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("source", SourcePopularity).
			Msg("recommendation source failed")
		return nil
	}

	metrics.RecommendationSourceResults.WithLabelValues(SourcePopularity).Add(float64(len(results)))
	return results
}

// Popular returns the popularity ranking with no per-user exclusions,
// for the public popular-content surface.
func (e *Engine) Popular(ctx context.Context, limit int) ([]ScoredContent, error) {
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		limit = e.cfg.MaxLimit
	}
	return e.popularity(ctx, nil, 0, limit)
}

func sortedIDs(set map[int64]bool) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
