package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
	"github.com/civicreporter/civic-reporter-api/internal/core/ports"
)

const rollupTTL = time.Minute

// AnalyticsService serves read-only rollups, fronted by a fail-safe cache:
// cache errors behave as misses and never fail the request.
type AnalyticsService struct {
	repo  ports.AnalyticsRepository
	cache ports.RollupCache
	log   zerolog.Logger
}

func NewAnalyticsService(repo ports.AnalyticsRepository, cache ports.RollupCache, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: cache, log: log}
}

func (s *AnalyticsService) Overview(ctx context.Context) (*ports.Overview, error) {
	var out ports.Overview
	hit := cacheInto(ctx, s.cache, "analytics:overview", &out)
	if hit {
		return &out, nil
	}

	result, err := s.repo.Overview(ctx)
	if err != nil {
		return nil, err
	}
	cachePut(ctx, s.cache, "analytics:overview", result)
	return result, nil
}

func (s *AnalyticsService) Timeline(ctx context.Context, days int) ([]ports.TimelinePoint, error) {
	if days < 1 || days > 365 {
		return nil, fmt.Errorf("%w: days must be between 1 and 365", domain.ErrValidation)
	}

	key := fmt.Sprintf("analytics:timeline:%d", days)
	var out []ports.TimelinePoint
	if cacheInto(ctx, s.cache, key, &out) {
		return out, nil
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	points, err := s.repo.Timeline(ctx, since)
	if err != nil {
		return nil, err
	}
	cachePut(ctx, s.cache, key, points)
	return points, nil
}

func (s *AnalyticsService) TopLocations(ctx context.Context, limit int) ([]ports.LocationCluster, error) {
	if limit < 1 || limit > 50 {
		return nil, fmt.Errorf("%w: limit must be between 1 and 50", domain.ErrValidation)
	}

	key := fmt.Sprintf("analytics:top-locations:%d", limit)
	var out []ports.LocationCluster
	if cacheInto(ctx, s.cache, key, &out) {
		return out, nil
	}

	clusters, err := s.repo.TopLocations(ctx, limit)
	if err != nil {
		return nil, err
	}
	cachePut(ctx, s.cache, key, clusters)
	return clusters, nil
}

func (s *AnalyticsService) UserStats(ctx context.Context, userID string) (*ports.UserStats, error) {
	return s.repo.UserStats(ctx, userID)
}

// cacheInto decodes a cached rollup into dst; any failure counts as a miss.
func cacheInto(ctx context.Context, cache ports.RollupCache, key string, dst any) bool {
	raw, ok := cache.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func cachePut(ctx context.Context, cache ports.RollupCache, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	cache.Set(ctx, key, raw, rollupTTL)
}
