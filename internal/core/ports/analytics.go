package ports

import (
	"context"
	"time"
)

// BucketCount is one grouping bucket in a rollup (category, status, day...).
type BucketCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Overview is the system-wide rollup.
type Overview struct {
	TotalReports      int64         `json:"total_reports"`
	TotalUsers        int64         `json:"total_users"`
	PendingReports    int64         `json:"pending_reports"`
	ResolvedReports   int64         `json:"resolved_reports"`
	ResolutionRate    float64       `json:"resolution_rate"`
	RecentReports30d  int64         `json:"recent_reports_30_days"`
	ReportsByCategory []BucketCount `json:"reports_by_category"`
	ReportsByStatus   []BucketCount `json:"reports_by_status"`
}

// TimelinePoint is one day's report count.
type TimelinePoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// LocationCluster groups reports filed around the same rounded coordinates.
type LocationCluster struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	ReportsCount int64   `json:"reports_count"`
	Address      string  `json:"address"`
}

// UserStats is the per-user rollup.
type UserStats struct {
	TotalReports      int64         `json:"total_reports"`
	RecentReports30d  int64         `json:"recent_reports_30_days"`
	ReportsByStatus   []BucketCount `json:"reports_by_status"`
	ReportsByCategory []BucketCount `json:"reports_by_category"`
}

// AnalyticsRepository runs the aggregation pipelines behind the rollups.
// These are read-only snapshots with no invariants to protect.
type AnalyticsRepository interface {
	Overview(ctx context.Context) (*Overview, error)
	Timeline(ctx context.Context, since time.Time) ([]TimelinePoint, error)
	TopLocations(ctx context.Context, limit int) ([]LocationCluster, error)
	UserStats(ctx context.Context, userID string) (*UserStats, error)
}

// AnalyticsService serves the rollups, fronted by a short-TTL cache.
type AnalyticsService interface {
	Overview(ctx context.Context) (*Overview, error)
	Timeline(ctx context.Context, days int) ([]TimelinePoint, error)
	TopLocations(ctx context.Context, limit int) ([]LocationCluster, error)
	UserStats(ctx context.Context, userID string) (*UserStats, error)
}

// RollupCache is the fail-safe cache in front of analytics reads. Errors
// behave as cache misses; a miss returns (nil, false).
type RollupCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}
