package mongo

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
	"github.com/civicreporter/civic-reporter-api/internal/core/ports"
)

// AnalyticsRepository runs the read-only rollup pipelines over the reports
// and users collections.
type AnalyticsRepository struct {
	db *mongo.Database
}

func NewAnalyticsRepository(db *mongo.Database) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

type bucketDoc struct {
	ID    string `bson:"_id"`
	Count int64  `bson:"count"`
}

func (r *AnalyticsRepository) groupCounts(ctx context.Context, match bson.M, field string) ([]ports.BucketCount, error) {
	pipeline := []bson.M{}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.M{"$match": match})
	}
	pipeline = append(pipeline,
		bson.M{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.M{"count": -1}},
	)

	cursor, err := r.db.Collection(collectionReports).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	buckets := []ports.BucketCount{}
	for cursor.Next(ctx) {
		var doc bucketDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		buckets = append(buckets, ports.BucketCount{Key: doc.ID, Count: doc.Count})
	}
	return buckets, cursor.Err()
}

// Overview computes the system-wide totals and groupings in one pass.
func (r *AnalyticsRepository) Overview(ctx context.Context) (*ports.Overview, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	reports := r.db.Collection(collectionReports)
	users := r.db.Collection(collectionUsers)

	total, err := reports.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	totalUsers, err := users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	pending, err := reports.CountDocuments(ctx, bson.M{"status": string(domain.StatusPending)})
	if err != nil {
		return nil, err
	}
	resolved, err := reports.CountDocuments(ctx, bson.M{"status": string(domain.StatusResolved)})
	if err != nil {
		return nil, err
	}
	recent, err := reports.CountDocuments(ctx, bson.M{
		"created_at": bson.M{"$gte": time.Now().UTC().AddDate(0, 0, -30)},
	})
	if err != nil {
		return nil, err
	}

	byCategory, err := r.groupCounts(ctx, nil, "category")
	if err != nil {
		return nil, err
	}
	byStatus, err := r.groupCounts(ctx, nil, "status")
	if err != nil {
		return nil, err
	}

	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(resolved)/float64(total)*10000) / 100
	}

	return &ports.Overview{
		TotalReports:      total,
		TotalUsers:        totalUsers,
		PendingReports:    pending,
		ResolvedReports:   resolved,
		ResolutionRate:    rate,
		RecentReports30d:  recent,
		ReportsByCategory: byCategory,
		ReportsByStatus:   byStatus,
	}, nil
}

// Timeline buckets report creation by calendar day since the given time.
func (r *AnalyticsRepository) Timeline(ctx context.Context, since time.Time) ([]ports.TimelinePoint, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{"created_at": bson.M{"$gte": since}}},
		{"$group": bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$created_at"}},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cursor, err := r.db.Collection(collectionReports).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	points := []ports.TimelinePoint{}
	for cursor.Next(ctx) {
		var doc bucketDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		points = append(points, ports.TimelinePoint{Date: doc.ID, Count: doc.Count})
	}
	return points, cursor.Err()
}

type locationClusterDoc struct {
	ID struct {
		Lat float64 `bson:"lat"`
		Lng float64 `bson:"lng"`
	} `bson:"_id"`
	Count         int64  `bson:"count"`
	LatestAddress string `bson:"latest_address"`
}

// TopLocations clusters reports by coordinates rounded to three decimals
// (roughly a city block).
func (r *AnalyticsRepository) TopLocations(ctx context.Context, limit int) ([]ports.LocationCluster, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := []bson.M{
		{"$group": bson.M{
			"_id": bson.M{
				"lat": bson.M{"$round": bson.A{bson.M{"$arrayElemAt": bson.A{"$location.coordinates", 1}}, 3}},
				"lng": bson.M{"$round": bson.A{bson.M{"$arrayElemAt": bson.A{"$location.coordinates", 0}}, 3}},
			},
			"count":          bson.M{"$sum": 1},
			"latest_address": bson.M{"$last": "$address"},
		}},
		{"$sort": bson.M{"count": -1}},
		{"$limit": limit},
	}

	cursor, err := r.db.Collection(collectionReports).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	clusters := []ports.LocationCluster{}
	for cursor.Next(ctx) {
		var doc locationClusterDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		clusters = append(clusters, ports.LocationCluster{
			Latitude:     doc.ID.Lat,
			Longitude:    doc.ID.Lng,
			ReportsCount: doc.Count,
			Address:      doc.LatestAddress,
		})
	}
	return clusters, cursor.Err()
}

// UserStats computes one user's rollup.
func (r *AnalyticsRepository) UserStats(ctx context.Context, userIDHex string) (*ports.UserStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := userID(userIDHex)
	if err != nil {
		return nil, err
	}

	reports := r.db.Collection(collectionReports)
	match := bson.M{"user_id": oid}

	total, err := reports.CountDocuments(ctx, match)
	if err != nil {
		return nil, err
	}
	recent, err := reports.CountDocuments(ctx, bson.M{
		"user_id":    oid,
		"created_at": bson.M{"$gte": time.Now().UTC().AddDate(0, 0, -30)},
	})
	if err != nil {
		return nil, err
	}

	byStatus, err := r.groupCounts(ctx, match, "status")
	if err != nil {
		return nil, fmt.Errorf("user stats by status: %w", err)
	}
	byCategory, err := r.groupCounts(ctx, match, "category")
	if err != nil {
		return nil, fmt.Errorf("user stats by category: %w", err)
	}

	return &ports.UserStats{
		TotalReports:      total,
		RecentReports30d:  recent,
		ReportsByStatus:   byStatus,
		ReportsByCategory: byCategory,
	}, nil
}
