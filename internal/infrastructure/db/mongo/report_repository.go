package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
	"github.com/civicreporter/civic-reporter-api/internal/core/ports"
)

const collectionReports = "reports"

// earthRadiusKm is the equatorial radius used by Mongo's $centerSphere.
const earthRadiusKm = 6378.1

type ReportRepository struct {
	col *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{col: db.Collection(collectionReports)}
}

type reportDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        primitive.ObjectID `bson:"user_id"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	Category      string             `bson:"category"`
	Location      domain.Location    `bson:"location"`
	Address       string             `bson:"address"`
	Priority      string             `bson:"priority"`
	Status        string             `bson:"status"`
	Images        []string           `bson:"images"`
	Upvotes       int64              `bson:"upvotes"`
	Downvotes     int64              `bson:"downvotes"`
	CommentsCount int64              `bson:"comments_count"`
	AssignedTo    string             `bson:"assigned_to,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
	ResolvedAt    *time.Time         `bson:"resolved_at,omitempty"`
}

func toReportDoc(r *domain.Report) (*reportDoc, error) {
	userID, err := primitive.ObjectIDFromHex(r.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", domain.ErrValidation)
	}
	return &reportDoc{
		UserID:        userID,
		Title:         r.Title,
		Description:   r.Description,
		Category:      string(r.Category),
		Location:      r.Location,
		Address:       r.Address,
		Priority:      string(r.Priority),
		Status:        string(r.Status),
		Images:        r.Images,
		Upvotes:       r.Upvotes,
		Downvotes:     r.Downvotes,
		CommentsCount: r.CommentsCount,
		AssignedTo:    r.AssignedTo,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		ResolvedAt:    r.ResolvedAt,
	}, nil
}

func (d *reportDoc) toDomain() *domain.Report {
	return &domain.Report{
		ID:            d.ID.Hex(),
		UserID:        d.UserID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		Category:      domain.ReportCategory(d.Category),
		Location:      d.Location,
		Address:       d.Address,
		Priority:      domain.ReportPriority(d.Priority),
		Status:        domain.ReportStatus(d.Status),
		Images:        d.Images,
		Upvotes:       d.Upvotes,
		Downvotes:     d.Downvotes,
		CommentsCount: d.CommentsCount,
		AssignedTo:    d.AssignedTo,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		ResolvedAt:    d.ResolvedAt,
	}
}

func reportID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid report id", domain.ErrValidation)
	}
	return oid, nil
}

// Insert stores a new report document and returns its assigned id.
func (r *ReportRepository) Insert(ctx context.Context, report *domain.Report) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toReportDoc(report)
	if err != nil {
		return "", err
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := reportID(id)
	if err != nil {
		return nil, err
	}

	var doc reportDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// predicate builds the filter document. A geo constraint uses $near for the
// page query (distance-ascending by Mongo semantics) and $geoWithin/
// $centerSphere for counting, because $near is not allowed in CountDocuments.
func (r *ReportRepository) predicate(f ports.ListReportsFilter, forCount bool) (bson.M, error) {
	query := bson.M{}
	if f.Category != "" {
		query["category"] = string(f.Category)
	}
	if f.Status != "" {
		query["status"] = string(f.Status)
	}
	if f.Priority != "" {
		query["priority"] = string(f.Priority)
	}
	if f.UserID != "" {
		oid, err := primitive.ObjectIDFromHex(f.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid user id", domain.ErrValidation)
		}
		query["user_id"] = oid
	}
	if f.Geo != nil {
		if forCount {
			query["location"] = bson.M{
				"$geoWithin": bson.M{
					"$centerSphere": bson.A{
						bson.A{f.Geo.Longitude, f.Geo.Latitude},
						f.Geo.RadiusKm / earthRadiusKm,
					},
				},
			}
		} else {
			query["location"] = bson.M{
				"$near": bson.M{
					"$geometry": bson.M{
						"type":        "Point",
						"coordinates": bson.A{f.Geo.Longitude, f.Geo.Latitude},
					},
					"$maxDistance": f.Geo.RadiusKm * 1000, // km to meters
				},
			}
		}
	}
	return query, nil
}

// List returns one page matching filter: distance ascending with a geo
// constraint, created_at descending otherwise.
func (r *ReportRepository) List(ctx context.Context, f ports.ListReportsFilter) ([]*domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, err := r.predicate(f, false)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSkip(int64(f.Skip)).SetLimit(int64(f.Limit))
	if f.Geo == nil {
		opts.SetSort(bson.D{{Key: "created_at", Value: -1}})
	}

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reports := []*domain.Report{}
	for cursor.Next(ctx) {
		var doc reportDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		reports = append(reports, doc.toDomain())
	}
	return reports, cursor.Err()
}

// Count counts against the same predicate as List, before pagination.
func (r *ReportRepository) Count(ctx context.Context, f ports.ListReportsFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, err := r.predicate(f, true)
	if err != nil {
		return 0, err
	}
	return r.col.CountDocuments(ctx, query)
}

// UpdateFields applies a partial $set scoped to one document.
func (r *ReportRepository) UpdateFields(ctx context.Context, id string, update ports.ReportFieldUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := reportID(id)
	if err != nil {
		return err
	}

	set := bson.M{"updated_at": update.UpdatedAt}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Category != nil {
		set["category"] = string(*update.Category)
	}
	if update.Priority != nil {
		set["priority"] = string(*update.Priority)
	}
	if update.Status != nil {
		set["status"] = string(*update.Status)
	}
	if update.AssignedTo != nil {
		set["assigned_to"] = *update.AssignedTo
	}
	if update.ResolvedAt != nil {
		set["resolved_at"] = *update.ResolvedAt
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := reportID(id)
	if err != nil {
		return err
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

// IncVotes adjusts the vote counters with a single atomic $inc, so concurrent
// votes never lose updates.
func (r *ReportRepository) IncVotes(ctx context.Context, id string, upDelta, downDelta int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := reportID(id)
	if err != nil {
		return err
	}

	inc := bson.M{}
	if upDelta != 0 {
		inc["upvotes"] = upDelta
	}
	if downDelta != 0 {
		inc["downvotes"] = downDelta
	}
	if len(inc) == 0 {
		return nil
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": inc})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *ReportRepository) IncComments(ctx context.Context, id string, delta int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := reportID(id)
	if err != nil {
		return err
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"comments_count": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

// EnsureIndexes creates the report indexes: the 2dsphere geospatial index,
// the single-field filter indexes, and the compound default-listing index.
func (r *ReportRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
