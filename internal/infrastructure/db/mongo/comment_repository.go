package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
)

const collectionComments = "comments"

type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{col: db.Collection(collectionComments)}
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ReportID  primitive.ObjectID `bson:"report_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d *commentDoc) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:        d.ID.Hex(),
		ReportID:  d.ReportID.Hex(),
		UserID:    d.UserID.Hex(),
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
}

func (r *CommentRepository) Insert(ctx context.Context, c *domain.Comment) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rid, err := reportID(c.ReportID)
	if err != nil {
		return "", err
	}
	uid, err := userID(c.UserID)
	if err != nil {
		return "", err
	}

	res, err := r.col.InsertOne(ctx, commentDoc{
		ReportID:  rid,
		UserID:    uid,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("insert comment: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *CommentRepository) ListByReport(ctx context.Context, reportIDHex string, skip, limit int) ([]*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rid, err := reportID(reportIDHex)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, bson.M{"report_id": rid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []*domain.Comment{}
	for cursor.Next(ctx) {
		var doc commentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		comments = append(comments, doc.toDomain())
	}
	return comments, cursor.Err()
}

func (r *CommentRepository) CountByReport(ctx context.Context, reportIDHex string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rid, err := reportID(reportIDHex)
	if err != nil {
		return 0, err
	}
	return r.col.CountDocuments(ctx, bson.M{"report_id": rid})
}

// DeleteByReport cascades away every comment attached to a deleted report.
func (r *CommentRepository) DeleteByReport(ctx context.Context, reportIDHex string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rid, err := reportID(reportIDHex)
	if err != nil {
		return 0, err
	}

	res, err := r.col.DeleteMany(ctx, bson.M{"report_id": rid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *CommentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "report_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
