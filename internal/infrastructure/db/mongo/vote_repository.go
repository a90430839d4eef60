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
)

const collectionVotes = "votes"

type VoteRepository struct {
	col *mongo.Collection
}

func NewVoteRepository(db *mongo.Database) *VoteRepository {
	return &VoteRepository{col: db.Collection(collectionVotes)}
}

type voteDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ReportID  primitive.ObjectID `bson:"report_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	VoteType  string             `bson:"vote_type"`
	CreatedAt time.Time          `bson:"created_at"`
}

// Upsert writes the user's vote for a report and returns the previous vote
// type, or "" when the pair had no vote. The unique (report_id, user_id)
// index keeps the pair at-most-one even under concurrent casts.
func (r *VoteRepository) Upsert(ctx context.Context, v *domain.Vote) (domain.VoteType, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rid, err := reportID(v.ReportID)
	if err != nil {
		return "", err
	}
	uid, err := userID(v.UserID)
	if err != nil {
		return "", err
	}

	filter := bson.M{"report_id": rid, "user_id": uid}
	update := bson.M{
		"$set":         bson.M{"vote_type": string(v.Type)},
		"$setOnInsert": bson.M{"report_id": rid, "user_id": uid, "created_at": v.CreatedAt},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var before voteDoc
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// No prior vote; the upsert inserted a fresh one.
			return "", nil
		}
		return "", fmt.Errorf("upsert vote: %w", err)
	}
	return domain.VoteType(before.VoteType), nil
}

// DeleteByReport cascades away a deleted report's vote records.
func (r *VoteRepository) DeleteByReport(ctx context.Context, reportIDHex string) (int64, error) {
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

func (r *VoteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "report_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
