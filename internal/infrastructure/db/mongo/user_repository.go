package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
	"github.com/civicreporter/civic-reporter-api/internal/core/ports"
)

const collectionUsers = "users"

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	Username       string             `bson:"username"`
	FullName       string             `bson:"full_name"`
	Phone          string             `bson:"phone,omitempty"`
	ProfilePicture string             `bson:"profile_picture,omitempty"`
	HashedPassword string             `bson:"hashed_password"`
	IsActive       bool               `bson:"is_active"`
	IsVerified     bool               `bson:"is_verified"`
	ReportsCount   int64              `bson:"reports_count"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:             d.ID.Hex(),
		Email:          d.Email,
		Username:       d.Username,
		FullName:       d.FullName,
		Phone:          d.Phone,
		ProfilePicture: d.ProfilePicture,
		HashedPassword: d.HashedPassword,
		IsActive:       d.IsActive,
		IsVerified:     d.IsVerified,
		ReportsCount:   d.ReportsCount,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func userID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid user id", domain.ErrValidation)
	}
	return oid, nil
}

// Insert stores a new user. Duplicate-key violations are mapped to the field
// that collided using the index name in the error text.
func (r *UserRepository) Insert(ctx context.Context, u *domain.User) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDoc{
		Email:          u.Email,
		Username:       u.Username,
		FullName:       u.FullName,
		Phone:          u.Phone,
		ProfilePicture: u.ProfilePicture,
		HashedPassword: u.HashedPassword,
		IsActive:       u.IsActive,
		IsVerified:     u.IsVerified,
		ReportsCount:   u.ReportsCount,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "username") {
				return "", domain.ErrUsernameTaken
			}
			return "", domain.ErrEmailTaken
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := userID(id)
	if err != nil {
		return nil, err
	}

	var doc userDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) UpdateFields(ctx context.Context, id string, update ports.UserFieldUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := userID(id)
	if err != nil {
		return err
	}

	set := bson.M{"updated_at": update.UpdatedAt}
	unset := bson.M{}
	if update.FullName != nil {
		set["full_name"] = *update.FullName
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.ProfilePicture != nil {
		if *update.ProfilePicture == "" {
			unset["profile_picture"] = ""
		} else {
			set["profile_picture"] = *update.ProfilePicture
		}
	}

	change := bson.M{"$set": set}
	if len(unset) > 0 {
		change["$unset"] = unset
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, change)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// IncReportsCount adjusts the derived per-user report total with an atomic
// single-field increment.
func (r *UserRepository) IncReportsCount(ctx context.Context, id string, delta int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := userID(id)
	if err != nil {
		return err
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$inc": bson.M{"reports_count": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// FindSummary is the userLookup capability: a fresh author snapshot, never a
// stored denormalized copy.
func (r *UserRepository) FindSummary(ctx context.Context, id string) (*domain.UserSummary, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := user.Summary()
	return &summary, nil
}

// FindSummariesByIDs batches the author lookup for one page of reports.
func (r *UserRepository) FindSummariesByIDs(ctx context.Context, ids []string) (map[string]domain.UserSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := userID(id)
		if err != nil {
			return nil, err
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return map[string]domain.UserSummary{}, nil
	}

	projection := bson.M{"username": 1, "full_name": 1, "profile_picture": 1}
	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summaries := make(map[string]domain.UserSummary, len(oids))
	for cursor.Next(ctx) {
		var doc userDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		summaries[doc.ID.Hex()] = domain.UserSummary{
			ID:             doc.ID.Hex(),
			Username:       doc.Username,
			FullName:       doc.FullName,
			ProfilePicture: doc.ProfilePicture,
		}
	}
	return summaries, cursor.Err()
}

// EnsureIndexes creates the uniqueness indexes on email and username.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
