package otps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "one_time_codes"

// MongoRepository stores codes in one collection. DeleteMany followed by
// Create is not atomic here; with concurrent issuers the latest insert wins.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(collectionName)}
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "purpose", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("one_time_codes indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) DeleteMany(ctx context.Context, email string, purpose models.OTPPurpose) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"email": email, "purpose": purpose}); err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, code *models.OneTimeCode) error {
	if _, err := r.coll.InsertOne(ctx, code); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("mongo error: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindActive(ctx context.Context, email string, purpose models.OTPPurpose, now time.Time) (*models.OneTimeCode, error) {
	filter := bson.M{
		"email":      email,
		"purpose":    purpose,
		"is_used":    false,
		"expires_at": bson.M{"$gt": now},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	code := &models.OneTimeCode{}
	if err := r.coll.FindOne(ctx, filter, opts).Decode(code); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return code, nil
}

func (r *MongoRepository) MarkUsed(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "is_used": false},
		bson.M{"$set": bson.M{"is_used": true}})
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	if res.ModifiedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": before}})
	if err != nil {
		return 0, fmt.Errorf("mongo error: %w", err)
	}
	return res.DeletedCount, nil
}
