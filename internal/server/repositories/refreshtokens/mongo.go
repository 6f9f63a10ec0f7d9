package refreshtokens

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

const collectionName = "refresh_tokens"

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(collectionName)}
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("refresh_tokens indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("mongo error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	return r.findOne(ctx, bson.M{"token": token})
}

func (r *MongoRepository) FindActive(ctx context.Context, token string, now time.Time) (*models.RefreshToken, error) {
	return r.findOne(ctx, bson.M{
		"token":       token,
		"type":        models.TokenTypeRefresh,
		"blacklisted": false,
		"expires_at":  bson.M{"$gt": now},
	})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.RefreshToken, error) {
	t := &models.RefreshToken{}
	if err := r.coll.FindOne(ctx, filter).Decode(t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return t, nil
}

// Blacklist is a single conditional update, so it is atomic per document.
func (r *MongoRepository) Blacklist(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "blacklisted": false},
		bson.M{"$set": bson.M{"blacklisted": true}})
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	if res.ModifiedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) BlacklistAllForUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "blacklisted": false},
		bson.M{"$set": bson.M{"blacklisted": true}})
	if err != nil {
		return 0, fmt.Errorf("mongo error: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *MongoRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": before}})
	if err != nil {
		return 0, fmt.Errorf("mongo error: %w", err)
	}
	return res.DeletedCount, nil
}
