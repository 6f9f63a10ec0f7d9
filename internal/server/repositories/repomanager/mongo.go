package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/otps"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepositoryManager serves the stores from one database. Atomic runs fn
// without a session; OTP supersession is latest-insert-wins on this backend.
type MongoRepositoryManager struct {
	client        *mongo.Client
	users         *users.MongoRepository
	oneTimeCodes  *otps.MongoRepository
	refreshTokens *refreshtokens.MongoRepository
}

func NewMongoRepositoryManager(client *mongo.Client, database string) *MongoRepositoryManager {
	db := client.Database(database)
	return &MongoRepositoryManager{
		client:        client,
		users:         users.NewMongoRepository(db),
		oneTimeCodes:  otps.NewMongoRepository(db),
		refreshTokens: refreshtokens.NewMongoRepository(db),
	}
}

// OpenMongo connects to uri and verifies the primary is reachable.
func OpenMongo(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}
	return NewMongoRepositoryManager(client, database), nil
}

func (m *MongoRepositoryManager) Users() users.Repository                 { return m.users }
func (m *MongoRepositoryManager) OneTimeCodes() otps.Repository           { return m.oneTimeCodes }
func (m *MongoRepositoryManager) RefreshTokens() refreshtokens.Repository { return m.refreshTokens }

func (m *MongoRepositoryManager) Atomic(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return fn(ctx, m)
}

// RunMigrations creates the collection indexes.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	if err := m.users.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := m.oneTimeCodes.EnsureIndexes(ctx); err != nil {
		return err
	}
	return m.refreshTokens.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
