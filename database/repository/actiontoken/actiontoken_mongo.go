package actionTokenRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookline/database"
	"bookline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoActionTokenRepo is the MongoDB-backed ActionTokenRepository.
type MongoActionTokenRepo struct {
	coll *mongo.Collection
}

func NewMongoActionTokenRepo() *MongoActionTokenRepo {
	return &MongoActionTokenRepo{
		coll: database.DB().Collection("action_tokens"),
	}
}

// Insert stores a freshly minted action token.
func (repo *MongoActionTokenRepo) Insert(ctx context.Context, token *models.ActionToken) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctxWithTimeout, token); err != nil {
		return fmt.Errorf("error inserting action token: %w", err)
	}
	return nil
}

// GetByToken retrieves a token record by its secret, or (nil, nil).
func (repo *MongoActionTokenRepo) GetByToken(ctx context.Context, token string) (*models.ActionToken, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var record models.ActionToken
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"token": token}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching action token: %w", err)
	}
	return &record, nil
}

// ConsumeValid flips isUsed in the same server-side operation as the
// validity check, which rules out a double spend between two requests.
func (repo *MongoActionTokenRepo) ConsumeValid(ctx context.Context, token string, now time.Time) (*models.ActionToken, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"token":     token,
		"isUsed":    false,
		"expiresAt": bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{"isUsed": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record models.ActionToken
	err := repo.coll.FindOneAndUpdate(ctxWithTimeout, filter, update, opts).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error consuming action token: %w", err)
	}
	return &record, nil
}

// EnsureIndexes creates the unique token index and a TTL index so expired
// tokens age out of storage on their own.
func (repo *MongoActionTokenRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating action token indexes: %w", err)
	}
	return nil
}
