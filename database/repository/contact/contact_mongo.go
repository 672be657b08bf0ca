package contactRepo

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

// MongoContactRepo is the MongoDB-backed ContactRepository.
type MongoContactRepo struct {
	coll *mongo.Collection
}

func NewMongoContactRepo() *MongoContactRepo {
	return &MongoContactRepo{
		coll: database.DB().Collection("contacts"),
	}
}

// UpsertByEmail inserts the contact or refreshes the existing record that
// shares its email, and returns the stored document either way.
func (repo *MongoContactRepo) UpsertByEmail(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"firstName":    contact.FirstName,
			"lastName":     contact.LastName,
			"phone":        contact.Phone,
			"consentGiven": contact.ConsentGiven,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"id":        contact.ID,
			"email":     contact.Email,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored models.Contact
	err := repo.coll.FindOneAndUpdate(ctxWithTimeout, bson.M{"email": contact.Email}, update, opts).Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("error upserting contact %s: %w", contact.Email, err)
	}
	return &stored, nil
}

// GetByID retrieves a contact by its ID. Returns (nil, nil) when missing.
func (repo *MongoContactRepo) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var contact models.Contact
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&contact)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching contact %s: %w", id, err)
	}
	return &contact, nil
}

// EnsureIndexes creates the unique email index backing the upsert.
func (repo *MongoContactRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating contact indexes: %w", err)
	}
	return nil
}
