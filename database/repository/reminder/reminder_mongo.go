package reminderRepo

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

// MongoReminderRepo is the MongoDB-backed ReminderRepository.
type MongoReminderRepo struct {
	coll *mongo.Collection
}

func NewMongoReminderRepo() *MongoReminderRepo {
	return &MongoReminderRepo{
		coll: database.DB().Collection("reminders"),
	}
}

// GetByAppointmentID returns the live reminder for an appointment, or
// (nil, nil) when none exists.
func (repo *MongoReminderRepo) GetByAppointmentID(ctx context.Context, appointmentID string) (*models.Reminder, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var reminder models.Reminder
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"appointmentId": appointmentID}).Decode(&reminder)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching reminder for appointment %s: %w", appointmentID, err)
	}
	return &reminder, nil
}

// Upsert replaces the reminder record for the appointment. The unique
// appointmentId index keeps this at one record per appointment.
func (repo *MongoReminderRepo) Upsert(ctx context.Context, reminder *models.Reminder) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := repo.coll.ReplaceOne(ctxWithTimeout, bson.M{"appointmentId": reminder.AppointmentID}, reminder, opts)
	if err != nil {
		return fmt.Errorf("error upserting reminder for appointment %s: %w", reminder.AppointmentID, err)
	}
	return nil
}

// DeleteByAppointmentID removes the reminder record, if any.
func (repo *MongoReminderRepo) DeleteByAppointmentID(ctx context.Context, appointmentID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.DeleteOne(ctxWithTimeout, bson.M{"appointmentId": appointmentID}); err != nil {
		return fmt.Errorf("error deleting reminder for appointment %s: %w", appointmentID, err)
	}
	return nil
}

// MarkSent stamps the reminder as delivered.
func (repo *MongoReminderRepo) MarkSent(ctx context.Context, appointmentID string, sentAt time.Time) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"sentAt": sentAt}}
	if _, err := repo.coll.UpdateOne(ctxWithTimeout, bson.M{"appointmentId": appointmentID}, update); err != nil {
		return fmt.Errorf("error marking reminder sent for appointment %s: %w", appointmentID, err)
	}
	return nil
}

// EnsureIndexes creates the unique appointmentId index.
func (repo *MongoReminderRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "appointmentId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.coll.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("error creating reminder indexes: %w", err)
	}
	return nil
}
