package appointmentRepo

import (
	"bookline/database"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAppointmentRepo is the MongoDB-backed AppointmentRepository.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
}

func NewMongoAppointmentRepo() *MongoAppointmentRepo {
	return &MongoAppointmentRepo{
		coll: database.DB().Collection("appointments"),
	}
}
