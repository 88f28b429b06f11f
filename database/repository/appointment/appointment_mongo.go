package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medibot/database"
	"medibot/models"
	"medibot/services/appointments"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check: the repository is the Record Store the backend role serves.
var _ appointments.RecordStore = (*MongoAppointmentRepo)(nil)

// MongoAppointmentRepo stores appointments in MongoDB.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoAppointmentRepo creates the repository on the configured database.
func NewMongoAppointmentRepo() *MongoAppointmentRepo {
	repo := &MongoAppointmentRepo{
		coll: database.Database().Collection("appointments"),
		now:  time.Now,
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoAppointmentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "fecha", Value: 1}, {Key: "hora", Value: 1}}},
		{Keys: bson.D{{Key: "doctor", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// List returns appointments matching filter, oldest first.
func (r *MongoAppointmentRepo) List(ctx context.Context, filter *models.AppointmentFilter) ([]models.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, FilterDoc(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Appointment{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return out, nil
}

func (r *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, appointments.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointment %s: %w", id, err)
	}
	return &a, nil
}

// Create assigns the id, the timestamps and the default status.
func (r *MongoAppointmentRepo) Create(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error) {
	now := r.now().UTC()
	a := NewRecord(input, uuid.New().String(), now)
	if _, err := r.coll.InsertOne(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to insert appointment: %w", err)
	}
	return &a, nil
}

func (r *MongoAppointmentRepo) Update(ctx context.Context, id string, update models.AppointmentUpdate) (*models.Appointment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.Appointment
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, UpdateDoc(update, r.now().UTC()), opts).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, appointments.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment %s: %w", id, err)
	}
	return &a, nil
}

func (r *MongoAppointmentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete appointment %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return appointments.ErrNotFound
	}
	return nil
}
