package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
)

// EventsCollection is the Mongo collection holding events
const EventsCollection = "events"

// MongoEventRepository stores events with a GeoJSON location
type MongoEventRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoEventRepository creates an event repository over db
func NewMongoEventRepository(db *mongo.Database, timeout time.Duration) *MongoEventRepository {
	return &MongoEventRepository{
		coll:    db.Collection(EventsCollection),
		timeout: timeout,
	}
}

// EnsureIndexes creates the 2dsphere index used by FindNearby and the membership indexes
func (r *MongoEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "creator", Value: 1}}},
		{Keys: bson.D{{Key: "attendees.userId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("error creating event indexes: %w", err)
	}
	return nil
}

// Create inserts a new event
func (r *MongoEventRepository) Create(ctx context.Context, event *models.Event) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("error inserting event: %w", err)
	}
	return nil
}

// GetByID loads one event
func (r *MongoEventRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var event models.Event
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error finding event: %w", err)
	}
	return &event, nil
}

// Save replaces the event if its version is unchanged since it was loaded
func (r *MongoEventRepository) Save(ctx context.Context, event *models.Event) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	loadedVersion := event.Version
	event.Version = loadedVersion + 1
	event.UpdatedAt = time.Now().UTC()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": event.ID, "version": loadedVersion}, event)
	if err != nil {
		event.Version = loadedVersion
		return fmt.Errorf("error saving event: %w", err)
	}
	if res.MatchedCount == 0 {
		event.Version = loadedVersion
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": event.ID})
		if err != nil {
			return fmt.Errorf("error checking event existence: %w", err)
		}
		if count == 0 {
			return apperrors.ErrEventNotFound
		}
		return apperrors.ErrVersionConflict
	}
	return nil
}

// Delete removes an event
func (r *MongoEventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// FindNearby uses $nearSphere, which returns results sorted by distance
func (r *MongoEventRepository) FindNearby(ctx context.Context, longitude, latitude, radiusKm float64) ([]*models.Event, error) {
	filter := bson.M{
		"location": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    bson.M{"type": "Point", "coordinates": []float64{longitude, latitude}},
				"$maxDistance": radiusKm * 1000,
			},
		},
	}
	return r.find(ctx, filter, nil)
}

// ListByUser returns events created or attended by userID
func (r *MongoEventRepository) ListByUser(ctx context.Context, userID string) ([]*models.Event, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"creator": userID},
		bson.M{"attendees.userId": userID},
	}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "dateTime", Value: 1}}))
}

func (r *MongoEventRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		cursor *mongo.Cursor
		err    error
	)
	if opts != nil {
		cursor, err = r.coll.Find(ctx, filter, opts)
	} else {
		cursor, err = r.coll.Find(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("error decoding events: %w", err)
	}
	return events, nil
}
