package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"example.com/trip-planner/backend/internal/models"
)

// tripDocument хранит поездку одним документом: дни вложены массивом.
type tripDocument struct {
	ID           string         `bson:"_id"`
	UserID       string         `bson:"user_id"`
	Title        string         `bson:"title"`
	Destination  string         `bson:"destination"`
	StartDate    time.Time      `bson:"start_date"`
	NumberOfDays int            `bson:"number_of_days"`
	Duration     string         `bson:"duration"`
	Itinerary    []models.Day   `bson:"itinerary"`
	Hotels       []models.Hotel `bson:"hotels"`
	CreatedAt    time.Time      `bson:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at"`
}

type MongoTripStore struct {
	trips   *mongo.Collection
	timeout time.Duration
}

// NewMongoTripStore создает хранилище поездок в коллекции MongoDB.
func NewMongoTripStore(trips *mongo.Collection, timeout time.Duration) *MongoTripStore {
	return &MongoTripStore{trips: trips, timeout: timeout}
}

func (r *MongoTripStore) Create(ctx context.Context, trip models.Trip) (models.Trip, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	now := time.Now().UTC()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	if _, err := r.trips.InsertOne(ctx, toDocument(trip)); err != nil {
		return trip, err
	}

	return trip, nil
}

func (r *MongoTripStore) Get(ctx context.Context, userID, tripID uuid.UUID) (models.Trip, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc tripDocument
	err := r.trips.FindOne(ctx, bson.M{"_id": tripID.String(), "user_id": userID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Trip{}, ErrNotFound
		}
		return models.Trip{}, err
	}

	return fromDocument(doc)
}

// ApplyPatch обновляет поля документа одной операцией $set.
func (r *MongoTripStore) ApplyPatch(ctx context.Context, userID, tripID uuid.UUID, patch models.TripPatch) error {
	update, err := buildPatchSet(patch)
	if err != nil {
		return err
	}
	update["updated_at"] = time.Now().UTC()

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.trips.UpdateOne(ctx,
		bson.M{"_id": tripID.String(), "user_id": userID.String()},
		bson.M{"$set": update},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func buildPatchSet(patch models.TripPatch) (bson.M, error) {
	if patch.IsEmpty() {
		return nil, ErrInvalid
	}

	update := bson.M{}
	if patch.Itinerary != nil {
		days := *patch.Itinerary
		if days == nil {
			days = []models.Day{}
		}
		update["itinerary"] = days
	}
	if patch.NumberOfDays != nil {
		if *patch.NumberOfDays < 0 {
			return nil, ErrInvalid
		}
		update["number_of_days"] = *patch.NumberOfDays
	}
	if patch.Duration != nil {
		update["duration"] = *patch.Duration
	}

	return update, nil
}

func toDocument(trip models.Trip) tripDocument {
	itinerary := trip.Itinerary
	if itinerary == nil {
		itinerary = []models.Day{}
	}
	hotels := trip.Hotels
	if hotels == nil {
		hotels = []models.Hotel{}
	}

	return tripDocument{
		ID:           trip.ID.String(),
		UserID:       trip.UserID.String(),
		Title:        trip.Title,
		Destination:  trip.Destination,
		StartDate:    trip.StartDate,
		NumberOfDays: trip.NumberOfDays,
		Duration:     trip.Duration,
		Itinerary:    itinerary,
		Hotels:       hotels,
		CreatedAt:    trip.CreatedAt,
		UpdatedAt:    trip.UpdatedAt,
	}
}

func fromDocument(doc tripDocument) (models.Trip, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return models.Trip{}, fmt.Errorf("decode trip id: %w", err)
	}
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return models.Trip{}, fmt.Errorf("decode user id: %w", err)
	}

	return models.Trip{
		ID:           id,
		UserID:       userID,
		Title:        doc.Title,
		Destination:  doc.Destination,
		StartDate:    doc.StartDate,
		NumberOfDays: doc.NumberOfDays,
		Duration:     doc.Duration,
		Itinerary:    doc.Itinerary,
		Hotels:       doc.Hotels,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}
