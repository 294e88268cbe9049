package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kartbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingStore keeps bookings in MongoDB.
type BookingStore struct {
	Coll *mongo.Collection
}

func (s BookingStore) Create(ctx context.Context, b *models.Booking) error {
	_, err := s.Coll.InsertOne(ctx, b)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrConflict
	}
	return err
}

func (s BookingStore) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := s.Coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByDate also matches documents that stored the date as a datetime.
func (s BookingStore) ListByDate(ctx context.Context, date string) ([]models.Booking, error) {
	match := bson.A{bson.M{"date": date}}
	if day, err := time.Parse(time.DateOnly, date); err == nil {
		match = append(match, bson.M{"date": bson.M{"$gte": day, "$lt": day.AddDate(0, 0, 1)}})
	}
	return s.find(ctx, bson.M{
		"$or":    match,
		"status": bson.M{"$ne": models.StatusCancelled},
	})
}

func (s BookingStore) List(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	filter := bson.M{}
	dateRange := bson.M{}
	if f.StartDate != "" {
		dateRange["$gte"] = f.StartDate
	}
	if f.EndDate != "" {
		dateRange["$lte"] = f.EndDate
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return s.find(ctx, filter)
}

func (s BookingStore) ListUnsent(ctx context.Context, fromDate string, createdBefore time.Time) ([]models.Booking, error) {
	return s.find(ctx, bson.M{
		"status":    models.StatusConfirmed,
		"emailSent": false,
		"date":      bson.M{"$gte": fromDate},
		"createdAt": bson.M{"$lte": createdBefore},
	})
}

func (s BookingStore) find(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}})
	cursor, err := s.Coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}

// Replace swaps the stored document only while its status is still
// prevStatus.
func (s BookingStore) Replace(ctx context.Context, b *models.Booking, prevStatus string) error {
	res, err := s.Coll.ReplaceOne(ctx, bson.M{"_id": b.ID, "status": prevStatus}, b)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.Coll.CountDocuments(ctx, bson.M{"_id": b.ID})
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return models.ErrConflict
}

func (s BookingStore) Delete(ctx context.Context, id string) error {
	res, err := s.Coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s BookingStore) MarkEmailSent(ctx context.Context, id string) error {
	res, err := s.Coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"emailSent": true, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
