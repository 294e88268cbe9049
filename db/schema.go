package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var timeslotPattern = `^([01][0-9]|2[0-3]):[0-5][0-9]-([01][0-9]|2[0-4]):[0-5][0-9]$`

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"customerName",
			"customerEmail",
			"date",
			"startTime",
			"endTime",
			"selectedTimeslots",
			"kartSelections",
			"totalPrice",
			"status",
		},
		"properties": bson.M{
			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`,
			},
			"selectedTimeslots": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string", "pattern": timeslotPattern},
			},
			"kartSelections": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"kart", "quantity", "pricePerSlot"},
					"properties": bson.M{
						"quantity": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
					},
				},
			},
			"status": bson.M{
				"enum": []string{"pending", "confirmed", "cancelled"},
			},
			"emailSent": bson.M{"bsonType": "bool"},
		},
	},
}

// namespaceExists is the server code for creating a collection twice.
const namespaceExists = 48

// EnsureSchema creates the bookings validator and the indexes the stores
// rely on. It is safe to run on every start.
func EnsureSchema(ctx context.Context, database *mongo.Database) error {
	opts := options.CreateCollection().
		SetValidator(BookingValidator).
		SetValidationLevel("moderate")
	err := database.CreateCollection(ctx, "bookings", opts)
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == namespaceExists {
		err = database.RunCommand(ctx, bson.D{
			{Key: "collMod", Value: "bookings"},
			{Key: "validator", Value: BookingValidator},
			{Key: "validationLevel", Value: "moderate"},
		}).Err()
	}
	if err != nil {
		return fmt.Errorf("bookings validator: %w", err)
	}

	caseInsensitive := &options.Collation{Locale: "en", Strength: 2}
	indexes := map[string][]mongo.IndexModel{
		"bookings": {
			{Keys: bson.D{{Key: "date", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}}},
			{Keys: bson.D{{Key: "emailSent", Value: 1}, {Key: "status", Value: 1}}},
		},
		"karts": {
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "name", Value: 1}}},
		},
		"kartTypes": {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive)},
		},
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, idx := range indexes {
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("indexes on %s: %w", coll, err)
		}
	}
	log.Printf("[DB] schema ensured")
	return nil
}
