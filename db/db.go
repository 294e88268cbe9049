package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	Client              *mongo.Client
	Database            *mongo.Database
	BookingsCollection  *mongo.Collection
	KartsCollection     *mongo.Collection
	KartTypesCollection *mongo.Collection
	SettingsCollection  *mongo.Collection
	UserCollection      *mongo.Collection
)

// Connect opens the MongoDB client and binds the collections.
func Connect(ctx context.Context, uri, dbName string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping MongoDB: %w", err)
	}

	Client = client
	Database = client.Database(dbName)
	BookingsCollection = Database.Collection("bookings")
	KartsCollection = Database.Collection("karts")
	KartTypesCollection = Database.Collection("kartTypes")
	SettingsCollection = Database.Collection("settings")
	UserCollection = Database.Collection("users")
	log.Printf("[DB] connected to %s", dbName)
	return nil
}

func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}
