package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	// MongoClient is the shared MongoDB client
	MongoClient *mongo.Client
	// ProfilesCollection holds user profiles keyed by user_id
	ProfilesCollection *mongo.Collection
)

// InitMongo connects to MongoDB and resolves the profiles collection
func InitMongo(ctx context.Context, uri, database, collection string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoClient = client
	ProfilesCollection = client.Database(database).Collection(collection)
	slog.Info("✅ MongoDB connected", "database", database, "collection", collection)
	return nil
}

// MongoHealthCheck pings the primary
func MongoHealthCheck(ctx context.Context) error {
	if MongoClient == nil {
		return fmt.Errorf("MongoDB client is not initialized")
	}
	return MongoClient.Ping(ctx, readpref.Primary())
}

// CloseMongo disconnects the client if one is open
func CloseMongo(ctx context.Context) error {
	if MongoClient == nil {
		return nil
	}
	err := MongoClient.Disconnect(ctx)
	MongoClient = nil
	ProfilesCollection = nil
	return err
}
