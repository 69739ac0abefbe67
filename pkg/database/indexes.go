package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the queries depend on. Safe to run on
// every startup; existing indexes are left untouched.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	// Unique email lookup for find-or-create on login.
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	// 2dsphere index backing $near radius search.
	_, err = db.Collection("places").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	})
	if err != nil {
		return fmt.Errorf("places location index: %w", err)
	}

	_, err = db.Collection("events").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "place", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("events indexes: %w", err)
	}
	return nil
}
