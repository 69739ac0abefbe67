// Package main seeds the database with sample places and events.
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/plana-app/backend/config"
	"github.com/plana-app/backend/internal/events"
	"github.com/plana-app/backend/internal/models"
	"github.com/plana-app/backend/internal/places"
	"github.com/plana-app/backend/pkg/database"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	client, err := database.NewMongoClient(ctx, cfg.Mongo.URI, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.Mongo.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal("indexes", zap.Error(err))
	}

	// Start clean.
	if err := db.Collection("places").Drop(ctx); err != nil {
		logger.Fatal("drop places", zap.Error(err))
	}
	if err := db.Collection("events").Drop(ctx); err != nil {
		logger.Fatal("drop events", zap.Error(err))
	}

	placeRepo := places.NewRepository(db)
	samplePlaces := []*models.Place{
		{
			Name:     "The Grand Hall",
			Address:  "123 Main St, San Francisco, CA 94105",
			Location: models.NewGeoPoint(-122.419416, 37.774929),
			Types:    []string{"Concert Hall"},
			Capacity: 500,
			Picture:  "https://example.com/grand-hall.jpg",
			Link:     "https://grandhall.com",
		},
		{
			Name:     "City Park Amphitheater",
			Address:  "456 Park Ave, San Francisco, CA 94102",
			Location: models.NewGeoPoint(-122.431297, 37.769042),
			Types:    []string{"Park", "Theater"},
			Capacity: 1000,
			Picture:  "https://example.com/amphitheater.jpg",
			Link:     "https://sfparks.org/amphitheater",
		},
		{
			Name:     "The Blue Note Jazz Club",
			Address:  "789 Jazz St, San Francisco, CA 94103",
			Location: models.NewGeoPoint(-122.412223, 37.783579),
			Types:    []string{"Club", "Bar"},
			Capacity: 200,
			Picture:  "https://example.com/blue-note.jpg",
			Link:     "https://bluenotesf.com",
		},
	}
	for _, p := range samplePlaces {
		if err := p.Validate(); err != nil {
			logger.Fatal("invalid sample place", zap.String("name", p.Name), zap.Error(err))
		}
		if err := placeRepo.Create(ctx, p); err != nil {
			logger.Fatal("create place", zap.String("name", p.Name), zap.Error(err))
		}
	}

	eventRepo := events.NewRepository(db)
	now := time.Now()
	sampleEvents := []*models.Event{
		{
			Name:     "Summer Music Festival",
			PlaceID:  samplePlaces[0].ID,
			Category: "Music",
			Date:     now.AddDate(0, 2, 0),
			Price:    50,
			Picture:  "https://example.com/summer-fest.jpg",
			Link:     "https://summerfest.com",
		},
		{
			Name:     "Shakespeare in the Park",
			PlaceID:  samplePlaces[1].ID,
			Category: "Art",
			Date:     now.AddDate(0, 1, 0),
			Price:    0,
			Picture:  "https://example.com/shakespeare.jpg",
			Link:     "https://sfshakes.org",
		},
		{
			Name:     "Jazz Night",
			PlaceID:  samplePlaces[2].ID,
			Category: "Music",
			Date:     now.AddDate(0, 0, 14),
			Price:    25,
			Picture:  "https://example.com/jazz-night.jpg",
			Link:     "https://jazznight.com",
		},
	}
	for _, e := range sampleEvents {
		if err := eventRepo.Create(ctx, e); err != nil {
			logger.Fatal("create event", zap.String("name", e.Name), zap.Error(err))
		}
	}

	logger.Info("database seeded",
		zap.Int("places", len(samplePlaces)),
		zap.Int("events", len(sampleEvents)),
	)
}
