package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validPlace() *Place {
	return &Place{
		Name:     "The Grand Hall",
		Address:  "123 Main St, San Francisco, CA 94105",
		Location: NewGeoPoint(-122.419416, 37.774929),
		Types:    []string{"Concert Hall"},
		Capacity: 500,
		Picture:  "https://example.com/grand-hall.jpg",
		Link:     "https://grandhall.com",
	}
}

func TestPlaceValidateOK(t *testing.T) {
	require.NoError(t, validPlace().Validate())
}

func TestPlaceValidateCoordinates(t *testing.T) {
	tests := []struct {
		name string
		lng  float64
		lat  float64
	}{
		{"longitude too low", -180.01, 0},
		{"longitude too high", 180.01, 0},
		{"latitude too low", 0, -90.01},
		{"latitude too high", 0, 90.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPlace()
			p.Location = NewGeoPoint(tt.lng, tt.lat)
			assert.Error(t, p.Validate())
		})
	}

	t.Run("boundary values pass", func(t *testing.T) {
		p := validPlace()
		p.Location = NewGeoPoint(-180, 90)
		assert.NoError(t, p.Validate())
	})

	t.Run("wrong arity", func(t *testing.T) {
		p := validPlace()
		p.Location = GeoPoint{Type: "Point", Coordinates: []float64{1}}
		assert.Error(t, p.Validate())
	})
}

func TestPlaceValidateTypes(t *testing.T) {
	p := validPlace()
	p.Types = nil
	require.EqualError(t, p.Validate(), "at least one place type is required")

	p = validPlace()
	p.Types = []string{"Spaceport"}
	require.Error(t, p.Validate())
}

func TestPlaceValidateCapacity(t *testing.T) {
	p := validPlace()
	p.Capacity = 0
	assert.EqualError(t, p.Validate(), "capacity must be positive")
}

func TestPlaceValidateLink(t *testing.T) {
	p := validPlace()
	p.Link = "not a url"
	assert.EqualError(t, p.Validate(), "invalid link URL")

	p = validPlace()
	p.Link = ""
	assert.NoError(t, p.Validate())
}

func validEvent() *Event {
	return &Event{
		Name:        "Jazz Night",
		PlaceID:     primitive.NewObjectID(),
		Category:    "Music",
		Date:        time.Now().Add(48 * time.Hour),
		Price:       25,
		OrganizerID: primitive.NewObjectID(),
	}
}

func TestEventValidateOK(t *testing.T) {
	require.NoError(t, validEvent().Validate(time.Now()))
}

func TestEventValidateFutureDate(t *testing.T) {
	now := time.Now()

	e := validEvent()
	e.Date = now.Add(-time.Minute)
	require.EqualError(t, e.Validate(now), "event date must be in the future")

	e = validEvent()
	e.Date = now
	require.Error(t, e.Validate(now), "date equal to now is not strictly future")

	// Zero now skips the rule: updates keep past-dated events editable.
	e = validEvent()
	e.Date = now.Add(-time.Hour)
	require.NoError(t, e.Validate(time.Time{}))
}

func TestEventValidatePrice(t *testing.T) {
	e := validEvent()
	e.Price = -1
	assert.EqualError(t, e.Validate(time.Now()), "price cannot be negative")

	e = validEvent()
	e.Price = 0
	assert.NoError(t, e.Validate(time.Now()))
}

func TestEventValidateCategory(t *testing.T) {
	e := validEvent()
	e.Category = "Knitting"
	assert.Error(t, e.Validate(time.Now()))

	e = validEvent()
	e.Category = ""
	assert.NoError(t, e.Validate(time.Now()), "category is optional")
}

func TestEventValidatePlaceRef(t *testing.T) {
	e := validEvent()
	e.PlaceID = primitive.NilObjectID
	assert.EqualError(t, e.Validate(time.Now()), "place reference is required")
}

func TestEventIsFull(t *testing.T) {
	e := validEvent()
	e.Capacity = 0
	e.AttendeeIDs = []primitive.ObjectID{primitive.NewObjectID()}
	assert.False(t, e.IsFull(), "capacity 0 means unlimited")

	e.Capacity = 1
	assert.True(t, e.IsFull())
}

func TestUserToPublicOmitsSecrets(t *testing.T) {
	u := &User{
		ID:        primitive.NewObjectID(),
		Email:     "alice@example.com",
		Password:  "$2a$10$hash",
		FirstName: "Alice",
		Role:      RoleUser,
		GoogleID:  "sub-123",
	}
	pub := u.ToPublic()
	assert.Equal(t, u.ID, pub.ID)
	assert.Equal(t, "alice@example.com", pub.Email)
}
