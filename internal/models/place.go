package models

import (
	"errors"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlaceTypes is the fixed set of venue categories.
var PlaceTypes = []string{
	"Restaurant",
	"Bar",
	"Club",
	"Theater",
	"Concert Hall",
	"Sports Venue",
	"Park",
	"Museum",
	"Gallery",
	"Other",
}

// GeoPoint is a GeoJSON Point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a Point from longitude and latitude.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Place represents a venue. Reads are public; writes are admin-only.
type Place struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Address   string             `bson:"address" json:"address"`
	Location  GeoPoint           `bson:"location" json:"location"`
	Types     []string           `bson:"types" json:"types"`
	Capacity  int                `bson:"capacity" json:"capacity"`
	Picture   string             `bson:"picture,omitempty" json:"picture,omitempty"`
	Link      string             `bson:"link,omitempty" json:"link,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks place fields, returning the first violated rule.
func (p *Place) Validate() error {
	if p.Name == "" {
		return errors.New("place name is required")
	}
	if p.Address == "" {
		return errors.New("address is required")
	}
	if len(p.Location.Coordinates) != 2 {
		return errors.New("coordinates must be [longitude, latitude]")
	}
	lng, lat := p.Location.Coordinates[0], p.Location.Coordinates[1]
	if lng < -180 || lng > 180 {
		return errors.New("longitude must be between -180 and 180")
	}
	if lat < -90 || lat > 90 {
		return errors.New("latitude must be between -90 and 90")
	}
	if len(p.Types) == 0 {
		return errors.New("at least one place type is required")
	}
	for _, t := range p.Types {
		if !validPlaceType(t) {
			return errors.New("unknown place type: " + t)
		}
	}
	if p.Capacity <= 0 {
		return errors.New("capacity must be positive")
	}
	if err := validateURL(p.Picture); err != nil {
		return errors.New("invalid picture URL")
	}
	if err := validateURL(p.Link); err != nil {
		return errors.New("invalid link URL")
	}
	return nil
}

func validPlaceType(t string) bool {
	for _, v := range PlaceTypes {
		if v == t {
			return true
		}
	}
	return false
}

func validateURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.New("missing scheme or host")
	}
	return nil
}
