package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventCategories is the fixed set of event categories.
var EventCategories = []string{
	"Music",
	"Food & Drink",
	"Sports",
	"Art",
	"Technology",
	"Other",
}

// Event represents an occurrence at a place. The organizer is the user who
// created it; attendees are users who joined. Capacity 0 means unlimited.
type Event struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	PlaceID     primitive.ObjectID   `bson:"place" json:"placeId"`
	Category    string               `bson:"category,omitempty" json:"category,omitempty"`
	Date        time.Time            `bson:"date" json:"date"`
	Price       float64              `bson:"price" json:"price"`
	Capacity    int                  `bson:"capacity" json:"capacity"`
	Picture     string               `bson:"picture,omitempty" json:"picture,omitempty"`
	Link        string               `bson:"link,omitempty" json:"link,omitempty"`
	OrganizerID primitive.ObjectID   `bson:"organizer" json:"organizerId"`
	AttendeeIDs []primitive.ObjectID `bson:"attendees,omitempty" json:"attendeeIds,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`

	// Populated on reads, never persisted.
	Place     *Place      `bson:"-" json:"place,omitempty"`
	Organizer *UserPublic `bson:"-" json:"organizer,omitempty"`
}

// IsFull reports whether the attendee list has reached capacity.
func (e *Event) IsFull() bool {
	return e.Capacity > 0 && len(e.AttendeeIDs) >= e.Capacity
}

// Validate checks event fields, returning the first violated rule.
// The future-date rule is applied against now, so it runs at creation only.
func (e *Event) Validate(now time.Time) error {
	if e.Name == "" {
		return errors.New("event name is required")
	}
	if e.PlaceID.IsZero() {
		return errors.New("place reference is required")
	}
	if e.Date.IsZero() {
		return errors.New("event date is required")
	}
	if !now.IsZero() && !e.Date.After(now) {
		return errors.New("event date must be in the future")
	}
	if e.Price < 0 {
		return errors.New("price cannot be negative")
	}
	if e.Capacity < 0 {
		return errors.New("capacity cannot be negative")
	}
	if e.Category != "" && !validEventCategory(e.Category) {
		return errors.New("unknown event category: " + e.Category)
	}
	if err := validateURL(e.Picture); err != nil {
		return errors.New("invalid picture URL")
	}
	if err := validateURL(e.Link); err != nil {
		return errors.New("invalid link URL")
	}
	return nil
}

func validEventCategory(c string) bool {
	for _, v := range EventCategories {
		if v == c {
			return true
		}
	}
	return false
}
