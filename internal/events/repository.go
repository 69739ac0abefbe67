package events

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plana-app/backend/internal/models"
)

var (
	// ErrAlreadyAttending is returned on a second attend by the same user.
	ErrAlreadyAttending = errors.New("already attending")
	// ErrEventFull is returned when the attendee list reached capacity.
	ErrEventFull = errors.New("event is full")
)

// Filter narrows List results.
type Filter struct {
	PlaceID  *primitive.ObjectID
	Category string
	Near     *NearFilter
}

// NearFilter restricts events to those at places within MaxDistance meters
// of the center.
type NearFilter struct {
	Lng, Lat    float64
	MaxDistance float64
}

// Repository handles event persistence. It reads the places and users
// collections to return denormalized, display-ready events.
type Repository struct {
	events *mongo.Collection
	places *mongo.Collection
	users  *mongo.Collection
}

// NewRepository creates an event repository.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		events: db.Collection("events"),
		places: db.Collection("places"),
		users:  db.Collection("users"),
	}
}

// Create inserts a new event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	res, err := r.events.InsertOne(ctx, e)
	if err != nil {
		return err
	}
	e.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID returns an event by ID with place and organizer populated.
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	if err := r.events.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, err
	}
	list := []models.Event{e}
	if err := r.populate(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// List returns events matching the filter, ordered by ascending date, with
// related resources populated.
func (r *Repository) List(ctx context.Context, f Filter) ([]models.Event, error) {
	filter := bson.M{}
	if f.PlaceID != nil {
		filter["place"] = *f.PlaceID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Near != nil {
		ids, err := r.nearbyPlaceIDs(ctx, f.Near)
		if err != nil {
			return nil, err
		}
		filter["place"] = bson.M{"$in": ids}
	}
	return r.find(ctx, filter, nil)
}

// Upcoming returns future events, ascending by date, capped at limit.
func (r *Repository) Upcoming(ctx context.Context, now time.Time, limit int64) ([]models.Event, error) {
	opts := options.Find().SetLimit(limit)
	return r.find(ctx, bson.M{"date": bson.M{"$gte": now}}, opts)
}

// Update replaces the mutable fields of an event and returns the updated,
// populated record, or mongo.ErrNoDocuments for an unknown id.
func (r *Repository) Update(ctx context.Context, id primitive.ObjectID, e *models.Event) (*models.Event, error) {
	var updated models.Event
	err := r.events.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":        e.Name,
			"description": e.Description,
			"place":       e.PlaceID,
			"category":    e.Category,
			"date":        e.Date,
			"price":       e.Price,
			"capacity":    e.Capacity,
			"picture":     e.Picture,
			"link":        e.Link,
			"updatedAt":   time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return nil, err
	}
	list := []models.Event{updated}
	if err := r.populate(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Delete removes an event by ID.
func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.events.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Attend adds the user to the event's attendee set. Attending twice fails
// with ErrAlreadyAttending; $addToSet keeps the set free of duplicates
// either way.
func (r *Repository) Attend(ctx context.Context, eventID, userID primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	if err := r.events.FindOne(ctx, bson.M{"_id": eventID}).Decode(&e); err != nil {
		return nil, err
	}
	for _, id := range e.AttendeeIDs {
		if id == userID {
			return nil, ErrAlreadyAttending
		}
	}
	if e.IsFull() {
		return nil, ErrEventFull
	}
	var updated models.Event
	err := r.events.FindOneAndUpdate(ctx,
		bson.M{"_id": eventID},
		bson.M{
			"$addToSet": bson.M{"attendees": userID},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return nil, err
	}
	list := []models.Event{updated}
	if err := r.populate(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *Repository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Event, error) {
	if opts == nil {
		opts = options.Find()
	}
	opts.SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := r.events.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var list []models.Event
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	if err := r.populate(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) nearbyPlaceIDs(ctx context.Context, near *NearFilter) ([]primitive.ObjectID, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": bson.A{near.Lng, near.Lat},
				},
				"$maxDistance": near.MaxDistance,
			},
		},
	}
	cur, err := r.places.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// populate attaches place details and organizer public profiles. Dangling
// place references stay nil rather than failing the read.
func (r *Repository) populate(ctx context.Context, list []models.Event) error {
	if len(list) == 0 {
		return nil
	}
	placeIDs := make([]primitive.ObjectID, 0, len(list))
	userIDs := make([]primitive.ObjectID, 0, len(list))
	for _, e := range list {
		if !e.PlaceID.IsZero() {
			placeIDs = append(placeIDs, e.PlaceID)
		}
		if !e.OrganizerID.IsZero() {
			userIDs = append(userIDs, e.OrganizerID)
		}
	}

	placeByID := make(map[primitive.ObjectID]*models.Place)
	if len(placeIDs) > 0 {
		cur, err := r.places.Find(ctx, bson.M{"_id": bson.M{"$in": placeIDs}})
		if err != nil {
			return err
		}
		var ps []models.Place
		if err := cur.All(ctx, &ps); err != nil {
			return err
		}
		for i := range ps {
			placeByID[ps[i].ID] = &ps[i]
		}
	}

	userByID := make(map[primitive.ObjectID]models.UserPublic)
	if len(userIDs) > 0 {
		cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
		if err != nil {
			return err
		}
		var us []models.User
		if err := cur.All(ctx, &us); err != nil {
			return err
		}
		for i := range us {
			userByID[us[i].ID] = us[i].ToPublic()
		}
	}

	for i := range list {
		if p, ok := placeByID[list[i].PlaceID]; ok {
			list[i].Place = p
		}
		if u, ok := userByID[list[i].OrganizerID]; ok {
			o := u
			list[i].Organizer = &o
		}
	}
	return nil
}
