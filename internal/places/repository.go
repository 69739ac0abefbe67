package places

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plana-app/backend/internal/models"
)

// Repository handles place persistence.
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a place repository over the places collection.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection("places")}
}

// Create inserts a new place.
func (r *Repository) Create(ctx context.Context, p *models.Place) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID returns a place by ID.
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Place, error) {
	var p models.Place
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all places.
func (r *Repository) List(ctx context.Context) ([]models.Place, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var list []models.Place
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Update replaces the mutable fields of a place and returns the updated
// record, or mongo.ErrNoDocuments for an unknown id.
func (r *Repository) Update(ctx context.Context, id primitive.ObjectID, p *models.Place) (*models.Place, error) {
	var updated models.Place
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":      p.Name,
			"address":   p.Address,
			"location":  p.Location,
			"types":     p.Types,
			"capacity":  p.Capacity,
			"picture":   p.Picture,
			"link":      p.Link,
			"updatedAt": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a place by ID. Events referencing it are left alone; the
// reference dangles until the event is deleted itself.
func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Nearby returns places within maxDistance meters of the center, ordered by
// increasing distance. Ordering is the store's native $near behavior.
func (r *Repository) Nearby(ctx context.Context, lng, lat, maxDistance float64) ([]models.Place, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": bson.A{lng, lat},
				},
				"$maxDistance": maxDistance,
			},
		},
	}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var list []models.Place
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// WithinBounds returns places inside the rectangle spanned by the south-west
// and north-east corners.
func (r *Repository) WithinBounds(ctx context.Context, swLng, swLat, neLng, neLat float64) ([]models.Place, error) {
	filter := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$box": bson.A{
					bson.A{swLng, swLat},
					bson.A{neLng, neLat},
				},
			},
		},
	}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var list []models.Place
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
