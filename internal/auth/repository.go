package auth

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plana-app/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a user repository over the users collection.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection("users")}
}

// NormalizeEmail lowercases and trims an email address. Email is the
// cross-provider identity key, so every lookup goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns a user by normalized email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user, filling timestamps and defaults.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.AuthProvider == "" {
		u.AuthProvider = models.ProviderLocal
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return err
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// UpsertGoogle finds a user by the verified profile's email or creates one.
// An existing user keeps its id, role and creation timestamp; name, picture
// and the Google subject id are refreshed from the provider.
func (r *Repository) UpsertGoogle(ctx context.Context, p *GoogleProfile) (*models.User, error) {
	existing, err := r.GetByEmail(ctx, p.Email)
	if err == mongo.ErrNoDocuments {
		u := &models.User{
			Email:          p.Email,
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			ProfilePicture: p.Picture,
			AuthProvider:   models.ProviderGoogle,
			GoogleID:       p.Subject,
			Role:           models.RoleUser,
		}
		if err := r.Create(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	}
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"googleId":  p.Subject,
		"updatedAt": time.Now().UTC(),
	}
	if p.FirstName != "" {
		set["firstName"] = p.FirstName
	}
	if p.LastName != "" {
		set["lastName"] = p.LastName
	}
	if p.Picture != "" {
		set["profilePicture"] = p.Picture
	}
	var u models.User
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": existing.ID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateSettings updates the user's own name and dark-mode preference,
// returning the updated record.
func (r *Repository) UpdateSettings(ctx context.Context, id primitive.ObjectID, firstName, lastName string, darkMode bool) (*models.User, error) {
	var u models.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"firstName": firstName,
			"lastName":  lastName,
			"darkMode":  darkMode,
			"updatedAt": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
