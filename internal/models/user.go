package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user role in the platform.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AuthProvider identifies how a user authenticates.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
	ProviderApple  AuthProvider = "apple"
)

// User represents a platform user. Email uniquely identifies a user
// regardless of auth provider.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password,omitempty" json:"-"`
	FirstName      string             `bson:"firstName" json:"firstName"`
	LastName       string             `bson:"lastName" json:"lastName"`
	ProfilePicture string             `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	AuthProvider   AuthProvider       `bson:"authProvider" json:"authProvider"`
	GoogleID       string             `bson:"googleId,omitempty" json:"-"`
	Role           Role               `bson:"role" json:"role"`
	DarkMode       bool               `bson:"darkMode" json:"darkMode"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID             primitive.ObjectID `json:"id"`
	Email          string             `json:"email"`
	FirstName      string             `json:"firstName"`
	LastName       string             `json:"lastName"`
	ProfilePicture string             `json:"profilePicture,omitempty"`
	Role           Role               `json:"role"`
	DarkMode       bool               `json:"darkMode"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
		Role:           u.Role,
		DarkMode:       u.DarkMode,
		CreatedAt:      u.CreatedAt,
	}
}
