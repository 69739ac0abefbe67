package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/plana-app/backend/internal/auth"
	"github.com/plana-app/backend/pkg/response"
)

const (
	// ContextUserID is the key for the caller's ObjectID in gin context.
	ContextUserID = "user_id"
	// ContextUserRole is the key for the caller's role in gin context.
	ContextUserRole = "user_role"
	// ContextUserEmail is the key for the caller's email in gin context.
	ContextUserEmail = "user_email"
)

// JWT returns a middleware that validates the bearer token and sets typed
// user claims in context. It short-circuits protected handlers on failure.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated caller's id from context.
func UserID(c *gin.Context) primitive.ObjectID {
	return c.MustGet(ContextUserID).(primitive.ObjectID)
}
