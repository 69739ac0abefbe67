package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/plana-app/backend/internal/models"
	"github.com/plana-app/backend/pkg/response"
	"github.com/plana-app/backend/pkg/utils"
)

// UserStore is the persistence surface the auth handlers need.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpsertGoogle(ctx context.Context, p *GoogleProfile) (*models.User, error)
}

// GoogleRequest is the body for POST /api/auth/google.
type GoogleRequest struct {
	Credential string `json:"credential"`
}

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with the session token.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	store    UserStore
	verifier CredentialVerifier
	jwt      *JWTService
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(store UserStore, verifier CredentialVerifier, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{store: store, verifier: verifier, jwt: jwt, logger: logger}
}

// GoogleLogin handles POST /api/auth/google. It exchanges a Google ID token
// for a session token, creating or refreshing the user record by email.
func (h *Handler) GoogleLogin(c *gin.Context) {
	var req GoogleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Credential == "" {
		response.BadRequest(c, "no credential provided")
		return
	}

	profile, err := h.verifier.Verify(c.Request.Context(), req.Credential)
	if err != nil {
		h.logger.Warn("google credential rejected", zap.Error(err))
		response.Unauthorized(c, "authentication failed")
		return
	}

	user, err := h.store.UpsertGoogle(c.Request.Context(), profile)
	if err != nil {
		h.logger.Error("upsert google user", zap.Error(err))
		response.Internal(c, "failed to save user")
		return
	}

	token, err := h.jwt.Generate(user.ID.Hex(), user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Validate handles GET /api/auth/validate. The route is public; the token
// comes from the Authorization header and must still resolve to a user.
func (h *Handler) Validate(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		response.Unauthorized(c, "no token provided")
		return
	}

	claims, err := h.jwt.Validate(token)
	if err != nil {
		response.Unauthorized(c, "invalid token")
		return
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		response.Unauthorized(c, "invalid token")
		return
	}

	user, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Unauthorized(c, "user not found")
		return
	}

	response.OK(c, gin.H{"user": user.ToPublic()})
}

// Register handles POST /api/auth/register (local accounts).
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if _, err := h.store.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.BadRequest(c, "email already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user := &models.User{
		Email:        req.Email,
		Password:     hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		AuthProvider: models.ProviderLocal,
		Role:         models.RoleUser,
	}
	if err := h.store.Create(c.Request.Context(), user); err != nil {
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user.ID.Hex(), user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /api/auth/login. Unknown email and wrong password are
// indistinguishable to the caller.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.store.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID.Hex(), user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
