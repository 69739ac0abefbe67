// Package main runs the Plana discovery API server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/plana-app/backend/config"
	"github.com/plana-app/backend/internal/auth"
	"github.com/plana-app/backend/internal/events"
	"github.com/plana-app/backend/internal/middleware"
	"github.com/plana-app/backend/internal/models"
	"github.com/plana-app/backend/internal/places"
	"github.com/plana-app/backend/internal/users"
	"github.com/plana-app/backend/pkg/database"
	"github.com/plana-app/backend/pkg/response"
)

func main() {
	logger := newLogger()
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

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	verifier := auth.NewGoogleVerifier(cfg.Google.ClientID)

	// Auth / users
	userRepo := auth.NewRepository(db)
	authHandler := auth.NewHandler(userRepo, verifier, jwtService, logger)
	userHandler := users.NewHandler(userRepo)

	// Places
	placeRepo := places.NewRepository(db)
	placeHandler := places.NewHandler(placeRepo)

	// Events
	eventRepo := events.NewRepository(db)
	eventHandler := events.NewHandler(eventRepo, placeRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	api := router.Group("/api")

	// Health
	api.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	// Auth (public; validate parses its own bearer token)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/google", authHandler.GoogleLogin)
		authGroup.GET("/validate", authHandler.Validate)
		authGroup.GET("/me", authHandler.Validate)
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Places: reads public, rectangle search behind bearer, mutation admin-only
	placeGroup := api.Group("/places")
	{
		placeGroup.GET("", placeHandler.List)
		placeGroup.GET("/search", placeHandler.Search)
		placeGroup.GET("/:id", placeHandler.GetByID)

		placeGroup.POST("/bounds", middleware.JWT(jwtService), placeHandler.Bounds)

		admin := placeGroup.Group("", middleware.JWT(jwtService), middleware.RequireRole(string(models.RoleAdmin)))
		admin.POST("", placeHandler.Create)
		admin.PUT("/:id", placeHandler.Update)
		admin.DELETE("/:id", placeHandler.Delete)
	}

	// Events: reads public, mutation behind bearer (organizer checks in handler)
	eventGroup := api.Group("/events")
	{
		eventGroup.GET("", eventHandler.List)
		eventGroup.GET("/upcoming", eventHandler.Upcoming)
		eventGroup.GET("/place/:placeId", eventHandler.ByPlace)
		eventGroup.GET("/:id", eventHandler.GetByID)

		protected := eventGroup.Group("", middleware.JWT(jwtService))
		protected.POST("", eventHandler.Create)
		protected.PUT("/:id", eventHandler.Update)
		protected.PATCH("/:id", eventHandler.Update)
		protected.DELETE("/:id", eventHandler.Delete)
		protected.POST("/:id/attend", eventHandler.Attend)
	}

	// User settings (own record only)
	api.PUT("/users/settings", middleware.JWT(jwtService), userHandler.UpdateSettings)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
