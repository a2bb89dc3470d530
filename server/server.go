// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"murmur/cache"
	"murmur/config"
	"murmur/database"
	"murmur/middleware"
	"murmur/models"
	"murmur/notifications"
	"murmur/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	roomRepo       repository.RoomRepository
	listRepo       repository.ListRepository
	settingsRepo   repository.SettingsRepository
	analyticsRepo  repository.AnalyticsRepository
	notifier       *notifications.Notifier
	roomHub        *notifications.RoomHub
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Initialize Redis
	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	server := NewServerWithDeps(cfg, db, redisClient)

	// Prometheus metrics registered once per process. Tests wire the server
	// through NewServerWithDeps and skip this.
	server.promMiddleware = fiberprometheus.New("murmur-api")

	return server, nil
}

// NewServerWithDeps wires a server from pre-built dependencies. Tests use it
// with an in-memory database and no Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	server := &Server{
		config:        cfg,
		db:            db,
		redis:         redisClient,
		userRepo:      repository.NewUserRepository(db),
		postRepo:      repository.NewPostRepository(db),
		roomRepo:      repository.NewRoomRepository(db),
		listRepo:      repository.NewListRepository(db),
		settingsRepo:  repository.NewSettingsRepository(db),
		analyticsRepo: repository.NewAnalyticsRepository(db),
	}

	server.notifier = notifications.NewNotifier(redisClient)
	if redisClient != nil {
		server.roomHub = notifications.NewRoomHub()
	}

	return server
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Request ID for tracing
	app.Use(requestid.New())

	// Prometheus HTTP metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	// CORS middleware with WebSocket support
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health check
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus scrapes
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Feed routes (public; viewer flags attach when a token is present)
	feed := api.Group("/feed")
	feed.Get("/replies/:parentId", s.GetRepliesFeed)
	feed.Get("/custom", s.GetCustomFeed)
	feed.Get("/:type", s.GetFeed)

	// Public post and search routes
	api.Get("/posts/:id", s.GetPost)
	search := api.Group("/search")
	search.Get("/posts", middleware.RateLimit(s.redis, 10, time.Minute, "search"), s.SearchPosts)
	search.Get("/users", middleware.RateLimit(s.redis, 10, time.Minute, "search"), s.SearchUsers)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// Post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Post("/:id/unlike", s.UnlikePost)
	posts.Post("/:id/repost", s.RepostPost)
	posts.Post("/:id/unrepost", s.UnrepostPost)
	posts.Post("/:id/bookmark", s.BookmarkPost)
	posts.Post("/:id/unbookmark", s.UnbookmarkPost)
	posts.Delete("/:id", s.DeletePost)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Post("/:id/follow", middleware.RateLimit(s.redis, 30, 5*time.Minute, "follow"), s.FollowUser)
	users.Delete("/:id/follow", s.UnfollowUser)
	users.Get("/:id", s.GetUserProfile)

	// Room routes
	rooms := protected.Group("/rooms")
	rooms.Post("/", s.CreateRoom)
	rooms.Get("/", s.GetLiveRooms)
	rooms.Post("/:id/start", s.StartRoom)
	rooms.Post("/:id/join", s.JoinRoom)
	rooms.Post("/:id/leave", s.LeaveRoom)
	rooms.Post("/:id/end", s.EndRoom)
	rooms.Get("/:id", s.GetRoom)

	// List routes
	lists := protected.Group("/lists")
	lists.Post("/", s.CreateList)
	lists.Get("/", s.GetMyLists)
	lists.Get("/:id/feed", s.GetListFeed)
	lists.Post("/:id/members/:userId", s.AddListMember)
	lists.Delete("/:id/members/:userId", s.RemoveListMember)
	lists.Put("/:id", s.UpdateList)
	lists.Delete("/:id", s.DeleteList)
	lists.Get("/:id", s.GetList)

	// Settings routes
	settings := protected.Group("/settings")
	settings.Get("/:key", s.GetSettings)
	settings.Put("/:key", s.PutSettings)

	// Insights
	protected.Get("/insights/me", s.GetMyInsights)

	// Websocket endpoint for room events - protected by AuthRequired
	ws := api.Group("/ws", s.AuthRequired())
	ws.Get("/rooms", s.WebSocketRoomHandler())
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Murmur API",
		"version": "1.0.0",
		"status":  "healthy",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Extract token from "Bearer <token>" or "token" query parameter (for WebSockets)
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, err := s.parseToken(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(err.Error()))
		}

		// Store user ID in context
		c.Locals("userID", userID)

		return c.Next()
	}
}

// parseToken validates a JWT and returns the subject user ID.
func (s *Server) parseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "murmur-api" {
		return "", fmt.Errorf("invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "murmur-client" {
		return "", fmt.Errorf("invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("invalid subject claim")
	}

	return sub, nil
}

// optionalUserID attempts to extract userID from Authorization header but does not enforce it.
func (s *Server) optionalUserID(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	userID, err := s.parseToken(parts[1])
	if err != nil {
		return "", false
	}
	return userID, true
}

// generateToken creates a JWT token for the given user ID
func (s *Server) generateToken(userID string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,                              // Subject (user ID)
		"iss": "murmur-api",                        // Issuer
		"aud": "murmur-client",                     // Audience
		"exp": now.Add(time.Hour * 24 * 7).Unix(),  // Expiration (7 days)
		"iat": now.Unix(),                          // Issued at
		"nbf": now.Unix(),                          // Not before
		"jti": s.generateJTI(),                     // JWT ID (unique identifier)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Murmur API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire room hub to Redis subscriber if available
	if s.roomHub != nil && s.notifier != nil {
		go func() {
			if err := s.roomHub.StartWiring(context.Background(), s.notifier); err != nil {
				log.Printf("failed to start room hub wiring: %v", err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.roomHub != nil {
		if err := s.roomHub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down room hub: %v", err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
