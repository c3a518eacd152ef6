// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gazette/internal/cache"
	"gazette/internal/config"
	"gazette/internal/database"
	"gazette/internal/events"
	"gazette/internal/mail"
	"gazette/internal/middleware"
	"gazette/internal/models"
	"gazette/internal/repository"
	"gazette/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "gazette-api"
	tokenAudience = "gazette-client"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	publisher      *events.Publisher
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo     repository.UserRepository
	authorRepo   repository.AuthorRepository
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	commentRepo  repository.CommentRepository

	authService     *service.AuthService
	authorService   *service.AuthorService
	postService     *service.PostService
	commentService  *service.CommentService
	categoryService *service.CategoryService
	ratingService   *service.RatingService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	return NewServerWithDeps(cfg, db, cache.GetClient(), mailer)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis/mailer.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, mailer mail.Mailer) (*Server, error) {
	shutdownCtx, shutdownFn := context.WithCancel(context.Background())

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("gazette-api"),
		publisher:      events.NewPublisher(redisClient),
		shutdownCtx:    shutdownCtx,
		shutdownFn:     shutdownFn,
		userRepo:       repository.NewUserRepository(db),
		authorRepo:     repository.NewAuthorRepository(db),
		postRepo:       repository.NewPostRepository(db),
		categoryRepo:   repository.NewCategoryRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
	}

	notifier := service.NewNotificationService(server.categoryRepo, mailer, cfg.SiteURL)
	server.authService = service.NewAuthService(server.userRepo)
	server.authorService = service.NewAuthorService(server.authorRepo, server.userRepo)
	server.postService = service.NewPostService(
		server.postRepo, server.categoryRepo, server.authorRepo, notifier, server.onPostSaved)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo, server.authorRepo)
	server.categoryService = service.NewCategoryService(server.categoryRepo, server.userRepo)
	server.ratingService = service.NewRatingService(server.authorRepo, server.postRepo)

	return server, nil
}

// onPostSaved runs after every acknowledged post write: it drops the local
// cache entry and announces the save so other instances drop theirs too.
func (s *Server) onPostSaved(ctx context.Context, postID uint) {
	cache.InvalidatePost(ctx, postID)
	if err := s.publisher.PublishPostSaved(ctx, postID); err != nil {
		middleware.Logger.WarnContext(ctx, "post-saved publish failed",
			"post_id", postID, "error", err)
	}
}

// StartBackground launches the post-saved subscriber and, when configured,
// the periodic author-rating sweep. Both stop when Shutdown is called.
func (s *Server) StartBackground() error {
	err := s.publisher.StartPostSavedSubscriber(s.shutdownCtx, func(ev events.PostSavedEvent) {
		cache.InvalidatePost(s.shutdownCtx, ev.PostID)
	})
	if err != nil {
		return fmt.Errorf("post-saved subscriber failed to start: %w", err)
	}

	if s.config.RatingSweepMinutes > 0 {
		interval := time.Duration(s.config.RatingSweepMinutes) * time.Minute
		go s.runRatingSweep(interval)
	}
	return nil
}

func (s *Server) runRatingSweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	middleware.Logger.Info("rating sweep started", "interval", interval.String())
	for {
		select {
		case <-s.shutdownCtx.Done():
			middleware.Logger.Info("rating sweep stopped")
			return
		case <-ticker.C:
			if err := s.ratingService.RecomputeAll(s.shutdownCtx); err != nil {
				middleware.Logger.Warn("rating sweep pass had failures", "error", err)
			}
		}
	}
}

// Shutdown stops background workers. The fiber app is shut down by the caller.
func (s *Server) Shutdown() {
	s.shutdownFn()
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID into UserContext
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Distributed tracing
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS runs before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public post routes (browse/search)
	publicPosts := api.Group("/posts")
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchPosts)
	publicPosts.Get("/:id/comments", s.GetComments)
	publicPosts.Get("/:id", s.GetPost)

	// Public category routes
	publicCategories := api.Group("/categories")
	publicCategories.Get("/", s.GetCategories)
	publicCategories.Get("/:id/posts", s.GetCategoryPosts)
	publicCategories.Get("/:id", s.GetCategory)

	// Public author routes
	api.Get("/authors/:id", s.GetAuthor)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// Author capability routes
	authors := protected.Group("/authors")
	authors.Post("/me", s.BecomeAuthor)
	authors.Get("/me", s.GetMyAuthor)
	authors.Post("/:id/recompute", s.RecomputeAuthorRating)

	// Protected post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	// Specific /:id/:resource routes BEFORE generic /:id routes
	posts.Post("/:id/like", s.LikePost)
	posts.Post("/:id/dislike", s.DislikePost)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	// Protected comment routes
	comments := protected.Group("/comments")
	comments.Post("/:id/like", s.LikeComment)
	comments.Post("/:id/dislike", s.DislikeComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	// Protected category routes
	categories := protected.Group("/categories")
	categories.Post("/", s.CreateCategory)
	categories.Post("/:id/subscribe", s.SubscribeCategory)
	categories.Post("/:id/unsubscribe", s.UnsubscribeCategory)
	categories.Delete("/:id", s.DeleteCategory)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
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
		// The app runs without Redis, it just loses caching and coherence.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
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
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		c.Locals("userID", uint(userID))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)
		return c.Next()
	}
}
