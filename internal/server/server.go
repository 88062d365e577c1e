// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/featureflags"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/scheduler"
	"inkwell/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	scheduler      *scheduler.Scheduler
	featureFlags   *featureflags.Manager
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	archiveRepo repository.ArchiveRepository
	imageRepo   repository.ImageRepository

	userService    *service.UserService
	postService    *service.PostService
	archiveService *service.ArchiveService
	imageService   *service.ImageService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return NewServerWithDeps(cfg, db), nil
}

// NewServerWithDeps creates a Server using an already-initialized database.
// Tests use this with an in-memory SQLite handle.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB) *Server {
	s := &Server{
		config:         cfg,
		db:             db,
		promMiddleware: middleware.InitMetrics("inkwell-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		archiveRepo:    repository.NewArchiveRepository(db),
		imageRepo:      repository.NewImageRepository(db),
	}

	s.userService = service.NewUserService(s.userRepo, cfg.JWTSecret)
	s.postService = service.NewPostService(s.postRepo)
	s.archiveService = service.NewArchiveService(s.postRepo, s.archiveRepo)
	s.imageService = service.NewImageService(s.imageRepo, cfg)
	s.scheduler = scheduler.New(s.postRepo, cfg.SchedulerInterval, middleware.Logger)

	return s
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and identity
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	app.Use(middleware.TracingMiddleware())

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
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health check
	app.Get("/health", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(3, 10*time.Minute), s.Register)
	auth.Post("/login", middleware.RateLimit(10, 5*time.Minute), s.Login)
	auth.Get("/me", middleware.AuthRequired, s.GetMe)

	// Public post routes. Reads carry optional identity so authors can see
	// their own unpublished work through the same endpoints.
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)

	// Specific routes before the generic /:id route
	posts.Get("/author/:author", middleware.AuthRequired, s.GetAuthorPosts)
	posts.Get("/archives", middleware.AuthRequired, s.GetArchivedPosts)
	posts.Post("/archive/:id", middleware.AuthRequired, s.ArchivePost)
	posts.Post("/restore/:uid", middleware.AuthRequired, s.RestorePost)

	posts.Get("/:id", middleware.OptionalAuth, s.GetPost)
	posts.Post("/", middleware.AuthRequired, middleware.RateLimit(10, time.Minute), s.CreatePost)
	posts.Put("/:id", middleware.AuthRequired, s.UpdatePost)
	posts.Delete("/:id", middleware.AuthRequired, s.DeletePost)

	// Image upload and serving
	api.Post("/images", middleware.AuthRequired, middleware.RateLimit(20, time.Minute), s.UploadImage)
	app.Get("/media/i/:hash/:file", s.ServeImage)
}

// HealthCheck handles health probe requests
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
		},
		"time": time.Now(),
	})
}

// Start starts the server and the publish scheduler.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Inkwell API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, models.StatusForError(err), err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	s.scheduler.Start(s.shutdownCtx)

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.scheduler != nil {
		s.scheduler.Stop()
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
