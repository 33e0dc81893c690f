// Package server exposes the façade over HTTP and streams notifications over WebSocket.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"studyhub/internal/cache"
	"studyhub/internal/config"
	"studyhub/internal/database"
	"studyhub/internal/featureflags"
	"studyhub/internal/identity"
	"studyhub/internal/middleware"
	"studyhub/internal/models"
	"studyhub/internal/notifications"
	"studyhub/internal/repository"
	"studyhub/internal/service"
	"studyhub/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	provider     *identity.LocalProvider
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	postService         *service.PostService
	notificationService *service.NotificationService
	courseService       *service.CourseService
	eventService        *service.EventService
	groupService        *service.GroupService
	discussionService   *service.DiscussionService
	resourceService     *service.ResourceService
	profileService      *service.ProfileService
	uploadService       *service.UploadService
}

// NewServer connects to the database and Redis and builds a Server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil Redis client disables caching, token revocation and cross-instance streaming.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)

	provider, err := identity.NewLocalProvider(userRepo, identity.Options{
		Secret:   cfg.JWTSecret,
		TokenTTL: cfg.TokenTTL(),
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("studyhub-api"),
		provider:       provider,
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	s.notificationService = service.NewNotificationService(
		repository.NewNotificationRepository(db), s.notifier, s.featureFlags)
	s.postService = service.NewPostService(
		repository.NewPostRepository(db),
		repository.NewCommentRepository(db),
		userRepo,
		s.notificationService,
	)
	s.courseService = service.NewCourseService(repository.NewCourseRepository(db))
	s.eventService = service.NewEventService(repository.NewEventRepository(db))
	s.groupService = service.NewGroupService(repository.NewGroupRepository(db))
	s.discussionService = service.NewDiscussionService(repository.NewDiscussionRepository(db))
	s.resourceService = service.NewResourceService(repository.NewResourceRepository(db))
	s.profileService = service.NewProfileService(userRepo)
	s.uploadService = service.NewUploadService(
		storage.NewLocalStore(cfg.StorageDir, cfg.StoragePublicURL), cfg.UploadMaxBytes())

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New(helmet.Config{
		// Uploaded files are embedded by the client from another origin.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, &models.AppError{
				Code:    models.CodeRateLimited,
				Message: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if s.config.StorageDir != "" {
		app.Static("/storage", s.config.StorageDir, fiber.Static{ByteRange: true})
	}

	api := app.Group("/api")
	optional := middleware.OptionalAuth(s.provider)
	required := middleware.AuthRequired(s.provider)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/session", s.GetSession)
	auth.Put("/password", required, s.UpdatePassword)

	// Specific /:id/:resource routes are registered before the generic /:id route.
	posts := api.Group("/posts")
	posts.Get("/", optional, s.GetPosts)
	posts.Post("/", required, middleware.RateLimit(s.redis, 5, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/saved", required, s.GetSavedPosts)
	posts.Post("/:id/like", required, s.TogglePostLike)
	posts.Post("/:id/save", required, s.ToggleSavePost)
	posts.Post("/:id/comments", required, middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.AddComment)
	posts.Get("/:id", optional, s.GetPostDetails)

	api.Get("/users/:id/posts", optional, s.GetUserPosts)

	courses := api.Group("/courses")
	courses.Get("/", s.GetAllCourses)
	courses.Post("/", required, s.CreateCourse)
	courses.Get("/mine", required, s.GetUserCourses)
	courses.Post("/:id/enroll", required, s.EnrollInCourse)
	courses.Delete("/:id/enroll", required, s.UnenrollFromCourse)
	courses.Get("/:id/enrollment", required, s.IsEnrolledInCourse)

	events := api.Group("/events")
	events.Get("/", s.GetAllEvents)
	events.Post("/", required, s.CreateEvent)
	events.Get("/mine", required, s.GetUserEvents)
	events.Put("/:id/attendance", required, s.UpdateEventAttendance)
	events.Get("/:id/attendance", required, s.GetEventAttendanceStatus)

	groups := api.Group("/groups")
	groups.Get("/", optional, s.GetStudyGroups)
	groups.Post("/", required, s.CreateGroup)
	groups.Post("/:id/join", required, s.JoinGroup)

	forums := api.Group("/forums")
	forums.Get("/", s.GetDiscussionForums)
	forums.Post("/", required, s.CreateForum)
	forums.Get("/:id/topics", s.GetForumTopics)
	forums.Post("/:id/topics", required, s.CreateDiscussionTopic)

	topics := api.Group("/topics")
	topics.Get("/:id/replies", s.GetTopicReplies)
	topics.Post("/:id/replies", required, s.CreateTopicReply)

	resources := api.Group("/resources")
	resources.Get("/", s.GetLearningResources)
	resources.Post("/", required, s.AddLearningResource)

	notifs := api.Group("/notifications", required)
	notifs.Get("/", s.GetUserNotifications)
	notifs.Get("/unread-count", s.GetUnreadNotificationCount)
	notifs.Post("/read-all", s.MarkAllNotificationsAsRead)
	notifs.Post("/:id/read", s.MarkNotificationAsRead)

	api.Post("/uploads/:bucket", required, middleware.RateLimit(s.redis, 20, time.Minute, "upload"), s.UploadFile)

	profile := api.Group("/profile", required)
	profile.Get("/", s.GetProfile)
	profile.Put("/", s.UpdateProfile)

	api.Get("/feature-flags", optional, s.GetFeatureFlags)

	app.Get("/ws/notifications", middleware.WebSocketAuthRequired(s.provider), s.NotificationStreamHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database and Redis answer a ping.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: without it the app runs uncached on a single instance.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
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

// newApp builds the Fiber app with middleware and routes installed.
func (s *Server) newApp() *fiber.App {
	bodyLimit := fiber.DefaultBodyLimit
	if upload := int(s.config.UploadMaxBytes()) + 1<<20; upload > bodyLimit {
		bodyLimit = upload
	}

	app := fiber.New(fiber.Config{
		AppName:   "StudyHub API",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.Envelope{
					Error: &models.ErrorBody{Code: models.CodeInternal, Message: fe.Message},
				})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "Unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start wires the notification hub to Redis and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.newApp()

	if s.redis != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("Failed to start notification wiring", slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("Error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("Error shutting down notification hub", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("Error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("Error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
