// Package server contains the HTTP handlers of the forum.
package server

import (
	"context"
	"errors"
	"time"

	"forum/internal/authz"
	"forum/internal/cache"
	"forum/internal/config"
	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/repository"
	"forum/internal/service"

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
	tokens         *middleware.TokenManager
	postService    *service.PostService
	commentService *service.CommentService
	reportService  *service.ReportService
	userService    *service.UserService
	posts          ownedEntity
	comments       ownedEntity
	postReports    reportTarget
	commentReports reportTarget
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; rate limiting then fails open and logout cannot
// revoke tokens.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reportRepo := repository.NewReportRepository(db)

	authorizer := authz.AuthorOnly{}
	userService := service.NewUserService(userRepo)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("forum-api"),
		tokens: middleware.NewTokenManager(
			cfg.JWTSecret,
			time.Duration(cfg.JWTTTLHours)*time.Hour,
			cache.NewTokenBlacklist(redisClient),
		),
		userService:    userService,
		postService:    service.NewPostService(postRepo, commentRepo, userRepo, authorizer, userService.IsBanned),
		commentService: service.NewCommentService(commentRepo, postRepo, authorizer, userService.IsBanned),
		reportService:  service.NewReportService(reportRepo, postRepo, commentRepo, userService.IsBanned),
	}
	s.configureEntities()

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so throttled responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
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
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	auth := app.Group("/api/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, middleware.RateLimitRule{
		Name: "signup", Limit: 3, Window: 10 * time.Minute,
	}), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, middleware.RateLimitRule{
		Name: "login", Limit: 10, Window: 5 * time.Minute,
	}), s.Login)
	auth.Post("/logout", middleware.AuthRequired(s.tokens), s.Logout)

	forum := app.Group("", middleware.OptionalAuth(s.tokens))

	createPost := middleware.RateLimit(s.redis, middleware.RateLimitRule{Name: "create_post", Limit: 5, Window: 5 * time.Minute})
	createComment := middleware.RateLimit(s.redis, middleware.RateLimitRule{Name: "create_comment", Limit: 10, Window: time.Minute})
	fileReport := middleware.RateLimit(s.redis, middleware.RateLimitRule{Name: "report", Limit: 10, Window: 10 * time.Minute})

	forum.Get("/", s.ListPosts)
	forum.Get("/user/:username", s.ListUserPosts)

	// /post/new must be registered before the generic /post/:id routes.
	forum.Get("/post/new", s.NewPostForm)
	forum.Post("/post/new", createPost, s.CreatePost)

	forum.Get("/post/:id/update", s.editForm(&s.posts))
	forum.Post("/post/:id/update", s.update(&s.posts))
	forum.Get("/post/:id/delete", s.deleteConfirm(&s.posts))
	forum.Post("/post/:id/delete", s.remove(&s.posts))
	forum.Get("/post/:id/report", s.reportForm(&s.postReports))
	forum.Post("/post/:id/report", fileReport, s.report(&s.postReports))
	forum.Get("/post/:id", s.PostDetail)
	forum.Post("/post/:id", createComment, s.CreateComment)

	forum.Get("/comment/:id/update", s.editForm(&s.comments))
	forum.Post("/comment/:id/update", s.update(&s.comments))
	forum.Get("/comment/:id/delete", s.deleteConfirm(&s.comments))
	forum.Post("/comment/:id/delete", s.remove(&s.comments))
	forum.Get("/comment/:id/report", s.reportForm(&s.commentReports))
	forum.Post("/comment/:id/report", fileReport, s.report(&s.commentReports))
}

// NewApp builds the Fiber application with middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Forum API",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return models.RespondWithError(c, fe.Code, models.NewNotFoundError("Route", c.Path()))
		case fiber.StatusMethodNotAllowed:
			return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
		}
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled request error", "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
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
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
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
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
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

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
