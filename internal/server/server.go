// Package server contains the HTTP handlers for the application's API
// endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bullpen/internal/cache"
	"bullpen/internal/config"
	"bullpen/internal/database"
	"bullpen/internal/middleware"
	"bullpen/internal/models"
	"bullpen/internal/moderation"
	"bullpen/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// The Prometheus middleware registers its collectors in the default registry,
// so it is created once per process regardless of how many servers tests
// spin up.
var (
	promOnce       sync.Once
	promMiddleware *fiberprometheus.FiberPrometheus
)

func prometheusMiddleware() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMiddleware = fiberprometheus.New("bullpen-api")
	})
	return promMiddleware
}

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	prom           *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	messageRepo    repository.MessageRepository
	actionRepo     repository.ActionRepository
	statusRepo     repository.StatusRepository
	engine         *moderation.Engine
}

// NewServer creates a server instance, establishing the database and Redis
// connections itself.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient, err := cache.Connect(cfg.RedisURL)
	if err != nil {
		// The engine fails open on counter-store errors, so a missing Redis
		// degrades rate limiting and dedupe instead of blocking startup.
		slog.Warn("redis unavailable, continuing degraded", "err", err)
		redisClient = nil
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests and bootstrap layers use this directly.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	actionRepo := repository.NewActionRepository(db)
	statusRepo := repository.NewStatusRepository(db)

	engineOpts := []moderation.Option{}
	if cfg.PatternFile != "" {
		set, err := moderation.LoadPatternFile(cfg.PatternFile)
		if err != nil {
			return nil, fmt.Errorf("loading moderation pattern file: %w", err)
		}
		engineOpts = append(engineOpts, moderation.WithClassifiers(set))
	}

	engine := moderation.NewEngine(
		cache.NewStore(redisClient),
		actionRepo,
		statusRepo,
		messageRepo,
		engineOpts...,
	)

	middleware.InitMiddleware(cfg)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		prom:           prometheusMiddleware(),
		userRepo:       userRepo,
		messageRepo:    messageRepo,
		actionRepo:     actionRepo,
		statusRepo:     statusRepo,
		engine:         engine,
	}, nil
}

// Engine exposes the moderation engine for bootstrap wiring (sweep loops).
func (s *Server) Engine() *moderation.Engine {
	return s.engine
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(middleware.ContextMiddleware())

	if s.prom != nil {
		app.Use(s.prom.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

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

	// Transport-level safety net; the per-user chat limiter lives in the
	// moderation engine.
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

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.prom != nil {
		s.prom.RegisterAt(app, "/metrics")
	}

	chat := api.Group("/chat", middleware.AuthRequired)
	chat.Post("/messages", s.PostMessage)
	chat.Get("/rooms/:id/messages", s.ListRoomMessages)
	chat.Get("/status", s.GetOwnStatus)

	mod := api.Group("/moderation", middleware.AuthRequired, s.AdminRequired(),
		middleware.RateLimitWithPolicy(s.redis, 60, time.Minute, middleware.FailOpen, "moderation"))
	mod.Post("/analyze", s.AnalyzeMessage)
	mod.Get("/users/:id/status", s.GetUserStatus)
	mod.Get("/users/:id/actions", s.ListUserActions)
	mod.Post("/users/:id/actions", s.ExecuteUserAction)
	mod.Post("/cleanup", s.RunCleanup)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
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
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		user, err := s.userRepo.GetByID(c.UserContext(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !user.IsAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// Shutdown releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			slog.WarnContext(ctx, "redis close failed", "err", err)
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
