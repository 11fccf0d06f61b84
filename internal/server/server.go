// Package server contains the HTTP handlers for the community feed API.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"neighborly/internal/cache"
	"neighborly/internal/config"
	"neighborly/internal/database"
	"neighborly/internal/middleware"
	"neighborly/internal/models"
	"neighborly/internal/notifications"
	"neighborly/internal/observability"
	"neighborly/internal/repository"
	"neighborly/internal/service"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	pollRepo    repository.PollRepository
	commentRepo repository.CommentRepository

	dispatcher *notifications.Dispatcher
	notifier   *notifications.Notifier

	feedService    *service.FeedService
	postService    *service.PostService
	pollService    *service.PollService
	commentService *service.CommentService
	userService    *service.UserService
}

// NewServer creates a server instance, establishing its own database and
// Redis connections from the config.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return newServer(cfg, db, cache.GetClient()), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	return newServer(cfg, db, redisClient)
}

func newServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	s := &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		userRepo:    repository.NewUserRepository(db),
		postRepo:    repository.NewPostRepository(db),
		pollRepo:    repository.NewPollRepository(db),
		commentRepo: repository.NewCommentRepository(db),
	}

	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}

	gateway := notifications.NewExpoGateway(cfg.PushGatewayURL)
	s.dispatcher = notifications.NewDispatcher(s.userRepo, gateway, s.notifier, cfg.PushChunkSize)

	s.feedService = service.NewFeedService(s.postRepo, s.pollRepo)
	s.postService = service.NewPostService(s.postRepo, s.userRepo, s.dispatcher.DispatchAsync)
	s.pollService = service.NewPollService(s.pollRepo, s.userRepo, s.dispatcher.DispatchAsync)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo)
	s.userService = service.NewUserService(s.userRepo, gateway.IsValidAddress)

	return s
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	s.promMiddleware = observability.NewHTTPMetrics(app, "neighborly-api")
	app.Use(s.promMiddleware.Middleware)

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())
	app.Use(middleware.TracingMiddleware())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	// CORS runs before the limiter so browser clients still get CORS headers
	// on rate-limited responses.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

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
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", s.Signup)
	auth.Post("/login", s.Login)

	feed := api.Group("/feed", middleware.AuthRequired)
	feed.Get("/", s.GetFeed)
	feed.Get("/content/:id", s.GetContent)

	posts := api.Group("/posts", middleware.AuthRequired)
	posts.Post("/", s.CreatePost)
	posts.Get("/", s.GetFeed)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", s.DeletePost)
	posts.Put("/:id/pin", s.TogglePostPin)
	posts.Post("/:id/report", s.ReportPost)
	posts.Post("/:id/comments", s.AddComment)
	posts.Get("/:id/comments", s.GetComments)

	polls := api.Group("/polls", middleware.AuthRequired)
	polls.Post("/", s.CreatePoll)
	polls.Get("/:id", s.GetPoll)
	polls.Delete("/:id", s.DeletePoll)
	polls.Put("/:id/pin", s.TogglePollPin)
	polls.Post("/:id/vote", s.CastVote)

	users := api.Group("/users", middleware.AuthRequired)
	users.Get("/me", s.GetProfile)
	users.Put("/me", s.UpdateProfile)
	users.Put("/me/settings", s.UpdateSettings)
	users.Put("/me/push-token", s.UpdatePushToken)
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck reports whether the backing stores are reachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"db":     "unreachable",
		})
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "ok"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unreachable"
		}
	}

	return c.JSON(fiber.Map{"status": "ok", "db": "ok", "redis": redisStatus})
}

// Shutdown closes the server's backing connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// currentUser loads the authenticated principal set by the auth middleware.
func (s *Server) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return nil, models.NewUnauthenticatedError("Not authenticated")
	}
	return s.userRepo.GetByID(c.Context(), userID)
}
