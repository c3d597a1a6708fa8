package server

import (
	"backend-rollpath/internal/auth"
	"backend-rollpath/internal/config"
	"backend-rollpath/internal/journeys"
	"backend-rollpath/internal/stream"
	"backend-rollpath/internal/tracking"
	"backend-rollpath/internal/triplog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	trips := triplog.New(s.Cfg.TripLogURL)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	tracking.RegisterRoutes(s.App.Group("/tracking"),
		tracking.NewService(s.DB, s.Stream, trips, s.Cfg.EnginePreset, s.Cfg.SpeedLimitMps), jwtMiddleware)
	journeys.RegisterRoutes(s.App.Group("/journeys"), journeys.NewService(s.DB), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
