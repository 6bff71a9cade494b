package server

import (
	"backend-traillog/internal/auth"
	"backend-traillog/internal/config"
	"backend-traillog/internal/feed"
	"backend-traillog/internal/place"
	"backend-traillog/internal/route"
	"backend-traillog/internal/user"
	"backend-traillog/internal/visit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redis.Client
	Feed  *feed.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    db,
		Redis: redisClient,
		Feed:  feed.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	placeSvc := place.NewService(s.DB, s.Feed, s.Cfg.PublicBaseURL)
	routeSvc := route.NewService(s.DB)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	place.RegisterRoutes(s.App.Group("/places"), placeSvc, jwtMiddleware)
	route.RegisterRoutes(s.App.Group("/routes"), routeSvc, jwtMiddleware)
	visit.RegisterRoutes(s.App.Group("/visits"), visit.NewService(s.DB, s.Feed), jwtMiddleware)
	user.RegisterRoutes(s.App.Group("/users"), user.NewService(s.DB), placeSvc, routeSvc, jwtMiddleware)
	feed.RegisterRoutes(s.App.Group("/feed"), s.Feed)
}
