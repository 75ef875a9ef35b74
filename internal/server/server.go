package server

import (
	"fmt"
	"net/http"
	"time"

	"carvedrock/internal/config"
	"carvedrock/internal/database"
	"carvedrock/internal/events"
	custommiddleware "carvedrock/internal/middleware"
	"carvedrock/internal/repository"
	"carvedrock/internal/service"
	"carvedrock/internal/transport"
	"carvedrock/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the long-lived resources the API server owns and closes.
type Dependencies struct {
	DB        database.Service
	Publisher events.Publisher
	Redis     *redis.Client // nil disables rate limiting
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, deps),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		deps:   deps,
	}
}

// NewRouter wires repositories, services and handlers onto a chi router
func NewRouter(cfg *config.Config, logger *zap.Logger, deps Dependencies) http.Handler {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))

	if deps.Redis != nil {
		router.Use(custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.Redis.RequestsPerWindow,
			Window:            cfg.Redis.Window,
			KeyPrefix:         "carvedrock:ratelimit",
		}, logger))
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := deps.DB.Health(r.Context())
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})

	productRepo := repository.NewProductRepository(deps.DB.Gorm(), logger)
	productService := service.NewProductService(productRepo, deps.Publisher, logger)
	productValidator := validation.NewProductValidator(productRepo, logger)
	productHandler := transport.NewProductHandler(productService, productValidator, logger)

	productHandler.RegisterRoutes(router,
		custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger),
		custommiddleware.RequireRole(cfg.JWT.WriteRoles, logger),
	)

	return router
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if err := s.deps.Publisher.Close(); err != nil {
		s.logger.Error("Failed to close event publisher", zap.Error(err))
	}

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
