package web

import (
	"fmt"
	"net/http"
	"time"

	"carvedrock/internal/client"
	"carvedrock/internal/config"
	custommiddleware "carvedrock/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	logger *zap.Logger
}

// NewServer builds the front-end HTTP server listening on WEB_PORT
func NewServer(cfg *config.Config, logger *zap.Logger, products client.ProductClient) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Web.Port),
			Handler:      NewRouter(logger, products),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func NewRouter(logger *zap.Logger, products client.ProductClient) http.Handler {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "up"})
	})

	NewHandler(products, logger).RegisterRoutes(router)

	return router
}

func (s *Server) Close() error {
	s.logger.Info("Closing web server resources")
	s.logger.Sync()
	return nil
}
