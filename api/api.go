package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sahilchouksey/examace-vault/utils/middleware"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
	log           zerolog.Logger
}

func NewAPIServer(listenAddress string, logger zerolog.Logger) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:               "ExamAce Vault",
			ErrorHandler:          middleware.ErrorBoundary(logger),
			ReadTimeout:           15 * time.Second,
			WriteTimeout:          30 * time.Second,
			IdleTimeout:           60 * time.Second,
			BodyLimit:             64 * 1024,
			DisableStartupMessage: true,
		}),
		listenAddress: listenAddress,
		log:           logger,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

// Run blocks until the listener stops
func (s *APIServer) Run() error {
	s.log.Info().Str("address", s.listenAddress).Msg("starting API server")
	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
