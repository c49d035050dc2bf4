package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/logger"
	"github.com/sahilchouksey/scholarhub/utils/response"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
	log           *logger.Logger
}

// NewAPIServer creates the fiber app. Unhandled errors go through the same
// envelope as handler errors.
func NewAPIServer(listenAddress string, log *logger.Logger) *APIServer {
	app := fiber.New(fiber.Config{
		AppName:      "scholarhub-api",
		BodyLimit:    services.MaxDocumentSize + 1<<20,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return response.Error(c, fe.Code, fe.Message, "HTTP_ERROR")
			}
			return response.FromError(c, err)
		},
	})

	return &APIServer{
		app:           app,
		listenAddress: listenAddress,
		log:           log,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

// Run listens until the server is shut down
func (s *APIServer) Run() error {
	s.log.Info("starting API server", "address", s.listenAddress)
	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
