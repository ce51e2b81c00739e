// Package api exposes the task operations as HTTP procedures.
package api

import (
	"context"
	"log"

	"tasklist/internal/task"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// TaskService is the set of operations the API binds to routes.
type TaskService interface {
	List(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, in task.CreateInput) (task.Task, error)
	Update(ctx context.Context, in task.UpdateInput) (task.Task, error)
	Delete(ctx context.Context, in task.DeleteInput) error
	Ping(ctx context.Context) error
}

// Server is the HTTP front end.
type Server struct {
	app *fiber.App
	svc TaskService
}

// New creates a Server with all routes registered.
func New(svc TaskService) *Server {
	s := &Server{
		svc: svc,
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ErrorHandler:          customErrorHandler,
		}),
	}

	s.app.Use(recover.New())
	s.app.Use(requestID)
	s.app.Use(logger.New(logger.Config{
		Format: "[api] ${locals:request_id} ${status} ${method} ${path} ${latency}\n",
		Output: log.Writer(),
	}))

	s.setupRoutes()
	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	log.Printf("[api] HTTP server listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("[api] Shutting down HTTP server...")
	return s.app.ShutdownWithContext(ctx)
}

// requestID tags each request with a correlation id, reusing the caller's
// X-Request-ID when present.
func requestID(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals(requestIDKey, id)
	c.Set(requestIDHeader, id)
	return c.Next()
}

func getRequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
