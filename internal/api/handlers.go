package api

import (
	"log"

	"tasklist/internal/task"

	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes. Procedure names follow the
// getTasks/createTask/updateTask/deleteTask contract.
func (s *Server) setupRoutes() {
	s.app.Get("/health", s.health)

	rpc := s.app.Group("/rpc")
	rpc.Get("/getTasks", s.getTasks)
	rpc.Post("/createTask", s.createTask)
	rpc.Post("/updateTask", s.updateTask)
	rpc.Post("/deleteTask", s.deleteTask)
}

// health handles GET /health.
func (s *Server) health(c *fiber.Ctx) error {
	if err := s.svc.Ping(c.UserContext()); err != nil {
		log.Printf("[api] %s health check failed: %v", getRequestID(c), err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "unhealthy",
			Details: map[string]any{"store": "unreachable"},
		})
	}
	return c.JSON(HealthResponse{Status: "healthy"})
}

// getTasks handles GET /rpc/getTasks.
func (s *Server) getTasks(c *fiber.Ctx) error {
	tasks, err := s.svc.List(c.UserContext())
	if err != nil {
		return s.fail(c, "getTasks", err)
	}
	return c.JSON(tasks)
}

// createTask handles POST /rpc/createTask.
func (s *Server) createTask(c *fiber.Ctx) error {
	in, err := task.DecodeCreateInput(c.Body())
	if err != nil {
		return s.fail(c, "createTask", err)
	}

	created, err := s.svc.Create(c.UserContext(), in)
	if err != nil {
		return s.fail(c, "createTask", err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// updateTask handles POST /rpc/updateTask.
func (s *Server) updateTask(c *fiber.Ctx) error {
	in, err := task.DecodeUpdateInput(c.Body())
	if err != nil {
		return s.fail(c, "updateTask", err)
	}

	updated, err := s.svc.Update(c.UserContext(), in)
	if err != nil {
		return s.fail(c, "updateTask", err)
	}
	return c.JSON(updated)
}

// deleteTask handles POST /rpc/deleteTask.
func (s *Server) deleteTask(c *fiber.Ctx) error {
	in, err := task.DecodeDeleteInput(c.Body())
	if err != nil {
		return s.fail(c, "deleteTask", err)
	}

	if err := s.svc.Delete(c.UserContext(), in); err != nil {
		return s.fail(c, "deleteTask", err)
	}
	return c.JSON(DeleteTaskResponse{Success: true})
}

// fail maps a service error kind to an HTTP status. Infrastructure details
// stay in the log.
func (s *Server) fail(c *fiber.Ctx, procedure string, err error) error {
	log.Printf("[api] %s %s failed: %v", getRequestID(c), procedure, err)

	kind := task.KindOf(err)
	switch kind {
	case task.KindValidation:
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: kind.String(), Message: err.Error()})
	case task.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: kind.String(), Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   task.KindInfrastructure.String(),
			Message: "internal error",
		})
	}
}
