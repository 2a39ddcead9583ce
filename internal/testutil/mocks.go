// Package testutil provides shared test utilities for the llmtrace API.
package testutil

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/llmtrace/llmtrace/internal/middleware"
)

// TestProjectMiddleware creates a middleware that sets the project ID in context.
// Use this in tests to simulate authenticated requests.
func TestProjectMiddleware(projectID uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(string(middleware.ContextKeyProjectID), projectID)
		return c.Next()
	}
}
