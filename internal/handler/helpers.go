package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/llmtrace/llmtrace/internal/middleware"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

// RequireProjectID extracts the project ID from the request context.
// If the project ID is not found, it sends an unauthorized response and returns an error.
// Returns the project ID and nil on success.
func RequireProjectID(c *fiber.Ctx) (uuid.UUID, error) {
	projectID, ok := middleware.GetProjectID(c)
	if !ok {
		return uuid.Nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "Unauthorized",
			"message": "Project ID not found",
		})
	}
	return projectID, nil
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// errorResponse creates a standardized JSON error response.
func errorResponse(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(ErrorResponse{
		Error:   errorName(statusCode),
		Message: message,
	})
}

// appErrorResponse maps err to its AppError status and code. Errors that
// carry no AppError are reported as internal without leaking their text.
func appErrorResponse(c *fiber.Ctx, err error) error {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		appErr = apperrors.Internal("internal server error")
	}
	return c.Status(appErr.StatusCode).JSON(ErrorResponse{
		Error:   errorName(appErr.StatusCode),
		Message: appErr.Message,
		Code:    appErr.Code,
	})
}

func errorName(statusCode int) string {
	switch statusCode {
	case fiber.StatusBadRequest:
		return "Bad Request"
	case fiber.StatusUnauthorized:
		return "Unauthorized"
	case fiber.StatusForbidden:
		return "Forbidden"
	case fiber.StatusNotFound:
		return "Not Found"
	case fiber.StatusRequestEntityTooLarge:
		return "Request Entity Too Large"
	case fiber.StatusServiceUnavailable:
		return "Service Unavailable"
	case fiber.StatusInternalServerError:
		return "Internal Server Error"
	}
	return "Error"
}
