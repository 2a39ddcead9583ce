package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

// QueryExecutor answers declarative analytics queries for a project
type QueryExecutor interface {
	Execute(ctx context.Context, projectID uuid.UUID, req *domain.QueryRequest) (*domain.QueryResult, error)
}

// AnalyticsHandler handles analytics query endpoints
type AnalyticsHandler struct {
	executor QueryExecutor
	logger   *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(executor QueryExecutor, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		executor: executor,
		logger:   logger.Named("analytics_handler"),
	}
}

// Query handles POST /api/public/analytics/query
func (h *AnalyticsHandler) Query(c *fiber.Ctx) error {
	projectID, err := RequireProjectID(c)
	if err != nil {
		return err
	}

	var req domain.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return appErrorResponse(c, apperrors.Validation("Invalid request body: "+err.Error()))
	}

	result, err := h.executor.Execute(c.UserContext(), projectID, &req)
	if err != nil {
		if apperrors.GetStatusCode(err) >= fiber.StatusInternalServerError {
			h.logger.Error("analytics query failed",
				zap.String("project_id", projectID.String()),
				zap.String("table", string(req.From)),
				zap.Error(err),
			)
		}
		return appErrorResponse(c, err)
	}

	return c.JSON(result)
}

// RegisterRoutes registers analytics routes
func (h *AnalyticsHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/analytics/query", h.Query)
}
