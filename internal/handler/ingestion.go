package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/domain"
)

// BatchProcessor runs the ingestion pipeline over one batch
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, projectID uuid.UUID, batch []json.RawMessage, metadata map[string]any) *domain.IngestionResult
}

// BatchEnqueuer hands a batch to the background worker and returns the task id
type BatchEnqueuer interface {
	EnqueueBatch(ctx context.Context, projectID uuid.UUID, batch []json.RawMessage, metadata map[string]any) (string, error)
}

// IngestionHandler handles batch ingestion endpoints
type IngestionHandler struct {
	processor    BatchProcessor
	enqueuer     BatchEnqueuer
	maxBatchSize int
	logger       *zap.Logger
}

// NewIngestionHandler creates a new ingestion handler. A nil enqueuer makes
// the handler process batches inline.
func NewIngestionHandler(processor BatchProcessor, enqueuer BatchEnqueuer, maxBatchSize int, logger *zap.Logger) *IngestionHandler {
	return &IngestionHandler{
		processor:    processor,
		enqueuer:     enqueuer,
		maxBatchSize: maxBatchSize,
		logger:       logger.Named("ingestion_handler"),
	}
}

// BatchIngestion handles POST /api/public/ingestion
//
// A processed batch answers 207 with the accepted event ids and one error
// entry per rejected event. In queue mode the batch is enqueued as a single
// task and the handler answers 202.
func (h *IngestionHandler) BatchIngestion(c *fiber.Ctx) error {
	projectID, err := RequireProjectID(c)
	if err != nil {
		return err
	}

	var request domain.IngestionRequest
	if err := c.BodyParser(&request); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	if len(request.Batch) == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "Batch is empty")
	}

	if h.maxBatchSize > 0 && len(request.Batch) > h.maxBatchSize {
		return errorResponse(c, fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("Batch exceeds %d events", h.maxBatchSize))
	}

	if h.enqueuer != nil {
		taskID, err := h.enqueuer.EnqueueBatch(c.UserContext(), projectID, request.Batch, request.Metadata)
		if err != nil {
			h.logger.Error("failed to enqueue batch",
				zap.String("project_id", projectID.String()),
				zap.Int("events", len(request.Batch)),
				zap.Error(err),
			)
			return errorResponse(c, fiber.StatusServiceUnavailable, "Failed to enqueue batch")
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"taskId": taskID,
			"events": len(request.Batch),
		})
	}

	result := h.processor.ProcessBatch(c.UserContext(), projectID, request.Batch, request.Metadata)
	return c.Status(fiber.StatusMultiStatus).JSON(result)
}

// RegisterRoutes registers ingestion routes
func (h *IngestionHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/ingestion", h.BatchIngestion)
}
