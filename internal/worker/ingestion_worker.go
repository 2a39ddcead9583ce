package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/domain"
)

const (
	// TypeIngestionBatch is the task type for a queued ingestion batch
	TypeIngestionBatch = "ingestion:batch"
)

// IngestionBatchPayload is the payload for ingestion batch tasks
type IngestionBatchPayload struct {
	ProjectID uuid.UUID         `json:"project_id"`
	Batch     []json.RawMessage `json:"batch"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
}

// NewIngestionBatchTask creates an ingestion batch task
func NewIngestionBatchTask(payload *IngestionBatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ingestion batch payload: %w", err)
	}
	return asynq.NewTask(TypeIngestionBatch, data, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute)), nil
}

// BatchProcessor runs the ingestion pipeline over one batch
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, projectID uuid.UUID, batch []json.RawMessage, metadata map[string]any) *domain.IngestionResult
}

// IngestionWorker drains queued ingestion batches. One task is one batch,
// and its events are processed in order.
type IngestionWorker struct {
	logger    *zap.Logger
	processor BatchProcessor
}

// NewIngestionWorker creates a new ingestion worker
func NewIngestionWorker(logger *zap.Logger, processor BatchProcessor) *IngestionWorker {
	return &IngestionWorker{
		logger:    logger.Named("ingestion_worker"),
		processor: processor,
	}
}

// ProcessTask processes an ingestion batch task.
//
// Rejected events are final and do not fail the task. The task is retried
// only when every event failed with a server-side error, which usually
// means storage was unreachable.
func (w *IngestionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload IngestionBatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal ingestion batch payload: %v: %w", err, asynq.SkipRetry)
	}

	if payload.ProjectID == uuid.Nil {
		return fmt.Errorf("ingestion batch has no project: %w", asynq.SkipRetry)
	}

	result := w.processor.ProcessBatch(ctx, payload.ProjectID, payload.Batch, payload.Metadata)

	w.logger.Info("processed queued batch",
		zap.String("project_id", payload.ProjectID.String()),
		zap.Int("successes", len(result.Successes)),
		zap.Int("errors", len(result.Errors)),
		zap.String("outcome", string(result.Outcome())),
	)

	if retryable(result) {
		return fmt.Errorf("all %d events failed with server errors", len(result.Errors))
	}
	return nil
}

func retryable(result *domain.IngestionResult) bool {
	if result.Outcome() != domain.BatchOutcomeFailed {
		return false
	}
	for _, e := range result.Errors {
		if e.Status < http.StatusInternalServerError {
			return false
		}
	}
	return true
}

// taskEnqueuer is the part of *asynq.Client used by QueueEnqueuer
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueEnqueuer hands ingestion batches to the worker through asynq
type QueueEnqueuer struct {
	client taskEnqueuer
	queue  string
}

// NewQueueEnqueuer creates an enqueuer that writes to the given queue
func NewQueueEnqueuer(client *asynq.Client, queue string) *QueueEnqueuer {
	return &QueueEnqueuer{client: client, queue: queue}
}

// EnqueueBatch enqueues one batch as one task and returns the task id
func (e *QueueEnqueuer) EnqueueBatch(ctx context.Context, projectID uuid.UUID, batch []json.RawMessage, metadata map[string]any) (string, error) {
	task, err := NewIngestionBatchTask(&IngestionBatchPayload{
		ProjectID: projectID,
		Batch:     batch,
		Metadata:  metadata,
	})
	if err != nil {
		return "", err
	}

	info, err := e.client.EnqueueContext(ctx, task, asynq.Queue(e.queue))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue ingestion batch: %w", err)
	}
	return info.ID, nil
}
