package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
	"github.com/llmtrace/llmtrace/internal/pkg/id"
	"github.com/llmtrace/llmtrace/internal/pkg/metrics"
	"github.com/llmtrace/llmtrace/internal/validator"
)

// errTargetPending marks an observation update whose target does not exist
// yet and which carries no trace id to create it under. Such events are held
// until an event of the same batch creates the observation, and retried once
// at the end of the batch otherwise.
var errTargetPending = errors.New("observation update target not found")

// sanitizable is implemented by every event body
type sanitizable interface {
	Sanitize()
}

// IngestionService runs the batch ingestion pipeline.
//
// Every event in a batch is handled independently:
//   - the envelope and its type-specific body are validated
//   - string-bearing fields are sanitized
//   - the current entity is loaded, merged with the body and upserted while
//     holding the entity's lock
//
// A bad event is reported in the result and never fails the batch. Events
// are processed in order, so later events observe the effects of earlier
// ones. The service is safe for concurrent use; concurrent batches
// serialize only on the entities they share.
type IngestionService struct {
	entities     EntityRepository
	logs         LogRepository
	eventTimeout time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// NewIngestionService creates a new IngestionService with the provided dependencies.
//
// Parameters:
//   - logger: Structured logger for observability (required)
//   - entities: Repository for traces, observations and scores (required)
//   - logs: Repository for SDK log records (required)
//   - eventTimeout: Upper bound for processing a single event (zero disables it)
//
// Returns a configured IngestionService ready for use.
func NewIngestionService(
	logger *zap.Logger,
	entities EntityRepository,
	logs LogRepository,
	eventTimeout time.Duration,
) *IngestionService {
	return &IngestionService{
		entities:     entities,
		logs:         logs,
		eventTimeout: eventTimeout,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logger.Named("ingestion"),
	}
}

// ProcessBatch validates and persists every event of a batch for a project.
//
// Parameters:
//   - ctx: Context for cancellation; also bounds each event's timeout
//   - projectID: Tenant of the authenticated caller, never taken from the payload
//   - batch: Raw event envelopes in submission order
//   - metadata: Optional SDK metadata, logged only
//
// Returns the ids of accepted events and one error entry per rejected event.
func (s *IngestionService) ProcessBatch(
	ctx context.Context,
	projectID uuid.UUID,
	batch []json.RawMessage,
	metadata map[string]any,
) *domain.IngestionResult {
	start := time.Now()
	result := domain.NewIngestionResult()

	held := newHeldUpdates()
	for _, raw := range batch {
		ev, err := validator.ParseEvent(raw)
		if err != nil {
			s.record(result, ev, err)
			continue
		}

		obsID := heldKey(ev)
		waiting := held.has(obsID)
		if waiting && !materializes(ev) {
			// Keep the event behind the earlier updates of its observation.
			if !s.replayHeld(ctx, projectID, result, held, obsID) {
				held.add(obsID, ev)
				continue
			}
			waiting = false
		}

		err = s.processEvent(ctx, projectID, ev)
		if errors.Is(err, errTargetPending) {
			held.add(heldKey(ev), ev)
			continue
		}
		s.record(result, ev, err)

		if err == nil && waiting {
			s.replayHeld(ctx, projectID, result, held, obsID)
			if !ev.Type.IsCreate() {
				// The held updates precede this one in the batch.
				if err := s.processEvent(ctx, projectID, ev); err != nil {
					s.logger.Warn("reapplying observation update failed",
						zap.String("event_id", ev.ID),
						zap.Error(err),
					)
				}
			}
		}
	}

	for _, obsID := range held.order {
		if s.replayHeld(ctx, projectID, result, held, obsID) {
			continue
		}
		for _, ev := range held.events[obsID] {
			s.record(result, ev, apperrors.NotFound(fmt.Sprintf("observation %s", obsID)))
		}
	}

	outcome := result.Outcome()
	duration := time.Since(start)
	metrics.RecordIngestionBatch(string(outcome), duration)

	s.logger.Info("batch processed",
		zap.String("project_id", projectID.String()),
		zap.Int("events", len(batch)),
		zap.Int("successes", len(result.Successes)),
		zap.Int("errors", len(result.Errors)),
		zap.String("outcome", string(outcome)),
		zap.Duration("duration", duration),
		zap.Any("metadata", metadata),
	)

	return result
}

// heldUpdates queues pending observation updates per observation id, in
// batch order
type heldUpdates struct {
	events map[string][]domain.ParsedEvent
	order  []string
}

func newHeldUpdates() *heldUpdates {
	return &heldUpdates{events: make(map[string][]domain.ParsedEvent)}
}

func (h *heldUpdates) has(obsID string) bool {
	return obsID != "" && len(h.events[obsID]) > 0
}

func (h *heldUpdates) add(obsID string, ev domain.ParsedEvent) {
	if _, ok := h.events[obsID]; !ok {
		h.order = append(h.order, obsID)
	}
	h.events[obsID] = append(h.events[obsID], ev)
}

// heldKey returns the observation id an event targets, or "" for other events
func heldKey(ev domain.ParsedEvent) string {
	if body, ok := ev.Body.(*domain.ObservationBody); ok {
		return body.ID
	}
	return ""
}

// materializes reports whether an observation event can create its target
func materializes(ev domain.ParsedEvent) bool {
	body, ok := ev.Body.(*domain.ObservationBody)
	return ok && (ev.Type.IsCreate() || body.TraceID != nil)
}

// replayHeld processes the held updates of an observation in order. It
// reports false, leaving them held, while the observation does not exist.
func (s *IngestionService) replayHeld(
	ctx context.Context,
	projectID uuid.UUID,
	result *domain.IngestionResult,
	held *heldUpdates,
	obsID string,
) bool {
	queue := held.events[obsID]
	if len(queue) == 0 {
		return true
	}

	err := s.processEvent(ctx, projectID, queue[0])
	if errors.Is(err, errTargetPending) {
		return false
	}
	s.record(result, queue[0], err)

	for _, ev := range queue[1:] {
		err := s.processEvent(ctx, projectID, ev)
		if errors.Is(err, errTargetPending) {
			err = apperrors.NotFound(fmt.Sprintf("observation %s", obsID))
		}
		s.record(result, ev, err)
	}
	delete(held.events, obsID)
	return true
}

// processEvent sanitizes a validated event and dispatches it by body type
func (s *IngestionService) processEvent(ctx context.Context, projectID uuid.UUID, ev domain.ParsedEvent) error {
	if s.eventTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.eventTimeout)
		defer cancel()
	}

	if b, ok := ev.Body.(sanitizable); ok {
		b.Sanitize()
	}

	in := MergeInput{
		EventType: ev.Type,
		ProjectID: projectID,
		EventTime: ev.Timestamp,
		Now:       s.now(),
	}

	var err error
	switch body := ev.Body.(type) {
	case *domain.TraceBody:
		err = s.processTrace(ctx, body, in)
	case *domain.ObservationBody:
		err = s.processObservation(ctx, body, in)
	case *domain.ScoreBody:
		err = s.processScore(ctx, body, in)
	case *domain.SDKLogBody:
		err = s.processLog(ctx, ev.ID, body, in)
	default:
		err = apperrors.Internal(fmt.Sprintf("no handler for event type %s", ev.Type))
	}

	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Internal("event processing timed out").WithError(err)
	}
	return err
}

func (s *IngestionService) processTrace(ctx context.Context, body *domain.TraceBody, in MergeInput) error {
	if body.ID == "" {
		body.ID = id.NewEntityID()
	}

	return s.entities.WithEntityLock(ctx, traceLockKey(body.ID), func(ctx context.Context) error {
		existing, err := s.loadTrace(ctx, in.ProjectID, body.ID)
		if err != nil {
			return err
		}

		merged, err := MergeTrace(existing, body, in)
		if err != nil {
			return err
		}
		return s.entities.UpsertTrace(ctx, merged)
	})
}

func (s *IngestionService) processObservation(ctx context.Context, body *domain.ObservationBody, in MergeInput) error {
	if body.ID == "" {
		body.ID = id.NewEntityID()
	}

	return s.entities.WithEntityLock(ctx, observationLockKey(body.ID), func(ctx context.Context) error {
		existing, err := s.loadObservation(ctx, in.ProjectID, body.ID)
		if err != nil {
			return err
		}

		if body.TraceID != nil {
			// A referenced trace need not exist yet, but it must not belong
			// to another project.
			if _, err := s.loadTrace(ctx, in.ProjectID, *body.TraceID); err != nil {
				return err
			}
		}

		if existing == nil && body.TraceID == nil {
			if !in.EventType.IsCreate() {
				return errTargetPending
			}
			traceID, err := s.createImplicitTrace(ctx, body, in)
			if err != nil {
				return err
			}
			body.TraceID = &traceID
		}

		merged, err := MergeObservation(existing, body, in)
		if err != nil {
			return err
		}
		return s.entities.UpsertObservation(ctx, merged)
	})
}

// createImplicitTrace creates a trace for an observation submitted without one
func (s *IngestionService) createImplicitTrace(ctx context.Context, body *domain.ObservationBody, in MergeInput) (string, error) {
	trace := &domain.Trace{
		ID:        id.NewTraceID(),
		ProjectID: in.ProjectID,
		Timestamp: in.EventTime,
		Tags:      []string{},
		CreatedAt: in.Now,
		UpdatedAt: in.Now,
	}
	setString(&trace.Name, body.Name)

	if err := s.entities.UpsertTrace(ctx, trace); err != nil {
		return "", fmt.Errorf("create implicit trace: %w", err)
	}
	return trace.ID, nil
}

func (s *IngestionService) processScore(ctx context.Context, body *domain.ScoreBody, in MergeInput) error {
	if body.ID == "" {
		body.ID = id.NewEntityID()
	}

	return s.entities.WithEntityLock(ctx, scoreLockKey(body.ID), func(ctx context.Context) error {
		trace, err := s.loadTrace(ctx, in.ProjectID, body.TraceID)
		if err != nil {
			return err
		}
		if trace == nil {
			return apperrors.NotFound(fmt.Sprintf("trace %s", body.TraceID))
		}

		if body.ObservationID != nil {
			obs, err := s.loadObservation(ctx, in.ProjectID, *body.ObservationID)
			if err != nil {
				return err
			}
			if obs == nil || obs.TraceID != body.TraceID {
				return apperrors.NotFound(fmt.Sprintf("observation %s in trace %s", *body.ObservationID, body.TraceID))
			}
		}

		existing, err := s.loadScore(ctx, in.ProjectID, body.ID)
		if err != nil {
			return err
		}
		return s.entities.UpsertScore(ctx, MergeScore(existing, body, in))
	})
}

func (s *IngestionService) processLog(ctx context.Context, eventID string, body *domain.SDKLogBody, in MergeInput) error {
	return s.logs.AppendLogRecord(ctx, &domain.LogRecord{
		ID:            id.NewEntityID(),
		ProjectID:     in.ProjectID,
		EventID:       eventID,
		TraceID:       body.TraceID,
		ObservationID: body.ObservationID,
		Log:           body.Log,
		Timestamp:     in.EventTime,
	})
}

func (s *IngestionService) loadTrace(ctx context.Context, projectID uuid.UUID, traceID string) (*domain.Trace, error) {
	return loadOwned(projectID, "trace", traceID,
		func() (*domain.Trace, error) { return s.entities.GetTrace(ctx, traceID) },
		func(t *domain.Trace) uuid.UUID { return t.ProjectID },
	)
}

func (s *IngestionService) loadObservation(ctx context.Context, projectID uuid.UUID, observationID string) (*domain.Observation, error) {
	return loadOwned(projectID, "observation", observationID,
		func() (*domain.Observation, error) { return s.entities.GetObservation(ctx, observationID) },
		func(o *domain.Observation) uuid.UUID { return o.ProjectID },
	)
}

func (s *IngestionService) loadScore(ctx context.Context, projectID uuid.UUID, scoreID string) (*domain.Score, error) {
	return loadOwned(projectID, "score", scoreID,
		func() (*domain.Score, error) { return s.entities.GetScore(ctx, scoreID) },
		func(sc *domain.Score) uuid.UUID { return sc.ProjectID },
	)
}

// loadOwned returns nil for a missing entity and a forbidden error for an
// entity owned by another project
func loadOwned[T any](
	projectID uuid.UUID,
	kind, entityID string,
	load func() (*T, error),
	owner func(*T) uuid.UUID,
) (*T, error) {
	entity, err := load()
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s %s: %w", kind, entityID, err)
	}
	if owner(entity) != projectID {
		return nil, apperrors.Forbidden(fmt.Sprintf("%s %s belongs to another project", kind, entityID))
	}
	return entity, nil
}

// record adds the outcome of one event to the result
func (s *IngestionService) record(result *domain.IngestionResult, ev domain.ParsedEvent, err error) {
	eventType := string(ev.Type)
	if !ev.Type.IsValid() {
		eventType = "unknown"
	}

	if err == nil {
		result.Successes = append(result.Successes, ev.ID)
		metrics.RecordIngestionEvent(eventType, "success")
		return
	}

	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		s.logger.Error("event processing failed",
			zap.String("event_id", ev.ID),
			zap.String("type", eventType),
			zap.Error(err),
		)
		appErr = apperrors.Internal("internal error while processing event")
	}

	result.Errors = append(result.Errors, domain.IngestionError{
		ID:      ev.ID,
		Status:  appErr.StatusCode,
		Kind:    appErr.Code,
		Message: appErr.Message,
	})
	metrics.RecordIngestionEvent(eventType, appErr.Code)

	s.logger.Debug("event rejected",
		zap.String("event_id", ev.ID),
		zap.String("type", eventType),
		zap.String("kind", appErr.Code),
		zap.Error(err),
	)
}

func traceLockKey(id string) string       { return "trace:" + id }
func observationLockKey(id string) string { return "observation:" + id }
func scoreLockKey(id string) string       { return "score:" + id }
