package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

// EntityRepository handles trace, observation and score rows in PostgreSQL
type EntityRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewEntityRepository creates a new entity repository
func NewEntityRepository(db *sqlx.DB, logger *zap.Logger) *EntityRepository {
	return &EntityRepository{
		db:     db,
		logger: logger.Named("entity_repository"),
	}
}

func (r *EntityRepository) q(ctx context.Context) querier {
	if tx, ok := txFromContext(ctx); ok {
		return instrumentedQuerier{tx}
	}
	return instrumentedQuerier{r.db}
}

// WithEntityLock runs fn in a transaction holding an advisory lock on key
func (r *EntityRepository) WithEntityLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, r.logger, func(ctx context.Context, _ *sqlx.Tx) error {
		if _, err := r.q(ctx).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return fmt.Errorf("failed to lock %s: %w", key, err)
		}
		return fn(ctx)
	})
}

type traceRow struct {
	ID         string             `db:"id"`
	ProjectID  uuid.UUID          `db:"project_id"`
	ExternalID *string            `db:"external_id"`
	Timestamp  time.Time          `db:"timestamp"`
	Name       *string            `db:"name"`
	UserID     *string            `db:"user_id"`
	SessionID  *string            `db:"session_id"`
	Release    *string            `db:"release"`
	Version    *string            `db:"version"`
	Tags       pq.StringArray     `db:"tags"`
	Metadata   types.NullJSONText `db:"metadata"`
	Input      types.NullJSONText `db:"input"`
	Output     types.NullJSONText `db:"output"`
	Public     bool               `db:"public"`
	CreatedAt  time.Time          `db:"created_at"`
	UpdatedAt  time.Time          `db:"updated_at"`
}

// GetTrace retrieves a trace by ID
func (r *EntityRepository) GetTrace(ctx context.Context, id string) (*domain.Trace, error) {
	query := `
		SELECT id, project_id, external_id, "timestamp", name, user_id, session_id, release, version,
			tags, metadata, input, output, public, created_at, updated_at
		FROM traces
		WHERE id = $1
	`

	var row traceRow
	if err := sqlx.GetContext(ctx, r.q(ctx), &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("trace")
		}
		return nil, fmt.Errorf("failed to get trace: %w", err)
	}

	trace := &domain.Trace{
		ID:         row.ID,
		ProjectID:  row.ProjectID,
		ExternalID: row.ExternalID,
		Timestamp:  row.Timestamp.UTC(),
		Name:       row.Name,
		UserID:     row.UserID,
		SessionID:  row.SessionID,
		Release:    row.Release,
		Version:    row.Version,
		Tags:       []string(row.Tags),
		Public:     row.Public,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
	if trace.Tags == nil {
		trace.Tags = []string{}
	}

	var err error
	if trace.Metadata, err = decodeJSON(row.Metadata); err != nil {
		return nil, err
	}
	if trace.Input, err = decodeJSON(row.Input); err != nil {
		return nil, err
	}
	if trace.Output, err = decodeJSON(row.Output); err != nil {
		return nil, err
	}
	return trace, nil
}

// UpsertTrace inserts a trace or replaces the row with the same ID
func (r *EntityRepository) UpsertTrace(ctx context.Context, trace *domain.Trace) error {
	query := `
		INSERT INTO traces (
			id, project_id, external_id, "timestamp", name, user_id, session_id, release, version,
			tags, metadata, input, output, public, created_at, updated_at
		) VALUES (
			:id, :project_id, :external_id, :timestamp, :name, :user_id, :session_id, :release, :version,
			:tags, :metadata, :input, :output, :public, :created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			"timestamp" = EXCLUDED."timestamp",
			name = EXCLUDED.name,
			user_id = EXCLUDED.user_id,
			session_id = EXCLUDED.session_id,
			release = EXCLUDED.release,
			version = EXCLUDED.version,
			tags = EXCLUDED.tags,
			metadata = EXCLUDED.metadata,
			input = EXCLUDED.input,
			output = EXCLUDED.output,
			public = EXCLUDED.public,
			updated_at = EXCLUDED.updated_at
	`

	row := traceRow{
		ID:         trace.ID,
		ProjectID:  trace.ProjectID,
		ExternalID: trace.ExternalID,
		Timestamp:  trace.Timestamp,
		Name:       trace.Name,
		UserID:     trace.UserID,
		SessionID:  trace.SessionID,
		Release:    trace.Release,
		Version:    trace.Version,
		Tags:       pq.StringArray(trace.Tags),
		Public:     trace.Public,
		CreatedAt:  trace.CreatedAt,
		UpdatedAt:  trace.UpdatedAt,
	}
	if row.Tags == nil {
		row.Tags = pq.StringArray{}
	}

	var err error
	if row.Metadata, err = encodeJSON(trace.Metadata); err != nil {
		return err
	}
	if row.Input, err = encodeJSON(trace.Input); err != nil {
		return err
	}
	if row.Output, err = encodeJSON(trace.Output); err != nil {
		return err
	}

	if _, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, row); err != nil {
		return fmt.Errorf("failed to upsert trace: %w", err)
	}
	return nil
}

type observationRow struct {
	ID                  string             `db:"id"`
	TraceID             string             `db:"trace_id"`
	ProjectID           uuid.UUID          `db:"project_id"`
	Type                string             `db:"type"`
	ParentObservationID *string            `db:"parent_observation_id"`
	Name                *string            `db:"name"`
	StartTime           time.Time          `db:"start_time"`
	StartTimeExplicit   bool               `db:"start_time_explicit"`
	EndTime             *time.Time         `db:"end_time"`
	CompletionStartTime *time.Time         `db:"completion_start_time"`
	Metadata            types.NullJSONText `db:"metadata"`
	Input               types.NullJSONText `db:"input"`
	Output              types.NullJSONText `db:"output"`
	Level               string             `db:"level"`
	StatusMessage       *string            `db:"status_message"`
	Version             *string            `db:"version"`
	Model               *string            `db:"model"`
	ModelParameters     types.NullJSONText `db:"model_parameters"`
	UsageUnit           string             `db:"usage_unit"`
	PromptTokens        int64              `db:"prompt_tokens"`
	CompletionTokens    int64              `db:"completion_tokens"`
	TotalTokens         int64              `db:"total_tokens"`
	CreatedAt           time.Time          `db:"created_at"`
	UpdatedAt           time.Time          `db:"updated_at"`
}

// GetObservation retrieves an observation by ID
func (r *EntityRepository) GetObservation(ctx context.Context, id string) (*domain.Observation, error) {
	query := `
		SELECT id, trace_id, project_id, type, parent_observation_id, name, start_time, start_time_explicit, end_time,
			completion_start_time, metadata, input, output, level, status_message, version, model,
			model_parameters, usage_unit, prompt_tokens, completion_tokens, total_tokens, created_at, updated_at
		FROM observations
		WHERE id = $1
	`

	var row observationRow
	if err := sqlx.GetContext(ctx, r.q(ctx), &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("observation")
		}
		return nil, fmt.Errorf("failed to get observation: %w", err)
	}

	obs := &domain.Observation{
		ID:                  row.ID,
		TraceID:             row.TraceID,
		ProjectID:           row.ProjectID,
		Type:                domain.ObservationType(row.Type),
		ParentObservationID: row.ParentObservationID,
		Name:                row.Name,
		StartTime:           row.StartTime.UTC(),
		StartTimeExplicit:   row.StartTimeExplicit,
		EndTime:             utcPtr(row.EndTime),
		CompletionStartTime: utcPtr(row.CompletionStartTime),
		Level:               domain.Level(row.Level),
		StatusMessage:       row.StatusMessage,
		Version:             row.Version,
		Model:               row.Model,
		Usage: domain.Usage{
			Unit:             domain.UsageUnit(row.UsageUnit),
			PromptTokens:     row.PromptTokens,
			CompletionTokens: row.CompletionTokens,
			TotalTokens:      row.TotalTokens,
		},
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}

	var err error
	if obs.Metadata, err = decodeJSON(row.Metadata); err != nil {
		return nil, err
	}
	if obs.Input, err = decodeJSON(row.Input); err != nil {
		return nil, err
	}
	if obs.Output, err = decodeJSON(row.Output); err != nil {
		return nil, err
	}
	if obs.ModelParameters, err = decodeJSON(row.ModelParameters); err != nil {
		return nil, err
	}
	return obs, nil
}

// UpsertObservation inserts an observation or replaces the row with the same ID
func (r *EntityRepository) UpsertObservation(ctx context.Context, obs *domain.Observation) error {
	query := `
		INSERT INTO observations (
			id, trace_id, project_id, type, parent_observation_id, name, start_time, start_time_explicit, end_time,
			completion_start_time, metadata, input, output, level, status_message, version, model,
			model_parameters, usage_unit, prompt_tokens, completion_tokens, total_tokens, created_at, updated_at
		) VALUES (
			:id, :trace_id, :project_id, :type, :parent_observation_id, :name, :start_time, :start_time_explicit, :end_time,
			:completion_start_time, :metadata, :input, :output, :level, :status_message, :version, :model,
			:model_parameters, :usage_unit, :prompt_tokens, :completion_tokens, :total_tokens, :created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			parent_observation_id = EXCLUDED.parent_observation_id,
			name = EXCLUDED.name,
			start_time = EXCLUDED.start_time,
			start_time_explicit = EXCLUDED.start_time_explicit,
			end_time = EXCLUDED.end_time,
			completion_start_time = EXCLUDED.completion_start_time,
			metadata = EXCLUDED.metadata,
			input = EXCLUDED.input,
			output = EXCLUDED.output,
			level = EXCLUDED.level,
			status_message = EXCLUDED.status_message,
			version = EXCLUDED.version,
			model = EXCLUDED.model,
			model_parameters = EXCLUDED.model_parameters,
			usage_unit = EXCLUDED.usage_unit,
			prompt_tokens = EXCLUDED.prompt_tokens,
			completion_tokens = EXCLUDED.completion_tokens,
			total_tokens = EXCLUDED.total_tokens,
			updated_at = EXCLUDED.updated_at
	`

	row := observationRow{
		ID:                  obs.ID,
		TraceID:             obs.TraceID,
		ProjectID:           obs.ProjectID,
		Type:                string(obs.Type),
		ParentObservationID: obs.ParentObservationID,
		Name:                obs.Name,
		StartTime:           obs.StartTime,
		StartTimeExplicit:   obs.StartTimeExplicit,
		EndTime:             obs.EndTime,
		CompletionStartTime: obs.CompletionStartTime,
		Level:               string(obs.Level),
		StatusMessage:       obs.StatusMessage,
		Version:             obs.Version,
		Model:               obs.Model,
		UsageUnit:           string(obs.Usage.Unit),
		PromptTokens:        obs.Usage.PromptTokens,
		CompletionTokens:    obs.Usage.CompletionTokens,
		TotalTokens:         obs.Usage.TotalTokens,
		CreatedAt:           obs.CreatedAt,
		UpdatedAt:           obs.UpdatedAt,
	}

	var err error
	if row.Metadata, err = encodeJSON(obs.Metadata); err != nil {
		return err
	}
	if row.Input, err = encodeJSON(obs.Input); err != nil {
		return err
	}
	if row.Output, err = encodeJSON(obs.Output); err != nil {
		return err
	}
	if row.ModelParameters, err = encodeJSON(obs.ModelParameters); err != nil {
		return err
	}

	if _, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, row); err != nil {
		return fmt.Errorf("failed to upsert observation: %w", err)
	}
	return nil
}

type scoreRow struct {
	ID            string    `db:"id"`
	ProjectID     uuid.UUID `db:"project_id"`
	TraceID       string    `db:"trace_id"`
	ObservationID *string   `db:"observation_id"`
	Name          string    `db:"name"`
	Value         float64   `db:"value"`
	Comment       *string   `db:"comment"`
	Timestamp     time.Time `db:"timestamp"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// GetScore retrieves a score by ID
func (r *EntityRepository) GetScore(ctx context.Context, id string) (*domain.Score, error) {
	query := `
		SELECT id, project_id, trace_id, observation_id, name, value, comment, "timestamp", created_at, updated_at
		FROM scores
		WHERE id = $1
	`

	var row scoreRow
	if err := sqlx.GetContext(ctx, r.q(ctx), &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("score")
		}
		return nil, fmt.Errorf("failed to get score: %w", err)
	}

	return &domain.Score{
		ID:            row.ID,
		ProjectID:     row.ProjectID,
		TraceID:       row.TraceID,
		ObservationID: row.ObservationID,
		Name:          row.Name,
		Value:         row.Value,
		Comment:       row.Comment,
		Timestamp:     row.Timestamp.UTC(),
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}, nil
}

// UpsertScore inserts a score or replaces the row with the same ID
func (r *EntityRepository) UpsertScore(ctx context.Context, score *domain.Score) error {
	query := `
		INSERT INTO scores (id, project_id, trace_id, observation_id, name, value, comment, "timestamp", created_at, updated_at)
		VALUES (:id, :project_id, :trace_id, :observation_id, :name, :value, :comment, :timestamp, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			trace_id = EXCLUDED.trace_id,
			observation_id = EXCLUDED.observation_id,
			name = EXCLUDED.name,
			value = EXCLUDED.value,
			comment = EXCLUDED.comment,
			"timestamp" = EXCLUDED."timestamp",
			updated_at = EXCLUDED.updated_at
	`

	row := scoreRow{
		ID:            score.ID,
		ProjectID:     score.ProjectID,
		TraceID:       score.TraceID,
		ObservationID: score.ObservationID,
		Name:          score.Name,
		Value:         score.Value,
		Comment:       score.Comment,
		Timestamp:     score.Timestamp,
		CreatedAt:     score.CreatedAt,
		UpdatedAt:     score.UpdatedAt,
	}

	if _, err := sqlx.NamedExecContext(ctx, r.q(ctx), query, row); err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}
	return nil
}

func encodeJSON(v any) (types.NullJSONText, error) {
	if v == nil {
		return types.NullJSONText{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return types.NullJSONText{}, fmt.Errorf("failed to encode json column: %w", err)
	}
	return types.NullJSONText{JSONText: types.JSONText(b), Valid: true}, nil
}

func decodeJSON(col types.NullJSONText) (any, error) {
	if !col.Valid {
		return nil, nil
	}
	var v any
	if err := col.Unmarshal(&v); err != nil {
		return nil, fmt.Errorf("failed to decode json column: %w", err)
	}
	return v, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
