// Package memory provides in-process repository implementations used for
// tests and single-node deployments with storage_backend=memory.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

// EntityRepository keeps traces, observations and scores in maps
type EntityRepository struct {
	mu           sync.RWMutex
	traces       map[string]domain.Trace
	observations map[string]domain.Observation
	scores       map[string]domain.Score
	locks        *keyedLock
}

// NewEntityRepository creates an empty EntityRepository
func NewEntityRepository() *EntityRepository {
	return &EntityRepository{
		traces:       make(map[string]domain.Trace),
		observations: make(map[string]domain.Observation),
		scores:       make(map[string]domain.Score),
		locks:        newKeyedLock(),
	}
}

// GetTrace returns a copy of the stored trace
func (r *EntityRepository) GetTrace(ctx context.Context, id string) (*domain.Trace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.traces[id]
	if !ok {
		return nil, apperrors.NotFound("trace")
	}
	t.Tags = slices.Clone(t.Tags)
	return &t, nil
}

// UpsertTrace stores a copy of trace
func (r *EntityRepository) UpsertTrace(ctx context.Context, trace *domain.Trace) error {
	t := *trace
	t.Tags = slices.Clone(trace.Tags)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.traces[t.ID] = t
	return nil
}

// GetObservation returns a copy of the stored observation
func (r *EntityRepository) GetObservation(ctx context.Context, id string) (*domain.Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.observations[id]
	if !ok {
		return nil, apperrors.NotFound("observation")
	}
	return &o, nil
}

// UpsertObservation stores a copy of obs
func (r *EntityRepository) UpsertObservation(ctx context.Context, obs *domain.Observation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observations[obs.ID] = *obs
	return nil
}

// GetScore returns a copy of the stored score
func (r *EntityRepository) GetScore(ctx context.Context, id string) (*domain.Score, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scores[id]
	if !ok {
		return nil, apperrors.NotFound("score")
	}
	return &s, nil
}

// UpsertScore stores a copy of score
func (r *EntityRepository) UpsertScore(ctx context.Context, score *domain.Score) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores[score.ID] = *score
	return nil
}

// WithEntityLock runs fn while holding the lock for key
func (r *EntityRepository) WithEntityLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	unlock, err := r.locks.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(ctx)
}

// Counts returns the number of stored traces, observations and scores
func (r *EntityRepository) Counts() (traces, observations, scores int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.traces), len(r.observations), len(r.scores)
}
