package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/llmtrace/llmtrace/internal/domain"
)

// LogRepository appends SDK log records to a slice
type LogRepository struct {
	mu      sync.Mutex
	records []domain.LogRecord
}

// NewLogRepository creates an empty LogRepository
func NewLogRepository() *LogRepository {
	return &LogRepository{}
}

// AppendLogRecord stores a copy of record
func (r *LogRepository) AppendLogRecord(ctx context.Context, record *domain.LogRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *record)
	return nil
}

// Records returns the stored records in append order
func (r *LogRepository) Records() []domain.LogRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.records)
}
