package domain

// BatchOutcome summarizes a processed batch
type BatchOutcome string

const (
	BatchOutcomeSuccess BatchOutcome = "success"
	BatchOutcomePartial BatchOutcome = "partial"
	BatchOutcomeFailed  BatchOutcome = "failed"
)

// IngestionError reports why a single event was rejected
type IngestionError struct {
	ID      string `json:"id"`
	Status  int    `json:"status"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// IngestionResult is the per-event outcome of a batch
type IngestionResult struct {
	Successes []string         `json:"successes"`
	Errors    []IngestionError `json:"errors"`
}

// NewIngestionResult returns an empty result with non-nil lists
func NewIngestionResult() *IngestionResult {
	return &IngestionResult{
		Successes: []string{},
		Errors:    []IngestionError{},
	}
}

// Outcome classifies the batch from its successes and errors alone
func (r *IngestionResult) Outcome() BatchOutcome {
	switch {
	case len(r.Errors) == 0:
		return BatchOutcomeSuccess
	case len(r.Successes) == 0:
		return BatchOutcomeFailed
	default:
		return BatchOutcomePartial
	}
}
