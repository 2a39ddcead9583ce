package domain

import "github.com/llmtrace/llmtrace/internal/pkg/sanitize"

// Sanitize strips NUL characters from every string-bearing field
func (b *TraceBody) Sanitize() {
	b.ID = sanitize.String(b.ID)
	sanitize.StringPtr(b.Name)
	sanitize.StringPtr(b.ExternalID)
	sanitize.StringPtr(b.UserID)
	sanitize.StringPtr(b.SessionID)
	sanitize.StringPtr(b.Release)
	sanitize.StringPtr(b.Version)
	sanitize.Strings(b.Tags)
	b.Metadata = sanitize.Value(b.Metadata)
	b.Input = sanitize.Value(b.Input)
	b.Output = sanitize.Value(b.Output)
}

// Sanitize strips NUL characters from every string-bearing field
func (b *ObservationBody) Sanitize() {
	b.ID = sanitize.String(b.ID)
	sanitize.StringPtr(b.TraceID)
	sanitize.StringPtr(b.Name)
	sanitize.StringPtr(b.Model)
	sanitize.StringPtr(b.StatusMessage)
	sanitize.StringPtr(b.ParentObservationID)
	sanitize.StringPtr(b.Version)
	b.Metadata = sanitize.Value(b.Metadata)
	b.Input = sanitize.Value(b.Input)
	b.Output = sanitize.Value(b.Output)
	b.ModelParameters = sanitize.Value(b.ModelParameters)
}

// Sanitize strips NUL characters from every string-bearing field
func (b *ScoreBody) Sanitize() {
	b.ID = sanitize.String(b.ID)
	b.TraceID = sanitize.String(b.TraceID)
	b.Name = sanitize.String(b.Name)
	sanitize.StringPtr(b.ObservationID)
	sanitize.StringPtr(b.Comment)
}

// Sanitize strips NUL characters from every string-bearing field
func (b *SDKLogBody) Sanitize() {
	b.Log = sanitize.Value(b.Log)
	sanitize.StringPtr(b.TraceID)
	sanitize.StringPtr(b.ObservationID)
}
