package service

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
	"github.com/llmtrace/llmtrace/internal/pkg/jsonmerge"
)

// MergeInput carries the event context an entity merge needs
type MergeInput struct {
	EventType domain.EventType
	ProjectID uuid.UUID
	EventTime time.Time
	Now       time.Time
}

// MergeTrace applies a trace body to the existing trace, or to a new one
// when existing is nil. Nil body fields never erase stored values. The
// existing trace is not modified.
func MergeTrace(existing *domain.Trace, body *domain.TraceBody, in MergeInput) (*domain.Trace, error) {
	var t domain.Trace
	if existing != nil {
		t = *existing
		t.Tags = slices.Clone(existing.Tags)
	} else {
		t = domain.Trace{
			ID:        body.ID,
			ProjectID: in.ProjectID,
			Timestamp: in.EventTime,
			CreatedAt: in.Now,
		}
	}

	if body.Timestamp != nil {
		ts, err := parseTime("timestamp", *body.Timestamp)
		if err != nil {
			return nil, err
		}
		t.Timestamp = ts
	}

	setString(&t.Name, body.Name)
	setString(&t.ExternalID, body.ExternalID)
	setString(&t.UserID, body.UserID)
	setString(&t.SessionID, body.SessionID)
	setString(&t.Release, body.Release)
	setString(&t.Version, body.Version)
	if body.Public != nil {
		t.Public = *body.Public
	}

	t.Tags = mergeTags(t.Tags, body.Tags)
	t.Metadata = jsonmerge.Merge(t.Metadata, body.Metadata)
	setJSON(&t.Input, body.Input)
	setJSON(&t.Output, body.Output)

	t.UpdatedAt = in.Now
	return &t, nil
}

// MergeObservation applies an observation body to the existing observation,
// or to a new one when existing is nil.
//
// The observation type and trace id are immutable: any event may set them
// while unset, a create event whose values conflict with stored ones fails
// with a validation error, and an update event's conflicting values are
// ignored. Usage is replaced only when the body carries a usage payload.
func MergeObservation(existing *domain.Observation, body *domain.ObservationBody, in MergeInput) (*domain.Observation, error) {
	var o domain.Observation
	if existing != nil {
		o = *existing
	} else {
		o = domain.Observation{
			ID:        body.ID,
			ProjectID: in.ProjectID,
			Level:     domain.LevelDefault,
			Usage:     domain.NormalizeUsage(nil),
			CreatedAt: in.Now,
		}
	}
	isCreate := in.EventType.IsCreate()

	typ, typed := in.EventType.ObservationType()
	if !typed && body.Type != nil {
		typ, typed = *body.Type, true
	}
	if typed {
		switch {
		case o.Type == "":
			o.Type = typ
		case o.Type != typ && isCreate:
			return nil, apperrors.Validation(fmt.Sprintf("observation %s already exists with type %s", o.ID, o.Type))
		}
	}

	if body.TraceID != nil {
		switch {
		case o.TraceID == "":
			o.TraceID = *body.TraceID
		case o.TraceID != *body.TraceID && isCreate:
			return nil, apperrors.Validation(fmt.Sprintf("observation %s already belongs to trace %s", o.ID, o.TraceID))
		}
	}

	if err := mergeStartTime(&o, existing == nil, body.StartTime, in.EventTime); err != nil {
		return nil, err
	}
	if err := setTimePtr(&o.EndTime, "endTime", body.EndTime); err != nil {
		return nil, err
	}
	if err := setTimePtr(&o.CompletionStartTime, "completionStartTime", body.CompletionStartTime); err != nil {
		return nil, err
	}

	setString(&o.Name, body.Name)
	setString(&o.Model, body.Model)
	setString(&o.StatusMessage, body.StatusMessage)
	setString(&o.ParentObservationID, body.ParentObservationID)
	setString(&o.Version, body.Version)
	if body.Level != nil {
		o.Level = *body.Level
	}

	o.Metadata = jsonmerge.Merge(o.Metadata, body.Metadata)
	o.ModelParameters = jsonmerge.Merge(o.ModelParameters, body.ModelParameters)
	setJSON(&o.Input, body.Input)
	setJSON(&o.Output, body.Output)

	if body.Usage != nil {
		o.Usage = domain.NormalizeUsage(body.Usage)
	}

	o.UpdatedAt = in.Now
	return &o, nil
}

// mergeStartTime sets an explicit start time, or else keeps the earliest
// event time seen for the observation. Only explicit values pin the field.
func mergeStartTime(o *domain.Observation, isNew bool, v *string, eventTime time.Time) error {
	if v != nil {
		ts, err := parseTime("startTime", *v)
		if err != nil {
			return err
		}
		o.StartTime = ts
		o.StartTimeExplicit = true
		return nil
	}
	if o.StartTimeExplicit {
		return nil
	}
	if isNew || eventTime.Before(o.StartTime) {
		o.StartTime = eventTime
	}
	return nil
}

// MergeScore applies a score body to the existing score, or to a new one
// when existing is nil.
func MergeScore(existing *domain.Score, body *domain.ScoreBody, in MergeInput) *domain.Score {
	var s domain.Score
	if existing != nil {
		s = *existing
	} else {
		s = domain.Score{
			ID:        body.ID,
			ProjectID: in.ProjectID,
			CreatedAt: in.Now,
		}
	}

	s.TraceID = body.TraceID
	s.Name = body.Name
	s.Value = *body.Value
	s.Timestamp = in.EventTime
	setString(&s.ObservationID, body.ObservationID)
	setString(&s.Comment, body.Comment)

	s.UpdatedAt = in.Now
	return &s
}

func setString(dst **string, v *string) {
	if v != nil {
		s := *v
		*dst = &s
	}
}

func setJSON(dst *any, v any) {
	if v != nil {
		*dst = v
	}
}

func setTimePtr(dst **time.Time, field string, v *string) error {
	if v == nil {
		return nil
	}
	ts, err := parseTime(field, *v)
	if err != nil {
		return err
	}
	*dst = &ts
	return nil
}

func parseTime(field, v string) (time.Time, error) {
	ts, err := domain.ParseTimestamp(v)
	if err != nil {
		return time.Time{}, apperrors.Validation(fmt.Sprintf("%s: %v", field, err))
	}
	return ts, nil
}

// mergeTags returns the sorted union of both tag sets
func mergeTags(existing, incoming []string) []string {
	tags := lo.Uniq(append(slices.Clone(existing), incoming...))
	slices.Sort(tags)
	if tags == nil {
		return []string{}
	}
	return tags
}
