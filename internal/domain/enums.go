package domain

// Level represents the severity level
type Level string

const (
	LevelDebug   Level = "DEBUG"
	LevelDefault Level = "DEFAULT"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// IsValid checks if the level is valid
func (l Level) IsValid() bool {
	switch l {
	case LevelDebug, LevelDefault, LevelWarning, LevelError:
		return true
	}
	return false
}

// ObservationType represents the type of observation
type ObservationType string

const (
	ObservationTypeSpan       ObservationType = "SPAN"
	ObservationTypeGeneration ObservationType = "GENERATION"
	ObservationTypeEvent      ObservationType = "EVENT"
)

// IsValid checks if the observation type is valid
func (t ObservationType) IsValid() bool {
	switch t {
	case ObservationTypeSpan, ObservationTypeGeneration, ObservationTypeEvent:
		return true
	}
	return false
}

// UsageUnit is the unit usage counts are expressed in
type UsageUnit string

const (
	UsageUnitTokens     UsageUnit = "TOKENS"
	UsageUnitCharacters UsageUnit = "CHARACTERS"
)

// IsValid checks if the usage unit is valid
func (u UsageUnit) IsValid() bool {
	switch u {
	case UsageUnitTokens, UsageUnitCharacters:
		return true
	}
	return false
}

// EventType is the declared type of an ingestion envelope
type EventType string

const (
	EventTypeTraceCreate       EventType = "trace-create"
	EventTypeTraceUpdate       EventType = "trace-update"
	EventTypeObservationCreate EventType = "observation-create"
	EventTypeObservationUpdate EventType = "observation-update"
	EventTypeSpanCreate        EventType = "span-create"
	EventTypeSpanUpdate        EventType = "span-update"
	EventTypeGenerationCreate  EventType = "generation-create"
	EventTypeGenerationUpdate  EventType = "generation-update"
	EventTypeEventCreate       EventType = "event-create"
	EventTypeScoreCreate       EventType = "score-create"
	EventTypeSDKLog            EventType = "sdk-log"
)

// IsValid checks if the event type is known
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeTraceCreate, EventTypeTraceUpdate,
		EventTypeObservationCreate, EventTypeObservationUpdate,
		EventTypeSpanCreate, EventTypeSpanUpdate,
		EventTypeGenerationCreate, EventTypeGenerationUpdate,
		EventTypeEventCreate, EventTypeScoreCreate, EventTypeSDKLog:
		return true
	}
	return false
}

// IsObservation reports whether the event targets an observation
func (t EventType) IsObservation() bool {
	switch t {
	case EventTypeObservationCreate, EventTypeObservationUpdate,
		EventTypeSpanCreate, EventTypeSpanUpdate,
		EventTypeGenerationCreate, EventTypeGenerationUpdate,
		EventTypeEventCreate:
		return true
	}
	return false
}

// IsCreate reports whether the event creates its entity. Creates may fix
// immutable fields; updates never alter them once set.
func (t EventType) IsCreate() bool {
	switch t {
	case EventTypeTraceCreate, EventTypeObservationCreate, EventTypeSpanCreate,
		EventTypeGenerationCreate, EventTypeEventCreate, EventTypeScoreCreate:
		return true
	}
	return false
}

// ObservationType returns the observation type implied by the event type.
// The generic observation-create and observation-update events imply none
// and take the type from their body instead.
func (t EventType) ObservationType() (ObservationType, bool) {
	switch t {
	case EventTypeSpanCreate, EventTypeSpanUpdate:
		return ObservationTypeSpan, true
	case EventTypeGenerationCreate, EventTypeGenerationUpdate:
		return ObservationTypeGeneration, true
	case EventTypeEventCreate:
		return ObservationTypeEvent, true
	}
	return "", false
}
