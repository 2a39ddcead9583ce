package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TraceIDLength is the byte length of a generated trace ID (32 hex chars)
const TraceIDLength = 16

var (
	randReader = rand.Reader

	traceIDPool = sync.Pool{
		New: func() any {
			b := make([]byte, TraceIDLength)
			return &b
		},
	}
)

// NewTraceID generates a W3C-style trace ID (32 hex characters) for traces
// the server creates on behalf of orphan observations
func NewTraceID() string {
	bufPtr := traceIDPool.Get().(*[]byte)
	defer traceIDPool.Put(bufPtr)
	buf := *bufPtr

	if _, err := randReader.Read(buf); err != nil {
		// Fallback to time-based ID if random fails
		return fmt.Sprintf("%016x%016x", time.Now().UnixNano(), time.Now().UnixNano())
	}

	return hex.EncodeToString(buf)
}

// NewEntityID generates a UUID v4 for scores, log records and entities
// submitted without an id
func NewEntityID() string {
	return uuid.New().String()
}

// ParseProjectID parses a project UUID
func ParseProjectID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// ValidateTraceID reports whether id has the generated trace ID format
func ValidateTraceID(id string) bool {
	if len(id) != 2*TraceIDLength {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
