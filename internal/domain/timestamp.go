package domain

import (
	"fmt"
	"time"
)

// ParseTimestamp parses an RFC 3339 timestamp, with or without fractional
// seconds, and returns it in UTC
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: must be RFC 3339", s)
	}
	return t.UTC(), nil
}
