// Package sanitize removes characters the entity store cannot persist from
// decoded JSON values.
package sanitize

import "strings"

const nul = "\u0000"

// String returns s with every NUL character removed.
func String(s string) string {
	if !strings.Contains(s, nul) {
		return s
	}
	return strings.ReplaceAll(s, nul, "")
}

// StringPtr sanitizes the pointed-to string in place and returns p.
func StringPtr(p *string) *string {
	if p != nil {
		*p = String(*p)
	}
	return p
}

// Strings sanitizes every element of ss in place.
func Strings(ss []string) []string {
	for i := range ss {
		ss[i] = String(ss[i])
	}
	return ss
}

// Value walks a value produced by encoding/json (maps, slices, strings,
// numbers, booleans and nil) and strips NUL characters from every string,
// including object keys. Structure and non-string scalars are unchanged.
func Value(v any) any {
	switch t := v.(type) {
	case string:
		return String(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Value(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[String(k)] = Value(e)
		}
		return out
	default:
		return v
	}
}
