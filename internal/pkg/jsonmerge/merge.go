// Package jsonmerge deep-merges decoded JSON values for metadata-like fields.
package jsonmerge

// Merge combines incoming into existing and returns the result. Neither input
// is modified.
//
//   - a nil incoming keeps existing, a nil existing takes incoming
//   - objects merge key by key, recursively
//   - two arrays made only of objects merge index by index; the longer
//     array's tail is kept as is
//   - anything else is replaced by incoming
func Merge(existing, incoming any) any {
	if incoming == nil {
		return existing
	}
	if existing == nil {
		return incoming
	}

	switch in := incoming.(type) {
	case map[string]any:
		ex, ok := existing.(map[string]any)
		if !ok {
			return incoming
		}
		return mergeObjects(ex, in)
	case []any:
		ex, ok := existing.([]any)
		if !ok || !allObjects(ex) || !allObjects(in) {
			return incoming
		}
		return mergeObjectArrays(ex, in)
	default:
		return incoming
	}
}

func mergeObjects(existing, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		if cur, ok := out[k]; ok {
			out[k] = Merge(cur, v)
			continue
		}
		out[k] = v
	}
	return out
}

func mergeObjectArrays(existing, incoming []any) []any {
	n := max(len(existing), len(incoming))
	out := make([]any, n)
	for i := 0; i < n; i++ {
		switch {
		case i >= len(incoming):
			out[i] = existing[i]
		case i >= len(existing):
			out[i] = incoming[i]
		default:
			out[i] = mergeObjects(existing[i].(map[string]any), incoming[i].(map[string]any))
		}
	}
	return out
}

func allObjects(a []any) bool {
	if len(a) == 0 {
		return false
	}
	for _, e := range a {
		if _, ok := e.(map[string]any); !ok {
			return false
		}
	}
	return true
}
