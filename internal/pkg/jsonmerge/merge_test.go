package jsonmerge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		existing any
		incoming any
		want     any
	}{
		{
			name:     "disjoint keys",
			existing: map[string]any{"a": "a"},
			incoming: map[string]any{"b": "b"},
			want:     map[string]any{"a": "a", "b": "b"},
		},
		{
			name:     "nested objects",
			existing: map[string]any{"a": map[string]any{"1": 1.0}},
			incoming: map[string]any{"b": "b", "a": map[string]any{"2": 2.0}},
			want:     map[string]any{"a": map[string]any{"1": 1.0, "2": 2.0}, "b": "b"},
		},
		{
			name:     "single element object arrays",
			existing: []any{map[string]any{"a": "a"}},
			incoming: []any{map[string]any{"b": "b"}},
			want:     []any{map[string]any{"a": "a", "b": "b"}},
		},
		{
			name:     "incoming absent",
			existing: map[string]any{"a": "a"},
			incoming: nil,
			want:     map[string]any{"a": "a"},
		},
		{
			name:     "existing absent",
			existing: nil,
			incoming: map[string]any{"a": "a"},
			want:     map[string]any{"a": "a"},
		},
		{
			name:     "incoming overwrites same key",
			existing: map[string]any{"a": "old", "keep": true},
			incoming: map[string]any{"a": "new"},
			want:     map[string]any{"a": "new", "keep": true},
		},
		{
			name:     "scalar arrays replace",
			existing: []any{"a", "b"},
			incoming: []any{"c"},
			want:     []any{"c"},
		},
		{
			name:     "object arrays of different length",
			existing: []any{map[string]any{"a": 1.0}},
			incoming: []any{map[string]any{"b": 2.0}, map[string]any{"c": 3.0}},
			want:     []any{map[string]any{"a": 1.0, "b": 2.0}, map[string]any{"c": 3.0}},
		},
		{
			name:     "type change replaces",
			existing: map[string]any{"a": "a"},
			incoming: "plain",
			want:     "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.existing, tt.incoming))
		})
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	existing := map[string]any{"a": map[string]any{"x": 1.0}}
	incoming := map[string]any{"a": map[string]any{"y": 2.0}}

	_ = Merge(existing, incoming)

	assert.Equal(t, map[string]any{"a": map[string]any{"x": 1.0}}, existing)
	assert.Equal(t, map[string]any{"a": map[string]any{"y": 2.0}}, incoming)
}
