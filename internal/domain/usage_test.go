package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func i64(v int64) *int64 { return &v }

func unit(u UsageUnit) *UsageUnit { return &u }

func TestNormalizeUsage(t *testing.T) {
	tests := []struct {
		name string
		in   *UsageInput
		want Usage
	}{
		{
			name: "generic shape with characters",
			in:   &UsageInput{Input: i64(100), Output: i64(200), Total: i64(100), Unit: unit(UsageUnitCharacters)},
			want: Usage{Unit: UsageUnitCharacters, PromptTokens: 100, CompletionTokens: 200, TotalTokens: 100},
		},
		{
			name: "total only",
			in:   &UsageInput{Total: i64(100)},
			want: Usage{Unit: UsageUnitTokens, TotalTokens: 100},
		},
		{
			name: "total with characters unit",
			in:   &UsageInput{Total: i64(100), Unit: unit(UsageUnitCharacters)},
			want: Usage{Unit: UsageUnitCharacters, TotalTokens: 100},
		},
		{
			name: "token shape",
			in:   &UsageInput{PromptTokens: i64(100), CompletionTokens: i64(200), TotalTokens: i64(100)},
			want: Usage{Unit: UsageUnitTokens, PromptTokens: 100, CompletionTokens: 200, TotalTokens: 100},
		},
		{
			name: "shapes are not mixed",
			in:   &UsageInput{Input: i64(1), PromptTokens: i64(50)},
			want: Usage{Unit: UsageUnitTokens, PromptTokens: 1},
		},
		{
			name: "nil",
			in:   nil,
			want: Usage{Unit: UsageUnitTokens},
		},
		{
			name: "empty object",
			in:   &UsageInput{},
			want: Usage{Unit: UsageUnitTokens},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeUsage(tt.in))
		})
	}
}
