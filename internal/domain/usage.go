package domain

// Usage is the canonical usage record embedded in an observation
type Usage struct {
	Unit             UsageUnit `json:"unit"`
	PromptTokens     int64     `json:"promptTokens"`
	CompletionTokens int64     `json:"completionTokens"`
	TotalTokens      int64     `json:"totalTokens"`
}

// UsageInput accepts both the generic-unit and the token-specific usage
// shapes sent by SDKs
type UsageInput struct {
	Input  *int64     `json:"input" validate:"omitempty,min=0"`
	Output *int64     `json:"output" validate:"omitempty,min=0"`
	Total  *int64     `json:"total" validate:"omitempty,min=0"`
	Unit   *UsageUnit `json:"unit" validate:"omitempty,oneof=TOKENS CHARACTERS"`

	PromptTokens     *int64 `json:"promptTokens" validate:"omitempty,min=0"`
	CompletionTokens *int64 `json:"completionTokens" validate:"omitempty,min=0"`
	TotalTokens      *int64 `json:"totalTokens" validate:"omitempty,min=0"`
}

func (u *UsageInput) hasGenericFields() bool {
	return u.Input != nil || u.Output != nil || u.Total != nil || u.Unit != nil
}

func (u *UsageInput) hasTokenFields() bool {
	return u.PromptTokens != nil || u.CompletionTokens != nil || u.TotalTokens != nil
}

// NormalizeUsage resolves a usage payload into its canonical form. The
// generic shape wins when any of its fields is set; the two shapes are never
// mixed. A nil or empty input yields zero token counts.
func NormalizeUsage(in *UsageInput) Usage {
	out := Usage{Unit: UsageUnitTokens}
	if in == nil {
		return out
	}

	switch {
	case in.hasGenericFields():
		if in.Unit != nil {
			out.Unit = *in.Unit
		}
		out.PromptTokens = deref(in.Input)
		out.CompletionTokens = deref(in.Output)
		out.TotalTokens = deref(in.Total)
	case in.hasTokenFields():
		out.PromptTokens = deref(in.PromptTokens)
		out.CompletionTokens = deref(in.CompletionTokens)
		out.TotalTokens = deref(in.TotalTokens)
	}
	return out
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
