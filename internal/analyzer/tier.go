package analyzer

import "unicode/utf8"

const (
	DefaultModelShort  = "gemini-2.0-flash-lite"
	DefaultModelMedium = "gemini-2.0-flash"
	DefaultModelLong   = "gemini-2.5-flash"

	DefaultTierMediumChars = 4000
	DefaultTierLongChars   = 12000
)

// Tiers routes prompts to progressively larger models by length.
type Tiers struct {
	Short       string
	Medium      string
	Long        string
	MediumChars int
	LongChars   int
}

// DefaultTiers returns the production routing table.
func DefaultTiers() Tiers {
	return Tiers{
		Short:       DefaultModelShort,
		Medium:      DefaultModelMedium,
		Long:        DefaultModelLong,
		MediumChars: DefaultTierMediumChars,
		LongChars:   DefaultTierLongChars,
	}
}

// Select picks the model for prompt.
func (t Tiers) Select(prompt string) string {
	n := utf8.RuneCountInString(prompt)
	switch {
	case n >= t.LongChars:
		return t.Long
	case n >= t.MediumChars:
		return t.Medium
	default:
		return t.Short
	}
}
