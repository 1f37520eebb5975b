package gate

import (
	"github.com/Skufu/symptomgate/internal/lexicon"
	"github.com/Skufu/symptomgate/internal/vocabulary"
)

const (
	DefaultMinSignalMatches  = 2
	DefaultMinStructureFlags = 2
	DefaultMinDensity        = 0.08
	DefaultMinDensityTokens  = 10
)

// Coverage records which vocabulary categories a text touches.
type Coverage struct {
	Symptom  bool `json:"symptom" yaml:"symptom"`
	BodyPart bool `json:"bodyPart" yaml:"bodyPart"`
	Duration bool `json:"duration" yaml:"duration"`
	Severity bool `json:"severity" yaml:"severity"`
}

// Count returns how many flags are set.
func (c Coverage) Count() int {
	n := 0
	for _, f := range []bool{c.Symptom, c.BodyPart, c.Duration, c.Severity} {
		if f {
			n++
		}
	}
	return n
}

// Relevance runs the medical-signal checks over normalized tokens.
type Relevance struct {
	vocab   *vocabulary.Vocabulary
	matcher *Matcher
}

// NewRelevance builds a Relevance checker.
func NewRelevance(v *vocabulary.Vocabulary, m *Matcher) *Relevance {
	return &Relevance{vocab: v, matcher: m}
}

// IsMedical reports whether a token is an exact member of any category or
// fuzzy-close to a symptom.
func (r *Relevance) IsMedical(token string) bool {
	return r.vocab.HasAny(token) || r.matcher.IsCloseSymptom(token)
}

// HasMedicalSignal reports whether text contains at least minMatches medical
// tokens. It stops scanning as soon as the count is reached.
func (r *Relevance) HasMedicalSignal(text string, minMatches int) bool {
	return r.signal(lexicon.Tokenize(text), minMatches)
}

func (r *Relevance) signal(tokens []string, minMatches int) bool {
	if minMatches <= 0 {
		return true
	}
	count := 0
	for _, t := range tokens {
		if r.IsMedical(t) {
			count++
			if count >= minMatches {
				return true
			}
		}
	}
	return false
}

// Coverage sets one flag per category the first time a token satisfies it.
// Symptoms match exactly or fuzzily; the other categories match exactly.
func (r *Relevance) Coverage(text string) Coverage {
	return r.coverage(lexicon.Tokenize(text))
}

func (r *Relevance) coverage(tokens []string) Coverage {
	var c Coverage
	for _, t := range tokens {
		if !c.Symptom && r.matcher.IsCloseSymptom(t) {
			c.Symptom = true
		}
		if !c.BodyPart && r.vocab.Has(vocabulary.BodyParts, t) {
			c.BodyPart = true
		}
		if !c.Duration && r.vocab.Has(vocabulary.Duration, t) {
			c.Duration = true
		}
		if !c.Severity && r.vocab.Has(vocabulary.Severity, t) {
			c.Severity = true
		}
		if c.Count() == 4 {
			break
		}
	}
	return c
}

// HasSymptomStructure reports whether at least minFlags of the four
// categories are present.
func (r *Relevance) HasSymptomStructure(text string, minFlags int) bool {
	return r.Coverage(text).Count() >= minFlags
}

// Density is the share of medical tokens in a text.
type Density struct {
	Tokens  int
	Medical int
}

// Ratio returns Medical/Tokens, or 0 for an empty text.
func (d Density) Ratio() float64 {
	if d.Tokens == 0 {
		return 0
	}
	return float64(d.Medical) / float64(d.Tokens)
}

// Acceptable requires at least minTokens tokens and a ratio of at least
// minRatio.
func (d Density) Acceptable(minTokens int, minRatio float64) bool {
	if d.Tokens < minTokens {
		return false
	}
	return d.Ratio() >= minRatio
}

// MeasureDensity counts medical tokens by the same rule as HasMedicalSignal.
func (r *Relevance) MeasureDensity(text string) Density {
	return r.density(lexicon.Tokenize(text))
}

func (r *Relevance) density(tokens []string) Density {
	d := Density{Tokens: len(tokens)}
	for _, t := range tokens {
		if r.IsMedical(t) {
			d.Medical++
		}
	}
	return d
}

// MedicalDensity applies MeasureDensity with the default token minimum.
func (r *Relevance) MedicalDensity(text string, minRatio float64) bool {
	return r.MeasureDensity(text).Acceptable(DefaultMinDensityTokens, minRatio)
}
