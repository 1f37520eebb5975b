// Package gate decides whether free text is well-formed and medically
// relevant enough to send to the model. All checks are pure functions of the
// text and the read-only vocabulary, so a Gate is safe for concurrent use.
package gate

import (
	"strings"
	"unicode/utf8"

	"github.com/Skufu/symptomgate/internal/lexicon"
	"github.com/Skufu/symptomgate/internal/vocabulary"
)

// Verdict is the outcome of Evaluate.
type Verdict string

const (
	VerdictOK                 Verdict = "ok"
	VerdictTooShort           Verdict = "too_short"
	VerdictLowClarity         Verdict = "low_clarity"
	VerdictNoMedicalSignal    Verdict = "no_medical_signal"
	VerdictNoSymptomStructure Verdict = "no_symptom_structure"
	VerdictLowDensity         Verdict = "low_density"
	VerdictMetaInput          Verdict = "meta_input"
)

// Verdicts lists every verdict, ok first.
var Verdicts = []Verdict{
	VerdictOK, VerdictTooShort, VerdictLowClarity, VerdictNoMedicalSignal,
	VerdictNoSymptomStructure, VerdictLowDensity, VerdictMetaInput,
}

// OK reports whether the text may proceed.
func (v Verdict) OK() bool { return v == VerdictOK }

// DefaultMinChars mirrors the locked config.minCharCount of the result.
const DefaultMinChars = 30

// Thresholds is the single source of truth for every gate constant.
type Thresholds struct {
	MinChars          int
	MaxInvalidRatio   float64
	MinSignalMatches  int
	MinStructureFlags int
	MinDensity        float64
	MinDensityTokens  int
	MetaFilter        bool
	FuzzyMaxDistance  int
	FuzzyLengthCutoff int
}

// DefaultThresholds returns the production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinChars:          DefaultMinChars,
		MaxInvalidRatio:   DefaultMaxInvalidRatio,
		MinSignalMatches:  DefaultMinSignalMatches,
		MinStructureFlags: DefaultMinStructureFlags,
		MinDensity:        DefaultMinDensity,
		MinDensityTokens:  DefaultMinDensityTokens,
		MetaFilter:        true,
		FuzzyMaxDistance:  DefaultMaxDistance,
		FuzzyLengthCutoff: DefaultLengthCutoff,
	}
}

// Report is a verdict plus the measurements that produced it.
type Report struct {
	Verdict      Verdict  `json:"verdict" yaml:"verdict"`
	Chars        int      `json:"chars" yaml:"chars"`
	Tokens       int      `json:"tokens" yaml:"tokens"`
	MedicalCount int      `json:"medicalTokens" yaml:"medicalTokens"`
	Density      float64  `json:"density" yaml:"density"`
	InvalidRatio float64  `json:"invalidRatio" yaml:"invalidRatio"`
	Coverage     Coverage `json:"coverage" yaml:"coverage"`
	Meta         bool     `json:"meta" yaml:"meta"`
}

// Gate composes the individual checks.
type Gate struct {
	th        Thresholds
	relevance *Relevance
}

// New builds a Gate over v.
func New(v *vocabulary.Vocabulary, th Thresholds) *Gate {
	m := NewMatcher(v, th.FuzzyMaxDistance, th.FuzzyLengthCutoff)
	return &Gate{th: th, relevance: NewRelevance(v, m)}
}

// Thresholds returns the configured thresholds.
func (g *Gate) Thresholds() Thresholds { return g.th }

// Relevance exposes the medical-signal checks.
func (g *Gate) Relevance() *Relevance { return g.relevance }

// Evaluate runs every check and returns the first failing verdict in this
// order: too_short, meta_input, low_clarity, no_medical_signal,
// no_symptom_structure, low_density.
func (g *Gate) Evaluate(text string) Report {
	trimmed := strings.TrimSpace(text)
	tokens := lexicon.Tokenize(trimmed)
	quality := MeasureQuality(trimmed)
	density := g.relevance.density(tokens)
	coverage := g.relevance.coverage(tokens)

	r := Report{
		Chars:        utf8.RuneCountInString(trimmed),
		Tokens:       density.Tokens,
		MedicalCount: density.Medical,
		Density:      density.Ratio(),
		InvalidRatio: quality.InvalidRatio(),
		Coverage:     coverage,
		Meta:         IsMetaInput(trimmed),
	}

	switch {
	case r.Chars < g.th.MinChars:
		r.Verdict = VerdictTooShort
	case g.th.MetaFilter && r.Meta:
		r.Verdict = VerdictMetaInput
	case !quality.Acceptable(g.th.MaxInvalidRatio):
		r.Verdict = VerdictLowClarity
	case !g.relevance.signal(tokens, g.th.MinSignalMatches):
		r.Verdict = VerdictNoMedicalSignal
	case coverage.Count() < g.th.MinStructureFlags:
		r.Verdict = VerdictNoSymptomStructure
	case !density.Acceptable(g.th.MinDensityTokens, g.th.MinDensity):
		r.Verdict = VerdictLowDensity
	default:
		r.Verdict = VerdictOK
	}
	return r
}
