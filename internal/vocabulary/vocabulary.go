// Package vocabulary holds the curated medical term sets used for exact and
// fuzzy matching. The default vocabulary is embedded in the binary; an
// alternative YAML file with the same shape can be loaded at startup.
package vocabulary

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Skufu/symptomgate/internal/lexicon"
)

//go:embed vocabulary.yaml
var embedded []byte

// Category names one of the four term sets.
type Category string

const (
	Symptoms  Category = "symptoms"
	BodyParts Category = "bodyParts"
	Severity  Category = "severity"
	Duration  Category = "duration"
)

// Categories lists the sets in a stable order.
var Categories = []Category{Symptoms, BodyParts, Severity, Duration}

type file struct {
	Symptoms  []string `yaml:"symptoms"`
	BodyParts []string `yaml:"bodyParts"`
	Severity  []string `yaml:"severity"`
	Duration  []string `yaml:"duration"`
}

// Vocabulary is immutable after construction and safe for concurrent reads.
type Vocabulary struct {
	sets     map[Category]map[string]struct{}
	symptoms []string
}

// Default parses the embedded vocabulary.
func Default() (*Vocabulary, error) {
	return Parse(embedded)
}

// MustDefault is Default for package initialisation and tests.
func MustDefault() *Vocabulary {
	v, err := Default()
	if err != nil {
		panic(fmt.Sprintf("vocabulary: embedded vocabulary: %v", err))
	}
	return v
}

// LoadFile reads a YAML vocabulary from path.
func LoadFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML and normalizes every term with lexicon.NormalizeWord.
// Terms that normalize to nothing are dropped; duplicates collapse.
func Parse(data []byte) (*Vocabulary, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("vocabulary: decode: %w", err)
	}

	v := &Vocabulary{sets: make(map[Category]map[string]struct{}, len(Categories))}
	raw := map[Category][]string{
		Symptoms:  f.Symptoms,
		BodyParts: f.BodyParts,
		Severity:  f.Severity,
		Duration:  f.Duration,
	}
	for _, c := range Categories {
		set := make(map[string]struct{}, len(raw[c]))
		for _, term := range raw[c] {
			if n := lexicon.NormalizeWord(term); n != "" {
				set[n] = struct{}{}
			}
		}
		if len(set) == 0 {
			return nil, fmt.Errorf("vocabulary: category %q is empty", c)
		}
		v.sets[c] = set
	}

	v.symptoms = v.Terms(Symptoms)
	return v, nil
}

// Has reports whether token is an exact member of category c.
func (v *Vocabulary) Has(c Category, token string) bool {
	_, ok := v.sets[c][token]
	return ok
}

// HasAny reports whether token is an exact member of any category.
func (v *Vocabulary) HasAny(token string) bool {
	for _, c := range Categories {
		if v.Has(c, token) {
			return true
		}
	}
	return false
}

// Terms returns the sorted normalized terms of category c.
func (v *Vocabulary) Terms(c Category) []string {
	out := make([]string, 0, len(v.sets[c]))
	for t := range v.sets[c] {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SymptomTerms returns the symptom terms for fuzzy scans. Callers must not
// modify the slice.
func (v *Vocabulary) SymptomTerms() []string { return v.symptoms }

// Size returns the number of terms in category c.
func (v *Vocabulary) Size(c Category) int { return len(v.sets[c]) }
