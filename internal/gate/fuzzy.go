package gate

import "github.com/Skufu/symptomgate/internal/vocabulary"

const (
	// DefaultMaxDistance is the largest edit distance still considered close.
	DefaultMaxDistance = 1
	// DefaultLengthCutoff skips the dynamic program when the lengths of the
	// two words differ by more than this. Such pairs are reported at
	// distance cutoff+1. With a cutoff of 2 some pairs that a full
	// Levenshtein would place at distance 2 are rejected without
	// computation; with DefaultMaxDistance of 1 this never changes a result.
	DefaultLengthCutoff = 2
)

// Matcher compares tokens against the symptom vocabulary by edit distance.
type Matcher struct {
	vocab        *vocabulary.Vocabulary
	maxDistance  int
	lengthCutoff int
}

// NewMatcher builds a Matcher. A maxDistance of 0 accepts exact vocabulary
// terms only; a negative maxDistance or a non-positive lengthCutoff falls
// back to the default.
func NewMatcher(v *vocabulary.Vocabulary, maxDistance, lengthCutoff int) *Matcher {
	if maxDistance < 0 {
		maxDistance = DefaultMaxDistance
	}
	if lengthCutoff <= 0 {
		lengthCutoff = DefaultLengthCutoff
	}
	return &Matcher{vocab: v, maxDistance: maxDistance, lengthCutoff: lengthCutoff}
}

// IsCloseSymptom reports whether word is within maxDistance edits of any
// symptom term. word is expected to be a normalized token.
func (m *Matcher) IsCloseSymptom(word string) bool {
	if word == "" {
		return false
	}
	if m.vocab.Has(vocabulary.Symptoms, word) {
		return true
	}
	for _, term := range m.vocab.SymptomTerms() {
		if BoundedDistance(word, term, m.lengthCutoff) <= m.maxDistance {
			return true
		}
	}
	return false
}

// BoundedDistance is Levenshtein distance with a length pre-filter: when the
// byte lengths of a and b differ by more than cutoff it returns cutoff+1
// without running the dynamic program.
func BoundedDistance(a, b string, cutoff int) int {
	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	if diff > cutoff {
		return cutoff + 1
	}
	return Levenshtein(a, b)
}

// Levenshtein returns the unit-cost insert/delete/substitute distance between
// a and b, compared byte by byte.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
