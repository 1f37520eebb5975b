package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skufu/symptomgate/internal/vocabulary"
)

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"fever", "fever", 0},
		{"fever", "fevr", 1},
		{"fever", "feever", 1},
		{"fever", "fevor", 1},
		{"kitten", "sitting", 3},
		{"nausea", "nasuea", 2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Levenshtein(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
	}
}

func TestBoundedDistance_LengthCutoff(t *testing.T) {
	assert.Equal(t, 3, BoundedDistance("ache", "headache", 2), "length delta 4 short-circuits")
	assert.Equal(t, 3, BoundedDistance("headache", "ache", 2))
	assert.Equal(t, 2, BoundedDistance("cough", "coughed", 2), "delta 2 runs the full comparison")
	assert.Equal(t, 3, BoundedDistance("abc", "abcdef", 5))
	assert.Equal(t, 6, BoundedDistance("abc", "abcdefghi", 5))
}

func TestIsCloseSymptom(t *testing.T) {
	m := NewMatcher(vocabulary.MustDefault(), -1, 0)

	assert.True(t, m.IsCloseSymptom("headache"), "vocabulary term")
	assert.True(t, m.IsCloseSymptom("headach"), "deletion")
	assert.True(t, m.IsCloseSymptom("heaadache"), "insertion")
	assert.True(t, m.IsCloseSymptom("headacke"), "substitution")
	assert.True(t, m.IsCloseSymptom("migrane"))
	assert.False(t, m.IsCloseSymptom("hedaek"))
	assert.False(t, m.IsCloseSymptom("banana"))
	assert.False(t, m.IsCloseSymptom(""))
}

func TestIsCloseSymptom_EveryTermAndSingleEdit(t *testing.T) {
	v := vocabulary.MustDefault()
	m := NewMatcher(v, DefaultMaxDistance, DefaultLengthCutoff)
	for _, term := range v.SymptomTerms() {
		assert.True(t, m.IsCloseSymptom(term), term)
		assert.True(t, m.IsCloseSymptom(term+"q"), "insertion on %s", term)
		assert.True(t, m.IsCloseSymptom("q"+term[1:]), "substitution on %s", term)
		if len(term) > 1 {
			assert.True(t, m.IsCloseSymptom(term[:len(term)-1]), "deletion on %s", term)
		}
	}
}

func TestIsCloseSymptom_RejectsLengthDeltaAboveCutoff(t *testing.T) {
	v, err := vocabulary.Parse([]byte("symptoms: [cough]\nbodyParts: [chest]\nseverity: [mild]\nduration: [day]\n"))
	assert.NoError(t, err)

	wide := NewMatcher(v, 2, 2)
	assert.True(t, wide.IsCloseSymptom("coughxx"), "delta 2 is compared")
	assert.False(t, wide.IsCloseSymptom("coughxxx"), "delta 3 is cut off")
	assert.True(t, NewMatcher(v, 3, 5).IsCloseSymptom("coughxxx"))
}

func TestNewMatcher_ZeroDistanceIsExactOnly(t *testing.T) {
	m := NewMatcher(vocabulary.MustDefault(), 0, DefaultLengthCutoff)

	assert.True(t, m.IsCloseSymptom("headache"))
	assert.False(t, m.IsCloseSymptom("headach"))
	assert.False(t, m.IsCloseSymptom("headacke"))
}

func TestEvaluate_ZeroFuzzyDistanceDisablesTypoMatching(t *testing.T) {
	text := "headacke and nausia and coughh have kept me awake all night long"

	assert.Equal(t, VerdictOK, New(vocabulary.MustDefault(), DefaultThresholds()).Evaluate(text).Verdict)

	th := DefaultThresholds()
	th.FuzzyMaxDistance = 0
	r := New(vocabulary.MustDefault(), th).Evaluate(text)
	assert.Equal(t, VerdictNoMedicalSignal, r.Verdict, "report %+v", r)
}
