package lexicon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWord(t *testing.T) {
	cases := map[string]string{
		"headache":   "headache",
		"headaches":  "headach",
		"dizziness":  "dizzi",
		"bodies":     "bod",
		"days":       "day",
		"diarrhoea":  "diarrhea",
		"anaemia":    "anemia",
		"phlegm":     "flegm",
		"Fever":      "fever",
		"glasses":    "gla",
		"it's":       "it",
		"":           "",
		"s":          "",
		"oesophagus": "esofagu",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeWord(in), "input %q", in)
	}
}

func TestNormalizeWord_FixedPoint(t *testing.T) {
	for _, w := range []string{"glasses", "buses", "lenses", "aae", "pphh", "businesses", "stress"} {
		once := NormalizeWord(w)
		assert.Equal(t, once, NormalizeWord(once), "input %q", w)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("I have had a MILD headache, and slight dizziness for 3 days!")
	assert.Equal(t, []string{"i", "have", "had", "a", "mild", "headache", "and", "slight", "dizzi", "for", "day"}, got)
}

func TestTokenize_EmptyAndSymbols(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("123 !!! ---"))
	assert.Empty(t, Tokenize("s s s"))
}

func TestTokenize_Idempotent(t *testing.T) {
	inputs := []string{
		"I have had a mild headache and slight dizziness for three days",
		"Glasses, buses & lenses; oesophageal phlegm!!",
		"stressed businesses with aaeoe issues",
		"x",
		"",
	}
	for _, in := range inputs {
		first := Tokenize(in)
		assert.Equal(t, first, Tokenize(strings.Join(first, " ")), "input %q", in)
	}
}

func TestRawWords(t *testing.T) {
	assert.Equal(t, []string{"ive", "got", "f", "fever"}, RawWords("I've got 102F fever"))
	assert.Equal(t, []string{"xxxxxxxx"}, RawWords("xxxxxxxx"))
	assert.Empty(t, RawWords("   "))
}
