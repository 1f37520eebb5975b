package gate

import (
	"strings"

	"github.com/Skufu/symptomgate/internal/lexicon"
)

const (
	// DefaultMaxInvalidRatio rejects text once 40% of its scored words look
	// like garbage.
	DefaultMaxInvalidRatio = 0.4

	minQualityWords     = 3
	minScoredWordLength = 3
	minRepeatRun        = 4
)

// Quality is the word classification behind IsTextValidEnough.
type Quality struct {
	Words   int
	Valid   int
	Invalid int
}

// Scored is the number of words long enough to be classified.
func (q Quality) Scored() int { return q.Valid + q.Invalid }

// InvalidRatio is Invalid/Scored, or 1 when nothing was scored.
func (q Quality) InvalidRatio() float64 {
	if q.Scored() == 0 {
		return 1
	}
	return float64(q.Invalid) / float64(q.Scored())
}

// Acceptable applies the thresholds: at least three words, at least one
// scored word, and an invalid ratio strictly below maxInvalidRatio.
func (q Quality) Acceptable(maxInvalidRatio float64) bool {
	if q.Words < minQualityWords || q.Scored() == 0 {
		return false
	}
	return q.InvalidRatio() < maxInvalidRatio
}

// MeasureQuality classifies the raw (unnormalized) words of text. Words
// shorter than three letters are ignored. A word is invalid when it is one
// letter repeated four or more times, or when it has no vowel.
func MeasureQuality(text string) Quality {
	words := lexicon.RawWords(text)
	q := Quality{Words: len(words)}
	for _, w := range words {
		if len(w) < minScoredWordLength {
			continue
		}
		if isRepeatedRun(w) || !strings.ContainsAny(w, "aeiou") {
			q.Invalid++
		} else {
			q.Valid++
		}
	}
	return q
}

// IsTextValidEnough reports whether text reads like language rather than
// keyboard mashing.
func IsTextValidEnough(text string, maxInvalidRatio float64) bool {
	return MeasureQuality(text).Acceptable(maxInvalidRatio)
}

// isRepeatedRun reports whether w is a single letter repeated at least
// minRepeatRun times.
func isRepeatedRun(w string) bool {
	if len(w) < minRepeatRun {
		return false
	}
	for i := 1; i < len(w); i++ {
		if w[i] != w[0] {
			return false
		}
	}
	return true
}
