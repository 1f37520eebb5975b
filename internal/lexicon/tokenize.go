// Package lexicon reduces free text to normalized word tokens. Every filter in
// the gate compares these tokens, and the vocabulary is normalized with the
// same rules at load time.
package lexicon

import "strings"

// folds are applied in order before suffix stripping.
var folds = []struct{ from, to string }{
	{"ae", "e"},
	{"oe", "e"},
	{"ph", "f"},
}

// suffixes are tried longest first; at most one is stripped per pass.
var suffixes = []string{"ness", "ies", "es", "s"}

// Tokenize lowercases text, replaces every character outside [a-z] and
// whitespace with a space, splits on whitespace and normalizes each word.
// Empty results are dropped.
func Tokenize(text string) []string {
	fields := strings.Fields(lettersOnly(strings.ToLower(text), ' '))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := NormalizeWord(f); w != "" {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// NormalizeWord folds diphthongs and digraphs, strips one plural/abstract
// suffix and removes non-letters, repeating until the word stops changing.
// Every step only shortens the word, so the loop terminates and the result
// is a fixed point: NormalizeWord(NormalizeWord(w)) == NormalizeWord(w).
func NormalizeWord(word string) string {
	w := strings.ToLower(word)
	for {
		next := normalizeOnce(w)
		if next == w {
			return w
		}
		w = next
	}
}

func normalizeOnce(w string) string {
	for _, f := range folds {
		w = strings.ReplaceAll(w, f.from, f.to)
	}
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) {
			w = strings.TrimSuffix(w, s)
			break
		}
	}
	return lettersOnly(w, -1)
}

// lettersOnly keeps a-z and whitespace. Other runes become repl, or are
// dropped when repl is negative.
func lettersOnly(s string, repl rune) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteRune(r)
		case repl >= 0:
			b.WriteRune(repl)
		}
	}
	return b.String()
}

// RawWords lowercases text, drops every character that is not a letter or
// whitespace, and splits on whitespace. No normalization is applied; the
// text-quality gate inspects words as typed.
func RawWords(text string) []string {
	return strings.Fields(lettersOnly(strings.ToLower(text), -1))
}
