// Package pii finds personal data in free text, swaps it for opaque tokens
// before the text leaves the process and puts it back afterwards.
package pii

import (
	"regexp"
	"sort"
)

// Family names one of the fixed pattern families.
type Family string

const (
	FamilyEmail   Family = "email"
	FamilyCard    Family = "card"
	FamilyAadhaar Family = "aadhaar"
	FamilySSN     Family = "ssn"
	FamilyPAN     Family = "pan"
	FamilyPhone   Family = "phone"
)

type pattern struct {
	family Family
	re     *regexp.Regexp
}

// patterns is ordered by priority. A span claimed by an earlier family is not
// offered to a later one, so a 16 digit card number is never split into an
// Aadhaar number plus a remainder.
var patterns = []pattern{
	{FamilyEmail, regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)},
	{FamilyCard, regexp.MustCompile(`\b\d(?:[ \-]?\d){12,18}\b`)},
	{FamilyAadhaar, regexp.MustCompile(`\b\d{4}[ \-]?\d{4}[ \-]?\d{4}\b`)},
	{FamilySSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{FamilyPAN, regexp.MustCompile(`(?i)\b[A-Z]{5}\d{4}[A-Z]\b`)},
	// Indian mobile numbers (5+5 grouping) first, then the 3-3-4 layouts.
	{FamilyPhone, regexp.MustCompile(`(?:\+91[\s\-]?|\b)[6-9]\d{4}[\s\-]?\d{5}\b|(?:\+\d{1,3}[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}\b`)},
}

// Families lists the families in priority order.
func Families() []Family {
	out := make([]Family, len(patterns))
	for i, p := range patterns {
		out[i] = p.family
	}
	return out
}

// Match is one detected span of text[Start:End].
type Match struct {
	Family Family
	Start  int
	End    int
	Value  string
}

// Detect returns the non-overlapping PII spans in text ordered by position.
func Detect(text string) []Match {
	var found []Match
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			if overlaps(found, loc[0], loc[1]) {
				continue
			}
			found = append(found, Match{
				Family: p.family,
				Start:  loc[0],
				End:    loc[1],
				Value:  text[loc[0]:loc[1]],
			})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Start < found[j].Start })
	return found
}

func overlaps(ms []Match, start, end int) bool {
	for _, m := range ms {
		if start < m.End && m.Start < end {
			return true
		}
	}
	return false
}

// ContainsPII reports whether any family matches text.
func ContainsPII(text string) bool {
	for _, p := range patterns {
		if p.re.MatchString(text) {
			return true
		}
	}
	return false
}

// OutputHasPII reports whether text still carries raw personal data once
// vault tokens are ignored. The token payload is hex, so tokens are blanked
// before scanning to keep them from looking like digit runs.
func OutputHasPII(text string) bool {
	return ContainsPII(tokenPattern.ReplaceAllString(text, " "))
}
