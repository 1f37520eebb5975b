package pii

import (
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	tokenPrefix = "__PII_"
	tokenSuffix = "__"
)

var tokenPattern = regexp.MustCompile(`__PII_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}__`)

// IsToken reports whether s is exactly one vault token.
func IsToken(s string) bool {
	return len(s) == len(tokenPrefix)+36+len(tokenSuffix) && tokenPattern.MatchString(s)
}

// Result is the outcome of Sanitize.
type Result struct {
	Clean      string
	HasPII     bool
	Redactions map[Family]int
}

// Vault maps tokens to the values they replaced. A Vault belongs to one
// request: create it before sanitizing and drop it once the answer has been
// restored. It is safe for concurrent use.
type Vault struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewVault returns an empty vault.
func NewVault() *Vault {
	return &Vault{entries: make(map[string]string)}
}

// Sanitize replaces every match of every family with a fresh token and
// records the mapping.
func (v *Vault) Sanitize(text string) Result {
	matches := Detect(text)
	res := Result{Clean: text, Redactions: make(map[Family]int)}
	if len(matches) == 0 {
		return res
	}

	var b strings.Builder
	b.Grow(len(text) + len(matches)*len(tokenPrefix))
	last := 0

	v.mu.Lock()
	for _, m := range matches {
		token := tokenPrefix + uuid.NewString() + tokenSuffix
		v.entries[token] = m.Value
		b.WriteString(text[last:m.Start])
		b.WriteString(token)
		last = m.End
		res.Redactions[m.Family]++
	}
	v.mu.Unlock()

	b.WriteString(text[last:])
	res.Clean = b.String()
	res.HasPII = true
	return res
}

// Restore swaps every known token in text back to its original value.
// Unknown token-shaped strings are left as they are.
func (v *Vault) Restore(text string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if len(v.entries) == 0 {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		if orig, ok := v.entries[tok]; ok {
			return orig
		}
		return tok
	})
}

// Len returns the number of recorded tokens.
func (v *Vault) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries)
}
