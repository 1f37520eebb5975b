package pii

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_Families(t *testing.T) {
	cases := []struct {
		text   string
		family Family
		value  string
	}{
		{"mail jane.doe@example.com now", FamilyEmail, "jane.doe@example.com"},
		{"card 4111-1111-1111-1111 ok", FamilyCard, "4111-1111-1111-1111"},
		{"card 4111 1111 1111 1111", FamilyCard, "4111 1111 1111 1111"},
		{"aadhaar 2345 6789 0123", FamilyAadhaar, "2345 6789 0123"},
		{"ssn 123-45-6789", FamilySSN, "123-45-6789"},
		{"pan ABCDE1234F", FamilyPAN, "ABCDE1234F"},
		{"call +1 555-123-4567", FamilyPhone, "+1 555-123-4567"},
		{"call (555) 123-4567 today", FamilyPhone, "(555) 123-4567"},
		{"call me on +91 98765 43210 please", FamilyPhone, "+91 98765 43210"},
		{"my number is 98765-43210", FamilyPhone, "98765-43210"},
	}
	for _, tc := range cases {
		t.Run(string(tc.family)+"/"+tc.value, func(t *testing.T) {
			ms := Detect(tc.text)
			require.Len(t, ms, 1)
			assert.Equal(t, tc.family, ms[0].Family)
			assert.Equal(t, tc.value, ms[0].Value)
			assert.Equal(t, tc.value, tc.text[ms[0].Start:ms[0].End])
		})
	}
}

func TestDetect_IgnoresClinicalNumbers(t *testing.T) {
	for _, s := range []string{
		"temp 38.5 for 3 days, bp 120/80",
		"on 2024-01-15 at 10:30",
		"took 2 tablets of 500mg",
	} {
		assert.Empty(t, Detect(s), s)
	}
}

func TestDetect_OrderedAndNonOverlapping(t *testing.T) {
	text := "reach me at jane@example.com or 555.123.4567, card 4111111111111111"
	ms := Detect(text)
	require.Len(t, ms, 3)
	assert.Equal(t, []Family{FamilyEmail, FamilyPhone, FamilyCard},
		[]Family{ms[0].Family, ms[1].Family, ms[2].Family})
	for i := 1; i < len(ms); i++ {
		assert.LessOrEqual(t, ms[i-1].End, ms[i].Start)
	}
}

func TestSanitize_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"no personal data in this sentence",
		"mail jane.doe@example.com now",
		"reach me at jane@example.com or 555.123.4567, card 4111111111111111",
		"same email twice a@b.io and a@b.io",
		"ssn 123-45-6789 and pan abcde1234f and aadhaar 2345-6789-0123",
		"chest pain since morning, call +91 98765 43210 or 98765-43210",
	}
	for _, in := range inputs {
		v := NewVault()
		res := v.Sanitize(in)
		assert.Equal(t, in, v.Restore(res.Clean), in)
		assert.Equal(t, res.HasPII, res.Clean != in, in)
		assert.False(t, OutputHasPII(res.Clean), "sanitized text is clean: %q", res.Clean)
	}
}

func TestSanitize_FreshTokenPerMatch(t *testing.T) {
	v := NewVault()
	res := v.Sanitize("a@b.io then a@b.io")

	tokens := tokenPattern.FindAllString(res.Clean, -1)
	require.Len(t, tokens, 2)
	assert.NotEqual(t, tokens[0], tokens[1])
	for _, tok := range tokens {
		assert.True(t, IsToken(tok))
	}
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, map[Family]int{FamilyEmail: 2}, res.Redactions)
}

func TestRestore_LeavesUnknownTokens(t *testing.T) {
	a, b := NewVault(), NewVault()
	res := a.Sanitize("mail jane@example.com")

	assert.Equal(t, res.Clean, b.Restore(res.Clean), "vaults do not share entries")
	assert.Equal(t, "mail jane@example.com", a.Restore(res.Clean))
}

func TestOutputHasPII(t *testing.T) {
	v := NewVault()
	res := v.Sanitize("card 4111 1111 1111 1111 and ssn 123-45-6789")
	require.True(t, res.HasPII)

	assert.False(t, OutputHasPII(res.Clean))
	assert.True(t, OutputHasPII(res.Clean+" contact leak@example.com"), "bare email next to vault tokens")
	assert.True(t, OutputHasPII(v.Restore(res.Clean)))
	assert.False(t, OutputHasPII("rest and drink fluids"))
}

func TestVault_ConcurrentUse(t *testing.T) {
	v := NewVault()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := v.Sanitize("mail jane@example.com")
			assert.Equal(t, "mail jane@example.com", v.Restore(res.Clean))
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, v.Len())
}

func TestFamilies(t *testing.T) {
	assert.Equal(t, []Family{FamilyEmail, FamilyCard, FamilyAadhaar, FamilySSN, FamilyPAN, FamilyPhone}, Families())
}
