package vocabulary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsAllCategories(t *testing.T) {
	v, err := Default()
	require.NoError(t, err)
	for _, c := range Categories {
		assert.Greater(t, v.Size(c), 10, "category %s", c)
	}
}

func TestDefault_TermsAreNormalized(t *testing.T) {
	v := MustDefault()
	assert.True(t, v.Has(Symptoms, "headache"))
	assert.True(t, v.Has(Symptoms, "dizzi"), "dizziness is stored in normalized form")
	assert.False(t, v.Has(Symptoms, "dizziness"))
	assert.True(t, v.Has(Duration, "day"))
	assert.True(t, v.Has(Severity, "mild"))
	assert.True(t, v.Has(BodyParts, "chest"))
	assert.True(t, v.HasAny("throat"))
	assert.False(t, v.HasAny("banana"))
}

func TestParse_DeduplicatesAndRejectsEmpty(t *testing.T) {
	v, err := Parse([]byte(`
symptoms: [cough, coughs, Cough]
bodyParts: [chest]
severity: [mild]
duration: [days, day]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"cough"}, v.Terms(Symptoms))
	assert.Equal(t, []string{"day"}, v.Terms(Duration))
	assert.Equal(t, []string{"cough"}, v.SymptomTerms())

	_, err = Parse([]byte("symptoms: [cough]\nbodyParts: [chest]\nseverity: [mild]\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("symptoms: [cough"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symptoms: [rash]\nbodyParts: [skin]\nseverity: [severe]\nduration: [week]\n"), 0o600))

	v, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, v.Has(Symptoms, "rash"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
