package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Skufu/symptomgate/internal/config"
)

const symptoms = "I have had a mild headache and slight dizziness for three days"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.FileEnv, "")
	color.NoColor = true

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheck_Passes(t *testing.T) {
	out, err := run(t, "", "check", symptoms)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ ok")
	assert.Contains(t, out, "Coverage")
}

func TestCheck_RejectedExitsWithError(t *testing.T) {
	out, err := run(t, "", "check", strings.Repeat("x", 40))
	assert.True(t, errors.Is(err, errRejected))
	assert.Contains(t, out, "✗ low_clarity")
}

func TestCheck_JSON(t *testing.T) {
	out, err := run(t, "", "check", "-o", "json", symptoms)
	require.NoError(t, err)

	var r map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "ok", r["verdict"])
	assert.Equal(t, true, r["passed"])
	assert.NotContains(t, r, "message")
	assert.NotContains(t, r, "sanitized")
}

func TestCheck_YAMLFromStdinWithSanitize(t *testing.T) {
	out, err := run(t, symptoms+", write to jane.doe@example.com", "check", "--sanitize", "--output", "yaml")
	require.NoError(t, err)

	var r struct {
		Verdict    string         `yaml:"verdict"`
		Sanitized  string         `yaml:"sanitized"`
		Redactions map[string]int `yaml:"redactions"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &r))
	assert.Equal(t, "ok", r.Verdict)
	assert.Contains(t, r.Sanitized, "__PII_")
	assert.NotContains(t, r.Sanitized, "jane.doe@example.com")
	assert.Equal(t, map[string]int{"email": 1}, r.Redactions)
}

func TestCheck_LocalizedMessage(t *testing.T) {
	out, err := run(t, "", "check", "--locale", "es", "-o", "json", strings.Repeat("x", 40))
	require.ErrorIs(t, err, errRejected)

	var r map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Contains(t, r["message"], "No pudimos")
}

func TestCheck_ConfigThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gate:\n  min_signal_matches: 6\n"), 0o600))

	out, err := run(t, "", "check", "--config", path, symptoms)
	require.ErrorIs(t, err, errRejected)
	assert.Contains(t, out, "no_medical_signal")
}

func TestCheck_BadInput(t *testing.T) {
	_, err := run(t, "", "check", "-o", "xml", symptoms)
	require.Error(t, err)
	assert.False(t, errors.Is(err, errRejected))

	_, err = run(t, "   ", "check")
	require.Error(t, err)
	assert.False(t, errors.Is(err, errRejected))
}
