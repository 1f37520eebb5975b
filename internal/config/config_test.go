package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/symptomgate/internal/analyzer"
	"github.com/Skufu/symptomgate/internal/gate"
	"github.com/Skufu/symptomgate/internal/vocabulary"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("ENABLE_DB", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, gate.DefaultThresholds(), cfg.Thresholds())
	assert.Equal(t, analyzer.DefaultTiers(), cfg.Analyzer().Tiers)
	assert.Equal(t, "json", cfg.Logging().Format)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("ENABLE_DB", "true")
	t.Setenv("DATABASE_URL", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("GEMINI_TIMEOUT", "12s")
	t.Setenv("GATE_MIN_DENSITY", "0.03")
	t.Setenv("GATE_META_FILTER", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "key", cfg.Model().APIKey)
	assert.Equal(t, 12*time.Second, cfg.Analyzer().Timeout)
	assert.InDelta(t, 0.03, cfg.Thresholds().MinDensity, 1e-9)
	assert.False(t, cfg.Thresholds().MetaFilter)
	assert.NoError(t, cfg.RequireModel())
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
port: "7000"
redis_url: redis://localhost:6379/0
gate:
  min_signal_matches: 3
gemini:
  model_short: tiny
`)
	t.Setenv(FileEnv, path)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 3, cfg.Gate.MinSignalMatches)
	assert.Equal(t, "tiny", cfg.Gemini.ModelShort)
	assert.Equal(t, analyzer.DefaultModelLong, cfg.Gemini.ModelLong)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, "gate:\n  min_density: [not, a, number\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestRequireModel(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireModel())
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv(FileEnv, "")
	cfg, err := Load("")
	require.NoError(t, err)
	return cfg
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ratio zero", func(c *Config) { c.Gate.MaxInvalidRatio = 0 }},
		{"ratio above one", func(c *Config) { c.Gate.MaxInvalidRatio = 1.5 }},
		{"density negative", func(c *Config) { c.Gate.MinDensity = -0.1 }},
		{"signal zero", func(c *Config) { c.Gate.MinSignalMatches = 0 }},
		{"structure above four", func(c *Config) { c.Gate.MinStructureFlags = 5 }},
		{"negative distance", func(c *Config) { c.Gate.FuzzyMaxDistance = -1 }},
		{"tiers not increasing", func(c *Config) { c.Gemini.TierLongChars = c.Gemini.TierMediumChars }},
		{"zero timeout", func(c *Config) { c.Gemini.Timeout = 0 }},
		{"zero body", func(c *Config) { c.MaxBodyBytes = 0 }},
		{"zero burst", func(c *Config) { c.RateLimitBurst = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			require.NoError(t, cfg.Validate())
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_ZeroFuzzyDistanceIsExactMatching(t *testing.T) {
	t.Setenv(FileEnv, "")
	cfg, err := Load(writeConfig(t, "gate:\n  fuzzy_max_distance: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Thresholds().FuzzyMaxDistance)

	g := gate.New(vocabulary.MustDefault(), cfg.Thresholds())
	r := g.Evaluate("headacke and nausia and coughh have kept me awake all night long")
	assert.Equal(t, gate.VerdictNoMedicalSignal, r.Verdict)
}
