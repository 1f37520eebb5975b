// Package config loads service settings from the environment, an optional
// .env file and an optional YAML file named by CONFIG_FILE.
//
// Nested keys map to environment variables by replacing "." with "_" and
// upper-casing, so gemini.api_key is GEMINI_API_KEY and gate.min_density is
// GATE_MIN_DENSITY.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Skufu/symptomgate/internal/analyzer"
	"github.com/Skufu/symptomgate/internal/cache"
	"github.com/Skufu/symptomgate/internal/gate"
	"github.com/Skufu/symptomgate/internal/logging"
)

// FileEnv names the environment variable holding an optional YAML file path.
const FileEnv = "CONFIG_FILE"

type Config struct {
	Port            string        `mapstructure:"port"`
	GinMode         string        `mapstructure:"gin_mode"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	Gemini GeminiConfig `mapstructure:"gemini"`
	Gate   GateConfig   `mapstructure:"gate"`

	EnableDB    bool   `mapstructure:"enable_db"`
	DatabaseURL string `mapstructure:"database_url"`

	RedisURL string        `mapstructure:"redis_url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type GeminiConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	ModelShort      string        `mapstructure:"model_short"`
	ModelMedium     string        `mapstructure:"model_medium"`
	ModelLong       string        `mapstructure:"model_long"`
	TierMediumChars int           `mapstructure:"tier_medium_chars"`
	TierLongChars   int           `mapstructure:"tier_long_chars"`
	Temperature     float32       `mapstructure:"temperature"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// GateConfig is the single place gate thresholds are set.
type GateConfig struct {
	MinChars          int     `mapstructure:"min_chars"`
	MaxInvalidRatio   float64 `mapstructure:"max_invalid_ratio"`
	MinSignalMatches  int     `mapstructure:"min_signal_matches"`
	MinStructureFlags int     `mapstructure:"min_structure_flags"`
	MinDensity        float64 `mapstructure:"min_density"`
	MinDensityTokens  int     `mapstructure:"min_density_tokens"`
	MetaFilter        bool    `mapstructure:"meta_filter"`
	FuzzyMaxDistance  int     `mapstructure:"fuzzy_max_distance"`
	FuzzyLengthCutoff int     `mapstructure:"fuzzy_length_cutoff"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("max_body_bytes", int64(1<<20))
	v.SetDefault("shutdown_timeout", 5*time.Second)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_short", analyzer.DefaultModelShort)
	v.SetDefault("gemini.model_medium", analyzer.DefaultModelMedium)
	v.SetDefault("gemini.model_long", analyzer.DefaultModelLong)
	v.SetDefault("gemini.tier_medium_chars", analyzer.DefaultTierMediumChars)
	v.SetDefault("gemini.tier_long_chars", analyzer.DefaultTierLongChars)
	v.SetDefault("gemini.temperature", analyzer.DefaultTemperature)
	v.SetDefault("gemini.max_output_tokens", analyzer.DefaultMaxOutputTokens)
	v.SetDefault("gemini.timeout", analyzer.DefaultTimeout)

	th := gate.DefaultThresholds()
	v.SetDefault("gate.min_chars", th.MinChars)
	v.SetDefault("gate.max_invalid_ratio", th.MaxInvalidRatio)
	v.SetDefault("gate.min_signal_matches", th.MinSignalMatches)
	v.SetDefault("gate.min_structure_flags", th.MinStructureFlags)
	v.SetDefault("gate.min_density", th.MinDensity)
	v.SetDefault("gate.min_density_tokens", th.MinDensityTokens)
	v.SetDefault("gate.meta_filter", th.MetaFilter)
	v.SetDefault("gate.fuzzy_max_distance", th.FuzzyMaxDistance)
	v.SetDefault("gate.fuzzy_length_cutoff", th.FuzzyLengthCutoff)

	v.SetDefault("enable_db", false)
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("cache_ttl", cache.DefaultTTL)
	v.SetDefault("rate_limit_rps", 2.0)
	v.SetDefault("rate_limit_burst", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

// Load reads .env (if present), then path, falling back to $CONFIG_FILE when
// path is empty, then the environment. The result is validated.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	if path == "" {
		path = os.Getenv(FileEnv)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks everything the CLI and the server share. The model key is
// checked separately by RequireModel because offline tools do not need it.
func (c *Config) Validate() error {
	var errs []error
	if c.EnableDB && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required when ENABLE_DB=true"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max_body_bytes must be positive"))
	}

	g := c.Gate
	if g.MaxInvalidRatio <= 0 || g.MaxInvalidRatio > 1 {
		errs = append(errs, fmt.Errorf("gate.max_invalid_ratio must be in (0,1], got %v", g.MaxInvalidRatio))
	}
	if g.MinDensity <= 0 || g.MinDensity > 1 {
		errs = append(errs, fmt.Errorf("gate.min_density must be in (0,1], got %v", g.MinDensity))
	}
	for name, n := range map[string]int{
		"gate.min_chars":           g.MinChars,
		"gate.min_signal_matches":  g.MinSignalMatches,
		"gate.min_structure_flags": g.MinStructureFlags,
		"gate.min_density_tokens":  g.MinDensityTokens,
		"gate.fuzzy_length_cutoff": g.FuzzyLengthCutoff,
	} {
		if n <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, n))
		}
	}
	if g.FuzzyMaxDistance < 0 {
		errs = append(errs, fmt.Errorf("gate.fuzzy_max_distance must not be negative, got %d", g.FuzzyMaxDistance))
	}
	if g.MinStructureFlags > 4 {
		errs = append(errs, fmt.Errorf("gate.min_structure_flags cannot exceed 4, got %d", g.MinStructureFlags))
	}

	m := c.Gemini
	if m.TierMediumChars <= 0 || m.TierLongChars <= m.TierMediumChars {
		errs = append(errs, fmt.Errorf("gemini tiers must increase: medium=%d long=%d", m.TierMediumChars, m.TierLongChars))
	}
	if m.Timeout <= 0 {
		errs = append(errs, errors.New("gemini.timeout must be positive"))
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("rate_limit_rps and rate_limit_burst must be positive"))
	}
	return errors.Join(errs...)
}

// RequireModel fails when the Gemini key is missing.
func (c *Config) RequireModel() error {
	if c.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	return nil
}

// Thresholds converts the gate section.
func (c *Config) Thresholds() gate.Thresholds {
	g := c.Gate
	return gate.Thresholds{
		MinChars:          g.MinChars,
		MaxInvalidRatio:   g.MaxInvalidRatio,
		MinSignalMatches:  g.MinSignalMatches,
		MinStructureFlags: g.MinStructureFlags,
		MinDensity:        g.MinDensity,
		MinDensityTokens:  g.MinDensityTokens,
		MetaFilter:        g.MetaFilter,
		FuzzyMaxDistance:  g.FuzzyMaxDistance,
		FuzzyLengthCutoff: g.FuzzyLengthCutoff,
	}
}

func (c *Config) Analyzer() analyzer.Config {
	m := c.Gemini
	return analyzer.Config{
		Tiers: analyzer.Tiers{
			Short:       m.ModelShort,
			Medium:      m.ModelMedium,
			Long:        m.ModelLong,
			MediumChars: m.TierMediumChars,
			LongChars:   m.TierLongChars,
		},
		Timeout:     m.Timeout,
		MaxAttempts: analyzer.DefaultMaxAttempts,
	}
}

func (c *Config) Model() analyzer.GeminiConfig {
	return analyzer.GeminiConfig{
		APIKey:          c.Gemini.APIKey,
		Temperature:     c.Gemini.Temperature,
		MaxOutputTokens: c.Gemini.MaxOutputTokens,
	}
}

func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat}
}
