// Package analyzer turns a gated, sanitized symptom description into an
// AnalysisResult. It owns the model call and treats everything the model
// returns as untrusted: the answer is restored through the request's PII
// vault, checked for leaked personal data, parsed, validated against the
// result schema and finally has its policy fields overwritten.
package analyzer

import (
	"context"
	"time"

	"github.com/Skufu/symptomgate/internal/logging"
	"github.com/Skufu/symptomgate/internal/pii"
	apperrors "github.com/Skufu/symptomgate/pkg/errors"
)

const (
	// DefaultMaxAttempts allows one corrected retry after malformed output.
	DefaultMaxAttempts = 2
	// DefaultTimeout bounds a whole analysis, retries included.
	DefaultTimeout = 30 * time.Second
)

// AttemptRecorder receives one observation per model call.
type AttemptRecorder interface {
	RecordModelAttempt(model, outcome string, d time.Duration)
}

// Config tunes the analyzer.
type Config struct {
	Tiers       Tiers
	Timeout     time.Duration
	MaxAttempts int
}

// CallInfo describes how an analysis reached the model.
type CallInfo struct {
	Model    string
	Attempts int
}

// Analyzer runs the model call under the response contract. It is safe for
// concurrent use; per-request state lives in the vault passed to Analyze.
type Analyzer struct {
	model    Model
	cfg      Config
	logger   logging.Logger
	recorder AttemptRecorder
}

// New builds an Analyzer. recorder may be nil.
func New(model Model, cfg Config, logger logging.Logger, recorder AttemptRecorder) *Analyzer {
	if cfg.Tiers == (Tiers{}) {
		cfg.Tiers = DefaultTiers()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Analyzer{model: model, cfg: cfg, logger: logger.Named("analyzer"), recorder: recorder}
}

// Analyze asks the model about text, which must already be sanitized by
// vault. vault may be nil when nothing was redacted.
func (a *Analyzer) Analyze(ctx context.Context, text, locale string, vault *pii.Vault) (*AnalysisResult, CallInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	prompt := BuildPrompt(text, locale)
	info := CallInfo{Model: a.cfg.Tiers.Select(prompt)}

	policy := RetryPolicy{
		MaxAttempts: a.cfg.MaxAttempts,
		Retryable:   apperrors.Retryable,
		Transform:   StrictTransform,
	}
	res, attempts, err := Retry(ctx, policy, prompt, func(ctx context.Context, p string) (*AnalysisResult, error) {
		return a.attempt(ctx, info.Model, p, vault)
	})
	info.Attempts = attempts
	if err != nil {
		a.logger.Warn("analysis failed",
			logging.String("model", info.Model),
			logging.Int("attempts", attempts),
			logging.String("code", apperrors.GetCode(err).String()),
			logging.Err(err),
		)
		return nil, info, err
	}
	a.logger.Debug("analysis complete", logging.String("model", info.Model), logging.Int("attempts", attempts))
	return res, info, nil
}

func (a *Analyzer) attempt(ctx context.Context, model, prompt string, vault *pii.Vault) (res *AnalysisResult, err error) {
	start := time.Now()
	defer func() {
		if a.recorder == nil {
			return
		}
		outcome := "ok"
		if err != nil {
			outcome = apperrors.GetCode(err).String()
		}
		a.recorder.RecordModelAttempt(model, outcome, time.Since(start))
	}()

	raw, err := a.model.Generate(ctx, model, prompt)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.CodeUnknown {
			return nil, apperrors.Wrap(err, apperrors.CodeModelUnavailable, "model call failed")
		}
		return nil, err
	}

	restored := raw
	if vault != nil {
		restored = vault.Restore(raw)
	}
	if pii.OutputHasPII(restored) {
		return nil, apperrors.New(apperrors.CodeSecurityViolation, "model output contains personal data")
	}

	doc, err := ParseDocument(restored)
	if err != nil {
		return nil, err
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	Enforce(doc)
	return Decode(doc), nil
}
