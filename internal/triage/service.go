// Package triage runs one symptom description through the whole pipeline:
// input checks, the gates, the PII vault, the result cache, the analyzer and
// finally the audit log.
package triage

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Skufu/symptomgate/internal/analyzer"
	"github.com/Skufu/symptomgate/internal/audit"
	"github.com/Skufu/symptomgate/internal/cache"
	"github.com/Skufu/symptomgate/internal/gate"
	"github.com/Skufu/symptomgate/internal/logging"
	"github.com/Skufu/symptomgate/internal/metrics"
	"github.com/Skufu/symptomgate/internal/pii"
	apperrors "github.com/Skufu/symptomgate/pkg/errors"
)

// MinInputChars is the shortest trimmed text accepted at all. Longer texts
// that are still too thin are handled by the gate.
const MinInputChars = 10

const auditTimeout = 2 * time.Second

// Status is the top-level outcome of an assessment.
type Status string

const (
	StatusAnalyzed      Status = "analyzed"
	StatusNeedsMoreInfo Status = "needs_more_info"
)

// Request is the inbound body. Text is untyped so that a non-string value
// can be rejected as invalid input rather than failing to decode.
type Request struct {
	Text      interface{} `json:"text"`
	Locale    string      `json:"locale"`
	RequestID string      `json:"-"`
}

// Outcome is what Assess produced. Result is set only when Status is
// StatusAnalyzed; Message only when it is StatusNeedsMoreInfo.
type Outcome struct {
	Status     Status
	Message    string
	Report     gate.Report
	Result     *analyzer.AnalysisResult
	Model      string
	Attempts   int
	CacheHit   bool
	Redactions int
}

// Analyzer is the model-facing half of the pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, text, locale string, vault *pii.Vault) (*analyzer.AnalysisResult, analyzer.CallInfo, error)
}

type Service struct {
	gate     *gate.Gate
	analyzer Analyzer
	cache    cache.ResultCache
	audit    audit.Store
	recorder metrics.Recorder
	logger   logging.Logger
}

type Option func(*Service)

func WithCache(c cache.ResultCache) Option { return func(s *Service) { s.cache = c } }

func WithAudit(a audit.Store) Option { return func(s *Service) { s.audit = a } }

func WithRecorder(r metrics.Recorder) Option { return func(s *Service) { s.recorder = r } }

func WithLogger(l logging.Logger) Option { return func(s *Service) { s.logger = l } }

// NewService wires the pipeline. Cache, audit, metrics and logging default
// to no-ops.
func NewService(g *gate.Gate, a Analyzer, opts ...Option) *Service {
	s := &Service{
		gate:     g,
		analyzer: a,
		cache:    cache.Nop{},
		audit:    audit.Nop{},
		recorder: metrics.NewNoop(),
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("triage")
	return s
}

// Assess validates req and, when the text passes every gate, analyzes it.
// A gate rejection is not an error: it yields StatusNeedsMoreInfo and the
// model is never called. Errors are AppErrors; INPUT_* codes describe the
// request, anything else is an analysis failure.
func (s *Service) Assess(ctx context.Context, req Request) (out *Outcome, err error) {
	start := time.Now()
	locale := baseLanguage(req.Locale)
	out = &Outcome{}
	defer func() { s.finish(ctx, req.RequestID, locale, out, err, time.Since(start)) }()

	raw, ok := req.Text.(string)
	if !ok {
		return out, apperrors.New(apperrors.CodeInvalidInput, "text must be a string")
	}
	text := strings.TrimSpace(raw)
	if utf8.RuneCountInString(text) < MinInputChars {
		return out, apperrors.Newf(apperrors.CodeInputTooShort, "text has fewer than %d characters", MinInputChars)
	}

	out.Report = s.gate.Evaluate(text)
	s.recorder.RecordVerdict(string(out.Report.Verdict))
	if !out.Report.Verdict.OK() {
		out.Status = StatusNeedsMoreInfo
		out.Message = Message(out.Report.Verdict, locale)
		return out, nil
	}

	vault := pii.NewVault()
	sanitized := vault.Sanitize(text)
	for family, n := range sanitized.Redactions {
		s.recorder.RecordRedactions(string(family), n)
		out.Redactions += n
	}

	result, err := s.analyze(ctx, sanitized, locale, vault, out)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeSecurityViolation) {
			s.recorder.RecordPIILeak()
		}
		return out, err
	}
	out.Status = StatusAnalyzed
	out.Result = result
	return out, nil
}

// analyze consults the cache only for text without personal data, so a
// cache entry can never be derived from PII.
func (s *Service) analyze(ctx context.Context, sanitized pii.Result, locale string, vault *pii.Vault, out *Outcome) (*analyzer.AnalysisResult, error) {
	call := func(ctx context.Context) (*analyzer.AnalysisResult, error) {
		res, info, err := s.analyzer.Analyze(ctx, sanitized.Clean, locale, vault)
		out.Model = info.Model
		out.Attempts = info.Attempts
		return res, err
	}
	if sanitized.HasPII {
		return call(ctx)
	}

	var result analyzer.AnalysisResult
	hit, err := s.cache.GetOrLoad(ctx, cache.Key(locale, sanitized.Clean), &result, func(ctx context.Context) (interface{}, error) {
		return call(ctx)
	})
	if err != nil {
		return nil, err
	}
	s.recorder.RecordCacheAccess(hit)
	out.CacheHit = hit
	return &result, nil
}

func (s *Service) finish(ctx context.Context, requestID, locale string, out *Outcome, err error, d time.Duration) {
	code := apperrors.CodeOK
	if err != nil {
		code = apperrors.GetCode(err)
	}

	fields := []logging.Field{
		logging.String("request_id", requestID),
		logging.String("verdict", string(out.Report.Verdict)),
		logging.String("outcome", code.String()),
		logging.Int("chars", out.Report.Chars),
		logging.String("model", out.Model),
		logging.Int("attempts", out.Attempts),
		logging.Bool("cache_hit", out.CacheHit),
		logging.Int("redactions", out.Redactions),
		logging.Duration("duration", d),
	}
	switch {
	case err == nil:
		s.logger.Info("assessment finished", fields...)
	case apperrors.IsCode(err, apperrors.CodeInvalidInput), apperrors.IsCode(err, apperrors.CodeInputTooShort):
		s.logger.Debug("assessment rejected", fields...)
		return
	default:
		s.logger.Error("assessment failed", append(fields, logging.Err(err))...)
	}

	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	event := audit.Event{
		RequestID:  requestID,
		Verdict:    string(out.Report.Verdict),
		Outcome:    code.String(),
		Locale:     locale,
		Model:      out.Model,
		Attempts:   out.Attempts,
		CacheHit:   out.CacheHit,
		Redactions: out.Redactions,
		Duration:   d,
	}
	if aerr := s.audit.Record(actx, event); aerr != nil {
		s.logger.Warn("audit record failed", logging.String("request_id", requestID), logging.Err(aerr))
	}
}
