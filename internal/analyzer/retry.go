package analyzer

import (
	"context"

	apperrors "github.com/Skufu/symptomgate/pkg/errors"
)

// RetryPolicy bounds a call that may be repeated with a rewritten prompt.
type RetryPolicy struct {
	// MaxAttempts counts the first call. Values below 1 mean 1.
	MaxAttempts int
	// Retryable decides whether an error earns another attempt. Nil means
	// apperrors.Retryable.
	Retryable func(error) bool
	// Transform rewrites the base prompt for attempt n (1-based). Nil leaves
	// the prompt unchanged.
	Transform func(attempt int, prompt string) string
}

// Retry runs call until it succeeds, returns a non-retryable error, the
// attempts are used up or ctx ends. It returns the number of attempts made.
// Attempts follow each other without backoff.
func Retry[T any](ctx context.Context, p RetryPolicy, prompt string, call func(ctx context.Context, prompt string) (T, error)) (T, int, error) {
	var zero T
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = apperrors.Retryable
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return zero, attempt - 1, apperrors.Wrap(lastErr, apperrors.CodeModelUnavailable, "analysis deadline exceeded")
		}
		pr := prompt
		if p.Transform != nil {
			pr = p.Transform(attempt, prompt)
		}
		res, err := call(ctx, pr)
		if err == nil {
			return res, attempt, nil
		}
		lastErr = err
		if !retryable(err) {
			return zero, attempt, err
		}
	}
	return zero, maxAttempts, lastErr
}
