package translator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// callPrimary performs one logical call against the primary provider: up to
// MaxRetries attempts, each gated by the rate limiter, with the limiter's
// current adaptive backoff as the inter-attempt delay. A quota-exhaustion
// error is non-retryable and returns immediately so the caller can fall back
// without consuming the retry budget.
func (o *Orchestrator) callPrimary(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error) {
	var out string
	attempts := 0

	backoff := retry.WithMaxRetries(uint64(o.config.MaxRetries-1), retry.BackoffFunc(func() (time.Duration, bool) {
		return o.limiter.Backoff(), false
	}))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if err := o.awaitAdmission(ctx); err != nil {
			return err
		}

		text, err := o.primary.Complete(ctx, systemPrompt, userPrompt, temperature, maxTokens)
		o.limiter.ReportOutcome(err == nil)
		o.metrics.RecordLimiter(o.limiter.Metrics())
		if err != nil {
			if IsQuotaExceeded(err) {
				slog.Error("primary provider quota exceeded", "error", err)
				return err // non-retryable, immediate fallback
			}
			slog.Warn("primary provider attempt failed",
				"attempt", attempts,
				"error", err)
			return retry.RetryableError(err)
		}
		out = text
		return nil
	})

	o.metrics.RecordRetryAttempts(attempts)
	if err == nil && attempts > 1 {
		slog.Info("primary provider call succeeded after retry", "attempts", attempts)
	}
	return out, err
}

// awaitAdmission waits for rate limiter admission, sleeping out the window
// once before giving up on this attempt.
func (o *Orchestrator) awaitAdmission(ctx context.Context) error {
	if o.limiter.CanProceed() {
		return nil
	}

	wait := o.limiter.WaitDuration()
	slog.Warn("rate limit reached, waiting for window", "wait", wait)
	if wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	if o.limiter.CanProceed() {
		return nil
	}
	return retry.RetryableError(&ProviderError{
		Provider: ServicePrimary,
		Reason:   ReasonRateLimited,
		Err:      errors.New("rate limit window exhausted"),
	})
}
