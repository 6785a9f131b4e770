package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	primaryConfidence   = 0.95
	secondaryConfidence = 0.85
	degradedConfidence  = 0.5

	// Terms scoring above this are substituted with placeholders before the
	// text is sent to a provider.
	protectionThreshold = 0.8

	validationTemperature = 0.1
	validationMaxTokens   = 800
)

// Orchestrator composes the rate limiter, circuit breakers, result cache,
// request batcher, and term extractor into the public Translate and
// ValidateTerms operations. One instance is shared by all concurrent
// requests; each component serializes its own state.
type Orchestrator struct {
	config    Config
	primary   PrimaryProvider
	secondary SecondaryProvider

	limiter          *RateLimiter
	primaryBreaker   *CircuitBreaker
	secondaryBreaker *CircuitBreaker
	cache            *ResultCache
	batcher          *RequestBatcher
	extractor        *TermExtractor
	metrics          *MetricsRecorder
}

var _ Translator = (*Orchestrator)(nil)

// New creates an orchestrator owning fresh component instances. Components
// are never process-wide singletons; tests construct a new orchestrator per
// scenario.
func New(cfg Config, primary PrimaryProvider, secondary SecondaryProvider) (*Orchestrator, error) {
	if primary == nil || secondary == nil {
		return nil, ErrMissingProvider
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = cfg.withDefaults()

	o := &Orchestrator{
		config:           cfg,
		primary:          primary,
		secondary:        secondary,
		limiter:          NewRateLimiter(cfg.RequestsPerMinute, cfg.BurstLimit),
		primaryBreaker:   NewCircuitBreaker("primary-provider", cfg.BreakerFailureThreshold, cfg.BreakerResetTimeout),
		secondaryBreaker: NewCircuitBreaker("secondary-provider", cfg.BreakerFailureThreshold, cfg.BreakerResetTimeout),
		cache:            NewResultCache(cfg.CacheCapacity, cfg.CacheTTL),
		extractor:        NewTermExtractor(),
		metrics:          NewMetricsRecorder(cfg.EnableMetrics),
	}
	o.batcher = NewRequestBatcher(cfg.BatchSize, cfg.BatchTimeout, o.processBatch)
	return o, nil
}

// Translate translates text from sourceLang to targetLang with protected
// medical terms preserved end to end. It fails with ErrInvalidLanguage when
// either code does not normalize and with ErrProvidersExhausted when both
// providers fail.
func (o *Orchestrator) Translate(ctx context.Context, text, sourceLang, targetLang string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyInput
	}
	if len(text) > o.config.MaxContentLength {
		return Result{}, fmt.Errorf("%w: %d bytes (maximum %d)", ErrContentTooLong, len(text), o.config.MaxContentLength)
	}

	src, err := NormalizeLanguageCode(sourceLang)
	if err != nil {
		return Result{}, err
	}
	dst, err := NormalizeLanguageCode(targetLang)
	if err != nil {
		return Result{}, err
	}

	if o.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.RequestTimeout)
		defer cancel()
	}

	req := Request{Text: text, SourceLang: src, TargetLang: dst}
	if cached, ok := o.cache.Get(req.Key()); ok {
		slog.Debug("translation cache hit", "source", src, "target", dst)
		o.metrics.RecordCacheHit()
		return cached, nil
	}
	o.metrics.RecordCacheMiss()

	slog.Debug("starting translation request", "source", src, "target", dst)
	start := time.Now()
	result, err := o.batcher.Enqueue(ctx, req)
	o.metrics.RecordRequestDuration(time.Since(start).Seconds())
	if err != nil {
		o.metrics.RecordRequest(ServicePrimary, "error")
		return Result{}, err
	}
	o.metrics.RecordRequest(result.Service, "ok")
	return result, nil
}

// processBatch handles one dispatched batch, translating each unique request
// independently so one failed item never poisons its batch peers.
func (o *Orchestrator) processBatch(ctx context.Context, requests []Request) []BatchOutcome {
	o.metrics.RecordBatchSize(len(requests))
	slog.Info("processing translation batch", "batch_size", len(requests))

	outcomes := make([]BatchOutcome, len(requests))
	for i, req := range requests {
		outcomes[i] = o.translateOne(ctx, req)
	}
	return outcomes
}

func (o *Orchestrator) translateOne(ctx context.Context, req Request) BatchOutcome {
	// An identical request may have completed while this one queued.
	if cached, ok := o.cache.Get(req.Key()); ok {
		o.metrics.RecordCacheHit()
		return BatchOutcome{Result: cached}
	}

	terms := o.extractor.Extract(req.Text)
	o.metrics.RecordTermsExtracted(len(terms))

	protected, protector := protectTerms(req.Text, terms, protectionThreshold)
	if protector.count() > 0 {
		slog.Debug("protected terms substituted", "count", protector.count())
	}

	translated, service, note, err := o.callProviders(ctx, protected, req.SourceLang, req.TargetLang)
	if err != nil {
		return BatchOutcome{Err: err}
	}

	restored, warnings := protector.restore(translated)
	confidence := primaryConfidence
	if service == ServiceSecondary {
		confidence = secondaryConfidence
	}

	result := Result{
		Text:           restored,
		SourceLang:     req.SourceLang,
		TargetLang:     req.TargetLang,
		Confidence:     confidence,
		Service:        service,
		ProtectedTerms: terms,
		Warnings:       warnings,
		FallbackNote:   note,
	}

	// Cache under the original, pre-placeholder request tuple.
	o.cache.Set(req.Key(), result)
	return BatchOutcome{Result: result}
}

// callProviders runs the primary-then-secondary call sequence. Both breakers
// are updated before any fallback is attempted so that repeated failures
// open the primary breaker even though each error is absorbed here.
func (o *Orchestrator) callProviders(ctx context.Context, text, sourceLang, targetLang string) (string, Service, string, error) {
	var primaryErr error

	if !o.primaryBreaker.CanExecute() {
		primaryErr = &ProviderError{
			Provider: ServicePrimary,
			Reason:   ReasonBreakerOpen,
			Err:      errors.New("circuit breaker open"),
		}
		slog.Warn("primary provider skipped", "reason", "breaker open")
	} else {
		userPrompt := fmt.Sprintf(translateUserPrompt, sourceLang, targetLang, text)
		out, err := o.callPrimary(ctx, translateSystemPrompt, userPrompt, o.config.Temperature, o.config.MaxTokens)
		if err == nil {
			o.primaryBreaker.RecordSuccess()
			o.metrics.RecordBreakerState(o.primaryBreaker.Name(), o.primaryBreaker.State())
			return out, ServicePrimary, "", nil
		}
		o.primaryBreaker.RecordFailure()
		o.recordProviderFailure(err)
		primaryErr = err
		slog.Warn("primary provider failed, switching to fallback", "error", err)
	}
	o.metrics.RecordBreakerState(o.primaryBreaker.Name(), o.primaryBreaker.State())
	o.metrics.RecordFallback()

	if !o.secondaryBreaker.CanExecute() {
		secondaryErr := &ProviderError{
			Provider: ServiceSecondary,
			Reason:   ReasonBreakerOpen,
			Err:      errors.New("circuit breaker open"),
		}
		return "", "", "", o.exhausted(primaryErr, secondaryErr)
	}

	translation, err := o.secondary.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		o.secondaryBreaker.RecordFailure()
		o.recordProviderFailure(err)
		o.metrics.RecordBreakerState(o.secondaryBreaker.Name(), o.secondaryBreaker.State())
		return "", "", "", o.exhausted(primaryErr, err)
	}
	o.secondaryBreaker.RecordSuccess()
	o.metrics.RecordBreakerState(o.secondaryBreaker.Name(), o.secondaryBreaker.State())

	note := fmt.Sprintf("switched to fallback translation provider after primary failure: %v", primaryErr)
	slog.Info("fallback translation successful")
	return translation.Text, ServiceSecondary, note, nil
}

func (o *Orchestrator) exhausted(primaryErr, secondaryErr error) error {
	return fmt.Errorf("%w: primary: %v; secondary: %v", ErrProvidersExhausted, primaryErr, secondaryErr)
}

func (o *Orchestrator) recordProviderFailure(err error) {
	var perr *ProviderError
	if errors.As(err, &perr) {
		o.metrics.RecordProviderError(perr.Provider, perr.Reason)
		return
	}
	o.metrics.RecordProviderError(ServicePrimary, ReasonTransient)
}

// ValidateTerms checks and corrects the medical terminology in text.
// Validation is advisory: on total provider failure it returns the
// unmodified text with a reduced confidence and the Fallback marker instead
// of an error.
func (o *Orchestrator) ValidateTerms(ctx context.Context, text string) ValidationResult {
	terms := o.extractor.Extract(text)
	o.metrics.RecordTermsExtracted(len(terms))
	if len(terms) == 0 {
		return ValidationResult{Text: text, Confidence: 1.0}
	}

	if o.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.RequestTimeout)
		defer cancel()
	}

	if !o.primaryBreaker.CanExecute() {
		slog.Warn("term validation degraded", "reason", "breaker open")
		return o.degradedValidation(text, terms, "validation provider unavailable: circuit breaker open")
	}

	userPrompt := fmt.Sprintf(validateUserPrompt, formatTermsForPrompt(terms), text)
	out, err := o.callPrimary(ctx, validateSystemPrompt, userPrompt, validationTemperature, validationMaxTokens)
	if err != nil {
		o.primaryBreaker.RecordFailure()
		o.recordProviderFailure(err)
		slog.Warn("term validation degraded", "error", err)
		return o.degradedValidation(text, terms, fmt.Sprintf("validation provider failed: %v", err))
	}
	o.primaryBreaker.RecordSuccess()

	result := parseValidationResponse(out, text)
	result.Terms = terms
	return result
}

func (o *Orchestrator) degradedValidation(text string, terms []ProtectedTerm, warning string) ValidationResult {
	return ValidationResult{
		Text:       text,
		Confidence: degradedConfidence,
		Terms:      terms,
		Warnings:   []string{warning},
		Fallback:   true,
	}
}

// formatTermsForPrompt renders the extracted terms as indented JSON for the
// validation prompt.
func formatTermsForPrompt(terms []ProtectedTerm) string {
	type promptTerm struct {
		Term       string  `json:"term"`
		Type       string  `json:"type"`
		Confidence float64 `json:"confidence"`
	}
	summary := make([]promptTerm, len(terms))
	for i, t := range terms {
		summary[i] = promptTerm{Term: t.Surface, Type: string(t.Category), Confidence: t.Confidence}
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		slog.Error("failed to marshal terms for validation prompt", "error", err)
		return "[]"
	}
	return string(data)
}

type validationResponse struct {
	CorrectedText string   `json:"corrected_text"`
	Corrections   []string `json:"corrections"`
	Warnings      []string `json:"warnings"`
	Suggestions   []string `json:"suggestions"`
	Confidence    float64  `json:"confidence"`
}

// parseValidationResponse decodes the validator's JSON reply. A reply that
// is not valid JSON is treated as the corrected text itself.
func parseValidationResponse(content, original string) ValidationResult {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var parsed validationResponse
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return ValidationResult{Text: trimmed, Confidence: 1.0}
	}

	result := ValidationResult{
		Text:        parsed.CorrectedText,
		Corrections: parsed.Corrections,
		Warnings:    parsed.Warnings,
		Suggestions: parsed.Suggestions,
		Confidence:  parsed.Confidence,
	}
	if result.Text == "" {
		result.Text = original
	}
	if result.Confidence == 0 {
		result.Confidence = 1.0
	}
	return result
}

// Health reports the operational state of every shared component.
func (o *Orchestrator) Health() HealthStatus {
	primaryHealth := o.primaryBreaker.Health()
	secondaryHealth := o.secondaryBreaker.Health()
	limiterMetrics := o.limiter.Metrics()
	hits, misses := o.cache.Stats()

	healthy := primaryHealth.Healthy || secondaryHealth.Healthy
	status := "ok"
	switch {
	case !healthy:
		status = "both providers unavailable"
	case !primaryHealth.Healthy:
		status = "degraded: primary provider unavailable"
	}

	return HealthStatus{
		Healthy: healthy,
		Status:  status,
		Details: map[string]interface{}{
			"primary_breaker":    primaryHealth.Status,
			"secondary_breaker":  secondaryHealth.Status,
			"primary_failures":   o.primaryBreaker.FailureCount(),
			"secondary_failures": o.secondaryBreaker.FailureCount(),
			"limiter_in_window":  limiterMetrics.InWindow,
			"limiter_backoff":    limiterMetrics.Backoff.String(),
			"limiter_remaining":  limiterMetrics.Remaining,
			"cache_entries":      o.cache.Len(),
			"cache_hits":         hits,
			"cache_misses":       misses,
		},
	}
}
