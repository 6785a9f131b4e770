package translator

import (
	"context"
	"errors"
	"fmt"
)

// Request identifies a single translation request. Requests with equal
// normalized (Text, SourceLang, TargetLang) tuples are considered identical
// for caching and batch coalescing.
type Request struct {
	Text       string // Text to translate
	SourceLang string // Normalized source language code
	TargetLang string // Normalized target language code (empty for validation-only calls)
}

// Key returns the cache/coalescing identity of the request.
func (r Request) Key() string {
	return r.Text + "\x1f" + r.SourceLang + "\x1f" + r.TargetLang
}

// TermCategory classifies an extracted medical term.
type TermCategory string

const (
	CategoryMeasurement  TermCategory = "measurement"
	CategoryVitalSign    TermCategory = "vital_sign"
	CategoryAbbreviation TermCategory = "abbreviation"
	CategoryLabValue     TermCategory = "lab_value"
	CategoryAnatomical   TermCategory = "anatomical_term"
	CategoryProcedure    TermCategory = "procedure"
	CategoryCondition    TermCategory = "condition"
	CategoryMedication   TermCategory = "medication"
	CategoryUnclassified TermCategory = "unclassified"
)

// ProtectedTerm is a sub-string identified as domain-critical that must
// survive a translation round trip unaltered. Start and End are byte offsets
// into the original text.
type ProtectedTerm struct {
	Surface    string       // Matched text exactly as it appears in the input
	Category   TermCategory // Pattern group that matched
	Start      int          // Byte offset of the match start
	End        int          // Byte offset of the match end
	Confidence float64      // Deterministic score in [0, 1]
	Expansion  string       // Expanded form for known abbreviations, empty otherwise
}

// Service identifies which provider produced a result.
type Service string

const (
	ServicePrimary   Service = "primary"
	ServiceSecondary Service = "secondary"
)

// Result is the outcome of a Translate call.
type Result struct {
	Text           string          // Translated text with protected terms restored
	SourceLang     string          // Normalized source language code
	TargetLang     string          // Normalized target language code
	Confidence     float64         // 0.95 for primary results, 0.85 for secondary
	Service        Service         // Provider that produced the translation
	ProtectedTerms []ProtectedTerm // Terms extracted from the source text
	Warnings       []string        // Non-fatal issues (e.g. a placeholder lost by the provider)
	FallbackNote   string          // Human-readable note when a provider switch occurred
}

// ValidationResult is the outcome of a ValidateTerms call. Validation is
// advisory and never hard-fails: on total provider failure the original text
// is returned with Fallback set and a reduced confidence.
type ValidationResult struct {
	Text        string          // Corrected text (the input text when validation degraded)
	Corrections []string        // Specific corrections made
	Warnings    []string        // Potential medical concerns flagged by the validator
	Suggestions []string        // Recommended clarifications
	Confidence  float64         // Validator confidence, 0.5 when degraded
	Terms       []ProtectedTerm // Terms found in the input
	Fallback    bool            // True when validation degraded to the unmodified text
}

// Transcription is the primary provider's response to an audio transcription
// request.
type Transcription struct {
	Text             string
	Confidence       float64
	DetectedLanguage string
}

// TranscriptionResult is the outcome of a Transcribe call, including the
// advisory term validation applied to the transcript.
type TranscriptionResult struct {
	Text             string          // Transcript after term validation
	RawText          string          // Transcript exactly as returned by the provider
	DetectedLanguage string
	Confidence       float64
	Terms            []ProtectedTerm
	Corrections      []string
	Warnings         []string
}

// SecondaryTranslation is the secondary provider's response. The secondary
// boundary carries no confidence signal; the orchestrator assigns a fixed
// confidence to its results.
type SecondaryTranslation struct {
	Text               string
	DetectedSourceLang string
}

// PrimaryProvider is the AI-based provider boundary.
type PrimaryProvider interface {
	// Complete performs a chat completion and returns the response text.
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error)

	// Transcribe converts audio to text with an optional language hint and
	// context prompt.
	Transcribe(ctx context.Context, audio []byte, languageHint, contextPrompt string, temperature float32) (Transcription, error)
}

// SecondaryProvider is the fallback provider boundary.
type SecondaryProvider interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (SecondaryTranslation, error)
}

// Translator is the caller-facing surface consumed by transport layers.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (Result, error)
	ValidateTerms(ctx context.Context, text string) ValidationResult
}

// HealthStatus reports the current operational state of the orchestrator.
type HealthStatus struct {
	Healthy bool                   // Overall health status
	Status  string                 // Human-readable status message
	Details map[string]interface{} // Component-level details
}

// FailureReason classifies a provider failure.
type FailureReason string

const (
	ReasonTransient     FailureReason = "transient"
	ReasonQuotaExceeded FailureReason = "quota_exceeded"
	ReasonAuth          FailureReason = "auth"
	ReasonBreakerOpen   FailureReason = "breaker_open"
	ReasonRateLimited   FailureReason = "rate_limited"
)

// ProviderError wraps a provider failure with the provider identity and a
// failure classification so the orchestrator can route fallbacks and callers
// can be told which provider failed and why.
type ProviderError struct {
	Provider Service
	Reason   FailureReason
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s provider failed (%s)", e.Provider, e.Reason)
	}
	return fmt.Sprintf("%s provider failed (%s): %v", e.Provider, e.Reason, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsQuotaExceeded reports whether err is a quota-exhaustion failure, which is
// non-retryable on that provider and triggers an immediate fallback.
func IsQuotaExceeded(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Reason == ReasonQuotaExceeded
}

// Error definitions
var (
	ErrInvalidLanguage    = errors.New("unsupported language code")
	ErrProvidersExhausted = errors.New("all translation providers failed")
	ErrEmptyInput         = errors.New("input text cannot be empty")
	ErrContentTooLong     = errors.New("input text exceeds maximum length")
	ErrMissingProvider    = errors.New("primary and secondary providers are required")
)
