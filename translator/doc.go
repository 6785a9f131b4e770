// Package translator provides a resilient orchestration layer for medical
// text translation between a primary AI-based provider and a secondary
// fallback provider.
//
// The orchestrator composes a set of reliability primitives around the
// provider calls: a sliding-window rate limiter with adaptive backoff, a
// circuit breaker per provider, a bounded LRU result cache with optional TTL,
// and a request batcher that coalesces concurrent identical requests into a
// single upstream call. Medical terms (measurements, vital signs,
// abbreviations, lab values, and so on) are extracted and scored before
// translation, substituted with non-colliding placeholders so providers can
// never alter them, and restored verbatim in the final result.
//
// Features:
//   - OpenAI-backed primary provider with transparent fallback on failure
//   - Sliding-window rate limiting with adaptive backoff
//   - Circuit breaker per provider built on sony/gobreaker
//   - Bounded LRU caching of translation results with lazy TTL expiry
//   - Time/size-bounded batching with single-flight coalescing
//   - Parallel pattern-driven medical term extraction and confidence scoring
//   - Prometheus metrics integration
//
// Basic usage:
//
//	cfg := translator.NewDefaultConfig()
//	primary := translator.NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"))
//	secondary := translator.NewGoogleProvider()
//	o, err := translator.New(cfg, primary, secondary)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := o.Translate(ctx, "Patient BP 120/80", "en", "es")
package translator
