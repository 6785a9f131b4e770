package translator

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the configuration for the orchestrator. Every knob is
// independently overridable; zero values fall back to the documented
// defaults.
type Config struct {
	RequestsPerMinute       int           // Rate limiter window capacity (default 50)
	BurstLimit              int           // Rate limiter burst ceiling (default 10)
	CacheCapacity           int           // Result cache capacity (default 1000)
	CacheTTL                time.Duration // Result cache TTL, 0 disables expiry
	BatchSize               int           // Batch dispatch size (default 10)
	BatchTimeout            time.Duration // Batch dispatch timeout (default 100ms)
	BreakerFailureThreshold uint32        // Consecutive failures before a breaker opens (default 5)
	BreakerResetTimeout     time.Duration // Open-state duration before a half-open trial (default 30s)
	MaxRetries              int           // Primary call attempts (default 3)
	RequestTimeout          time.Duration // End-to-end deadline per request, 0 disables
	MaxContentLength        int           // Maximum input length in bytes (default 10000)
	Model                   string        // Primary provider model (default gpt-4)
	Temperature             float32       // Translation temperature (default 0.3)
	MaxTokens               int           // Translation completion budget (default 1000)
	EnableMetrics           bool          // Enable Prometheus metrics
}

const (
	defaultRequestsPerMinute = 50
	defaultBurstLimit        = 10
	defaultCacheCapacity     = 1000
	defaultBatchSize         = 10
	defaultBatchTimeout      = 100 * time.Millisecond
	defaultFailureThreshold  = 5
	defaultResetTimeout      = 30 * time.Second
	defaultMaxRetries        = 3
	defaultMaxContentLength  = 10000
	defaultTemperature       = 0.3
	defaultMaxTokens         = 1000
	defaultModel             = "gpt-4"
)

// NewDefaultConfig creates a config with sensible defaults.
func NewDefaultConfig() Config {
	return Config{
		RequestsPerMinute:       defaultRequestsPerMinute,
		BurstLimit:              defaultBurstLimit,
		CacheCapacity:           defaultCacheCapacity,
		BatchSize:               defaultBatchSize,
		BatchTimeout:            defaultBatchTimeout,
		BreakerFailureThreshold: defaultFailureThreshold,
		BreakerResetTimeout:     defaultResetTimeout,
		MaxRetries:              defaultMaxRetries,
		MaxContentLength:        defaultMaxContentLength,
		Model:                   defaultModel,
		Temperature:             defaultTemperature,
		MaxTokens:               defaultMaxTokens,
	}
}

// NewProductionConfig creates a production-ready config with caching TTL,
// an end-to-end deadline, and metrics enabled.
func NewProductionConfig() Config {
	cfg := NewDefaultConfig()
	cfg.CacheTTL = 15 * time.Minute
	cfg.RequestTimeout = 60 * time.Second
	cfg.EnableMetrics = true
	return cfg
}

// WithRateLimit sets the rate limiter window capacity and burst ceiling.
func (c Config) WithRateLimit(requestsPerMinute, burstLimit int) Config {
	c.RequestsPerMinute = requestsPerMinute
	c.BurstLimit = burstLimit
	return c
}

// WithCache sets the cache capacity and TTL. A zero TTL disables expiry.
func (c Config) WithCache(capacity int, ttl time.Duration) Config {
	c.CacheCapacity = capacity
	c.CacheTTL = ttl
	return c
}

// WithBatching sets the batch dispatch size and timeout.
func (c Config) WithBatching(size int, timeout time.Duration) Config {
	c.BatchSize = size
	c.BatchTimeout = timeout
	return c
}

// WithBreaker sets the circuit breaker failure threshold and reset timeout.
func (c Config) WithBreaker(failureThreshold uint32, resetTimeout time.Duration) Config {
	c.BreakerFailureThreshold = failureThreshold
	c.BreakerResetTimeout = resetTimeout
	return c
}

// WithMaxRetries sets the primary call attempt budget.
func (c Config) WithMaxRetries(attempts int) Config {
	c.MaxRetries = attempts
	return c
}

// WithRequestTimeout sets the end-to-end deadline applied to each request.
func (c Config) WithRequestTimeout(timeout time.Duration) Config {
	c.RequestTimeout = timeout
	return c
}

// WithModel sets the primary provider model.
func (c Config) WithModel(model string) Config {
	c.Model = model
	return c
}

// WithMetrics enables Prometheus metrics.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

// Validate checks if the config is valid.
func (c Config) Validate() error {
	if c.RequestsPerMinute < 0 {
		return errors.New("RequestsPerMinute must be non-negative")
	}
	if c.BurstLimit < 0 {
		return errors.New("BurstLimit must be non-negative")
	}
	if c.CacheCapacity < 0 {
		return errors.New("CacheCapacity must be non-negative")
	}
	if c.CacheTTL < 0 {
		return errors.New("CacheTTL must be non-negative")
	}
	if c.BatchSize < 0 {
		return errors.New("BatchSize must be non-negative")
	}
	if c.BatchTimeout < 0 {
		return errors.New("BatchTimeout must be non-negative")
	}
	if c.BreakerResetTimeout < 0 {
		return errors.New("BreakerResetTimeout must be non-negative")
	}
	if c.MaxRetries < 0 {
		return errors.New("MaxRetries must be non-negative")
	}
	if c.RequestTimeout < 0 {
		return errors.New("RequestTimeout must be non-negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("Temperature must be in [0, 2], got %v", c.Temperature)
	}
	return nil
}

// withDefaults fills zero-valued fields with the documented defaults.
func (c Config) withDefaults() Config {
	if c.RequestsPerMinute == 0 {
		c.RequestsPerMinute = defaultRequestsPerMinute
	}
	if c.BurstLimit == 0 {
		c.BurstLimit = defaultBurstLimit
	}
	if c.CacheCapacity == 0 {
		c.CacheCapacity = defaultCacheCapacity
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = defaultBatchTimeout
	}
	if c.BreakerFailureThreshold == 0 {
		c.BreakerFailureThreshold = defaultFailureThreshold
	}
	if c.BreakerResetTimeout == 0 {
		c.BreakerResetTimeout = defaultResetTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.MaxContentLength == 0 {
		c.MaxContentLength = defaultMaxContentLength
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultMaxTokens
	}
	return c
}
