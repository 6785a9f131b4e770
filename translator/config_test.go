package translator_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/carefluent/medtranslate/translator"
)

var _ = Describe("Config", func() {
	Describe("NewDefaultConfig", func() {
		It("creates a config with sensible defaults", func() {
			cfg := translator.NewDefaultConfig()

			Expect(cfg.RequestsPerMinute).To(Equal(50))
			Expect(cfg.BurstLimit).To(Equal(10))
			Expect(cfg.CacheCapacity).To(Equal(1000))
			Expect(cfg.CacheTTL).To(BeZero())
			Expect(cfg.BatchSize).To(Equal(10))
			Expect(cfg.BatchTimeout).To(Equal(100 * time.Millisecond))
			Expect(cfg.BreakerFailureThreshold).To(Equal(uint32(5)))
			Expect(cfg.BreakerResetTimeout).To(Equal(30 * time.Second))
			Expect(cfg.MaxRetries).To(Equal(3))
			Expect(cfg.MaxContentLength).To(Equal(10000))
			Expect(cfg.Model).To(Equal("gpt-4"))
			Expect(cfg.Temperature).To(Equal(float32(0.3)))
			Expect(cfg.MaxTokens).To(Equal(1000))
			Expect(cfg.EnableMetrics).To(BeFalse())
		})

		It("validates cleanly", func() {
			Expect(translator.NewDefaultConfig().Validate()).To(Succeed())
		})
	})

	Describe("NewProductionConfig", func() {
		It("adds a cache TTL, a request deadline, and metrics", func() {
			cfg := translator.NewProductionConfig()

			Expect(cfg.CacheTTL).To(Equal(15 * time.Minute))
			Expect(cfg.RequestTimeout).To(Equal(60 * time.Second))
			Expect(cfg.EnableMetrics).To(BeTrue())
		})
	})

	Describe("builders", func() {
		It("chains without mutating the receiver", func() {
			base := translator.NewDefaultConfig()
			derived := base.
				WithRateLimit(20, 5).
				WithCache(100, time.Minute).
				WithBatching(4, 50*time.Millisecond).
				WithBreaker(2, 5*time.Second).
				WithMaxRetries(1).
				WithRequestTimeout(10 * time.Second).
				WithModel("gpt-4o").
				WithMetrics()

			Expect(derived.RequestsPerMinute).To(Equal(20))
			Expect(derived.BurstLimit).To(Equal(5))
			Expect(derived.CacheCapacity).To(Equal(100))
			Expect(derived.CacheTTL).To(Equal(time.Minute))
			Expect(derived.BatchSize).To(Equal(4))
			Expect(derived.BatchTimeout).To(Equal(50 * time.Millisecond))
			Expect(derived.BreakerFailureThreshold).To(Equal(uint32(2)))
			Expect(derived.BreakerResetTimeout).To(Equal(5 * time.Second))
			Expect(derived.MaxRetries).To(Equal(1))
			Expect(derived.RequestTimeout).To(Equal(10 * time.Second))
			Expect(derived.Model).To(Equal("gpt-4o"))
			Expect(derived.EnableMetrics).To(BeTrue())

			Expect(base.RequestsPerMinute).To(Equal(50))
			Expect(base.Model).To(Equal("gpt-4"))
			Expect(base.EnableMetrics).To(BeFalse())
		})
	})

	Describe("Validate", func() {
		It("rejects negative knobs", func() {
			cfg := translator.NewDefaultConfig()
			cfg.RequestsPerMinute = -1
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("RequestsPerMinute")))

			cfg = translator.NewDefaultConfig()
			cfg.MaxRetries = -1
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("MaxRetries")))

			cfg = translator.NewDefaultConfig()
			cfg.CacheTTL = -time.Second
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("CacheTTL")))
		})

		It("rejects out-of-range temperatures", func() {
			cfg := translator.NewDefaultConfig()
			cfg.Temperature = 2.5
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("Temperature")))
		})

		It("accepts a zero config, which falls back to defaults", func() {
			Expect(translator.Config{}.Validate()).To(Succeed())
		})
	})
})
