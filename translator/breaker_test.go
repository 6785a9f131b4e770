package translator_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sony/gobreaker/v2"

	"github.com/carefluent/medtranslate/translator"
)

var _ = Describe("CircuitBreaker", func() {
	Describe("closed state", func() {
		It("always allows execution", func() {
			cb := translator.NewCircuitBreaker("test", 3, time.Second)

			for i := 0; i < 5; i++ {
				Expect(cb.CanExecute()).To(BeTrue())
				cb.RecordSuccess()
			}
			Expect(cb.State()).To(Equal(gobreaker.StateClosed))
		})

		It("resets the failure count on success", func() {
			cb := translator.NewCircuitBreaker("test", 3, time.Second)

			Expect(cb.CanExecute()).To(BeTrue())
			cb.RecordFailure()
			Expect(cb.FailureCount()).To(Equal(uint32(1)))

			Expect(cb.CanExecute()).To(BeTrue())
			cb.RecordSuccess()
			Expect(cb.FailureCount()).To(BeZero())
		})
	})

	Describe("tripping", func() {
		It("opens after the failure threshold of consecutive recorded failures", func() {
			cb := translator.NewCircuitBreaker("test", 3, time.Second)

			cb.RecordFailure()
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(gobreaker.StateClosed))

			cb.RecordFailure()
			Expect(cb.State()).To(Equal(gobreaker.StateOpen))
			Expect(cb.CanExecute()).To(BeFalse())
		})

		It("opens when admitted calls fail consecutively", func() {
			cb := translator.NewCircuitBreaker("test", 2, time.Second)

			Expect(cb.CanExecute()).To(BeTrue())
			cb.RecordFailure()
			Expect(cb.CanExecute()).To(BeTrue())
			cb.RecordFailure()

			Expect(cb.CanExecute()).To(BeFalse())
		})

		It("stays closed when failures are interleaved with successes", func() {
			cb := translator.NewCircuitBreaker("test", 3, time.Second)

			for i := 0; i < 4; i++ {
				cb.RecordFailure()
				cb.RecordSuccess()
			}
			Expect(cb.State()).To(Equal(gobreaker.StateClosed))
		})
	})

	Describe("half-open trial", func() {
		It("permits exactly one trial after the reset timeout", func() {
			cb := translator.NewCircuitBreaker("test", 2, 50*time.Millisecond)

			cb.RecordFailure()
			cb.RecordFailure()
			Expect(cb.CanExecute()).To(BeFalse())

			time.Sleep(80 * time.Millisecond)

			Expect(cb.CanExecute()).To(BeTrue())
			Expect(cb.State()).To(Equal(gobreaker.StateHalfOpen))
			Expect(cb.CanExecute()).To(BeFalse())
		})

		It("closes on a successful trial", func() {
			cb := translator.NewCircuitBreaker("test", 2, 50*time.Millisecond)

			cb.RecordFailure()
			cb.RecordFailure()
			time.Sleep(80 * time.Millisecond)

			Expect(cb.CanExecute()).To(BeTrue())
			cb.RecordSuccess()

			Expect(cb.State()).To(Equal(gobreaker.StateClosed))
			Expect(cb.FailureCount()).To(BeZero())
			Expect(cb.CanExecute()).To(BeTrue())
		})

		It("reopens and resets the failure clock on a failed trial", func() {
			cb := translator.NewCircuitBreaker("test", 2, 50*time.Millisecond)

			cb.RecordFailure()
			cb.RecordFailure()
			time.Sleep(80 * time.Millisecond)

			Expect(cb.CanExecute()).To(BeTrue())
			cb.RecordFailure()

			Expect(cb.State()).To(Equal(gobreaker.StateOpen))
			Expect(cb.CanExecute()).To(BeFalse())
		})
	})

	Describe("Health", func() {
		It("is healthy while closed", func() {
			cb := translator.NewCircuitBreaker("primary", 3, time.Second)
			health := cb.Health()

			Expect(health.Healthy).To(BeTrue())
			Expect(health.Status).To(Equal("closed"))
			Expect(health.Details).To(HaveKeyWithValue("name", "primary"))
		})

		It("is unhealthy while open", func() {
			cb := translator.NewCircuitBreaker("primary", 1, time.Second)
			cb.RecordFailure()

			health := cb.Health()
			Expect(health.Healthy).To(BeFalse())
			Expect(health.Status).To(Equal("open"))
		})
	})
})
