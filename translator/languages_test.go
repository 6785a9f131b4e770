package translator_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/carefluent/medtranslate/translator"
)

var _ = Describe("NormalizeLanguageCode", func() {
	It("passes supported base codes through", func() {
		code, err := translator.NormalizeLanguageCode("en")
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal("en"))
	})

	It("lower-cases mixed-case input", func() {
		code, err := translator.NormalizeLanguageCode("EN")
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal("en"))
	})

	It("reduces regional variants to their base form", func() {
		code, err := translator.NormalizeLanguageCode("en-US")
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal("en"))

		code, err = translator.NormalizeLanguageCode("zh-TW")
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal("zh"))
	})

	It("accepts underscore separators", func() {
		code, err := translator.NormalizeLanguageCode("pt_BR")
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal("pt"))
	})

	It("resolves aliases through the variant table", func() {
		code, err := translator.NormalizeLanguageCode("cmn")
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal("zh"))
	})

	It("trims surrounding whitespace", func() {
		code, err := translator.NormalizeLanguageCode("  es-MX ")
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal("es"))
	})

	It("rejects unsupported codes", func() {
		_, err := translator.NormalizeLanguageCode("xx")
		Expect(err).To(MatchError(translator.ErrInvalidLanguage))
	})

	It("rejects empty input", func() {
		_, err := translator.NormalizeLanguageCode("")
		Expect(err).To(MatchError(translator.ErrInvalidLanguage))

		_, err = translator.NormalizeLanguageCode("   ")
		Expect(err).To(MatchError(translator.ErrInvalidLanguage))
	})
})

var _ = Describe("SupportedLanguages", func() {
	It("lists every supported base code", func() {
		codes := translator.SupportedLanguages()
		Expect(codes).To(HaveLen(15))
		Expect(codes).To(ContainElements("en", "es", "zh", "ar", "hi"))
	})
})
