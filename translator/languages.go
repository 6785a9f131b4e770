package translator

import (
	"fmt"
	"strings"
)

// languageCodes maps each supported base language code to the regional
// variants that normalize to it.
var languageCodes = map[string][]string{
	"zh": {"zh-cn", "zh-tw", "zh-hk", "cmn", "zh"},
	"en": {"en-us", "en-gb", "en-au", "en"},
	"es": {"es-es", "es-mx", "es-ar", "es"},
	"fr": {"fr-fr", "fr-ca", "fr"},
	"de": {"de-de", "de-at", "de"},
	"hi": {"hi-in", "hi"},
	"ja": {"ja-jp", "ja"},
	"ko": {"ko-kr", "ko"},
	"ru": {"ru-ru", "ru"},
	"ar": {"ar-sa", "ar"},
	"pt": {"pt-br", "pt-pt", "pt"},
	"it": {"it-it", "it"},
	"nl": {"nl-nl", "nl"},
	"pl": {"pl-pl", "pl"},
	"tr": {"tr-tr", "tr"},
}

// NormalizeLanguageCode lower-cases a language code and reduces it to its
// supported 2-letter base form ("en-US" becomes "en"). It returns
// ErrInvalidLanguage when the code does not normalize against the
// supported-language table.
func NormalizeLanguageCode(code string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty code", ErrInvalidLanguage)
	}
	trimmed = strings.ReplaceAll(trimmed, "_", "-")

	base := trimmed
	if dash := strings.IndexByte(trimmed, '-'); dash >= 0 {
		base = trimmed[:dash]
	}
	if _, ok := languageCodes[base]; ok {
		return base, nil
	}

	for canonical, variants := range languageCodes {
		for _, v := range variants {
			if trimmed == v {
				return canonical, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, code)
}

// SupportedLanguages returns the base codes of all supported languages.
func SupportedLanguages() []string {
	codes := make([]string, 0, len(languageCodes))
	for code := range languageCodes {
		codes = append(codes, code)
	}
	return codes
}
