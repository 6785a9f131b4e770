package translator

import (
	"fmt"
	"strings"
)

// Placeholder tokens are built entirely from Unicode private-use-area runes:
// an open sentinel, one index rune, and a close sentinel. Providers never
// emit PUA runes for natural text, so a placeholder cannot collide with
// translated output, and the index rune lets each token be restored to
// exactly the term it replaced.
const (
	placeholderOpen  = '\uE000'
	placeholderClose = '\uE001'
	placeholderIndex = '\uE010'
)

func placeholderToken(i int) string {
	return string(placeholderOpen) + string(rune(placeholderIndex+i)) + string(placeholderClose)
}

// termProtector records the placeholder-to-surface mapping for one request.
// It is owned exclusively by the orchestration call that created it.
type termProtector struct {
	placeholders []string
	originals    []string
}

// protectTerms replaces every term scoring above minConfidence with a unique
// placeholder token and returns the substituted text alongside the protector
// that can undo the substitution. Terms must be sorted by descending
// confidence; a term whose surface was already consumed by a
// higher-confidence replacement is skipped, so placeholders never nest.
func protectTerms(text string, terms []ProtectedTerm, minConfidence float64) (string, *termProtector) {
	p := &termProtector{}
	out := text
	for _, term := range terms {
		if term.Confidence <= minConfidence {
			continue
		}
		if term.Surface == "" || !strings.Contains(out, term.Surface) {
			continue
		}
		token := placeholderToken(len(p.placeholders))
		out = strings.ReplaceAll(out, term.Surface, token)
		p.placeholders = append(p.placeholders, token)
		p.originals = append(p.originals, term.Surface)
	}
	return out, p
}

// count returns the number of protected terms.
func (p *termProtector) count() int { return len(p.placeholders) }

// restore replaces every placeholder in translated with its original surface
// form, byte for byte. A placeholder the provider dropped or mangled is
// reported as a warning rather than silently corrupting the result.
func (p *termProtector) restore(translated string) (string, []string) {
	out := translated
	var warnings []string
	for i, token := range p.placeholders {
		if !strings.Contains(out, token) {
			warnings = append(warnings, fmt.Sprintf("protected term %q was dropped by the provider", p.originals[i]))
			continue
		}
		out = strings.ReplaceAll(out, token, p.originals[i])
	}
	// Strip any stray sentinels from a mangled placeholder.
	if strings.ContainsRune(out, placeholderOpen) || strings.ContainsRune(out, placeholderClose) {
		out = strings.Map(func(r rune) rune {
			if r >= placeholderOpen && r < placeholderIndex+rune(len(p.placeholders)) {
				return -1
			}
			return r
		}, out)
	}
	return out, warnings
}
