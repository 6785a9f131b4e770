package translator

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// termPattern pairs a category with its compiled pattern.
type termPattern struct {
	category TermCategory
	re       *regexp.Regexp
}

// The fixed pattern set. Order is significant only for deterministic
// partitioning across scan goroutines.
var termPatterns = []termPattern{
	{CategoryMeasurement, regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:mg|mcg|ml|g|kg|mmHg|°[CF]|cm|mm|IU|mEq|L)\b`)},
	{CategoryVitalSign, regexp.MustCompile(`(?i)\b(?:BP|HR|RR|SpO2|Temp|GCS|MAP)[:\s]*(?:\d+(?:/\d+)?)\b`)},
	{CategoryAbbreviation, regexp.MustCompile(`(?i)\b(?:IV|IM|SC|PO|PRN|bid|tid|qid|qd|hs|stat|NPO|N/V|SOB|CP)\b`)},
	{CategoryLabValue, regexp.MustCompile(`(?i)\b(?:WBC|RBC|Hgb|Hct|PLT|Na\+|K\+|Cl-|HCO3-|BUN|Cr|GFR|AST|ALT)[:\s]*(?:\d+(?:\.\d+)?)\b`)},
	{CategoryAnatomical, regexp.MustCompile(`(?i)\b(?:lateral|medial|anterior|posterior|superior|inferior|proximal|distal|bilateral)\b`)},
	{CategoryProcedure, regexp.MustCompile(`(?i)\b(?:MRI|CT|X-ray|EKG|ECG|EEG|PET|ultrasound|biopsy|endoscopy)\b`)},
	{CategoryCondition, regexp.MustCompile(`(?i)\b(?:hypertension|diabetes|asthma|COPD|CHF|CAD|MI|CVA|DVT|PE)\b`)},
	{CategoryMedication, regexp.MustCompile(`(?i)\b\w+(?:cillin|mycin|olol|sartan|pril|statin|oxetine|azepam|codone)\b`)},
	{CategoryMedication, regexp.MustCompile(`(?i)\b(?:aspirin|tylenol|ibuprofen|acetaminophen|morphine|insulin)\b`)},
}

// categoryWeights holds the deterministic confidence base per category.
// Categories not listed use the 0.7 base.
var categoryWeights = map[TermCategory]float64{
	CategoryMeasurement: 0.9,
	CategoryVitalSign:   0.95,
	CategoryLabValue:    0.85,
	CategoryProcedure:   0.8,
	CategoryMedication:  0.85,
}

const baseConfidence = 0.7

// contextTriggers are the vocabulary words that mark nearby capitalized words
// as potential medical terms in the secondary heuristic pass.
var contextTriggers = []string{"patient", "doctor", "hospital", "clinic", "diagnosis", "treatment"}

// patternGroupSize controls how many pattern categories each scan goroutine
// handles.
const patternGroupSize = 3

// TermExtractor finds protected medical sub-strings in text and assigns each
// a deterministic confidence score. The pattern set is partitioned into
// independent groups, each scanned in its own goroutine, and results are
// merged and sorted by descending confidence.
type TermExtractor struct{}

// NewTermExtractor creates a term extractor.
func NewTermExtractor() *TermExtractor {
	return &TermExtractor{}
}

// Extract returns every protected term found in text, sorted by descending
// confidence. Texts with no matches yield an empty slice.
func (e *TermExtractor) Extract(text string) []ProtectedTerm {
	if text == "" {
		return nil
	}

	groups := make([][]termPattern, 0, (len(termPatterns)+patternGroupSize-1)/patternGroupSize)
	for i := 0; i < len(termPatterns); i += patternGroupSize {
		end := i + patternGroupSize
		if end > len(termPatterns) {
			end = len(termPatterns)
		}
		groups = append(groups, termPatterns[i:end])
	}

	results := make([][]ProtectedTerm, len(groups))
	var wg sync.WaitGroup
	for i, group := range groups {
		wg.Add(1)
		go func(i int, group []termPattern) {
			defer wg.Done()
			results[i] = scanPatterns(text, group)
		}(i, group)
	}
	wg.Wait()

	terms := make([]ProtectedTerm, 0, 8)
	for _, r := range results {
		terms = append(terms, r...)
	}
	terms = append(terms, contextualCandidates(text)...)

	sort.SliceStable(terms, func(a, b int) bool {
		if terms[a].Confidence != terms[b].Confidence {
			return terms[a].Confidence > terms[b].Confidence
		}
		return terms[a].Start < terms[b].Start
	})
	return terms
}

func scanPatterns(text string, patterns []termPattern) []ProtectedTerm {
	var terms []ProtectedTerm
	for _, p := range patterns {
		for _, span := range p.re.FindAllStringIndex(text, -1) {
			surface := text[span[0]:span[1]]
			term := ProtectedTerm{
				Surface:    surface,
				Category:   p.category,
				Start:      span[0],
				End:        span[1],
				Confidence: termConfidence(surface, p.category),
			}
			if expanded, ok := ExpandAbbreviation(surface); ok && expanded != surface {
				term.Expansion = expanded
			}
			terms = append(terms, term)
		}
	}
	return terms
}

// termConfidence computes the deterministic score: the category base weight
// adjusted by +0.1 for fully upper-case terms, +0.05 when the term contains a
// digit, +0.05 when longer than 3 characters, capped at 1.0.
func termConfidence(surface string, category TermCategory) float64 {
	confidence, ok := categoryWeights[category]
	if !ok {
		confidence = baseConfidence
	}
	if isUpperTerm(surface) {
		confidence += 0.1
	}
	if strings.ContainsFunc(surface, unicode.IsDigit) {
		confidence += 0.05
	}
	if len(surface) > 3 {
		confidence += 0.05
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// isUpperTerm reports whether surface contains at least one letter and no
// lower-case letters.
func isUpperTerm(surface string) bool {
	hasLetter := false
	for _, r := range surface {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

var wordPattern = regexp.MustCompile(`\S+`)

// contextualCandidates flags capitalized words near contextual trigger
// vocabulary as lower-confidence unclassified candidates.
func contextualCandidates(text string) []ProtectedTerm {
	spans := wordPattern.FindAllStringIndex(text, -1)
	words := make([]string, len(spans))
	for i, s := range spans {
		words[i] = text[s[0]:s[1]]
	}

	var terms []ProtectedTerm
	for i, word := range words {
		runes := []rune(word)
		if len(word) <= 3 || !unicode.IsUpper(runes[0]) {
			continue
		}

		lo := i - 2
		if lo < 0 {
			lo = 0
		}
		hi := i + 3
		if hi > len(words) {
			hi = len(words)
		}
		score := 0.0
		for _, trigger := range contextTriggers {
			for _, w := range words[lo:hi] {
				if strings.EqualFold(strings.Trim(w, ".,;:!?"), trigger) {
					score += 0.1
					break
				}
			}
		}
		if score == 0 {
			continue
		}

		confidence := baseConfidence + score
		if confidence > 0.9 {
			confidence = 0.9
		}
		terms = append(terms, ProtectedTerm{
			Surface:    word,
			Category:   CategoryUnclassified,
			Start:      spans[i][0],
			End:        spans[i][1],
			Confidence: confidence,
		})
	}
	return terms
}
