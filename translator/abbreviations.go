package translator

import (
	"strings"
	"sync"
)

// medicalAbbreviations maps upper-cased abbreviations to their expansions.
var medicalAbbreviations = map[string]string{
	"BP":   "Blood Pressure",
	"HR":   "Heart Rate",
	"RR":   "Respiratory Rate",
	"TEMP": "Temperature",
	"O2":   "Oxygen",
	"IV":   "Intravenous",
	"IM":   "Intramuscular",
	"PO":   "Per Os (by mouth)",
	"BID":  "Twice daily",
	"TID":  "Three times daily",
	"QID":  "Four times daily",
	"PRN":  "As needed",
	"STAT": "Immediately",
	"NPO":  "Nothing by mouth",
}

// Expansion lookups are stable for a given input, so results are memoized
// independently of any request context.
var abbreviationMemo sync.Map

// ExpandAbbreviation returns the expansion of a known medical abbreviation.
// The lookup is case-insensitive; ok is false for unknown terms.
func ExpandAbbreviation(term string) (string, bool) {
	key := strings.ToUpper(strings.TrimSpace(term))
	if cached, hit := abbreviationMemo.Load(key); hit {
		expansion := cached.(string)
		return expansion, expansion != ""
	}
	expansion := medicalAbbreviations[key]
	abbreviationMemo.Store(key, expansion)
	return expansion, expansion != ""
}
