package tts

import (
	"regexp"
	"strings"
)

// Regexes used by Sanitize, compiled once.
var (
	thousandsRe    = regexp.MustCompile(`\b(\d{1,3}),(\d{3})\b`)
	dollarsCentsRe = regexp.MustCompile(`\$(\d+)\.(\d{2})\b`)
	dollarsRe      = regexp.MustCompile(`\$(\d+)\b`)
	clockRe        = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(AM|PM)\b`)
	openParenRe    = regexp.MustCompile(`\([^)]*`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	commaSpaceRe   = regexp.MustCompile(`\s*,\s*`)
	periodSpaceRe  = regexp.MustCompile(`\s*\.\s*`)
)

// punctReplacer simplifies punctuation that makes the voice hesitate or
// slow down mid-sentence.
var punctReplacer = strings.NewReplacer(
	"—", " ", // em dash, no pause needed
	"–", " ", // en dash
	"...", ".",
	" / ", " or ",
	" & ", " and ",
	"’", "'", // normalize apostrophes
	"“", `"`, // normalize quotes
	"”", `"`,
	")", " ",
	";", ",", // semicolons cause hesitation
)

// bostonTerms spaces out or expands local abbreviations the voice would
// otherwise elongate.
var bostonTerms = map[string]string{
	"MIT":       "M I T",
	"BU":        "Boston University",
	"BC":        "Boston College",
	"Mass Pike": "Massachusetts Turnpike",
	"Storrow":   "Storrow Drive",
	"Fenway":    "Fenway Park",
}

// problemWords maps local place names to phonetic spellings.
var problemWords = map[string]string{
	"Quincy":     "Quin-see",
	"Worcester":  "Woo-ster",
	"Gloucester": "Gloss-ter",
	"Leominster": "Lemm-in-ster",
}

// Sanitize rewrites a script for clean TTS delivery: numbers, dollar
// amounts, clock times, punctuation, parentheticals, and Boston-specific
// abbreviations and place names.
func Sanitize(s string) string {
	// numbers that cause the voice to slow down
	s = thousandsRe.ReplaceAllString(s, "${1} thousand ${2}")
	s = dollarsCentsRe.ReplaceAllString(s, "${1} dollars and ${2} cents")
	s = dollarsRe.ReplaceAllString(s, "${1} dollars")

	// clock times
	s = clockRe.ReplaceAllString(s, "${1} ${2} ${3}")

	// punctuation simplification
	s = punctReplacer.Replace(s)

	// closing parens were replaced above, so this drops the opening
	// paren and everything after it
	s = openParenRe.ReplaceAllString(s, "")

	// abbreviations that get elongated
	s = strings.ReplaceAll(s, "MBTA", "M B T A")
	s = strings.ReplaceAll(s, "BPL", "B P L")

	for term, replacement := range bostonTerms {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		s = re.ReplaceAllString(s, replacement)
	}

	for word, pronunciation := range problemWords {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		s = re.ReplaceAllString(s, pronunciation)
	}

	// spacing cleanup
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = commaSpaceRe.ReplaceAllString(s, ", ")
	s = periodSpaceRe.ReplaceAllString(s, ". ")

	return strings.TrimSpace(s)
}
