package core

import (
	"regexp"
	"strings"
)

// Casual-writing fixes applied before scoring. Word-level replacements keep the
// table tunable without touching the normalization code.
var casualReplacements = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bur\b`), "your"},
	{regexp.MustCompile(`(?i)\bu\b`), "you"},
	{regexp.MustCompile(`(?i)\bdont\b`), "don't"},
	{regexp.MustCompile(`(?i)\bcant\b`), "can't"},
	{regexp.MustCompile(`(?i)\bim\b`), "I'm"},
	{regexp.MustCompile(`(?i)\bive\b`), "I've"},
	{regexp.MustCompile(`(?i)\bkrishn\b`), "Krishna"},
	{regexp.MustCompile(`(?i)\bprabhupad\b`), "Prabhupada"},
	{regexp.MustCompile(`(?i)\bspirtual\b`), "spiritual"},
	{regexp.MustCompile(`(?i)\breligous\b`), "religious"},
	{regexp.MustCompile(`(?i)\bpeacfull\b`), "peaceful"},
	{regexp.MustCompile(`(?i)\bhumbl\b`), "humble"},
}

var (
	repeatedDots      = regexp.MustCompile(`[.]{2,}`)
	repeatedBangs     = regexp.MustCompile(`[!]{2,}`)
	repeatedQuestions = regexp.MustCompile(`[?]{2,}`)
)

// NormalizeAnswer cleans a free-text response: whitespace collapsed, common
// typos in spiritual terms fixed, runs of punctuation squeezed. Two logically
// identical answers normalize to the same string, which also makes cache keys
// stable against incidental formatting.
func NormalizeAnswer(s string) string {
	cleaned := strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
	for _, r := range casualReplacements {
		cleaned = r.pattern.ReplaceAllString(cleaned, r.replacement)
	}
	cleaned = repeatedDots.ReplaceAllString(cleaned, ".")
	cleaned = repeatedBangs.ReplaceAllString(cleaned, "!")
	cleaned = repeatedQuestions.ReplaceAllString(cleaned, "?")
	return cleaned
}
