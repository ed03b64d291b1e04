package chunk

import (
	"regexp"
	"strings"
)

var (
	tripleNewline   = regexp.MustCompile(`\n\s*\n\s*\n+`)
	runSpaces       = regexp.MustCompile(`[ \t]+`)
	standaloneDigit = regexp.MustCompile(`\n\d+\n`)
	controlChars    = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
	sentenceGap     = regexp.MustCompile(`([.!?])\s*([A-Z])`)
)

// CleanText normalizes extracted page text for readability: collapses
// whitespace runs, drops control characters and standalone page-number
// artifact lines, and fixes sentence spacing. Pure string transform with no
// effect on block ordering or count.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = tripleNewline.ReplaceAllString(text, "\n\n")
	text = runSpaces.ReplaceAllString(text, " ")

	// Standalone numbers between newlines are almost always page artifacts.
	text = standaloneDigit.ReplaceAllString(text, "\n")

	text = controlChars.ReplaceAllString(text, "")
	text = sentenceGap.ReplaceAllString(text, "$1 $2")

	return strings.TrimSpace(text)
}
