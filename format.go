package scrub

import (
	"regexp"
	"strings"
)

var (
	prologRE   = regexp.MustCompile(`(?s)^\s*<\?xml\b.*?\?>`)
	interTagRE = regexp.MustCompile(`>\s+<`)
	spaceRunRE = regexp.MustCompile(`\s+`)
)

var zeroWidthReplacer = strings.NewReplacer(
	"\u200B", "",
	"\u200C", "",
	"\u200D", "",
	"\uFEFF", "",
)

func stripZeroWidth(s string) string {
	return zeroWidthReplacer.Replace(s)
}

// Format normalizes serialized markup: the leading XML prolog goes,
// whitespace between tags collapses to nothing, any other whitespace run
// collapses to a single space, zero-width characters are stripped and the
// whole string is trimmed.
func Format(s string) string {
	s = prologRE.ReplaceAllString(s, "")
	s = interTagRE.ReplaceAllString(s, "><")
	s = spaceRunRE.ReplaceAllString(s, " ")
	s = stripZeroWidth(s)
	return strings.TrimSpace(s)
}
