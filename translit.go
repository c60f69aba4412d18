// Package scrub normalizes and shrinks SVG markup. It parses the source into
// a tree, runs a fixed sequence of cleaning passes over it and serializes the
// result to a compact canonical form without changing how the image renders.
package scrub

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	urlRefRE        = regexp.MustCompile(`url\(#([^)]*)\)`)
	classSelectorRE = regexp.MustCompile(`\.([^\s{},.#:>~+\[\]()]+)`)
)

// Transliterate reduces an identifier to safe ASCII: non-ASCII characters
// are deleted, any remaining character outside [A-Za-z0-9_-] becomes '_',
// underscore runs collapse to one and leading/trailing underscores are
// trimmed. The result may be empty.
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevUnderscore := false
	for _, r := range s {
		if unicode.MaxASCII < r {
			continue
		}
		c := byte(r)
		ok := 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9' || c == '-'
		if !ok && c != '_' {
			c = '_'
		}
		if c == '_' {
			if prevUnderscore {
				continue
			}
			prevUnderscore = true
		} else {
			prevUnderscore = false
		}
		b.WriteByte(c)
	}
	return strings.Trim(b.String(), "_")
}

// rewriteURLRefs transliterates the id inside every url(#id) occurrence. An
// id that comes out empty turns the whole occurrence into the literal none.
func rewriteURLRefs(s string) string {
	return urlRefRE.ReplaceAllStringFunc(s, func(m string) string {
		id := m[len("url(#") : len(m)-1]
		clean := Transliterate(id)
		if clean == "" {
			return "none"
		}
		return "url(#" + clean + ")"
	})
}

// rewriteClassSelectors transliterates the name of every .name selector
// token; a name that comes out empty drops the token entirely.
func rewriteClassSelectors(s string) string {
	return classSelectorRE.ReplaceAllStringFunc(s, func(m string) string {
		clean := Transliterate(m[1:])
		if clean == "" {
			return ""
		}
		return "." + clean
	})
}

func hasNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if unicode.MaxASCII < s[i] {
			return true
		}
	}
	return false
}
