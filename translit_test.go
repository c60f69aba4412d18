package scrub

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestTransliterate(t *testing.T) {
	translitTests := []struct {
		in       string
		expected string
	}{
		{"abc", "abc"},
		{"a-b_c", "a-b_c"},
		{"a b", "a_b"},
		{"a..b", "a_b"},
		{"a.:;b", "a_b"},
		{"__a__", "a"},
		{"무제", ""},
		{"무a제b", "ab"},
		{"héllo", "hllo"},
		{"a무 제b", "a_b"},
		{"", ""},
		{"---", "---"},
		{"...", ""},
	}
	for _, tt := range translitTests {
		t.Run(tt.in, func(t *testing.T) {
			test.String(t, Transliterate(tt.in), tt.expected)
		})
	}
}

func TestRewriteURLRefs(t *testing.T) {
	urlTests := []struct {
		in       string
		expected string
	}{
		{"url(#abc)", "url(#abc)"},
		{"url(#a b)", "url(#a_b)"},
		{"url(#무제)", "none"},
		{"url(#무a)", "url(#a)"},
		{"stroke url(#x.y) fill url(#무)", "stroke url(#x_y) fill none"},
		{"no refs here", "no refs here"},
	}
	for _, tt := range urlTests {
		t.Run(tt.in, func(t *testing.T) {
			test.String(t, rewriteURLRefs(tt.in), tt.expected)
		})
	}
}

func TestRewriteClassSelectors(t *testing.T) {
	classTests := []struct {
		in       string
		expected string
	}{
		{".abc{fill:red}", ".abc{fill:red}"},
		{".무a{fill:red}", ".a{fill:red}"},
		{".무{fill:red}", "{fill:red}"},
		{".a .b{}", ".a .b{}"},
		{".a,.무b{}", ".a,.b{}"},
	}
	for _, tt := range classTests {
		t.Run(tt.in, func(t *testing.T) {
			test.String(t, rewriteClassSelectors(tt.in), tt.expected)
		})
	}
}

func TestHasNonASCII(t *testing.T) {
	test.That(t, !hasNonASCII("plain ascii"), "ascii only")
	test.That(t, hasNonASCII("café"), "accented char")
	test.That(t, hasNonASCII("무제"), "hangul")
}
