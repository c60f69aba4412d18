package scrub

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestFormat(t *testing.T) {
	formatTests := []struct {
		in       string
		expected string
	}{
		{`<?xml version="1.0"?><svg/>`, `<svg/>`},
		{"<?xml version=\"1.0\"\n encoding=\"UTF-8\"?>\n<svg/>", `<svg/>`},
		{"<svg>\n  <rect/>\n</svg>", `<svg><rect/></svg>`},
		{"<svg><text>a   b</text></svg>", `<svg><text>a b</text></svg>`},
		{"  <svg/>  ", `<svg/>`},
		{"<svg><text>a\u200Bb\uFEFFc</text></svg>", `<svg><text>abc</text></svg>`},
		{`<svg/>`, `<svg/>`},
	}
	for _, tt := range formatTests {
		t.Run(tt.in, func(t *testing.T) {
			test.String(t, Format(tt.in), tt.expected)
		})
	}
}

func TestStripZeroWidth(t *testing.T) {
	test.String(t, stripZeroWidth("a\u200B\u200C\u200D\uFEFFb"), "ab")
	test.String(t, stripZeroWidth("plain"), "plain")
}
