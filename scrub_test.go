package scrub

import (
	"errors"
	"testing"

	"github.com/HarikrishnaNgangbam/Scrub-SVG/xmltree"
	"github.com/tdewolff/test"
)

func TestClean(t *testing.T) {
	cleanTests := []struct {
		svg      string
		expected string
	}{
		{
			`<?xml version="1.0"?><svg width="100" height="100" viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg"><title>x</title><g transform="translate(0,0)"><circle cx="50" cy="50" r="40" fill="blue"/></g></svg>`,
			`<svg viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg"><circle cx="50" cy="50" r="40" fill="blue"/></svg>`,
		},
		{
			`<svg><g style="display:none"><rect/><circle/></g><path/></svg>`,
			`<svg><path/></svg>`,
		},
		{
			`<svg><defs><linearGradient id="무제"/></defs><rect fill="url(#무제)"/></svg>`,
			`<svg><defs><linearGradient/></defs><rect fill="none"/></svg>`,
		},
		{
			`<svg><g id="keep"><rect/></g></svg>`,
			`<svg><g id="keep"><rect/></g></svg>`,
		},
		{
			`<svg><g style=" "><rect/></g></svg>`,
			`<svg><rect/></svg>`,
		},
		{
			`<svg><g transform="scale(1)" style=""><rect/></g></svg>`,
			`<svg><rect/></svg>`,
		},
		{
			`<svg width="24" height="24"><rect/></svg>`,
			`<svg viewBox="0 0 24 24"><rect/></svg>`,
		},
		{
			`<svg><defs><linearGradient id="레이어 1"/></defs><style>.c{fill:url(#레이어 1)}</style><use href="#레이어 1"/></svg>`,
			`<svg><defs><linearGradient id="1"/></defs><style>.c{fill:url(#1)}</style><use href="#1"/></svg>`,
		},
		{
			`<svg><!--generator--><metadata><rdf:RDF/></metadata><g><g transform="scale(1)"><rect/></g></g></svg>`,
			`<svg><rect/></svg>`,
		},
		{
			"<svg>\n  <text>  hi\u200B  </text>\n</svg>",
			`<svg><text>hi</text></svg>`,
		},
	}
	for _, tt := range cleanTests {
		t.Run(tt.svg, func(t *testing.T) {
			r, err := CleanString(tt.svg)
			test.Error(t, err)
			test.String(t, r.Data, tt.expected)
			test.T(t, r.OriginalSize, len(tt.svg))
			test.T(t, r.CleanedSize, len(tt.expected))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		`<?xml version="1.0"?><svg width="100" height="100" xmlns="http://www.w3.org/2000/svg"><title>x</title><g transform="translate(0,0)"><circle r="40"/></g></svg>`,
		`<svg><defs><linearGradient id="무제"/></defs><rect fill="url(#무제)"/><g style="display:none"><path/></g></svg>`,
		`<svg><g id="keep"><text> a </text></g></svg>`,
		`<svg><g style=" "><rect/></g></svg>`,
		`<svg><g transform="translate(0 0)" style=" "><circle/></g></svg>`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			once, err := CleanString(in)
			test.Error(t, err)
			twice, err := CleanString(once.Data)
			test.Error(t, err)
			test.String(t, twice.Data, once.Data)
		})
	}
}

func TestCleanErrors(t *testing.T) {
	for _, in := range []string{`<svg><rect></svg>`, `<svg><rect/>`, `not xml`} {
		t.Run(in, func(t *testing.T) {
			_, err := CleanString(in)
			test.That(t, errors.Is(err, xmltree.ErrMalformed), "must be malformed:", err)
		})
	}
	for _, in := range []string{`<rect/>`, ``, `<!-- only a comment -->`} {
		t.Run(in, func(t *testing.T) {
			_, err := CleanString(in)
			test.That(t, errors.Is(err, xmltree.ErrNoSVGRoot), "must be no svg root:", err)
		})
	}
}

func TestCleanErrorPosition(t *testing.T) {
	_, err := CleanString("<svg>\n<rect></svg>")
	var perr *xmltree.ParseError
	test.That(t, errors.As(err, &perr), "must carry a position:", err)
	test.T(t, perr.Line, 2)
}

func TestCleanKeepComments(t *testing.T) {
	o := &Scrubber{KeepComments: true}
	r, err := o.Clean([]byte(`<svg><!-- license --><title>x</title><rect/></svg>`))
	test.Error(t, err)
	test.String(t, r.Data, `<svg><!-- license --><rect/></svg>`)
}

func TestResultSavings(t *testing.T) {
	r := Result{OriginalSize: 200, CleanedSize: 150}
	test.T(t, r.Savings(), 25.0)
	test.T(t, Result{}.Savings(), 0.0)
}

func TestCleanBytes(t *testing.T) {
	r, err := Clean([]byte(`<svg width="10" height="10"/>`))
	test.Error(t, err)
	test.String(t, r.Data, `<svg viewBox="0 0 10 10"/>`)
	test.T(t, r.OriginalSize, 29)
}
