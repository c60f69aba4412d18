package scrub

import (
	"testing"

	"github.com/HarikrishnaNgangbam/Scrub-SVG/xmltree"
	"github.com/tdewolff/test"
)

func TestBuildRefIndex(t *testing.T) {
	doc, err := xmltree.ParseString(`<svg xmlns="http://www.w3.org/2000/svg">` +
		`<defs><linearGradient id="grad"/><clipPath id="clip"/></defs>` +
		`<style>.a{fill:url(#grad)}</style>` +
		`<rect fill="url(#grad)" clip-path="url(#clip)"/>` +
		`<use href="#clip"/>` +
		`</svg>`)
	test.Error(t, err)

	idx := buildRefIndex(doc)

	gradSites := idx.Sites("grad")
	test.T(t, len(gradSites), 2)
	test.T(t, gradSites[0].El.Data, "style")
	test.That(t, gradSites[0].Text != nil, "style site carries its text node")
	test.T(t, gradSites[1].El.Data, "rect")
	test.T(t, gradSites[1].Attr, "fill")

	clipSites := idx.Sites("clip")
	test.T(t, len(clipSites), 2)
	test.T(t, clipSites[0].Attr, "clip-path")
	test.T(t, clipSites[1].El.Data, "use")
	test.T(t, clipSites[1].Attr, "href")

	test.T(t, len(idx.Sites("missing")), 0)
	test.T(t, len(idx.urlAttrs), 2)
	test.T(t, len(idx.styleTexts), 1)
}

func TestBuildRefIndexEmpty(t *testing.T) {
	doc, err := xmltree.ParseString(`<svg><rect fill="red"/></svg>`)
	test.Error(t, err)

	idx := buildRefIndex(doc)
	test.T(t, len(idx.urlAttrs), 0)
	test.T(t, len(idx.styleTexts), 0)
}
