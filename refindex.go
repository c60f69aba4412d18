package scrub

import (
	"strings"

	"github.com/HarikrishnaNgangbam/Scrub-SVG/xmltree"
)

// RefSite is one place that references an element id: either an attribute on
// an element, or the text of a <style> block.
type RefSite struct {
	El   *xmltree.Node
	Attr string        // attribute name; empty for style text sites
	Text *xmltree.Node // text node for style text sites
}

// RefIndex maps element ids to the sites that reference them via url(#id) or
// a bare #id fragment. It is built once per cleaning invocation, after the
// structural passes and before the two sanitization passes that consult it.
type RefIndex struct {
	sites      map[string][]RefSite
	urlAttrs   []RefSite        // every attribute holding at least one url(#) reference
	styleTexts []*xmltree.Node  // text content of every <style> element
}

// buildRefIndex scans the current tree state for id references.
func buildRefIndex(doc *xmltree.Document) *RefIndex {
	idx := &RefIndex{sites: map[string][]RefSite{}}
	for _, el := range doc.Elements() {
		for _, a := range el.Attrs {
			site := RefSite{El: el, Attr: a.Name}
			if ms := urlRefRE.FindAllStringSubmatch(a.Value, -1); ms != nil {
				idx.urlAttrs = append(idx.urlAttrs, site)
				for _, m := range ms {
					idx.sites[m[1]] = append(idx.sites[m[1]], site)
				}
			}
			if strings.HasPrefix(a.Value, "#") {
				id := a.Value[1:]
				idx.sites[id] = append(idx.sites[id], site)
			}
		}
		if el.Data == "style" {
			for _, c := range el.Children {
				if c.Type != xmltree.TextNode {
					continue
				}
				idx.styleTexts = append(idx.styleTexts, c)
				site := RefSite{El: el, Text: c}
				for _, m := range urlRefRE.FindAllStringSubmatch(c.Data, -1) {
					idx.sites[m[1]] = append(idx.sites[m[1]], site)
				}
			}
		}
	}
	return idx
}

// Sites returns the sites referencing id.
func (idx *RefIndex) Sites(id string) []RefSite {
	return idx.sites[id]
}
